package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ivanoskov/kripto_bot/internal/charts"
	"github.com/ivanoskov/kripto_bot/internal/config"
	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/ivanoskov/kripto_bot/internal/repository"
)

const (
	// Сколько последних транзакций учитывает график панели
	chartSampleSize = 1000
	// Больший номер страницы переполнил бы offset
	maxPageNumber = 100000
)

// RateRefresher запуск обновления курсов по кнопке панели
type RateRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Breakdown подсчёт транзакций по целевой валюте
type Breakdown interface {
	TargetCurrencyBreakdown(ctx context.Context, filter repository.TransactionFilter) ([]model.CurrencyCount, error)
}

type Handler struct {
	rates        repository.RateStore
	transactions repository.TransactionStore
	users        repository.UserStore
	refresher    RateRefresher
	breakdown    Breakdown
	charts       *charts.Generator
	pageSize     int
}

type Deps struct {
	Rates        repository.RateStore
	Transactions repository.TransactionStore
	Users        repository.UserStore
	Auth         repository.AdminAuthenticator
	Refresher    RateRefresher
	Breakdown    Breakdown
	Charts       *charts.Generator
	Logger       *slog.Logger
}

// NewRouter собирает gin-движок панели управления
func NewRouter(cfg config.DashboardConfig, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(StructuredLoggingMiddleware(deps.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
		}))
	}

	h := &Handler{
		rates:        deps.Rates,
		transactions: deps.Transactions,
		users:        deps.Users,
		refresher:    deps.Refresher,
		breakdown:    deps.Breakdown,
		charts:       deps.Charts,
		pageSize:     cfg.PageSize,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api", RequireAdmin(deps.Auth))
	api.GET("/rates", h.listRates)
	api.GET("/transactions", h.listTransactions)
	api.GET("/users", h.listUsers)
	api.POST("/update-rates", h.updateRates)
	api.GET("/charts/transactions.png", h.transactionsChart)

	return router
}

func (h *Handler) listRates(c *gin.Context) {
	rates, err := h.rates.ListRates(c.Request.Context(), repository.RateFilter{Search: c.Query("search")})
	if err != nil {
		GetLoggerFromContext(c).Error("Error fetching rates", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nonNil(rates)})
}

func (h *Handler) listTransactions(c *gin.Context) {
	page := h.page(c)
	transactions, err := h.transactions.GetTransactions(c.Request.Context(), repository.TransactionFilter{
		Search: c.Query("search"),
		Page:   &page,
	})
	if err != nil {
		GetLoggerFromContext(c).Error("Error fetching transactions", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nonNil(transactions), "page": page.Number, "page_size": page.Size})
}

func (h *Handler) listUsers(c *gin.Context) {
	page := h.page(c)
	users, err := h.users.GetUsers(c.Request.Context(), repository.UserFilter{
		Search: c.Query("search"),
		Page:   &page,
	})
	if err != nil {
		GetLoggerFromContext(c).Error("Error fetching users", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nonNil(users), "page": page.Number, "page_size": page.Size})
}

func (h *Handler) updateRates(c *gin.Context) {
	logger := GetLoggerFromContext(c)
	logger.Info("Rate refresh triggered")

	updated, err := h.refresher.Refresh(c.Request.Context())
	if err != nil {
		logger.Error("Error updating rates", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rates"})
		return
	}
	logger.Info("Rates updated", slog.Int("updated", updated))
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

func (h *Handler) transactionsChart(c *gin.Context) {
	counts, err := h.breakdown.TargetCurrencyBreakdown(c.Request.Context(), repository.TransactionFilter{
		Limit: chartSampleSize,
	})
	if err != nil {
		GetLoggerFromContext(c).Error("Error fetching chart data", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build chart"})
		return
	}

	png, err := h.charts.TargetCurrencyPie("İşlemler (hedef birim)", counts)
	if err != nil {
		GetLoggerFromContext(c).Error("Error rendering chart", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build chart"})
		return
	}
	if png == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// page номер страницы с нуля; мусор в параметре даёт первую страницу
func (h *Handler) page(c *gin.Context) repository.Page {
	number, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || number < 0 {
		number = 0
	}
	if number > maxPageNumber {
		number = maxPageNumber
	}
	return repository.Page{Number: number, Size: h.pageSize}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
