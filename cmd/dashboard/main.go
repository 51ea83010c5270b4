package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/charts"
	"github.com/ivanoskov/kripto_bot/internal/config"
	"github.com/ivanoskov/kripto_bot/internal/dashboard"
	"github.com/ivanoskov/kripto_bot/internal/provider"
	"github.com/ivanoskov/kripto_bot/internal/repository"
	"github.com/ivanoskov/kripto_bot/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, logger)
	if err != nil {
		logger.Error("Failed to create repository", "error", err)
		os.Exit(1)
	}

	coingecko := provider.NewCoinGeckoClient(cfg.CoinGecko, logger)

	router := dashboard.NewRouter(cfg.Dashboard, dashboard.Deps{
		Rates:        repo,
		Transactions: repo,
		Users:        repo,
		Auth:         repo,
		Refresher:    service.NewRateRefresher(coingecko, repo, logger),
		Breakdown:    service.NewExchange(repo, repo, repo, logger),
		Charts:       charts.NewGenerator(),
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Dashboard.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Dashboard listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Dashboard server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Dashboard shutdown failed", "error", err)
	}
	logger.Info("Dashboard stopped")
}
