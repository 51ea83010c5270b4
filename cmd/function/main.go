package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/ivanoskov/kripto_bot/internal/bot"
	"github.com/ivanoskov/kripto_bot/internal/charts"
	"github.com/ivanoskov/kripto_bot/internal/config"
	"github.com/ivanoskov/kripto_bot/internal/repository"
	"github.com/ivanoskov/kripto_bot/internal/service"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body string `json:"body"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		return errorResponse(err)
	}

	logger := config.NewLogger(cfg, os.Stdout)

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, logger)
	if err != nil {
		return errorResponse(err)
	}

	exchange := service.NewExchange(repo, repo, repo, logger)

	b, err := bot.NewBot(cfg.TelegramToken, cfg.TelegramDebug, exchange, charts.NewGenerator(), logger)
	if err != nil {
		return errorResponse(err)
	}

	// Обработка webhook-обновления
	if err := b.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		logger.Error("Webhook update failed", "error", err)
		return errorResponse(err)
	}

	return &Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования
	slog.Info("Function handler is invoked by the serverless runtime")
}
