package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivanoskov/kripto_bot/internal/bot"
	"github.com/ivanoskov/kripto_bot/internal/charts"
	"github.com/ivanoskov/kripto_bot/internal/config"
	"github.com/ivanoskov/kripto_bot/internal/repository"
	"github.com/ivanoskov/kripto_bot/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireTelegram(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, logger)
	if err != nil {
		logger.Error("Failed to create repository", "error", err)
		os.Exit(1)
	}

	exchange := service.NewExchange(repo, repo, repo, logger)

	b, err := bot.NewBot(cfg.TelegramToken, cfg.TelegramDebug, exchange, charts.NewGenerator(), logger)
	if err != nil {
		logger.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped")
}
