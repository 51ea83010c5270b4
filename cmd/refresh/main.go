package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ivanoskov/kripto_bot/internal/config"
	"github.com/ivanoskov/kripto_bot/internal/provider"
	"github.com/ivanoskov/kripto_bot/internal/repository"
	"github.com/ivanoskov/kripto_bot/internal/service"
)

// Разовое обновление курсов, запускается по расписанию (cron)
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg, os.Stdout)

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, logger)
	if err != nil {
		logger.Error("Failed to create repository", "error", err)
		os.Exit(1)
	}

	refresher := service.NewRateRefresher(provider.NewCoinGeckoClient(cfg.CoinGecko, logger), repo, logger)

	count, err := refresher.Refresh(context.Background())
	if err != nil {
		logger.Error("Rate refresh failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Rates refreshed", slog.Int("count", count))
}
