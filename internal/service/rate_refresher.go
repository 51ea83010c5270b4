package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/ivanoskov/kripto_bot/internal/provider"
	"github.com/shopspring/decimal"
)

// PriceSource поставщик цен активов в TRY
type PriceSource interface {
	FetchPrices(ctx context.Context, ids []string) (map[string]provider.Price, error)
}

// RateWriter массовая запись курсов одним запросом
type RateWriter interface {
	UpsertRates(ctx context.Context, rates []model.Rate) error
}

// RateRefresher обновляет таблицу rates по данным поставщика
type RateRefresher struct {
	source PriceSource
	store  RateWriter
	logger *slog.Logger
	now    func() time.Time
}

func NewRateRefresher(source PriceSource, store RateWriter, logger *slog.Logger) *RateRefresher {
	return &RateRefresher{
		source: source,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh получает цены и записывает их вместе с TRY = 1 одним upsert.
// При ошибке поставщика или хранилища существующие курсы не меняются.
// Возвращает число записанных курсов.
func (r *RateRefresher) Refresh(ctx context.Context) (int, error) {
	ids := make([]string, 0, len(model.Assets))
	for _, asset := range model.Assets {
		ids = append(ids, asset.ProviderID)
	}

	prices, err := r.source.FetchPrices(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch prices: %w", err)
	}

	rates := make([]model.Rate, 0, len(model.Assets)+1)
	for _, asset := range model.Assets {
		price, ok := prices[asset.ProviderID]
		if !ok {
			r.logger.Warn("Price missing in provider response", slog.String("currency", asset.Currency))
			continue
		}
		if !price.TRY.IsPositive() {
			r.logger.Warn("Skipping non-positive price",
				slog.String("currency", asset.Currency),
				slog.String("price", price.TRY.String()))
			continue
		}
		rates = append(rates, model.Rate{
			Currency:    asset.Currency,
			TryRate:     price.TRY,
			LastUpdated: price.LastUpdated(),
		})
	}

	rates = append(rates, model.Rate{
		Currency:    model.BaseCurrency,
		TryRate:     decimal.NewFromInt(1),
		LastUpdated: r.now().UTC(),
	})

	if err := r.store.UpsertRates(ctx, rates); err != nil {
		return 0, fmt.Errorf("failed to store rates: %w", err)
	}

	r.logger.Info("Rates refreshed", slog.Int("updated", len(rates)))
	return len(rates), nil
}
