package model

import (
	"fmt"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Rate стоимость одной единицы валюты в TRY на момент обновления
type Rate struct {
	Currency    string          `json:"currency"`
	TryRate     decimal.Decimal `json:"try_rate"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Validate проверяет запись перед записью в таблицу rates
func (r Rate) Validate() error {
	if !IsSupported(r.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, r.Currency)
	}
	if !r.TryRate.IsPositive() {
		return fmt.Errorf("%w: non-positive rate %s for %s", apperrors.ErrValidation, r.TryRate, r.Currency)
	}
	if r.Currency == BaseCurrency && !r.TryRate.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s rate must be 1", apperrors.ErrValidation, BaseCurrency)
	}
	return nil
}
