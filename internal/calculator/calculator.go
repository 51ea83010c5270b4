package calculator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivanoskov/kripto_bot/internal/apperrors"
	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/shopspring/decimal"
)

// Округление везде decimal.Round: половина уходит от нуля.
const (
	amountPlaces = 2
	targetPlaces = 6
)

var hundred = decimal.NewFromInt(100)

// RateLookup читает курс валюты. Отсутствие курса сообщается через apperrors.ErrNotFound.
type RateLookup interface {
	GetRate(ctx context.Context, currency string) (*model.Rate, error)
}

// LookupError для валюты нет действующего курса. Err содержит причину,
// если хранилище вернуло что-то кроме "не найдено".
type LookupError struct {
	Currency string
	Err      error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no rate for %s: %v", e.Currency, e.Err)
	}
	return fmt.Sprintf("no rate for %s", e.Currency)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ConversionOutcome TargetAmount округлён до 6 знаков, TryAmount до 2
type ConversionOutcome struct {
	TargetAmount decimal.Decimal
	TryAmount    decimal.Decimal
}

// ComputeProportional amount * (1 + commission/100), округление до 2 знаков
func ComputeProportional(amount, commissionPercent decimal.Decimal) decimal.Decimal {
	return amount.Mul(hundred.Add(commissionPercent)).Div(hundred).Round(amountPlaces)
}

// Calculator только читает курсы и ничего не кэширует: каждый вызов видит
// текущее состояние хранилища.
type Calculator struct {
	rates RateLookup
}

func NewCalculator(rates RateLookup) *Calculator {
	return &Calculator{rates: rates}
}

// ComputeConversion переводит amount из from в to через TRY. Любая ошибка
// возвращается как *LookupError.
func (c *Calculator) ComputeConversion(ctx context.Context, amount decimal.Decimal, from, to string) (ConversionOutcome, error) {
	fromRate, err := c.lookup(ctx, from)
	if err != nil {
		return ConversionOutcome{}, err
	}
	toRate, err := c.lookup(ctx, to)
	if err != nil {
		return ConversionOutcome{}, err
	}
	return convert(amount, fromRate, toRate), nil
}

func (c *Calculator) lookup(ctx context.Context, currency string) (decimal.Decimal, error) {
	if !model.IsSupported(currency) {
		return decimal.Zero, &LookupError{Currency: currency}
	}

	rate, err := c.rates.GetRate(ctx, currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, &LookupError{Currency: currency}
		}
		return decimal.Zero, &LookupError{Currency: currency, Err: err}
	}
	// Нулевой или отрицательный курс считаем отсутствующим
	if rate == nil || !rate.TryRate.IsPositive() {
		return decimal.Zero, &LookupError{Currency: currency}
	}
	return rate.TryRate, nil
}

// convert делит неокруглённую сумму в TRY, округляется только результат
func convert(amount, fromRate, toRate decimal.Decimal) ConversionOutcome {
	tryAmount := amount.Mul(fromRate)
	return ConversionOutcome{
		TargetAmount: tryAmount.Div(toRate).Round(targetPlaces),
		TryAmount:    tryAmount.Round(amountPlaces),
	}
}
