package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/calculator"
	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/ivanoskov/kripto_bot/internal/repository"
	"github.com/shopspring/decimal"
)

// Sender автор входящего сообщения
type Sender struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	ChatType  model.ChatType
}

// OutcomeKind чем закончилась обработка распознанной команды
type OutcomeKind int

const (
	ProportionalDone OutcomeKind = iota
	ConversionDone
	LookupFailed
)

// Outcome результат обработки одной команды, из него бот строит ответ
type Outcome struct {
	Kind            OutcomeKind
	Command         calculator.Command
	Result          decimal.Decimal // итог пропорционального расчёта
	Conversion      calculator.ConversionOutcome
	MissingCurrency string
}

// Exchange связывает разбор команды, расчёт и журнал транзакций
type Exchange struct {
	calc         *calculator.Calculator
	rates        repository.RateStore
	transactions repository.TransactionStore
	users        repository.UserStore
	logger       *slog.Logger
	now          func() time.Time
}

func NewExchange(rates repository.RateStore, transactions repository.TransactionStore, users repository.UserStore, logger *slog.Logger) *Exchange {
	return &Exchange{
		calc:         calculator.NewCalculator(rates),
		rates:        rates,
		transactions: transactions,
		users:        users,
		logger:       logger,
		now:          time.Now,
	}
}

// RegisterUser сохраняет отправителя. Ошибка только логируется.
func (e *Exchange) RegisterUser(ctx context.Context, sender Sender) {
	user := model.NewUser(sender.UserID, sender.Username, sender.FirstName, sender.LastName)
	if err := e.users.UpsertUser(ctx, user); err != nil {
		e.logger.Error("Error saving user", slog.Int64("user_id", sender.UserID), slog.Any("error", err))
	}
}

// HandleText разбирает текст и выполняет расчёт. Второе значение false,
// если текст не является командой: в этом случае бот молчит.
func (e *Exchange) HandleText(ctx context.Context, sender Sender, text string) (Outcome, bool) {
	cmd := calculator.Parse(text)

	switch cmd.Kind {
	case calculator.Proportional:
		result := calculator.ComputeProportional(cmd.Amount, cmd.Commission)
		e.record(ctx, sender, model.BaseCurrency, cmd.Amount, model.BaseCurrency, result)
		return Outcome{Kind: ProportionalDone, Command: cmd, Result: result}, true

	case calculator.Conversion:
		conversion, err := e.calc.ComputeConversion(ctx, cmd.Amount, cmd.From, cmd.To)
		if err != nil {
			// ComputeConversion сообщает об ошибках только через *LookupError
			lookupErr := err.(*calculator.LookupError)
			if lookupErr.Err != nil {
				e.logger.Error("Error getting rate",
					slog.String("currency", lookupErr.Currency), slog.Any("error", lookupErr.Err))
			}
			return Outcome{Kind: LookupFailed, Command: cmd, MissingCurrency: lookupErr.Currency}, true
		}
		e.record(ctx, sender, cmd.From, cmd.Amount, cmd.To, conversion.TargetAmount)
		return Outcome{Kind: ConversionDone, Command: cmd, Conversion: conversion}, true
	}

	return Outcome{}, false
}

// record добавляет одну транзакцию; сбой записи не мешает ответу пользователю.
// Обе суммы в журнале положительные: расчёт с нулевой стороной (0 на входе или
// результат, округлённый до нуля) пользователь получает, но в журнал он не пишется.
func (e *Exchange) record(ctx context.Context, sender Sender, from string, fromAmount decimal.Decimal, to string, toAmount decimal.Decimal) {
	if !fromAmount.IsPositive() || !toAmount.IsPositive() {
		e.logger.Debug("Skipping zero-amount transaction",
			slog.Int64("user_id", sender.UserID),
			slog.String("from", from), slog.String("to", to))
		return
	}

	transaction := &model.Transaction{
		UserID:       sender.UserID,
		ChatType:     sender.ChatType,
		FromCurrency: from,
		FromAmount:   fromAmount,
		ToCurrency:   to,
		ToAmount:     toAmount,
		CreatedAt:    e.now().UTC(),
	}
	transaction.GenerateID()

	if err := e.transactions.CreateTransaction(ctx, transaction); err != nil {
		e.logger.Error("Error saving transaction",
			slog.Int64("user_id", sender.UserID),
			slog.String("id", transaction.ID),
			slog.Any("error", err))
		return
	}
	e.logger.Debug("Transaction saved", slog.String("id", transaction.ID))
}

// Rates все курсы по алфавиту
func (e *Exchange) Rates(ctx context.Context) ([]model.Rate, error) {
	rates, err := e.rates.ListRates(ctx, repository.RateFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	return rates, nil
}

// TargetCurrencyBreakdown считает транзакции по целевой валюте, больше первыми
func (e *Exchange) TargetCurrencyBreakdown(ctx context.Context, filter repository.TransactionFilter) ([]model.CurrencyCount, error) {
	transactions, err := e.transactions.GetTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return countByTarget(transactions), nil
}

func countByTarget(transactions []model.Transaction) []model.CurrencyCount {
	counts := make(map[string]int)
	for _, t := range transactions {
		counts[t.ToCurrency]++
	}

	result := make([]model.CurrencyCount, 0, len(counts))
	for currency, count := range counts {
		result = append(result, model.CurrencyCount{Currency: currency, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Currency < result[j].Currency
	})
	return result
}
