package repository

import (
	"context"

	"github.com/ivanoskov/kripto_bot/internal/model"
)

// RateStore таблица rates, одна запись на код валюты
type RateStore interface {
	GetRate(ctx context.Context, currency string) (*model.Rate, error)
	ListRates(ctx context.Context, filter RateFilter) ([]model.Rate, error)
	UpsertRate(ctx context.Context, rate model.Rate) error
	// UpsertRates пишет все записи одним запросом: либо все, либо ни одной
	UpsertRates(ctx context.Context, rates []model.Rate) error
}

// TransactionStore журнал расчётов, только добавление
type TransactionStore interface {
	CreateTransaction(ctx context.Context, transaction *model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
}

type UserStore interface {
	UpsertUser(ctx context.Context, user *model.User) error
	GetUsers(ctx context.Context, filter UserFilter) ([]model.User, error)
}

// AdminAuthenticator проверка сессии панели управления
type AdminAuthenticator interface {
	VerifyAccessToken(ctx context.Context, token string) (string, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type Repository interface {
	RateStore
	TransactionStore
	UserStore
	AdminAuthenticator
}

// Page нумерация с нуля
type Page struct {
	Number int
	Size   int
}

// Bounds границы для Range, включительно
func (p Page) Bounds() (from, to int) {
	from = p.Number * p.Size
	return from, from + p.Size - 1
}

type RateFilter struct {
	Search string
}

type TransactionFilter struct {
	UserID *int64
	Search string // по from_currency, to_currency и users.username
	Page   *Page
	Limit  int
}

type UserFilter struct {
	Search string // по username, first_name, last_name
	Page   *Page
}
