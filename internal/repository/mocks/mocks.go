// Package mocks содержит testify-моки интерфейсов хранилища для тестов.
package mocks

import (
	"context"

	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/ivanoskov/kripto_bot/internal/repository"
	"github.com/stretchr/testify/mock"
)

type RateStore struct {
	mock.Mock
}

func (m *RateStore) GetRate(ctx context.Context, currency string) (*model.Rate, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Rate), args.Error(1)
}

func (m *RateStore) ListRates(ctx context.Context, filter repository.RateFilter) ([]model.Rate, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Rate), args.Error(1)
}

func (m *RateStore) UpsertRate(ctx context.Context, rate model.Rate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *RateStore) UpsertRates(ctx context.Context, rates []model.Rate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

type TransactionStore struct {
	mock.Mock
}

func (m *TransactionStore) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *TransactionStore) GetTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

type UserStore struct {
	mock.Mock
}

func (m *UserStore) UpsertUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserStore) GetUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

type AdminAuthenticator struct {
	mock.Mock
}

func (m *AdminAuthenticator) VerifyAccessToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *AdminAuthenticator) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

var (
	_ repository.RateStore          = (*RateStore)(nil)
	_ repository.TransactionStore   = (*TransactionStore)(nil)
	_ repository.UserStore          = (*UserStore)(nil)
	_ repository.AdminAuthenticator = (*AdminAuthenticator)(nil)
)
