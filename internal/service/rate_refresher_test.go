package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/apperrors"
	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/ivanoskov/kripto_bot/internal/provider"
	"github.com/ivanoskov/kripto_bot/internal/repository/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) FetchPrices(ctx context.Context, ids []string) (map[string]provider.Price, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]provider.Price), args.Error(1)
}

func newRefresher(source PriceSource, store RateWriter, now time.Time) *RateRefresher {
	r := NewRateRefresher(source, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.now = func() time.Time { return now }
	return r
}

func TestRateRefresher_Refresh(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	source := new(MockPriceSource)
	store := new(mocks.RateStore)

	source.On("FetchPrices", mock.Anything, mock.MatchedBy(func(ids []string) bool {
		return len(ids) == len(model.Assets) && ids[0] == "bitcoin" && ids[len(ids)-1] == "avalanche-2"
	})).Return(map[string]provider.Price{
		"bitcoin":     {TRY: decimal.RequireFromString("2000000"), LastUpdatedAt: 1714557600},
		"tron":        {TRY: decimal.RequireFromString("3.7"), LastUpdatedAt: 1714557601},
		"dogecoin":    {TRY: decimal.Zero, LastUpdatedAt: 1714557602},
		"unknown-one": {TRY: decimal.NewFromInt(5)},
	}, nil).Once()

	var stored []model.Rate
	store.On("UpsertRates", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).([]model.Rate) }).
		Return(nil).Once()

	updated, err := newRefresher(source, store, now).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	require.Len(t, stored, 3)
	assert.Equal(t, "BTC", stored[0].Currency)
	assert.Equal(t, time.Unix(1714557600, 0).UTC(), stored[0].LastUpdated)
	assert.Equal(t, "TRX", stored[1].Currency)
	assert.Equal(t, "TRY", stored[2].Currency)
	assert.True(t, stored[2].TryRate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, now, stored[2].LastUpdated)

	source.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestRateRefresher_FetchFailureLeavesStoreUntouched(t *testing.T) {
	source := new(MockPriceSource)
	store := new(mocks.RateStore)
	source.On("FetchPrices", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrUpstream).Once()

	updated, err := newRefresher(source, store, time.Now()).Refresh(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Zero(t, updated)
	store.AssertNotCalled(t, "UpsertRates", mock.Anything, mock.Anything)
}

func TestRateRefresher_StoreFailure(t *testing.T) {
	source := new(MockPriceSource)
	store := new(mocks.RateStore)
	source.On("FetchPrices", mock.Anything, mock.Anything).
		Return(map[string]provider.Price{}, nil).Once()
	store.On("UpsertRates", mock.Anything, mock.Anything).Return(errors.New("unavailable")).Once()

	updated, err := newRefresher(source, store, time.Now()).Refresh(context.Background())

	assert.Error(t, err)
	assert.Zero(t, updated)
}
