package repository

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/apperrors"
	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *SupabaseRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	repo, err := NewSupabaseRepository(server.URL, "test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return repo
}

func TestSupabaseRepository_GetRate(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rates", r.URL.Path)
		assert.Equal(t, "eq.BTC", r.URL.Query().Get("currency"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"currency":"BTC","try_rate":2000000.5,"last_updated":"2024-05-01T10:00:00Z"}]`))
	})

	rate, err := repo.GetRate(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, "BTC", rate.Currency)
	assert.True(t, decimal.RequireFromString("2000000.5").Equal(rate.TryRate))
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), rate.LastUpdated.UTC())
}

func TestSupabaseRepository_GetRate_NotFound(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := repo.GetRate(context.Background(), "AVAX")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSupabaseRepository_UpsertRates(t *testing.T) {
	var requests int
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rates", r.URL.Path)
		assert.Equal(t, "currency", r.URL.Query().Get("on_conflict"))
		assert.Equal(t, "resolution=merge-duplicates,return=minimal", r.Header.Get("Prefer"))

		var body []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body, 2)
		w.WriteHeader(http.StatusCreated)
	})

	now := time.Now()
	err := repo.UpsertRates(context.Background(), []model.Rate{
		{Currency: "BTC", TryRate: decimal.NewFromInt(2000000), LastUpdated: now},
		{Currency: "TRY", TryRate: decimal.NewFromInt(1), LastUpdated: now},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestSupabaseRepository_UpsertRates_InvalidRateSendsNothing(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	err := repo.UpsertRates(context.Background(), []model.Rate{
		{Currency: "BTC", TryRate: decimal.NewFromInt(2000000)},
		{Currency: "ETH", TryRate: decimal.Zero},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSupabaseRepository_IsAdmin(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/admins", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("user_id") == "eq.admin-id" {
			_, _ = w.Write([]byte(`[{"user_id":"admin-id"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	ok, err := repo.IsAdmin(context.Background(), "admin-id")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsAdmin(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSupabaseRepository_VerifyAccessToken_Empty(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := repo.VerifyAccessToken(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestPage_Bounds(t *testing.T) {
	from, to := Page{Number: 0, Size: 10}.Bounds()
	assert.Equal(t, 0, from)
	assert.Equal(t, 9, to)

	from, to = Page{Number: 3, Size: 10}.Bounds()
	assert.Equal(t, 30, from)
	assert.Equal(t, 39, to)
}

func TestSanitizeSearch(t *testing.T) {
	assert.Equal(t, "btc", sanitizeSearch("  btc "))
	assert.Equal(t, "ethusdt", sanitizeSearch("eth,(usdt)*"))
	assert.Equal(t, "", sanitizeSearch("%%"))
}

func TestSupabaseRepository_ListRates(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/rates", r.URL.Path)
		assert.Equal(t, "currency,try_rate,last_updated", q.Get("select"))
		assert.Equal(t, "currency.asc.nullslast", q.Get("order"))
		assert.Equal(t, "ilike.*bt*", q.Get("currency"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"currency":"BTC","try_rate":"2000000","last_updated":"2024-05-01T10:00:00Z"}]`))
	})

	rates, err := repo.ListRates(context.Background(), RateFilter{Search: " bt* "})
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "BTC", rates[0].Currency)
}

func TestSupabaseRepository_ListRates_WithoutSearch(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("currency"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	rates, err := repo.ListRates(context.Background(), RateFilter{})
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestSupabaseRepository_CreateTransaction(t *testing.T) {
	stored := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/transactions", r.URL.Path)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.False(t, r.URL.Query().Has("on_conflict"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["id"])
		assert.Equal(t, float64(42), body["user_id"])
		assert.Equal(t, "private", body["chat_type"])
		assert.Equal(t, "BTC", body["from_currency"])
		assert.Equal(t, "1", body["from_amount"])
		assert.Equal(t, "TRY", body["to_currency"])
		assert.Equal(t, "2000000", body["to_amount"])
		assert.NotContains(t, body, "users")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		body["created_at"] = stored.Format(time.RFC3339)
		_ = json.NewEncoder(w).Encode([]map[string]any{body})
	})

	tx := &model.Transaction{
		UserID:       42,
		ChatType:     model.ChatPrivate,
		FromCurrency: "BTC",
		FromAmount:   decimal.NewFromInt(1),
		ToCurrency:   "TRY",
		ToAmount:     decimal.NewFromInt(2000000),
	}
	require.NoError(t, repo.CreateTransaction(context.Background(), tx))
	assert.NotEmpty(t, tx.ID)
	assert.True(t, stored.Equal(tx.CreatedAt))
}

func TestSupabaseRepository_CreateTransaction_StoreError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value"}`))
	})

	err := repo.CreateTransaction(context.Background(), &model.Transaction{
		UserID: 42, FromCurrency: "TRY", FromAmount: decimal.NewFromInt(1),
		ToCurrency: "TRY", ToAmount: decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key value")
}

func TestSupabaseRepository_GetTransactions_PageAndSearch(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/transactions", r.URL.Path)
		assert.Equal(t, "*,users(username,first_name,last_name)", q.Get("select"))
		assert.Equal(t, "eq.42", q.Get("user_id"))
		assert.Equal(t,
			"(from_currency.ilike.*tr*,to_currency.ilike.*tr*,users.username.ilike.*tr*)", q.Get("or"))
		assert.Equal(t, "created_at.desc.nullslast", q.Get("order"))
		assert.Equal(t, "20", q.Get("offset"))
		assert.Equal(t, "10", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"b9d5","user_id":42,"chat_type":"group","from_currency":"TRY",` +
			`"from_amount":"100","to_currency":"TRX","to_amount":"26.5","created_at":"2024-05-01T10:00:00Z",` +
			`"users":{"username":"ayse","first_name":"Ayşe","last_name":null}}]`))
	})

	userID := int64(42)
	transactions, err := repo.GetTransactions(context.Background(), TransactionFilter{
		UserID: &userID,
		Search: "tr",
		Page:   &Page{Number: 2, Size: 10},
	})
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	tx := transactions[0]
	assert.Equal(t, model.ChatGroup, tx.ChatType)
	assert.True(t, decimal.RequireFromString("26.5").Equal(tx.ToAmount))
	require.NotNil(t, tx.User)
	require.NotNil(t, tx.User.Username)
	assert.Equal(t, "ayse", *tx.User.Username)
	assert.Nil(t, tx.User.LastName)
}

func TestSupabaseRepository_GetTransactions_Limit(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "500", q.Get("limit"))
		assert.False(t, q.Has("offset"))
		assert.False(t, q.Has("or"))
		assert.False(t, q.Has("user_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	transactions, err := repo.GetTransactions(context.Background(), TransactionFilter{Limit: 500})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestSupabaseRepository_UpsertUser(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "telegram_id", r.URL.Query().Get("on_conflict"))
		assert.Equal(t, "resolution=merge-duplicates,return=minimal", r.Header.Get("Prefer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(42), body["telegram_id"])
		assert.Equal(t, "ayse", body["username"])
		assert.Nil(t, body["last_name"])
		assert.NotContains(t, body, "created_at")
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, repo.UpsertUser(context.Background(), model.NewUser(42, "ayse", "Ayşe", "")))
}

func TestSupabaseRepository_GetUsers(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "*", q.Get("select"))
		assert.Equal(t, "(username.ilike.*ay*,first_name.ilike.*ay*,last_name.ilike.*ay*)", q.Get("or"))
		assert.Equal(t, "created_at.desc.nullslast", q.Get("order"))
		assert.Equal(t, "0", q.Get("offset"))
		assert.Equal(t, "10", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"telegram_id":42,"username":"ayse","first_name":"Ayşe","last_name":null,` +
			`"created_at":"2024-05-01T10:00:00Z"}]`))
	})

	users, err := repo.GetUsers(context.Background(), UserFilter{Search: "ay", Page: &Page{Number: 0, Size: 10}})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(42), users[0].TelegramID)
	require.NotNil(t, users[0].CreatedAt)
}
