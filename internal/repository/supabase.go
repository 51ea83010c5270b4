package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/apperrors"
	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const (
	ratesTable        = "rates"
	transactionsTable = "transactions"
	usersTable        = "users"
	adminsTable       = "admins"
)

// Символы, которые ломают синтаксис фильтров PostgREST
var unsafeSearchChars = regexp.MustCompile(`[,()*%:."\\]`)

type SupabaseRepository struct {
	client *supabase.Client
	logger *slog.Logger
}

var _ Repository = (*SupabaseRepository)(nil)

func NewSupabaseRepository(url, key string, logger *slog.Logger) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
		logger: logger,
	}, nil
}

func (r *SupabaseRepository) GetRate(ctx context.Context, currency string) (*model.Rate, error) {
	data, _, err := r.client.From(ratesTable).
		Select("currency,try_rate,last_updated", "", false).
		Eq("currency", currency).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get rate for %s: %w", currency, err)
	}

	var rates []model.Rate
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to parse rate for %s: %w", currency, err)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("rate %s: %w", currency, apperrors.ErrNotFound)
	}
	return &rates[0], nil
}

func (r *SupabaseRepository) ListRates(ctx context.Context, filter RateFilter) ([]model.Rate, error) {
	query := r.client.From(ratesTable).
		Select("currency,try_rate,last_updated", "", false)

	if search := sanitizeSearch(filter.Search); search != "" {
		query = query.Ilike("currency", "*"+search+"*")
	}

	data, _, err := query.Order("currency", &postgrest.OrderOpts{Ascending: true}).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}

	var rates []model.Rate
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to parse rates: %w", err)
	}
	return rates, nil
}

func (r *SupabaseRepository) UpsertRate(ctx context.Context, rate model.Rate) error {
	return r.UpsertRates(ctx, []model.Rate{rate})
}

func (r *SupabaseRepository) UpsertRates(ctx context.Context, rates []model.Rate) error {
	if len(rates) == 0 {
		return nil
	}
	for _, rate := range rates {
		if err := rate.Validate(); err != nil {
			return err
		}
	}

	_, _, err := r.client.From(ratesTable).
		Insert(rates, true, "currency", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert %d rates: %w", len(rates), err)
	}
	r.logger.Debug("Rates upserted", slog.Int("count", len(rates)))
	return nil
}

func (r *SupabaseRepository) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	transaction.GenerateID()
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now().UTC()
	}
	data, _, err := r.client.From(transactionsTable).Insert(transaction, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	// Парсим ответ для получения created_at из базы
	var created []model.Transaction
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("failed to parse created transaction: %w", err)
	}
	if len(created) > 0 {
		transaction.CreatedAt = created[0].CreatedAt
	}
	return nil
}

func (r *SupabaseRepository) GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	query := r.client.From(transactionsTable).
		Select("*,users(username,first_name,last_name)", "", false)

	if filter.UserID != nil {
		query = query.Eq("user_id", strconv.FormatInt(*filter.UserID, 10))
	}
	if search := sanitizeSearch(filter.Search); search != "" {
		query = query.Or(fmt.Sprintf(
			"from_currency.ilike.*%s*,to_currency.ilike.*%s*,users.username.ilike.*%s*", search, search, search), "")
	}

	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})

	if filter.Page != nil {
		from, to := filter.Page.Bounds()
		query = query.Range(from, to, "")
	} else if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	var transactions []model.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("failed to parse transactions: %w", err)
	}
	return transactions, nil
}

func (r *SupabaseRepository) UpsertUser(ctx context.Context, user *model.User) error {
	_, _, err := r.client.From(usersTable).
		Insert(user, true, "telegram_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.TelegramID, err)
	}
	return nil
}

func (r *SupabaseRepository) GetUsers(ctx context.Context, filter UserFilter) ([]model.User, error) {
	query := r.client.From(usersTable).Select("*", "", false)

	if search := sanitizeSearch(filter.Search); search != "" {
		query = query.Or(fmt.Sprintf(
			"username.ilike.*%s*,first_name.ilike.*%s*,last_name.ilike.*%s*", search, search, search), "")
	}

	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if filter.Page != nil {
		from, to := filter.Page.Bounds()
		query = query.Range(from, to, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}
	return users, nil
}

// VerifyAccessToken возвращает id пользователя Supabase Auth для токена сессии
func (r *SupabaseRepository) VerifyAccessToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperrors.ErrUnauthorized
	}
	user, err := r.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return "", errors.Join(apperrors.ErrUnauthorized, err)
	}
	return user.ID.String(), nil
}

func (r *SupabaseRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	data, _, err := r.client.From(adminsTable).
		Select("user_id", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return false, fmt.Errorf("failed to check admin %s: %w", userID, err)
	}

	var admins []struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(data, &admins); err != nil {
		return false, fmt.Errorf("failed to parse admins: %w", err)
	}
	return len(admins) > 0, nil
}

func sanitizeSearch(s string) string {
	return strings.TrimSpace(unsafeSearchChars.ReplaceAllString(s, ""))
}
