package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ivanoskov/kripto_bot/internal/apperrors"
	"github.com/ivanoskov/kripto_bot/internal/config"
	"github.com/shopspring/decimal"
)

// Price цена актива в TRY из ответа simple/price
type Price struct {
	TRY           decimal.Decimal `json:"try"`
	LastUpdatedAt int64           `json:"last_updated_at"`
}

// LastUpdated время обновления цены у поставщика
func (p Price) LastUpdated() time.Time {
	return time.Unix(p.LastUpdatedAt, 0).UTC()
}

// CoinGeckoClient клиент публичного API CoinGecko
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewCoinGeckoClient(cfg config.CoinGeckoConfig, logger *slog.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// FetchPrices возвращает цены в TRY по идентификаторам активов CoinGecko.
// Активы, которых нет в ответе, в результат не попадают.
func (c *CoinGeckoClient) FetchPrices(ctx context.Context, ids []string) (map[string]Price, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "try")
	query.Set("include_last_updated_at", "true")
	endpoint := c.baseURL + "/simple/price?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Info("Fetching prices from CoinGecko", slog.Int("assets", len(ids)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", apperrors.ErrUpstream, resp.StatusCode, string(body))
	}

	var prices map[string]Price
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", apperrors.ErrUpstream, err)
	}

	c.logger.Debug("Prices received", slog.Int("count", len(prices)))
	return prices, nil
}
