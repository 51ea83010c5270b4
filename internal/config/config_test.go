package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("SUPABASE_KEY", "service-key")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "service-key", cfg.SupabaseKey)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.URL)
	assert.Equal(t, 15*time.Second, cfg.CoinGecko.Timeout)
	assert.Equal(t, "8080", cfg.Dashboard.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Dashboard.AllowedOrigins)
	assert.Equal(t, 10, cfg.Dashboard.PageSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_LegacyNames(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SUPABASE_KEY", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "role-key")
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "role-key", cfg.SupabaseKey)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("COINGECKO_TIMEOUT", "3s")
	t.Setenv("DASHBOARD_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DASHBOARD_PAGE_SIZE", "25")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.CoinGecko.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Dashboard.AllowedOrigins)
	assert.Equal(t, 25, cfg.Dashboard.PageSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_MissingSupabase(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SUPABASE_URL", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireTelegram())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("currency", "BTC"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"currency":"BTC"`)
}
