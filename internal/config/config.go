package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type CoinGeckoConfig struct {
	URL     string
	Timeout time.Duration
}

type DashboardConfig struct {
	Port           string
	AllowedOrigins []string
	PageSize       int
}

type Config struct {
	SupabaseURL   string
	SupabaseKey   string
	TelegramToken string
	TelegramDebug bool
	CoinGecko     CoinGeckoConfig
	Dashboard     DashboardConfig
	LogLevel      string
	LogFormat     string
}

// LoadConfig читает .env (если он есть) и переменные окружения
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("TELEGRAM_DEBUG", false)
	v.SetDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3")
	v.SetDefault("COINGECKO_TIMEOUT", "15s")
	v.SetDefault("DASHBOARD_PORT", "8080")
	v.SetDefault("DASHBOARD_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DASHBOARD_PAGE_SIZE", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.AutomaticEnv()

	// Старые имена переменных из edge-функции тоже принимаются
	_ = v.BindEnv("TELEGRAM_TOKEN", "TELEGRAM_TOKEN", "BOT_TOKEN")
	_ = v.BindEnv("SUPABASE_KEY", "SUPABASE_KEY", "SUPABASE_SERVICE_ROLE_KEY")

	cfg := &Config{
		SupabaseURL:   strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseKey:   v.GetString("SUPABASE_KEY"),
		TelegramToken: v.GetString("TELEGRAM_TOKEN"),
		TelegramDebug: v.GetBool("TELEGRAM_DEBUG"),
		CoinGecko: CoinGeckoConfig{
			URL:     strings.TrimRight(v.GetString("COINGECKO_URL"), "/"),
			Timeout: v.GetDuration("COINGECKO_TIMEOUT"),
		},
		Dashboard: DashboardConfig{
			Port:           v.GetString("DASHBOARD_PORT"),
			AllowedOrigins: splitList(v.GetString("DASHBOARD_ALLOWED_ORIGINS")),
			PageSize:       v.GetInt("DASHBOARD_PAGE_SIZE"),
		},
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	if cfg.CoinGecko.Timeout <= 0 {
		cfg.CoinGecko.Timeout = 15 * time.Second
	}
	if cfg.Dashboard.PageSize <= 0 {
		cfg.Dashboard.PageSize = 10
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_KEY must be set")
	}

	return cfg, nil
}

// RequireTelegram нужен только бинарникам бота
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN must be set")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
