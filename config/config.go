package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	HTTPAddr       string
	LogLevel       string
	RequestTimeout int // seconds

	CoinGeckoBaseURL string
	BinanceBaseURL   string
	BinanceSymbol    string
	FarsideBaseURL   string
	YahooBaseURL     string
	RequestsPerSec   int

	RefreshIntervalMin int
	HistoryCacheSize   int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	TelegramToken  string
	TelegramChatID int64
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.HTTPAddr = getEnvWithDefault("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)

	cfg.CoinGeckoBaseURL = getEnvWithDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3")
	cfg.BinanceBaseURL = getEnvWithDefault("BINANCE_BASE_URL", "https://api.binance.com")
	cfg.BinanceSymbol = getEnvWithDefault("BINANCE_SYMBOL", "BTCUSDT")
	cfg.FarsideBaseURL = getEnvWithDefault("FARSIDE_BASE_URL", "https://farside.co.uk/bitcoin-etf-flow-all-data/")
	cfg.YahooBaseURL = getEnvWithDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com")
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 1)

	cfg.RefreshIntervalMin = getEnvIntWithDefault("REFRESH_INTERVAL_MIN", 30)
	cfg.HistoryCacheSize = getEnvIntWithDefault("HISTORY_CACHE_SIZE", 30)

	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "bullbear")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)

	return &cfg, nil
}

// DatabaseEnabled reports whether a Postgres target is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

// TelegramEnabled reports whether state change alerts are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
