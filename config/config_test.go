package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.BinanceSymbol != "BTCUSDT" {
		t.Errorf("BinanceSymbol = %q, want BTCUSDT", cfg.BinanceSymbol)
	}
	if cfg.YahooBaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("YahooBaseURL = %q, want the quote API default", cfg.YahooBaseURL)
	}
	if cfg.RefreshIntervalMin != 30 {
		t.Errorf("RefreshIntervalMin = %d, want 30", cfg.RefreshIntervalMin)
	}
	if cfg.DatabaseEnabled() {
		t.Error("DatabaseEnabled() = true without DB_HOST")
	}
	if cfg.TelegramEnabled() {
		t.Error("TelegramEnabled() = true without credentials")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REFRESH_INTERVAL_MIN", "5")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
	if cfg.RefreshIntervalMin != 5 {
		t.Errorf("RefreshIntervalMin = %d, want 5", cfg.RefreshIntervalMin)
	}
	if !cfg.DatabaseEnabled() {
		t.Error("DatabaseEnabled() = false with DB_HOST set")
	}
	if !cfg.TelegramEnabled() {
		t.Error("TelegramEnabled() = false with credentials set")
	}
	if cfg.TelegramChatID != -100200300 {
		t.Errorf("TelegramChatID = %d, want -100200300", cfg.TelegramChatID)
	}
}

func TestLoadIgnoresInvalidInts(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL_MIN", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RefreshIntervalMin != 30 {
		t.Errorf("RefreshIntervalMin = %d, want the default 30", cfg.RefreshIntervalMin)
	}
}
