package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/bullbear/config"
	"github.com/Alias1177/bullbear/internal/api/binance"
	"github.com/Alias1177/bullbear/internal/api/coingecko"
	"github.com/Alias1177/bullbear/internal/api/farside"
	"github.com/Alias1177/bullbear/internal/api/yahoo"
	"github.com/Alias1177/bullbear/internal/data"
	"github.com/Alias1177/bullbear/internal/database"
	"github.com/Alias1177/bullbear/internal/engine"
	"github.com/Alias1177/bullbear/internal/notify"
	"github.com/Alias1177/bullbear/internal/observability"
	"github.com/Alias1177/bullbear/internal/server"
	"github.com/Alias1177/bullbear/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config failed")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	coingeckoClient := coingecko.NewClient(coingecko.ClientOptions{
		BaseURL:        cfg.CoinGeckoBaseURL,
		RequestTimeout: timeout,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	binanceClient := binance.NewClient(binance.ClientOptions{
		BaseURL:        cfg.BinanceBaseURL,
		Symbol:         cfg.BinanceSymbol,
		RequestTimeout: timeout,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	farsideClient := farside.NewClient(farside.ClientOptions{
		BaseURL:        cfg.FarsideBaseURL,
		RequestTimeout: timeout,
		RequestsPerSec: cfg.RequestsPerSec,
	})

	yahooClient := yahoo.NewClient(yahoo.ClientOptions{
		BaseURL:        cfg.YahooBaseURL,
		RequestTimeout: timeout,
		RequestsPerSec: cfg.RequestsPerSec,
	})

	fetcher := data.NewFetcher(coingeckoClient, binanceClient, farsideClient, yahooClient)
	cache := engine.NewHistoryCache(cfg.HistoryCacheSize)
	evaluator := engine.New(fetcher, fetcher, fetcher, cache)

	var store service.Store
	if cfg.DatabaseEnabled() {
		db, err := database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
		store = db
	} else {
		log.Warn().Msg("DB_HOST not set, evaluations will not be persisted")
	}

	var notifier service.Notifier
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram setup failed")
		}
		notifier = tg
	}

	metrics := observability.NewMetrics("bullbear")
	svc := service.New(evaluator, store, notifier, metrics)

	if db, ok := store.(*database.DB); ok {
		// Serve the last persisted state until the first refresh lands.
		if last, err := db.LatestResult(context.Background()); err != nil {
			log.Warn().Err(err).Msg("could not load last persisted state")
		} else {
			svc.Seed(last)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go svc.Run(ctx, time.Duration(cfg.RefreshIntervalMin)*time.Minute)

	srv := server.New(server.Config{Addr: cfg.HTTPAddr}, svc)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
