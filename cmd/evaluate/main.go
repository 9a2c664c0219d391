package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/bullbear/config"
	"github.com/Alias1177/bullbear/internal/api/binance"
	"github.com/Alias1177/bullbear/internal/api/coingecko"
	"github.com/Alias1177/bullbear/internal/api/farside"
	"github.com/Alias1177/bullbear/internal/api/yahoo"
	"github.com/Alias1177/bullbear/internal/data"
	"github.com/Alias1177/bullbear/internal/engine"
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
	evaluator := engine.New(fetcher, fetcher, fetcher, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	res, err := evaluator.Evaluate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("evaluation failed")
		os.Exit(1)
	}

	fmt.Printf("Market state: %s (%s risk)\n", res.State, res.RiskLevel)
	fmt.Printf("Trend: %s | Funding: %s\n", res.Trend, res.Funding)
	fmt.Printf("Confidence: %.0f%%\n", res.Confidence*100)
	fmt.Printf("ATH drawdown: %.1f%% (%s)\n", res.Validation.ATHDrawdown, res.Validation.RiskThermometer)
	fmt.Printf("ETF flows: %s", res.Validation.EtfAccelerator)
	if res.Validation.EtfNetFlow != nil {
		fmt.Printf(" (today: $%.0fM)", *res.Validation.EtfNetFlow/1_000_000)
	}
	fmt.Println()
	if res.Validation.EtfAUM != nil {
		fmt.Printf("ETF AUM: $%.1fB\n", *res.Validation.EtfAUM/1_000_000_000)
	}

	fmt.Println("\nSignals:")
	for _, key := range []string{
		"btc_price", "ma50", "ma200", "ma50_slope", "ma200_slope",
		"total_market_cap", "stablecoin_market_cap", "stablecoin_ratio",
		"stablecoin_slope", "total_slope",
	} {
		fmt.Printf("- %s: %.4f\n", key, res.Metadata[key])
	}
}
