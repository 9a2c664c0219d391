package data

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/bullbear/internal/engine"
	"github.com/Alias1177/bullbear/models"
)

// maWindowLong is the price window the snapshot's MA200 needs; the fetch
// covers it so the current moving averages are always computable from one
// kline call.
const maWindowLong = 200

// PriceClient supplies daily closing prices, oldest first.
type PriceClient interface {
	GetDailyCloses(ctx context.Context, limit int) ([]float64, error)
}

// MarketClient supplies the current cap and price scalars plus historical
// cap series.
type MarketClient interface {
	GetBTCPrice(ctx context.Context) (float64, error)
	GetTotalMarketCap(ctx context.Context) (float64, error)
	GetStablecoinMarketCap(ctx context.Context) (float64, error)
	GetMarketCapHistory(ctx context.Context, days int) (*models.CapHistory, error)
}

// EtfClient supplies the ETF flow table.
type EtfClient interface {
	GetFlowHistory(ctx context.Context, days int) ([]models.EtfFlowRecord, error)
	GetLatestFlow(ctx context.Context) (float64, error)
}

// AumClient supplies the combined assets of the spot ETF basket.
type AumClient interface {
	GetTotalAUM(ctx context.Context) (float64, error)
}

// Fetcher merges the provider clients into the engine's collaborator
// interfaces. A scalar the engine cannot evaluate without becomes a
// DataUnavailableError; everything else passes failures through for the
// engine to degrade on.
type Fetcher struct {
	market MarketClient
	prices PriceClient
	etf    EtfClient
	aum    AumClient
	logger zerolog.Logger
}

// NewFetcher creates a Fetcher over the given provider clients.
func NewFetcher(market MarketClient, prices PriceClient, etf EtfClient, aum AumClient) *Fetcher {
	return &Fetcher{
		market: market,
		prices: prices,
		etf:    etf,
		aum:    aum,
		logger: log.With().Str("component", "fetcher").Logger(),
	}
}

// Snapshot builds the current scalar snapshot. Any missing signal fails the
// whole snapshot with a DataUnavailableError naming it.
func (f *Fetcher) Snapshot(ctx context.Context) (models.MarketSnapshot, error) {
	var snap models.MarketSnapshot

	price, err := f.market.GetBTCPrice(ctx)
	if err != nil {
		return snap, &engine.DataUnavailableError{Signal: "btc_price", Err: err}
	}

	totalCap, err := f.market.GetTotalMarketCap(ctx)
	if err != nil {
		return snap, &engine.DataUnavailableError{Signal: "total_market_cap", Err: err}
	}

	stablecoinCap, err := f.market.GetStablecoinMarketCap(ctx)
	if err != nil {
		return snap, &engine.DataUnavailableError{Signal: "stablecoin_market_cap", Err: err}
	}

	closes, err := f.prices.GetDailyCloses(ctx, maWindowLong)
	if err != nil {
		return snap, &engine.DataUnavailableError{Signal: "ma200", Err: err}
	}
	ma50, err := trailingAverage(closes, 50)
	if err != nil {
		return snap, &engine.DataUnavailableError{Signal: "ma50", Err: err}
	}
	ma200, err := trailingAverage(closes, 200)
	if err != nil {
		return snap, &engine.DataUnavailableError{Signal: "ma200", Err: err}
	}

	snap = models.MarketSnapshot{
		BTCPrice:            price,
		MA50:                ma50,
		MA200:               ma200,
		TotalMarketCap:      totalCap,
		StablecoinMarketCap: stablecoinCap,
	}
	return snap, nil
}

// PriceHistory returns up to limit daily closes, oldest first.
func (f *Fetcher) PriceHistory(ctx context.Context, limit int) ([]float64, error) {
	return f.prices.GetDailyCloses(ctx, limit)
}

// CapHistory returns the external cap history, or an error when the source
// cannot deliver; the engine then falls back to its cache.
func (f *Fetcher) CapHistory(ctx context.Context, days int) (*models.CapHistory, error) {
	return f.market.GetMarketCapHistory(ctx, days)
}

// EtfSnapshot returns the current ETF signals. Both signals are optional: a
// missing net flow or AUM is not an error here, it surfaces as a nil field
// the accelerator maps to unknown/absent.
func (f *Fetcher) EtfSnapshot(ctx context.Context) (models.EtfSnapshot, error) {
	var snap models.EtfSnapshot

	flow, err := f.etf.GetLatestFlow(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Msg("ETF net flow unavailable")
	} else {
		snap.NetFlow = &flow
	}

	aum, err := f.aum.GetTotalAUM(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Msg("ETF AUM unavailable")
	} else {
		snap.AUM = &aum
	}
	return snap, nil
}

// EtfFlowHistory returns up to days of flow records, oldest first.
func (f *Fetcher) EtfFlowHistory(ctx context.Context, days int) ([]models.EtfFlowRecord, error) {
	return f.etf.GetFlowHistory(ctx, days)
}

func trailingAverage(values []float64, window int) (float64, error) {
	if len(values) < window {
		return 0, fmt.Errorf("need %d values, have %d", window, len(values))
	}
	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window), nil
}
