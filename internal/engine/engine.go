package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/bullbear/models"
)

const (
	// priceHistoryLimit covers 200 days for the first MA200 value plus the
	// slope window on top.
	priceHistoryLimit = 220

	// capHistoryDays and etfHistoryDays bound the auxiliary histories to one
	// month.
	capHistoryDays = 30
	etfHistoryDays = 30

	// minDisplaySlopeHistory is the external-history length needed before the
	// metadata cap slopes are computed from it rather than the cache.
	minDisplaySlopeHistory = 10
)

// DataUnavailableError reports that a required current scalar signal could
// not be obtained. It is fatal to an evaluation; no regime is produced.
type DataUnavailableError struct {
	Signal string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("signal %s unavailable: %v", e.Signal, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// SnapshotProvider supplies the current scalar signals. A failure to produce
// any of them must surface as a *DataUnavailableError naming the signal.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (models.MarketSnapshot, error)
}

// HistoryProvider supplies historical series. Both calls may fail or return
// empty data; the evaluation degrades instead of aborting.
type HistoryProvider interface {
	PriceHistory(ctx context.Context, limit int) ([]float64, error)
	CapHistory(ctx context.Context, days int) (*models.CapHistory, error)
}

// EtfProvider supplies the optional ETF signals. Failures surface as an
// unknown accelerator status, never as an evaluation error.
type EtfProvider interface {
	EtfSnapshot(ctx context.Context) (models.EtfSnapshot, error)
	EtfFlowHistory(ctx context.Context, days int) ([]models.EtfFlowRecord, error)
}

// Evaluator orchestrates the sub-classifiers into one evaluation call. It is
// stateless per call except for the injected rolling cap cache; Evaluate may
// be invoked concurrently.
type Evaluator struct {
	snapshots SnapshotProvider
	history   HistoryProvider
	etf       EtfProvider
	cache     *HistoryCache
	logger    zerolog.Logger
}

// New creates an Evaluator. A nil cache gets a fresh one with the default
// capacity; pass a shared cache to keep the fallback window alive across
// evaluator instances.
func New(snapshots SnapshotProvider, history HistoryProvider, etf EtfProvider, cache *HistoryCache) *Evaluator {
	if cache == nil {
		cache = NewHistoryCache(DefaultHistoryCapacity)
	}
	return &Evaluator{
		snapshots: snapshots,
		history:   history,
		etf:       etf,
		cache:     cache,
		logger:    log.With().Str("component", "engine").Logger(),
	}
}

// Cache exposes the rolling cap cache backing the fallback paths.
func (e *Evaluator) Cache() *HistoryCache {
	return e.cache
}

// Evaluate classifies the current market regime. It fails only when a
// required scalar signal is unavailable; every historical input has a defined
// degraded path.
func (e *Evaluator) Evaluate(ctx context.Context) (*models.EvaluationResult, error) {
	snap, err := e.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	priceHistory, err := e.history.PriceHistory(ctx, priceHistoryLimit)
	if err != nil {
		e.logger.Warn().Err(err).Msg("price history unavailable, trend slopes degrade to flat")
		priceHistory = nil
	}
	ma50History := movingAverageSeries(priceHistory, 50)
	ma200History := movingAverageSeries(priceHistory, 200)

	capHistory, err := e.history.CapHistory(ctx, capHistoryDays)
	if err != nil {
		e.logger.Warn().Err(err).Msg("cap history unavailable, funding falls back to cache")
		capHistory = nil
	}

	e.cache.Append(snap.StablecoinMarketCap, snap.TotalMarketCap)
	cacheStablecoin, cacheTotal := e.cache.Snapshot()

	trend := ClassifyTrend(snap.BTCPrice, snap.MA200, ma50History, ma200History)
	funding := ClassifyFunding(snap.StablecoinMarketCap, snap.TotalMarketCap, capHistory, cacheStablecoin, cacheTotal)
	state, riskLevel := MapState(trend.Direction, funding.Behavior)
	risk := AssessRisk(snap.BTCPrice, priceHistory)
	etf := e.assessEtf(ctx)
	confidence := ConfidenceScore(snap.MA50, snap.MA200, trend.MA50Slope, trend.MA200Slope, funding.RatioChange)

	stablecoinSlope, totalSlope := e.displayCapSlopes(funding, capHistory, cacheStablecoin, cacheTotal)

	var stablecoinRatio float64
	if snap.TotalMarketCap > 0 {
		stablecoinRatio = snap.StablecoinMarketCap / snap.TotalMarketCap * 100
	}

	validation := models.ValidationLayer{
		RiskThermometer:  risk.Level,
		ATHDrawdown:      risk.Drawdown,
		EtfAccelerator:   string(etf.Status),
		EtfNetFlow:       etf.NetFlow,
		EtfAUM:           etf.AUM,
		EtfFlow14dSum:    etf.Flow14dSum,
		EtfFlowPosRatio:  etf.FlowPosRatio,
		EtfFlowRecentAvg: etf.FlowRecentAvg,
		EtfFlowPrevAvg:   etf.FlowPrevAvg,
		EtfFlowTrend:     etf.FlowTrend,
	}
	if risk.ATH > 0 {
		validation.ATHPrice = floatPtr(risk.ATH)
	}

	res := &models.EvaluationResult{
		State:      state,
		Trend:      trend.Direction,
		Funding:    funding.Behavior,
		RiskLevel:  riskLevel,
		Confidence: confidence,
		Validation: validation,
		Metadata: map[string]float64{
			"btc_price":               snap.BTCPrice,
			"ma50":                    snap.MA50,
			"ma200":                   snap.MA200,
			"ma50_slope":              trend.MA50Slope,
			"ma200_slope":             trend.MA200Slope,
			"total_market_cap":        snap.TotalMarketCap,
			"stablecoin_market_cap":   snap.StablecoinMarketCap,
			"stablecoin_ratio":        stablecoinRatio,
			"stablecoin_change":       funding.StablecoinChange,
			"stablecoin_ratio_change": funding.RatioChange,
			"stablecoin_slope":        stablecoinSlope,
			"total_slope":             totalSlope,
			"ath_drawdown":            risk.Drawdown,
		},
		EvaluatedAt: time.Now().UTC(),
	}

	e.logger.Info().
		Str("state", string(state)).
		Str("trend", string(trend.Direction)).
		Str("funding", string(funding.Behavior)).
		Str("funding_source", string(funding.Source)).
		Str("etf_source", string(etf.Source)).
		Float64("confidence", confidence).
		Float64("ath_drawdown", risk.Drawdown).
		Msg("market state evaluated")

	return res, nil
}

// assessEtf resolves the optional ETF signals, mapping any upstream failure
// to an unavailable assessment instead of an evaluation error.
func (e *Evaluator) assessEtf(ctx context.Context) EtfAssessment {
	snap, err := e.etf.EtfSnapshot(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("etf snapshot unavailable")
		return EtfAssessment{Status: EtfUnknown, Source: EtfSourceUnavailable}
	}

	history, err := e.etf.EtfFlowHistory(ctx, etfHistoryDays)
	if err != nil {
		e.logger.Warn().Err(err).Msg("etf flow history unavailable, judging current flow only")
		history = nil
	}
	return AssessEtfFlows(snap, history)
}

// displayCapSlopes computes the cap slopes surfaced in result metadata. The
// external history wins when it carries enough points, the cache fills in
// otherwise, and the funding classifier's slopes are reused when it already
// ran on history.
func (e *Evaluator) displayCapSlopes(funding FundingResult, external *models.CapHistory, cacheStablecoin, cacheTotal []float64) (stablecoinSlope, totalSlope float64) {
	if funding.Source == FundingSourceHistory {
		return funding.StablecoinSlope, funding.TotalSlope
	}
	if external != nil {
		if len(external.Stablecoin) >= minDisplaySlopeHistory {
			stablecoinSlope = CalculateSlope(external.Stablecoin, min(DefaultSlopePeriods, len(external.Stablecoin)))
		}
		if len(external.Total) >= minDisplaySlopeHistory {
			totalSlope = CalculateSlope(external.Total, min(DefaultSlopePeriods, len(external.Total)))
		}
	}
	if stablecoinSlope == 0.0 && len(cacheStablecoin) >= minFundingHistory {
		stablecoinSlope = CalculateSlope(cacheStablecoin, min(DefaultSlopePeriods, len(cacheStablecoin)))
	}
	if totalSlope == 0.0 && len(cacheTotal) >= minFundingHistory {
		totalSlope = CalculateSlope(cacheTotal, min(DefaultSlopePeriods, len(cacheTotal)))
	}
	return stablecoinSlope, totalSlope
}

// movingAverageSeries computes the simple moving average of prices over
// window, one value per day once the window is full. Returns nil when the
// series is too short.
func movingAverageSeries(prices []float64, window int) []float64 {
	if window <= 0 || len(prices) < window {
		return nil
	}
	out := make([]float64, 0, len(prices)-window+1)
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}
