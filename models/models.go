package models

import (
	"time"
)

// TrendDirection is the structural trend read from price vs. the long moving average.
type TrendDirection string

const (
	TrendBullish TrendDirection = "BULLISH"
	TrendBearish TrendDirection = "BEARISH"
)

// FundingBehavior is the capital posture read from stablecoin dynamics.
type FundingBehavior string

const (
	FundingOffensive FundingBehavior = "OFFENSIVE"
	FundingDefensive FundingBehavior = "DEFENSIVE"
)

// MarketState is one of the four trend x funding quadrants.
type MarketState string

const (
	StateBullOffensive MarketState = "BULL_OFFENSIVE"
	StateBullDefensive MarketState = "BULL_DEFENSIVE"
	StateBearOffensive MarketState = "BEAR_OFFENSIVE"
	StateBearDefensive MarketState = "BEAR_DEFENSIVE"
)

// RiskLevel is the fixed risk label attached to a market state.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// MarketSnapshot holds the current scalar signals, built fresh for each evaluation.
// All values are USD.
type MarketSnapshot struct {
	BTCPrice            float64 `json:"btc_price"`
	MA50                float64 `json:"ma50"`
	MA200               float64 `json:"ma200"`
	TotalMarketCap      float64 `json:"total_market_cap"`
	StablecoinMarketCap float64 `json:"stablecoin_market_cap"`
}

// CapHistory holds paired market cap series, oldest first, one value per day.
type CapHistory struct {
	Total      []float64 `json:"total"`
	Stablecoin []float64 `json:"stablecoin"`
}

// EtfFlowRecord is one day of spot ETF net flow. NetFlow is negative on outflow days.
type EtfFlowRecord struct {
	Date    time.Time `json:"date"`
	NetFlow float64   `json:"net_flow"`
}

// EtfSnapshot holds the current ETF signals. A nil field means the upstream
// source could not supply the value.
type EtfSnapshot struct {
	NetFlow *float64 `json:"net_flow"`
	AUM     *float64 `json:"aum"`
}

// ValidationLayer bundles the risk thermometer and ETF accelerator readings
// that validate (but never override) the classified state.
type ValidationLayer struct {
	RiskThermometer  string   `json:"risk_thermometer"`
	ATHDrawdown      float64  `json:"ath_drawdown"`
	ATHPrice         *float64 `json:"ath_price"`
	EtfAccelerator   string   `json:"etf_accelerator"`
	EtfNetFlow       *float64 `json:"etf_net_flow"`
	EtfAUM           *float64 `json:"etf_aum"`
	EtfFlow14dSum    *float64 `json:"etf_flow_14d_sum"`
	EtfFlowPosRatio  *float64 `json:"etf_flow_pos_ratio"`
	EtfFlowRecentAvg *float64 `json:"etf_flow_recent_avg"`
	EtfFlowPrevAvg   *float64 `json:"etf_flow_prev_avg"`
	EtfFlowTrend     *string  `json:"etf_flow_trend"`
	EtfAUMTrend      *string  `json:"etf_aum_trend"`
}

// EvaluationResult is the immutable outcome of one evaluation. Metadata carries
// every intermediate numeric signal so downstream consumers can inspect which
// path produced the classification.
type EvaluationResult struct {
	State       MarketState        `json:"state"`
	Trend       TrendDirection     `json:"trend"`
	Funding     FundingBehavior    `json:"funding"`
	RiskLevel   RiskLevel          `json:"risk_level"`
	Confidence  float64            `json:"confidence"`
	Validation  ValidationLayer    `json:"validation"`
	Metadata    map[string]float64 `json:"metadata"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}
