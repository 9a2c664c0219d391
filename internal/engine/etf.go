package engine

import (
	"math"

	"github.com/Alias1177/bullbear/models"
)

// EtfStatus labels the ETF flow regime.
type EtfStatus string

const (
	EtfTailwind EtfStatus = "tailwind"
	EtfHeadwind EtfStatus = "headwind"
	EtfNeutral  EtfStatus = "neutral"
	EtfUnknown  EtfStatus = "unknown"
)

// EtfSource tells which path produced the ETF assessment.
type EtfSource string

const (
	// EtfSourceHistory means the full flow-history heuristics ran.
	EtfSourceHistory EtfSource = "history"
	// EtfSourceSingleDay means history was too short and only today's flow
	// was inspected.
	EtfSourceSingleDay EtfSource = "single-day"
	// EtfSourceUnavailable means the upstream could not supply a net flow.
	EtfSourceUnavailable EtfSource = "unavailable"
)

const (
	// etfNeutralBand is the absolute daily flow (USD) below which a flow is
	// considered noise rather than direction.
	etfNeutralBand = 10_000_000.0

	// etfMinHistory is the minimum number of history days before the
	// consistency heuristics run at all.
	etfMinHistory = 7

	// etfMinConsistentDays and etfConsistencyRatio define a sustained run:
	// at least two weeks of same-sign days covering 70% of the window.
	etfMinConsistentDays = 14
	etfConsistencyRatio  = 0.70

	// etfFlowTrendFlatBand is the recent-vs-previous weekly average gap (USD)
	// under which the flow trend reads flat.
	etfFlowTrendFlatBand = 1_000_000.0
)

// EtfAssessment is the accelerator output. Statistics fields are nil whenever
// the path that produced the assessment did not compute them.
type EtfAssessment struct {
	Status  EtfStatus
	Source  EtfSource
	NetFlow *float64
	AUM     *float64

	Flow14dSum    *float64
	FlowPosRatio  *float64
	FlowRecentAvg *float64
	FlowPrevAvg   *float64
	FlowTrend     *string
}

// AssessEtfFlows classifies the multi-week ETF net-flow picture into tailwind,
// headwind or neutral. Resolution order: no current flow at all means unknown;
// under a week of history falls back to judging today's flow alone; otherwise
// sustained same-sign runs win, then a detected outflow deceleration, then a
// near-zero mean, and finally today's sign breaks the tie. Every failure mode
// is an explicit branch; the assessment never aborts an evaluation.
func AssessEtfFlows(snap models.EtfSnapshot, history []models.EtfFlowRecord) EtfAssessment {
	if snap.NetFlow == nil {
		return EtfAssessment{Status: EtfUnknown, Source: EtfSourceUnavailable, AUM: snap.AUM}
	}
	netFlow := *snap.NetFlow

	res := EtfAssessment{NetFlow: snap.NetFlow, AUM: snap.AUM}

	if len(history) < etfMinHistory {
		res.Source = EtfSourceSingleDay
		switch {
		case math.Abs(netFlow) < etfNeutralBand:
			res.Status = EtfNeutral
		case netFlow > 0:
			res.Status = EtfTailwind
		default:
			res.Status = EtfHeadwind
		}
		return res
	}

	res.Source = EtfSourceHistory

	flows := make([]float64, len(history))
	for i, rec := range history {
		flows[i] = rec.NetFlow
	}

	total := len(flows)
	var positive, negative int
	var sum float64
	for _, f := range flows {
		if f > 0 {
			positive++
		} else if f < 0 {
			negative++
		}
		sum += f
	}
	mean := sum / float64(total)

	res.fillFlowStats(flows, positive)

	last7 := flows[total-7:]
	var last7Sum float64
	allPos, allNeg := true, true
	for _, f := range last7 {
		last7Sum += f
		if f <= 0 {
			allPos = false
		}
		if f >= 0 {
			allNeg = false
		}
	}

	posRatio := float64(positive) / float64(total)
	negRatio := float64(negative) / float64(total)

	if positive >= etfMinConsistentDays && posRatio >= etfConsistencyRatio && (allPos || last7Sum > 0) {
		res.Status = EtfTailwind
		return res
	}
	if negative >= etfMinConsistentDays && negRatio >= etfConsistencyRatio && (allNeg || last7Sum < 0) {
		res.Status = EtfHeadwind
		return res
	}

	// Outflow deceleration: the first half was net-negative and the second
	// half recovered to less than half its magnitude.
	if total >= 14 {
		half := total / 2
		firstAvg := average(flows[:half])
		secondAvg := average(flows[half:])
		if firstAvg < 0 && secondAvg > firstAvg && math.Abs(secondAvg) < math.Abs(firstAvg)*0.5 {
			res.Status = EtfNeutral
			return res
		}
	}

	if math.Abs(mean) < etfNeutralBand {
		res.Status = EtfNeutral
		return res
	}

	// Mixed signals: let today's flow break the tie.
	if netFlow > 0 {
		res.Status = EtfTailwind
	} else {
		res.Status = EtfHeadwind
	}
	return res
}

// fillFlowStats populates the validation-layer statistics computed over the
// full window: last-two-weeks sum, positive-day share and the recent versus
// previous weekly averages with their direction.
func (a *EtfAssessment) fillFlowStats(flows []float64, positive int) {
	total := len(flows)

	window := 14
	if total < window {
		window = total
	}
	var recentSum float64
	for _, f := range flows[total-window:] {
		recentSum += f
	}
	a.Flow14dSum = floatPtr(recentSum)

	a.FlowPosRatio = floatPtr(float64(positive) / float64(total))

	recentAvg := average(flows[total-7:])
	a.FlowRecentAvg = floatPtr(recentAvg)

	if total >= 14 {
		prevAvg := average(flows[total-14 : total-7])
		a.FlowPrevAvg = floatPtr(prevAvg)

		trend := "flat"
		switch {
		case recentAvg-prevAvg > etfFlowTrendFlatBand:
			trend = "up"
		case prevAvg-recentAvg > etfFlowTrendFlatBand:
			trend = "down"
		}
		a.FlowTrend = &trend
	}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func floatPtr(v float64) *float64 {
	return &v
}
