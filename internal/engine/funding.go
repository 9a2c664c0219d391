package engine

import (
	"github.com/Alias1177/bullbear/models"
)

const (
	// minFundingHistory is how many daily cap points a source must carry
	// before its slopes are trusted for funding classification.
	minFundingHistory = 7

	// fundingRatioThreshold is the stablecoin share of total cap (percent)
	// separating offensive from defensive posture in the ratio fallback.
	fundingRatioThreshold = 8.0
)

// FundingSource tells which path produced a funding classification.
type FundingSource string

const (
	// FundingSourceHistory means cap-series slopes decided the posture.
	FundingSourceHistory FundingSource = "history"
	// FundingSourceRatio means neither history source had signal and the
	// stablecoin ratio threshold decided instead.
	FundingSourceRatio FundingSource = "ratio"
)

// FundingResult carries the classified posture, the path that produced it and
// the change figures the confidence scorer and result metadata consume.
type FundingResult struct {
	Behavior        models.FundingBehavior
	Source          FundingSource
	StablecoinSlope float64
	TotalSlope      float64

	// StablecoinChange is the absolute cap change versus the oldest point of
	// the history that was used, 0.0 in the ratio fallback.
	StablecoinChange float64
	// RatioChange is the stablecoin-ratio change versus that same oldest
	// point; in the ratio fallback it is the distance of the current ratio
	// from the threshold, which keeps the funding signal strength visible to
	// the confidence scorer.
	RatioChange float64
}

// ClassifyFunding determines the capital posture from the relative growth of
// stablecoin versus total market capitalization. External history wins when it
// has at least minFundingHistory points and carries slope signal; an absent or
// flat external series falls through to the in-process cache; when both slopes
// still come out exactly 0.0 the stablecoin ratio against a fixed threshold
// decides. A growing total cap means capital is attacking risk assets
// regardless of what stablecoins do; a shrinking one means capital is
// defending.
func ClassifyFunding(stablecoinCap, totalCap float64, external *models.CapHistory, cacheStablecoin, cacheTotal []float64) FundingResult {
	var ratio float64
	if totalCap > 0 {
		ratio = stablecoinCap / totalCap * 100
	}

	var stableHist, totalHist []float64
	var stableSlope, totalSlope float64
	if external != nil && len(external.Stablecoin) >= minFundingHistory && len(external.Total) >= minFundingHistory {
		stableHist, totalHist = external.Stablecoin, external.Total
		stableSlope = CalculateSlope(stableHist, min(DefaultSlopePeriods, len(stableHist)))
		totalSlope = CalculateSlope(totalHist, min(DefaultSlopePeriods, len(totalHist)))
	}

	// An absent or flat external series still leaves the cache a chance to
	// carry the signal before the ratio threshold decides.
	if stableSlope == 0.0 && totalSlope == 0.0 &&
		len(cacheStablecoin) >= minFundingHistory && len(cacheTotal) >= minFundingHistory {
		stableHist, totalHist = cacheStablecoin, cacheTotal
		stableSlope = CalculateSlope(stableHist, min(DefaultSlopePeriods, len(stableHist)))
		totalSlope = CalculateSlope(totalHist, min(DefaultSlopePeriods, len(totalHist)))
	}

	if stableSlope == 0.0 && totalSlope == 0.0 {
		res := FundingResult{
			Source:      FundingSourceRatio,
			RatioChange: ratio - fundingRatioThreshold,
		}
		if ratio < fundingRatioThreshold {
			res.Behavior = models.FundingOffensive
		} else {
			res.Behavior = models.FundingDefensive
		}
		return res
	}

	res := FundingResult{
		Source:          FundingSourceHistory,
		StablecoinSlope: stableSlope,
		TotalSlope:      totalSlope,
	}

	// Four-quadrant read of the slope signs. Total cap direction carries the
	// posture; the stablecoin side only shades how aggressive it is.
	switch {
	case stableSlope > 0 && totalSlope > 0:
		res.Behavior = models.FundingOffensive // fresh capital entering
	case stableSlope <= 0 && totalSlope > 0:
		res.Behavior = models.FundingOffensive // stables rotating into risk
	case stableSlope > 0:
		res.Behavior = models.FundingDefensive // de-risking into stables
	default:
		res.Behavior = models.FundingDefensive // outright retreat
	}

	firstStable := stableHist[0]
	firstRatio := ratio
	if len(totalHist) > 0 && totalHist[0] > 0 {
		firstRatio = firstStable / totalHist[0] * 100
	}
	res.StablecoinChange = stablecoinCap - firstStable
	res.RatioChange = ratio - firstRatio
	return res
}
