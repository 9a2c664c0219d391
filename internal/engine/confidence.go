package engine

import (
	"math"
)

// slopeFullConfidence is the average MA slope (percent per day) treated as
// maximum slope conviction; around 0.5%/day a trend is unambiguous.
const slopeFullConfidence = 0.5

// ConfidenceScore combines trend clarity with funding signal strength into a
// single score in [0, 1]. Trend clarity is the MA50/MA200 separation plus how
// steep both averages move; funding strength is the stablecoin-ratio change
// normalized to the posture threshold. The score never fails and is always
// clamped to [0, 1].
func ConfidenceScore(ma50, ma200, ma50Slope, ma200Slope, stablecoinRatioChange float64) float64 {
	var clarity float64
	if ma200 > 0 {
		clarity = math.Abs(ma50-ma200) / ma200
	}

	slopeStrength := (math.Abs(ma50Slope) + math.Abs(ma200Slope)) / 2
	slopeConfidence := math.Min(1.0, slopeStrength/slopeFullConfidence)

	trendConfidence := math.Min(1.0, clarity*5+slopeConfidence*0.5)
	fundingConfidence := math.Min(1.0, math.Abs(stablecoinRatioChange)/fundingRatioThreshold)

	return math.Min(1.0, (trendConfidence+fundingConfidence)/2)
}
