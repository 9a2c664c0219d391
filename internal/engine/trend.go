package engine

import (
	"github.com/Alias1177/bullbear/models"
)

// minSlopeHistory is the minimum number of moving-average points needed before
// a slope is trusted; with less history the slope stays 0.0 and the classifier
// treats the average as flat.
const minSlopeHistory = 10

// TrendResult carries the classified direction plus the moving-average slopes
// the confidence scorer consumes downstream.
type TrendResult struct {
	Direction  models.TrendDirection
	MA50Slope  float64
	MA200Slope float64
}

// ClassifyTrend reads the structural trend from the current price against
// MA200 and the direction MA200 itself is moving. Price above a flat-or-rising
// MA200 is a bullish arrangement, price below a falling MA200 a bearish one.
// When price and slope disagree the price side of MA200 wins as the degraded
// signal. The function always resolves; there is no error path.
func ClassifyTrend(price, ma200 float64, ma50History, ma200History []float64) TrendResult {
	var ma50Slope, ma200Slope float64
	if len(ma50History) >= minSlopeHistory {
		ma50Slope = CalculateSlope(ma50History, DefaultSlopePeriods)
	}
	if len(ma200History) >= minSlopeHistory {
		ma200Slope = CalculateSlope(ma200History, DefaultSlopePeriods)
	}

	res := TrendResult{MA50Slope: ma50Slope, MA200Slope: ma200Slope}

	switch {
	case price > ma200 && ma200Slope >= 0:
		res.Direction = models.TrendBullish
	case price < ma200 && ma200Slope < 0:
		res.Direction = models.TrendBearish
	case price > ma200:
		// Weaker bull arrangement: above MA200 but the average is declining.
		res.Direction = models.TrendBullish
	default:
		// At or below MA200 with a non-declining average.
		res.Direction = models.TrendBearish
	}
	return res
}
