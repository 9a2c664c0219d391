package engine

import (
	"math"
)

// DefaultSlopePeriods is the regression window used when the caller does not
// pick one.
const DefaultSlopePeriods = 10

// CalculateSlope estimates the daily percentage growth rate of a series by
// fitting an ordinary least-squares line to the natural log of the last
// periods values. A positive result means the series grows, e.g. 0.1 means
// roughly +0.1% per day.
//
// The series must be ordered oldest to newest. Non-positive values are
// dropped before the fit because their logarithm is undefined. Whenever a
// meaningful fit is impossible (series shorter than periods, fewer than two
// usable values, zero index variance, numeric overflow) the function returns
// exactly 0.0.
func CalculateSlope(values []float64, periods int) float64 {
	if periods <= 0 {
		periods = DefaultSlopePeriods
	}
	if len(values) < periods {
		return 0.0
	}

	recent := values[len(values)-periods:]

	valid := make([]float64, 0, len(recent))
	for _, v := range recent {
		if v > 0 {
			valid = append(valid, v)
		}
	}
	if len(valid) < 2 {
		return 0.0
	}

	logs := make([]float64, len(valid))
	for i, v := range valid {
		l := math.Log(v)
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return 0.0
		}
		logs[i] = l
	}

	n := float64(len(logs))
	xMean := (n - 1) / 2
	var yMean float64
	for _, l := range logs {
		yMean += l
	}
	yMean /= n

	var num, den float64
	for i, l := range logs {
		dx := float64(i) - xMean
		num += dx * (l - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0.0
	}

	slope := num / den * 100
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0.0
	}
	return slope
}
