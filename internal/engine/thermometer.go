package engine

// Risk thermometer buckets for the ATH drawdown.
const (
	ThermometerNormal   = "normal"
	ThermometerMild     = "mild fever"
	ThermometerHigh     = "high fever"
	ThermometerCritical = "critical"
)

// RiskAssessment is the thermometer reading: how far price sits below the
// all-time high and how severe that is.
type RiskAssessment struct {
	Drawdown float64 // percent below ATH, never negative
	Level    string
	ATH      float64
}

// AssessRisk buckets the drawdown from the all-time high observed across the
// available price history plus the current price. With no history the current
// price is its own ATH and the drawdown is zero.
func AssessRisk(price float64, priceHistory []float64) RiskAssessment {
	ath := price
	for _, p := range priceHistory {
		if p > ath {
			ath = p
		}
	}
	if ath == 0 {
		return RiskAssessment{Level: ThermometerNormal}
	}

	drawdown := (ath - price) / ath * 100
	if drawdown <= 0 {
		// New ATH territory.
		return RiskAssessment{Level: ThermometerNormal, ATH: ath}
	}

	res := RiskAssessment{Drawdown: drawdown, ATH: ath}
	switch {
	case drawdown < 20:
		res.Level = ThermometerNormal
	case drawdown < 35:
		res.Level = ThermometerMild
	case drawdown < 60:
		res.Level = ThermometerHigh
	default:
		res.Level = ThermometerCritical
	}
	return res
}
