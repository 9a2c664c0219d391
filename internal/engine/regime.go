package engine

import (
	"github.com/Alias1177/bullbear/models"
)

// MapState resolves the (trend, funding) pair to one of the four market
// states and its fixed risk label. Total function: every input pair maps to
// exactly one state.
func MapState(trend models.TrendDirection, funding models.FundingBehavior) (models.MarketState, models.RiskLevel) {
	switch {
	case trend == models.TrendBullish && funding == models.FundingOffensive:
		return models.StateBullOffensive, models.RiskHigh
	case trend == models.TrendBullish:
		return models.StateBullDefensive, models.RiskMedium
	case funding == models.FundingOffensive:
		return models.StateBearOffensive, models.RiskMedium
	default:
		return models.StateBearDefensive, models.RiskLow
	}
}
