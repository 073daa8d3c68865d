package consensus

import "github.com/drakos74/coin-ensemble/internal/model"

const (
	highVolatility = 2.0
	lowVolatility  = 0.7
	trendStrength  = 40.0
	neutralMood    = 0.5
)

// Classify returns the market regime of the context.
// A missing volatility ratio is never classified as low volatility.
func Classify(mc model.MarketContext) model.Regime {
	vr := mc.Indicators.VolatilityRatio
	switch {
	case vr > highVolatility:
		return model.HighVolatility
	case mc.Indicators.ADX > trendStrength && mc.Sentiment.Score > neutralMood:
		return model.BullTrend
	case mc.Indicators.ADX > trendStrength && mc.Sentiment.Score < neutralMood:
		return model.BearTrend
	case vr > 0 && vr < lowVolatility:
		return model.LowVolatility
	}
	return model.Neutral
}

// volatilityMultiplier scales the position size with the volatility of the regime.
func volatilityMultiplier(r model.Regime) float64 {
	switch r {
	case model.HighVolatility:
		return 0.7
	case model.LowVolatility:
		return 1.2
	}
	return 1.0
}

// returnMultiplier scales the position size with the expected return of the regime.
func returnMultiplier(r model.Regime) float64 {
	switch r {
	case model.BullTrend:
		return 1.2
	case model.HighVolatility:
		return 0.8
	}
	return 1.0
}
