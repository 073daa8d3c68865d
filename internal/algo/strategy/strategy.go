package strategy

import (
	"errors"
	"fmt"

	"github.com/drakos74/coin-ensemble/internal/algo/arbitrage"
	"github.com/drakos74/coin-ensemble/internal/api"
	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

// defaultATRRatio is the fraction of the price used when no ATR is available.
const defaultATRRatio = 0.01

var (
	// ErrNoStrategies is returned when the enabled set is empty.
	ErrNoStrategies = errors.New("no strategies enabled")
	// ErrUnknownStrategy is returned for an id that is not part of the ensemble.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

type factory func(pairs []arbitrage.Config) api.Strategy

var factories = map[model.StrategyID]factory{
	model.MomentumBreakthrough: func(_ []arbitrage.Config) api.Strategy { return Momentum{} },
	model.MeanReversion:        func(_ []arbitrage.Config) api.Strategy { return Reversion{} },
	model.TrendFollowing:       func(_ []arbitrage.Config) api.Strategy { return Trend{} },
	model.VolatilityBreakout:   func(_ []arbitrage.Config) api.Strategy { return Breakout{} },
	model.WhaleTracking:        func(_ []arbitrage.Config) api.Strategy { return Whale{} },
	model.SentimentMomentum:    func(_ []arbitrage.Config) api.Strategy { return Sentiment{} },
	model.PatternRecognition:   func(_ []arbitrage.Config) api.Strategy { return Pattern{} },
	model.StatisticalArbitrage: func(pairs []arbitrage.Config) api.Strategy {
		return arbitrage.NewStrategy(pairs...)
	},
}

// Build creates the enabled strategies in their canonical order.
// Duplicate ids are ignored.
func Build(ids []model.StrategyID, pairs []arbitrage.Config) ([]api.Strategy, error) {
	enabled := make(map[model.StrategyID]bool, len(ids))
	for _, id := range ids {
		if !id.Known() {
			return nil, fmt.Errorf("'%s': %w", id, ErrUnknownStrategy)
		}
		enabled[id] = true
	}
	if len(enabled) == 0 {
		return nil, ErrNoStrategies
	}
	strategies := make([]api.Strategy, 0, len(enabled))
	for _, id := range model.Strategies {
		if enabled[id] {
			strategies = append(strategies, factories[id](pairs))
		}
	}
	return strategies, nil
}

func newSignal(id model.StrategyID, mc model.MarketContext, action model.Action, confidence, strength float64) model.Signal {
	return model.Signal{
		Strategy:   id,
		Action:     action,
		Confidence: coinmath.Unit(confidence),
		Strength:   coinmath.Unit(strength),
		Priority:   1,
		Time:       mc.Time,
	}
}

func atr(mc model.MarketContext) float64 {
	if mc.Indicators.ATR > 0 {
		return mc.Indicators.ATR
	}
	return mc.Price * defaultATRRatio
}
