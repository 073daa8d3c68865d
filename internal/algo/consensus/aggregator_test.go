package consensus

import (
	"testing"
	"time"

	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signal(id model.StrategyID, action model.Action, confidence, target, stop float64) model.Signal {
	return model.Signal{
		Strategy:   id,
		Action:     action,
		Confidence: confidence,
		Strength:   0.5,
		Target:     target,
		Stop:       stop,
		Rationale:  string(id),
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	weights, err := NewWeights(
		[]model.StrategyID{model.MomentumBreakthrough, model.WhaleTracking, model.SentimentMomentum, model.StatisticalArbitrage},
		map[model.StrategyID]float64{
			model.MomentumBreakthrough: 0.5,
			model.WhaleTracking:        0.2,
			model.SentimentMomentum:    0.2,
			model.StatisticalArbitrage: 0.1,
		})
	require.NoError(t, err)

	mc := model.MarketContext{
		Symbol: model.BTC,
		Time:   time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Price:  100,
	}

	type test struct {
		signals      []model.Signal
		regime       model.Regime
		action       model.Action
		confidence   float64
		consensus    float64
		urgency      model.Urgency
		size         float64
		target       float64
		stop         float64
		stopDistance float64
		strategies   []model.StrategyID
	}

	tests := map[string]test{
		"buy-consensus": {
			signals: []model.Signal{
				signal(model.MomentumBreakthrough, model.Buy, 1.0, 110, 95),
				signal(model.SentimentMomentum, model.Sell, 0.5, 0, 0),
			},
			action:       model.Buy,
			confidence:   0.5,
			consensus:    0.5 / 0.6,
			urgency:      model.High,
			size:         0.1,
			target:       110,
			stop:         95,
			stopDistance: 0.05,
			strategies:   []model.StrategyID{model.MomentumBreakthrough},
		},
		"sell-high-volatility": {
			signals: []model.Signal{
				signal(model.MomentumBreakthrough, model.Sell, 0.8, 90, 105),
				signal(model.WhaleTracking, model.Sell, 0.8, 0, 0),
				signal(model.StatisticalArbitrage, model.Hold, 0.9, 0, 0),
			},
			regime:       model.HighVolatility,
			action:       model.Sell,
			confidence:   0.56,
			consensus:    1,
			urgency:      model.High,
			size:         0.1 * 0.7 * 0.8,
			target:       90,
			stop:         105,
			stopDistance: 0.05,
			strategies:   []model.StrategyID{model.MomentumBreakthrough, model.WhaleTracking},
		},
		"weighted-levels": {
			signals: []model.Signal{
				signal(model.MomentumBreakthrough, model.Buy, 0.9, 110, 96),
				signal(model.WhaleTracking, model.Buy, 0.6, 120, 0),
				signal(model.SentimentMomentum, model.Sell, 0.4, 80, 104),
			},
			regime:       model.BullTrend,
			action:       model.Buy,
			confidence:   0.57,
			consensus:    0.57 / 0.65,
			urgency:      model.High,
			size:         0.1 * 1.2,
			target:       114,
			stop:         96,
			stopDistance: 0.04,
			strategies:   []model.StrategyID{model.MomentumBreakthrough, model.WhaleTracking},
		},
		"small-low-volatility": {
			signals: []model.Signal{
				signal(model.WhaleTracking, model.Buy, 0.31, 0, 0),
				signal(model.SentimentMomentum, model.Buy, 0.31, 0, 0),
			},
			regime:     model.LowVolatility,
			action:     model.Buy,
			confidence: 0.124,
			consensus:  1,
			urgency:    model.High,
			size:       0.124 * 0.8 * 1.2,
			strategies: []model.StrategyID{model.WhaleTracking, model.SentimentMomentum},
		},
		"no-consensus": {
			signals: []model.Signal{
				signal(model.MomentumBreakthrough, model.Buy, 0.6, 110, 95),
				signal(model.WhaleTracking, model.Sell, 1.0, 90, 105),
			},
			action:     model.Hold,
			consensus:  0.6,
			strategies: []model.StrategyID{model.MomentumBreakthrough, model.WhaleTracking},
		},
		"single-strategy": {
			signals: []model.Signal{
				signal(model.MomentumBreakthrough, model.Buy, 0.9, 110, 95),
				signal(model.WhaleTracking, model.Buy, 0.3, 110, 95),
			},
			action:     model.Hold,
			strategies: []model.StrategyID{model.MomentumBreakthrough},
		},
		"no-signals": {
			action:     model.Hold,
			strategies: []model.StrategyID{},
		},
	}

	aggregator := NewAggregator(DefaultConfig())
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			decision := aggregator.Aggregate(mc, tt.signals, weights, tt.regime)
			assert.Equal(t, tt.action, decision.Action)
			assert.InDelta(t, tt.confidence, decision.Confidence, 1e-9)
			assert.InDelta(t, tt.consensus, decision.Consensus, 1e-9)
			assert.Equal(t, tt.urgency, decision.Urgency)
			assert.InDelta(t, tt.size, decision.Size, 1e-9)
			assert.InDelta(t, tt.target, decision.Target, 1e-9)
			assert.InDelta(t, tt.stop, decision.Stop, 1e-9)
			assert.InDelta(t, tt.stopDistance, decision.StopDistance, 1e-9)
			assert.Equal(t, tt.strategies, decision.Strategies)
			assert.Equal(t, tt.regime, decision.Regime)
			assert.Equal(t, mc.Price, decision.Entry)
			assert.Equal(t, mc.Symbol, decision.Symbol)
			assert.Len(t, decision.Totals, 3)
			assert.NotEmpty(t, decision.Rationale)
		})
	}
}

func TestAggregator_Filter(t *testing.T) {
	aggregator := NewAggregator(DefaultConfig())
	weak := signal(model.MomentumBreakthrough, model.Buy, 0.9, 0, 0)
	weak.Strength = 0.2
	signals := []model.Signal{
		signal(model.MomentumBreakthrough, model.Buy, 0.31, 0, 0),
		signal(model.WhaleTracking, model.Buy, 0.3, 0, 0),
		weak,
		signal(model.StatisticalArbitrage, model.Hold, 0.5, 0, 0),
	}
	filtered := aggregator.Filter(signals)
	require.Len(t, filtered, 2)
	assert.Equal(t, model.MomentumBreakthrough, filtered[0].Strategy)
	assert.Equal(t, model.StatisticalArbitrage, filtered[1].Strategy)
}

func TestAggregator_Totals(t *testing.T) {
	weights, err := NewWeights(model.Strategies, nil)
	require.NoError(t, err)

	decision := NewAggregator(DefaultConfig()).Aggregate(model.MarketContext{Price: 10}, []model.Signal{
		signal(model.MomentumBreakthrough, model.Buy, 1, 0, 0),
		signal(model.TrendFollowing, model.Buy, 0.5, 0, 0),
		signal(model.StatisticalArbitrage, model.Hold, 0.5, 0, 0),
	}, weights, model.Neutral)

	assert.InDelta(t, 0.15+0.075, decision.Totals[model.Buy], 1e-9)
	assert.InDelta(t, 0.065, decision.Totals[model.Hold], 1e-9)
	assert.Equal(t, 0.0, decision.Totals[model.Sell])
	assert.Equal(t, model.Buy, decision.Action)
	assert.InDelta(t, 0.1, decision.Size, 1e-9)
}
