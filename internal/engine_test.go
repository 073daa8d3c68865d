package coin

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/drakos74/coin-ensemble/infra/config"
	"github.com/drakos74/coin-ensemble/internal/api"
	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/metrics"
	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/drakos74/coin-ensemble/internal/storage"
	"github.com/drakos74/coin-ensemble/internal/storage/file/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func testConfig(adaptive bool) config.Config {
	cfg := config.Default()
	cfg.AdaptiveWeights = &adaptive
	cfg.Pairs = []config.Pair{{Base: model.ETH, Hedge: model.BTC, EntryZ: 2, ExitZ: 0.5, Lookback: 20}}
	return cfg
}

func newEngine(t *testing.T, cfg config.Config, options ...Option) *Engine {
	options = append([]Option{WithMetrics(metrics.NewMetrics())}, options...)
	engine, err := NewEngine(cfg, options...)
	require.NoError(t, err)
	return engine
}

// bullish triggers the momentum, whale and sentiment strategies.
func bullish(i int) model.MarketContext {
	return model.MarketContext{
		Symbol:    model.ETH,
		Time:      start.Add(time.Duration(i) * time.Hour),
		Price:     100,
		Returns:   model.Returns{M5: 0.03, M15: 0.03, H1: 0.03},
		Volume:    model.Volume{Current: 300, Average: 100},
		Whale:     model.Whale{Inflow: 80, Outflow: 20, Accumulation: 0.7},
		Sentiment: model.Sentiment{Score: 0.7, Previous: 0.6},
	}
}

// cointegrated returns contexts of an ETH price tracking twice the BTC price.
func cointegrated(seed int64, n int) []model.MarketContext {
	rnd := rand.New(rand.NewSource(seed))
	btc := coinmath.RandomWalk(rnd, 100, 1, n)
	noise := coinmath.MeanReverting(rnd, 0, 0.3, 1, n)
	cc := make([]model.MarketContext, n)
	for i := range cc {
		eth := 2*btc[i] + noise[i]
		cc[i] = model.MarketContext{
			Symbol: model.ETH,
			Pair:   model.BTC,
			Time:   start.Add(time.Duration(i) * time.Hour),
			Price:  eth,
			Prices: map[model.Coin]float64{model.BTC: btc[i]},
			Returns: model.Returns{
				M5:  rnd.NormFloat64() * 0.02,
				M15: rnd.NormFloat64() * 0.02,
				H1:  rnd.NormFloat64() * 0.02,
			},
			Volume:    model.Volume{Current: 100 + rnd.Float64()*200, Average: 100},
			Sentiment: model.Sentiment{Score: rnd.Float64(), Previous: rnd.Float64()},
			Whale:     model.Whale{Inflow: rnd.Float64() * 100, Outflow: rnd.Float64() * 100, Accumulation: rnd.Float64()},
			Indicators: model.Indicators{
				RSI:             rnd.Float64() * 100,
				ADX:             rnd.Float64() * 60,
				ATR:             2,
				VolatilityRatio: rnd.Float64() * 3,
			},
		}
	}
	return cc
}

type broken struct{}

func (broken) ID() model.StrategyID {
	return "broken"
}

func (broken) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	panic("broken strategy")
}

func TestNewEngine(t *testing.T) {

	type test struct {
		cfg func() config.Config
		err error
	}

	tests := map[string]test{
		"default": {
			cfg: config.Default,
		},
		"no-strategies": {
			cfg: func() config.Config {
				return config.Config{}
			},
			err: config.ErrNoStrategies,
		},
		"single-zero-weight": {
			cfg: func() config.Config {
				cfg := config.Default()
				cfg.Weights = map[model.StrategyID]float64{model.MomentumBreakthrough: 0, model.TrendFollowing: 0.15}
				return cfg
			},
			err: config.ErrInvalid,
		},
		"zero-weight-of-enabled": {
			cfg: func() config.Config {
				cfg := config.Default()
				cfg.Strategies = []model.StrategyID{model.TrendFollowing}
				cfg.Weights = map[model.StrategyID]float64{model.TrendFollowing: 0, model.WhaleTracking: 1}
				return cfg
			},
			err: config.ErrInvalid,
		},
		"partial-weights": {
			cfg: func() config.Config {
				cfg := config.Default()
				cfg.Weights = map[model.StrategyID]float64{model.MomentumBreakthrough: 0.3}
				return cfg
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			engine, err := NewEngine(tt.cfg(), WithMetrics(metrics.NewMetrics()))
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "unexpected error %v", err)
				return
			}
			require.NoError(t, err)
			var sum float64
			for _, w := range engine.Weights() {
				sum += w
			}
			assert.InDelta(t, 1.0, sum, 1e-6)
		})
	}
}

func TestEngine_Process(t *testing.T) {
	var observed []model.Signal
	engine := newEngine(t, testConfig(false), WithObserver(func(decision model.Decision, signals []model.Signal) error {
		observed = signals
		return nil
	}))

	decision := engine.Process(bullish(0))
	assert.Equal(t, model.Buy, decision.Action)
	assert.InDelta(t, 0.75*0.15+0.85*0.13+0.7*0.10, decision.Confidence, 1e-6)
	assert.Equal(t, 1.0, decision.Consensus)
	assert.Equal(t, model.High, decision.Urgency)
	assert.Equal(t, model.Neutral, decision.Regime)
	assert.InDelta(t, 0.1, decision.Size, 1e-9)
	assert.Equal(t, []model.StrategyID{model.MomentumBreakthrough, model.WhaleTracking, model.SentimentMomentum}, decision.Strategies)
	assert.NotEmpty(t, decision.ID)
	require.Len(t, observed, 3)
}

func TestEngine_Determinism(t *testing.T) {
	contexts := cointegrated(5, 150)
	e1 := newEngine(t, testConfig(false))
	e2 := newEngine(t, testConfig(false))

	var last model.Decision
	for _, mc := range contexts {
		d1 := e1.Process(mc)
		d2 := e2.Process(mc)
		require.Equal(t, d1, d2)
		last = d1
	}

	// replaying the last context does not change the outcome
	mc := contexts[len(contexts)-1]
	assert.Equal(t, last, e1.Process(mc))
	assert.Equal(t, last, e1.Evaluate(mc))
	assert.Equal(t, e1.Evaluate(mc), e1.Evaluate(mc))

	// the arbitrage strategy has enough history by now
	records := e1.performance.Last(len(model.Strategies))
	var found bool
	for _, r := range records {
		if detail, ok := r.Signal.Detail.(model.ArbitrageDetail); ok {
			found = true
			assert.True(t, detail.Stats.Actionable)
			assert.Equal(t, 150, detail.Stats.Samples)
		}
	}
	assert.True(t, found)
}

func TestEngine_StrategyFailure(t *testing.T) {
	var calls int
	engine := newEngine(t, testConfig(false), WithObserver(func(decision model.Decision, signals []model.Signal) error {
		calls++
		return errors.New("alerting is down")
	}))
	engine.strategies = append([]api.Strategy{broken{}}, engine.strategies...)

	var decision model.Decision
	assert.NotPanics(t, func() {
		decision = engine.Process(bullish(0))
	})
	assert.Equal(t, model.Buy, decision.Action)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, engine.performance.Len())
}

func TestEngine_InsufficientHistory(t *testing.T) {
	engine := newEngine(t, testConfig(false))
	contexts := cointegrated(1, 5)
	for _, mc := range contexts {
		decision := engine.Process(mc)
		assert.GreaterOrEqual(t, decision.Confidence, 0.0)
		assert.LessOrEqual(t, decision.Confidence, 1.0)
	}

	var found bool
	for _, r := range engine.performance.Last(-1) {
		detail, ok := r.Signal.Detail.(model.ArbitrageDetail)
		if !ok {
			continue
		}
		found = true
		assert.Equal(t, model.Hold, r.Signal.Action)
		assert.False(t, detail.Stats.Actionable)
		assert.Equal(t, model.NeutralHurst, detail.Stats.Hurst)
		assert.Equal(t, model.NeutralHalfLife, detail.Stats.HalfLife)
	}
	assert.True(t, found)
}

func TestEngine_NonFinitePrice(t *testing.T) {
	engine := newEngine(t, testConfig(false))
	contexts := cointegrated(5, 150)
	contexts[10].Prices = map[model.Coin]float64{model.BTC: math.NaN()}
	for _, mc := range contexts {
		engine.Process(mc)
	}

	var found bool
	for _, r := range engine.performance.Last(len(model.Strategies)) {
		if detail, ok := r.Signal.Detail.(model.ArbitrageDetail); ok {
			found = true
			assert.True(t, detail.Stats.Actionable, detail.Stats.Reason)
			assert.Equal(t, 149, detail.Stats.Samples)
		}
	}
	assert.True(t, found)
}

func TestEngine_InvalidContext(t *testing.T) {
	var notified []model.Decision
	engine := newEngine(t, testConfig(false), WithObserver(func(decision model.Decision, signals []model.Signal) error {
		notified = append(notified, decision)
		return nil
	}))

	type test struct {
		mc model.MarketContext
	}

	tests := map[string]test{
		"no-symbol": {
			mc: model.MarketContext{Price: 100, Time: start},
		},
		"no-price": {
			mc: model.MarketContext{Symbol: model.ETH, Time: start},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			decision := engine.Process(tt.mc)
			assert.Equal(t, model.Hold, decision.Action)
			assert.NotEmpty(t, decision.Rationale)
			assert.NotEmpty(t, decision.ID)
			assert.Equal(t, decision, engine.Evaluate(tt.mc))
		})
	}
	assert.Len(t, notified, 2)
	assert.Equal(t, 0, engine.performance.Len())
}

func TestEngine_Evaluate(t *testing.T) {
	engine := newEngine(t, testConfig(true))
	decision := engine.Evaluate(bullish(0))
	assert.Equal(t, model.Buy, decision.Action)

	for _, mc := range cointegrated(3, 30) {
		engine.Evaluate(mc)
	}
	ys, xs, _ := engine.prices.Aligned(model.ETH, model.BTC)
	assert.Empty(t, ys)
	assert.Empty(t, xs)
	assert.Equal(t, 0, engine.performance.Len())
}

func TestEngine_Adaptation(t *testing.T) {
	store := json.NewLocalStorage()
	cfg := testConfig(true)
	engine := newEngine(t, cfg, WithStorage(store), WithName("adaptive"))
	initial := engine.Weights()

	for i := 0; i < 40; i++ {
		engine.Process(bullish(i))
	}
	weights := engine.Weights()

	var sum float64
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Greater(t, weights[model.WhaleTracking], initial[model.WhaleTracking])
	// without a hedge price the pair statistics stay neutral, with zero confidence
	assert.Less(t, weights[model.StatisticalArbitrage], initial[model.StatisticalArbitrage])

	var stored map[model.StrategyID]float64
	require.NoError(t, store.Load(storage.Key{Name: "adaptive", Label: storage.WeightsLabel}, &stored))
	assert.Equal(t, weights, stored)

	restored := newEngine(t, cfg, WithStorage(store), WithName("adaptive"))
	for id, w := range restored.Weights() {
		assert.InDelta(t, weights[id], w, 1e-9)
	}

	engine.ResetWeights()
	for id, w := range engine.Weights() {
		assert.InDelta(t, initial[id], w, 1e-9)
	}
}

func TestEngine_UpdateParameters(t *testing.T) {
	engine := newEngine(t, testConfig(false))
	weights := engine.Weights()

	invalid := testConfig(false)
	invalid.ConsensusThreshold = 2
	assert.True(t, errors.Is(engine.UpdateParameters(invalid), config.ErrInvalid))
	assert.Equal(t, weights, engine.Weights())

	subset := testConfig(false)
	subset.Strategies = []model.StrategyID{model.MomentumBreakthrough, model.WhaleTracking}
	require.NoError(t, engine.UpdateParameters(subset))
	updated := engine.Weights()
	require.Len(t, updated, 2)
	assert.InDelta(t, 0.15/0.28, updated[model.MomentumBreakthrough], 1e-9)
	assert.InDelta(t, 0.13/0.28, updated[model.WhaleTracking], 1e-9)

	decision := engine.Process(bullish(0))
	assert.Equal(t, model.Buy, decision.Action)
	assert.Equal(t, []model.StrategyID{model.MomentumBreakthrough, model.WhaleTracking}, decision.Strategies)

	strict := subset
	strict.MinStrategies = 3
	require.NoError(t, engine.UpdateParameters(strict))
	assert.Equal(t, model.Hold, engine.Process(bullish(1)).Action)
}

func TestEngine_RecordOutcome(t *testing.T) {
	engine := newEngine(t, testConfig(false))
	mc := bullish(0)
	engine.Process(mc)

	assert.True(t, engine.RecordOutcome(model.MomentumBreakthrough, mc.Time, 0.02))
	assert.False(t, engine.RecordOutcome(model.TrendFollowing, mc.Time, 0.02))
	assert.False(t, engine.RecordOutcome(model.MomentumBreakthrough, mc.Time.Add(time.Hour), 0.02))
}
