package coin

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/drakos74/coin-ensemble/infra/config"
	"github.com/drakos74/coin-ensemble/internal/algo/arbitrage"
	"github.com/drakos74/coin-ensemble/internal/algo/consensus"
	"github.com/drakos74/coin-ensemble/internal/algo/strategy"
	"github.com/drakos74/coin-ensemble/internal/api"
	"github.com/drakos74/coin-ensemble/internal/history"
	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/metrics"
	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/drakos74/coin-ensemble/internal/notify"
	"github.com/drakos74/coin-ensemble/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// namespace scopes the decision ids of the engine.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("github.com/drakos74/coin-ensemble"))

// Option configures the engine.
type Option func(engine *Engine)

// WithObserver sets the observer notified after every decision.
func WithObserver(observer api.Observer) Option {
	return func(engine *Engine) {
		engine.observer = observer
	}
}

// WithStorage sets the storage for the strategy weights.
func WithStorage(store storage.Persistence) Option {
	return func(engine *Engine) {
		engine.store = store
	}
}

// WithName sets the engine name, used as the storage key.
func WithName(name string) Option {
	return func(engine *Engine) {
		engine.name = name
	}
}

// WithMetrics sets the metrics observer.
func WithMetrics(m *metrics.Metrics) Option {
	return func(engine *Engine) {
		engine.metrics = m
	}
}

// Engine runs the decision cycles of the ensemble.
// Strategies run in parallel over an immutable snapshot,
// all state is mutated after they have finished.
type Engine struct {
	lock        *sync.Mutex
	name        string
	cfg         config.Config
	strategies  []api.Strategy
	pairs       []arbitrage.Config
	aggregator  *consensus.Aggregator
	learner     *consensus.Learner
	initial     consensus.Weights
	weights     consensus.Weights
	prices      *history.Book
	performance *history.Performance
	store       storage.Persistence
	observer    api.Observer
	hook        *notify.Hook
	metrics     *metrics.Metrics
}

// NewEngine creates a new engine.
// Only an invalid configuration results in an error.
func NewEngine(cfg config.Config, options ...Option) (*Engine, error) {
	engine := &Engine{
		lock:        new(sync.Mutex),
		name:        "ensemble",
		prices:      history.NewBook(cfg.History.PriceCapacity),
		performance: history.NewPerformance(cfg.History.PerformanceCapacity),
		store:       storage.NewVoidStorage(),
		metrics:     metrics.Observer,
	}
	for _, option := range options {
		option(engine)
	}
	if err := engine.configure(cfg, nil); err != nil {
		return nil, err
	}
	engine.load()
	if engine.observer != nil {
		engine.hook = notify.NewHook(engine.name, engine.observer, cfg.Breaker())
	}
	engine.metrics.Weights(engine.weights.Snapshot())

	log.Info().
		Str("name", engine.name).
		Int("strategies", len(engine.strategies)).
		Int("pairs", len(engine.pairs)).
		Bool("adaptive", cfg.Adaptive()).
		Msg("engine started")
	return engine, nil
}

// configure applies the config, keeping the current weights of the strategies that stay enabled.
func (e *Engine) configure(cfg config.Config, current map[model.StrategyID]float64) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	pairs := cfg.Arbitrage()
	strategies, err := strategy.Build(cfg.Strategies, pairs)
	if err != nil {
		return fmt.Errorf("could not build strategies: %w", err)
	}
	ids := make([]model.StrategyID, len(strategies))
	for i, s := range strategies {
		ids[i] = s.ID()
	}
	initial, err := consensus.NewWeights(ids, cfg.Weights)
	if err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	weights := initial
	if len(current) > 0 {
		if merged, err := consensus.NewWeights(ids, mergeWeights(initial.Snapshot(), current)); err == nil {
			weights = merged
		}
	}

	e.cfg = cfg
	e.pairs = pairs
	e.strategies = strategies
	e.aggregator = consensus.NewAggregator(cfg.Consensus())
	e.learner = consensus.NewLearner(cfg.Adaptation())
	e.initial = initial
	e.weights = weights
	return nil
}

// Process runs a decision cycle on the market context.
// It ingests the context prices, adapts the weights and notifies the observer.
func (e *Engine) Process(mc model.MarketContext) model.Decision {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := valid(mc); err != nil {
		decision := model.HoldDecision(mc, consensus.Classify(mc), err.Error())
		decision.ID = decisionID(decision)
		e.notify(decision, nil)
		return decision
	}

	for c, err := range e.prices.Ingest(mc) {
		log.Warn().Err(err).Str("coin", string(c)).Msg("could not ingest price")
	}

	decision, signals, filtered := e.evaluate(mc)

	e.performance.Append(signals...)
	if e.cfg.Adaptive() {
		if weights, ok := e.learner.Adapt(e.performance, e.weights); ok {
			e.weights = weights
			e.persist()
		}
	}
	e.metrics.Decision(decision, filtered)
	e.metrics.Weights(e.weights.Snapshot())
	e.notify(decision, filtered)
	return decision
}

// Evaluate runs a decision cycle without changing the engine state.
func (e *Engine) Evaluate(mc model.MarketContext) model.Decision {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := valid(mc); err != nil {
		decision := model.HoldDecision(mc, consensus.Classify(mc), err.Error())
		decision.ID = decisionID(decision)
		return decision
	}
	decision, _, _ := e.evaluate(mc)
	return decision
}

func (e *Engine) evaluate(mc model.MarketContext) (model.Decision, []model.Signal, []model.Signal) {
	snapshot := model.Snapshot{
		Context: mc,
		Pairs:   arbitrage.ComputeAll(e.prices, e.pairs),
	}
	signals := e.fanOut(snapshot)
	regime := consensus.Classify(mc)

	decision := e.aggregator.Aggregate(mc, signals, e.weights, regime)
	decision.ID = decisionID(decision)

	log.Debug().
		Str("id", decision.ID).
		Str("symbol", string(mc.Symbol)).
		Str("action", decision.Action.String()).
		Float64("confidence", decision.Confidence).
		Float64("consensus", decision.Consensus).
		Str("regime", regime.String()).
		Int("signals", len(signals)).
		Msg("decision")
	return decision, signals, e.aggregator.Filter(signals)
}

// fanOut evaluates all strategies concurrently and collects their signals in strategy order.
func (e *Engine) fanOut(snapshot model.Snapshot) []model.Signal {
	results := make([]*model.Signal, len(e.strategies))
	var g errgroup.Group
	for i, s := range e.strategies {
		i, s := i, s
		g.Go(func() error {
			if signal, ok := safeEvaluate(s, snapshot); ok {
				results[i] = &signal
			}
			return nil
		})
	}
	_ = g.Wait()

	signals := make([]model.Signal, 0, len(results))
	for i, r := range results {
		if r == nil {
			continue
		}
		signal := *r
		signal.Strategy = e.strategies[i].ID()
		signal.Confidence = coinmath.Unit(signal.Confidence)
		signal.Strength = coinmath.Unit(signal.Strength)
		if signal.Time.IsZero() {
			signal.Time = snapshot.Context.Time
		}
		log.Debug().
			Str("strategy", string(signal.Strategy)).
			Str("action", signal.Action.String()).
			Float64("confidence", signal.Confidence).
			Float64("strength", signal.Strength).
			Str("rationale", signal.Rationale).
			Msg("signal")
		signals = append(signals, signal)
	}
	return signals
}

// safeEvaluate isolates the strategy, a panic results in no signal.
func safeEvaluate(s api.Strategy, snapshot model.Snapshot) (signal model.Signal, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("strategy", string(s.ID())).Str("panic", fmt.Sprintf("%v", r)).Msg("strategy failed")
			signal, ok = model.Signal{}, false
		}
	}()
	return s.Evaluate(snapshot)
}

func (e *Engine) notify(decision model.Decision, signals []model.Signal) {
	if e.hook == nil {
		return
	}
	// failures are logged by the hook
	_ = e.hook.Notify(decision, signals)
}

// UpdateParameters applies a new configuration between cycles.
// The histories are kept, as well as the adapted weights of the strategies that stay enabled.
func (e *Engine) UpdateParameters(cfg config.Config) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := e.configure(cfg, e.weights.Snapshot()); err != nil {
		return err
	}
	e.persist()
	e.metrics.Weights(e.weights.Snapshot())
	log.Info().
		Int("strategies", len(e.strategies)).
		Int("pairs", len(e.pairs)).
		Float64("threshold", cfg.ConsensusThreshold).
		Msg("parameters updated")
	return nil
}

// ResetWeights restores the configured weights.
func (e *Engine) ResetWeights() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.weights = e.initial
	e.persist()
	e.metrics.Weights(e.weights.Snapshot())
	log.Info().Msg("weights reset")
}

// Weights returns the current strategy weights.
func (e *Engine) Weights() map[model.StrategyID]float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.weights.Snapshot()
}

// RecordOutcome attributes the realised outcome to the signal the strategy emitted at the given time.
// It returns false if the signal is no longer in the performance history.
func (e *Engine) RecordOutcome(id model.StrategyID, t time.Time, outcome float64) bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.performance.Attribute(id, t, outcome)
}

func (e *Engine) key() storage.Key {
	return storage.Key{
		Name:  e.name,
		Label: storage.WeightsLabel,
	}
}

func (e *Engine) persist() {
	if err := e.store.Store(e.key(), e.weights.Snapshot()); err != nil {
		log.Error().Err(err).Str("name", e.name).Msg("could not store weights")
	}
}

func (e *Engine) load() {
	var snapshot map[model.StrategyID]float64
	err := e.store.Load(e.key(), &snapshot)
	if errors.Is(err, storage.NotFoundErr) {
		return
	} else if err != nil {
		log.Warn().Err(err).Str("name", e.name).Msg("could not load weights")
		return
	}
	weights, err := consensus.NewWeights(e.weights.IDs(), mergeWeights(e.initial.Snapshot(), snapshot))
	if err != nil {
		log.Warn().Err(err).Str("name", e.name).Msg("ignoring stored weights")
		return
	}
	e.weights = weights
	log.Info().Str("name", e.name).Msg("loaded weights")
}

func mergeWeights(base, override map[model.StrategyID]float64) map[model.StrategyID]float64 {
	merged := make(map[model.StrategyID]float64, len(base))
	for id, w := range base {
		merged[id] = w
		if o, ok := override[id]; ok {
			merged[id] = o
		}
	}
	return merged
}

func valid(mc model.MarketContext) error {
	if mc.Symbol == model.NoCoin {
		return errors.New("missing symbol")
	}
	if mc.Price <= 0 || !coinmath.Valid(mc.Price) {
		return fmt.Errorf("invalid price %v for %s", mc.Price, mc.Symbol)
	}
	return nil
}

// decisionID derives the id from the decision content, so a repeated cycle yields the same id.
func decisionID(d model.Decision) string {
	key := fmt.Sprintf("%s|%d|%s|%v|%v|%v|%v", d.Symbol, d.Time.UnixNano(), d.Action, d.Confidence, d.Consensus, d.Size, d.Strategies)
	return uuid.NewSHA1(namespace, []byte(key)).String()
}
