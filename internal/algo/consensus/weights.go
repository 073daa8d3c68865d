package consensus

import (
	"errors"
	"fmt"
	"math"

	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/drakos74/go-ex-machina/xmath"
)

var (
	// ErrWeightSum is returned when the weights do not add up to a positive number.
	ErrWeightSum = errors.New("non-positive weight sum")
	// ErrNonPositiveWeight is returned for an enabled strategy without a positive finite weight.
	ErrNonPositiveWeight = errors.New("non-positive weight")
)

// DefaultWeights are the initial weights of all strategies.
var DefaultWeights = map[model.StrategyID]float64{
	model.MomentumBreakthrough: 0.15,
	model.MeanReversion:        0.12,
	model.TrendFollowing:       0.15,
	model.VolatilityBreakout:   0.12,
	model.WhaleTracking:        0.13,
	model.SentimentMomentum:    0.10,
	model.PatternRecognition:   0.10,
	model.StatisticalArbitrage: 0.13,
}

// Weights holds the normalised weight of each enabled strategy.
// It is a value type, every update returns a new instance.
type Weights struct {
	ids    []model.StrategyID
	values xmath.Vector
}

// NewWeights creates the weights of the given strategies.
// Weights missing from the initial values fall back to the defaults.
// Every enabled strategy needs a positive weight, a zero weight could never be adapted.
func NewWeights(ids []model.StrategyID, initial map[model.StrategyID]float64) (Weights, error) {
	w := Weights{
		ids:    make([]model.StrategyID, len(ids)),
		values: xmath.Vec(len(ids)),
	}
	copy(w.ids, ids)
	for i, id := range ids {
		v, ok := initial[id]
		if !ok {
			v = DefaultWeights[id]
		}
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, fmt.Errorf("'%s' = %v: %w", id, v, ErrNonPositiveWeight)
		}
		w.values[i] = v
	}
	return w.Normalize()
}

// Normalize scales the weights to sum to 1.
func (w Weights) Normalize() (Weights, error) {
	sum := w.values.Sum()
	if sum <= 0 {
		return Weights{}, fmt.Errorf("%v for %d strategies: %w", sum, len(w.ids), ErrWeightSum)
	}
	return Weights{
		ids:    w.ids,
		values: w.values.Mult(1 / sum),
	}, nil
}

// Get returns the weight of the strategy, 0 if it is not enabled.
func (w Weights) Get(id model.StrategyID) float64 {
	for i, s := range w.ids {
		if s == id {
			return w.values[i]
		}
	}
	return 0
}

// Sum returns the total of the weights.
func (w Weights) Sum() float64 {
	return w.values.Sum()
}

// IDs returns the strategies in weight order.
func (w Weights) IDs() []model.StrategyID {
	ids := make([]model.StrategyID, len(w.ids))
	copy(ids, w.ids)
	return ids
}

// Snapshot returns a copy of the weights keyed by strategy.
func (w Weights) Snapshot() map[model.StrategyID]float64 {
	m := make(map[model.StrategyID]float64, len(w.ids))
	for i, id := range w.ids {
		m[id] = w.values[i]
	}
	return m
}

// adjust applies the update to every weight and returns the new, unnormalised, weights.
func (w Weights) adjust(update func(id model.StrategyID, v float64) float64) Weights {
	values := w.values.Copy()
	for i, id := range w.ids {
		values[i] = update(id, values[i])
	}
	return Weights{
		ids:    w.ids,
		values: values,
	}
}
