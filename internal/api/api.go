package api

import (
	"github.com/drakos74/coin-ensemble/internal/model"
)

// Strategy evaluates the market snapshot and optionally emits a signal.
// All strategies of a cycle share the same snapshot, so implementations must not mutate it.
type Strategy interface {
	// ID returns the unique strategy identifier.
	ID() model.StrategyID
	// Evaluate returns the strategy signal, if any, for the given snapshot.
	Evaluate(snapshot model.Snapshot) (model.Signal, bool)
}

// Observer is notified once per decision with the signals that passed the filter.
type Observer func(decision model.Decision, signals []model.Signal) error
