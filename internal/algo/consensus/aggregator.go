package consensus

import (
	"fmt"
	"math"
	"strings"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	urgentShare = 0.8
	sizeFactor  = 0.8
)

// Config holds the consensus parameters.
type Config struct {
	Threshold       float64
	MinStrategies   int
	MaxPositionSize float64
	MinConfidence   float64
	MinStrength     float64
}

// DefaultConfig returns the default consensus parameters.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.65,
		MinStrategies:   2,
		MaxPositionSize: 0.1,
		MinConfidence:   0.3,
		MinStrength:     0.2,
	}
}

// Aggregator combines the strategy signals into a single decision.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates a new aggregator.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Filter drops the signals that are too weak to vote.
func (a *Aggregator) Filter(signals []model.Signal) []model.Signal {
	filtered := make([]model.Signal, 0, len(signals))
	for _, s := range signals {
		if s.Confidence <= a.cfg.MinConfidence || s.Strength <= a.cfg.MinStrength {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

// Aggregate runs the weighted vote over the signals and sizes the resulting position.
// It never fails, a missing consensus results in a HOLD decision.
func (a *Aggregator) Aggregate(mc model.MarketContext, signals []model.Signal, weights Weights, regime model.Regime) model.Decision {
	filtered := a.Filter(signals)

	totals := map[model.Action]float64{
		model.Hold: 0,
		model.Buy:  0,
		model.Sell: 0,
	}
	directional := 0
	for _, s := range filtered {
		totals[s.Action] += s.Confidence * weights.Get(s.Strategy)
		if s.Action != model.Hold {
			directional++
		}
	}

	decision := model.HoldDecision(mc, regime, "")
	decision.Totals = totals
	decision.Strategies = strategies(filtered, func(model.Action) bool { return true })

	if directional < a.cfg.MinStrategies {
		decision.Rationale = fmt.Sprintf("%d of %d directional strategies required", directional, a.cfg.MinStrategies)
		return decision
	}
	votes := totals[model.Buy] + totals[model.Sell]
	if votes <= 0 {
		decision.Rationale = "no weighted directional vote"
		return decision
	}

	ratio := totals[model.Buy] / votes
	var action model.Action
	var share float64
	switch {
	case ratio > a.cfg.Threshold:
		action = model.Buy
		share = ratio
	case 1-ratio > a.cfg.Threshold:
		action = model.Sell
		share = 1 - ratio
	default:
		decision.Consensus = math.Max(ratio, 1-ratio)
		decision.Rationale = fmt.Sprintf("no consensus buy share %s within threshold %s",
			coinmath.Format(ratio), coinmath.Format(a.cfg.Threshold))
		return decision
	}

	winning := func(act model.Action) bool { return act == action }
	confidence := coinmath.Unit(totals[action])
	decision.Action = action
	decision.Confidence = confidence
	decision.Consensus = share
	decision.Strategies = strategies(filtered, winning)
	if share > urgentShare {
		decision.Urgency = model.High
	}
	decision.Size = math.Min(confidence*sizeFactor, a.cfg.MaxPositionSize) *
		volatilityMultiplier(regime) * returnMultiplier(regime)
	decision.Target = weightedLevel(filtered, action, func(s model.Signal) float64 { return s.Target })
	decision.Stop = weightedLevel(filtered, action, func(s model.Signal) float64 { return s.Stop })
	if decision.Stop > 0 && decision.Entry > 0 {
		decision.StopDistance = math.Abs(decision.Entry-decision.Stop) / decision.Entry
	}
	decision.Rationale = rationale(filtered, action, share)
	return decision
}

func strategies(signals []model.Signal, accept func(model.Action) bool) []model.StrategyID {
	ids := make([]model.StrategyID, 0, len(signals))
	for _, s := range signals {
		if accept(s.Action) {
			ids = append(ids, s.Strategy)
		}
	}
	return ids
}

// weightedLevel returns the confidence weighted mean of the non-zero price levels on the given side.
func weightedLevel(signals []model.Signal, action model.Action, level func(s model.Signal) float64) float64 {
	var sum, weight float64
	for _, s := range signals {
		v := level(s)
		if s.Action != action || v <= 0 {
			continue
		}
		sum += v * s.Confidence
		weight += s.Confidence
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}

func rationale(signals []model.Signal, action model.Action, share float64) string {
	reasons := make([]string, 0, len(signals))
	for _, s := range signals {
		if s.Action == action {
			reasons = append(reasons, fmt.Sprintf("%s: %s", s.Strategy, s.Rationale))
		}
	}
	return fmt.Sprintf("%s with %s%% of the weighted vote [%s]", action, coinmath.Format(share*100), strings.Join(reasons, "; "))
}
