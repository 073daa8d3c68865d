package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	minPatternNet      = 2
	minPatternStrength = 0.6
	confirmationBonus  = 0.05
	patternStop        = 0.02
)

var confirmations = map[model.Action][]string{
	model.Buy:  {"hammer", "bullish_engulfing", "morning_star"},
	model.Sell: {"shooting_star", "bearish_engulfing", "evening_star"},
}

// Pattern trades the dominant side of the detected chart patterns.
type Pattern struct{}

// ID returns the pattern strategy id.
func (Pattern) ID() model.StrategyID {
	return model.PatternRecognition
}

// Evaluate emits a signal for the dominant side of patterns strong enough to act on.
func (Pattern) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	mc := snapshot.Context
	p := mc.Patterns
	net := p.Bullish - p.Bearish
	if p.Strength <= minPatternStrength {
		return model.Signal{}, false
	}

	var action model.Action
	var target float64
	switch {
	case net >= minPatternNet:
		action = model.Buy
		target = p.Resistance
	case net <= -minPatternNet:
		action = model.Sell
		target = p.Support
	default:
		return model.Signal{}, false
	}

	confirmed := confirmedBy(action, p.Confirmations)
	confidence := math.Min(0.5+(p.Strength-minPatternStrength)+float64(len(confirmed))*confirmationBonus, 0.95)
	n := net
	if n < 0 {
		n = -n
	}
	signal := newSignal(model.PatternRecognition, mc, action, confidence, float64(n)/4)
	signal.Timeframe = "4h"
	signal.Target = target
	signal.Stop = mc.Price * (1 - action.Sign()*patternStop)
	signal.Rationale = fmt.Sprintf("%d net %s patterns", n, strings.ToLower(action.String()))
	if len(confirmed) > 0 {
		signal.Rationale += fmt.Sprintf(" confirmed by %s", strings.Join(confirmed, ","))
	}
	signal.Detail = model.PatternDetail{
		Net:           net,
		Strength:      p.Strength,
		Confirmations: confirmed,
	}
	return signal, true
}

func confirmedBy(action model.Action, names []string) []string {
	confirmed := make([]string, 0)
	for _, name := range names {
		for _, c := range confirmations[action] {
			if strings.EqualFold(name, c) {
				confirmed = append(confirmed, c)
				break
			}
		}
	}
	return confirmed
}
