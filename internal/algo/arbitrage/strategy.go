package arbitrage

import (
	"fmt"
	"math"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	maxPValue       = 0.05
	minCorrelation  = 0.3
	maxCorrelation  = 0.95
	minConfidence   = 0.4
	defaultATRRatio = 0.01
)

// Strategy is the statistical arbitrage strategy.
// It trades the base asset of a pair against the deviation of the spread from its mean.
type Strategy struct {
	configs []Config
}

// NewStrategy creates a new statistical arbitrage strategy for the given pairs.
func NewStrategy(configs ...Config) *Strategy {
	return &Strategy{configs: configs}
}

// ID returns the strategy id.
func (s *Strategy) ID() model.StrategyID {
	return model.StatisticalArbitrage
}

// Evaluate emits a signal for the pair that matches the context symbol.
// It returns false only if no pair is configured for the symbol.
func (s *Strategy) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	mc := snapshot.Context
	stats, cfg, ok := s.match(snapshot)
	if !ok {
		return model.Signal{}, false
	}

	action, strength, rationale := Decide(stats, cfg)

	signal := model.Signal{
		Strategy:   model.StatisticalArbitrage,
		Action:     action,
		Confidence: coinmath.Unit(stats.Confidence),
		Strength:   coinmath.Unit(strength),
		Timeframe:  timeframe(stats.HalfLife),
		Rationale:  rationale,
		Time:       mc.Time,
		Detail:     model.ArbitrageDetail{Stats: stats},
	}
	if action != model.Hold {
		atr := mc.Indicators.ATR
		if atr <= 0 {
			atr = mc.Price * defaultATRRatio
		}
		f := coinmath.Clip(math.Sqrt(stats.HalfLife/model.NeutralHalfLife), 0.5, 2.5)
		signal.Target = mc.Price + action.Sign()*2*atr*f
		signal.Stop = mc.Price - action.Sign()*atr*f
		signal.Priority = 2
	}
	return signal, true
}

// match finds the statistics of the pair trading the context symbol.
// If the context names the hedge asset, only that pair is considered.
func (s *Strategy) match(snapshot model.Snapshot) (model.PairStatistics, Config, bool) {
	mc := snapshot.Context
	var best model.PairStatistics
	var bestCfg Config
	found := false
	for _, stats := range snapshot.Pairs {
		if stats.Pair.Base != mc.Symbol {
			continue
		}
		if mc.Pair != model.NoCoin && stats.Pair.Hedge != mc.Pair {
			continue
		}
		cfg, ok := s.config(stats.Pair)
		if !ok {
			continue
		}
		if !found || better(stats, best) {
			best, bestCfg, found = stats, cfg, true
		}
	}
	return best, bestCfg, found
}

func better(a, b model.PairStatistics) bool {
	if a.Actionable != b.Actionable {
		return a.Actionable
	}
	return a.Confidence > b.Confidence
}

func (s *Strategy) config(pair model.Pair) (Config, bool) {
	for _, cfg := range s.configs {
		if cfg.Pair == pair {
			return cfg, true
		}
	}
	return Config{}, false
}

// Decide applies the entry and exit rules on the pair statistics.
// It returns the action, the signal strength and the rationale.
func Decide(stats model.PairStatistics, cfg Config) (model.Action, float64, string) {
	if !stats.Actionable {
		return model.Hold, 0, fmt.Sprintf("%s not actionable: %s", stats.Pair, stats.Reason)
	}
	z := stats.ZScore
	absZ := math.Abs(z)
	absCorr := math.Abs(stats.Correlation)
	eligible := stats.PValue < maxPValue &&
		absCorr > minCorrelation && absCorr < maxCorrelation &&
		stats.Confidence > minConfidence

	switch {
	case eligible && z > cfg.Entry:
		return model.Sell, absZ / (2 * cfg.Entry), fmt.Sprintf("%s spread rich z=%s p=%s", stats.Pair, coinmath.Format(z), coinmath.Format(stats.PValue))
	case eligible && z < -cfg.Entry:
		return model.Buy, absZ / (2 * cfg.Entry), fmt.Sprintf("%s spread cheap z=%s p=%s", stats.Pair, coinmath.Format(z), coinmath.Format(stats.PValue))
	case absZ < cfg.Exit:
		return model.Hold, 1 - absZ/cfg.Exit, fmt.Sprintf("%s spread reverted z=%s, close", stats.Pair, coinmath.Format(z))
	case !eligible:
		return model.Hold, 0, fmt.Sprintf("%s not eligible p=%s corr=%s conf=%s", stats.Pair, coinmath.Format(stats.PValue), coinmath.Format(stats.Correlation), coinmath.Format(stats.Confidence))
	}
	return model.Hold, 0, fmt.Sprintf("%s spread within band z=%s", stats.Pair, coinmath.Format(z))
}

func timeframe(halfLife float64) string {
	switch {
	case halfLife < 6:
		return "1h"
	case halfLife <= 24:
		return "4h"
	}
	return "1d"
}
