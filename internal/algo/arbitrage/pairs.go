package arbitrage

import (
	"time"

	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config defines the trading thresholds of a pair.
type Config struct {
	Pair     model.Pair
	Entry    float64
	Exit     float64
	Lookback int
}

// DefaultConfig returns the default thresholds for the given pair.
func DefaultConfig(pair model.Pair) Config {
	return Config{
		Pair:     pair,
		Entry:    2.0,
		Exit:     0.5,
		Lookback: DefaultLookback,
	}
}

// Source provides the aligned price series of two assets.
type Source interface {
	Aligned(y, x model.Coin) (ys, xs []float64, interval time.Duration)
}

// ComputeAll calculates the statistics of all configured pairs concurrently.
// The result keeps the order of the configs.
func ComputeAll(source Source, configs []Config) []model.PairStatistics {
	stats := make([]model.PairStatistics, len(configs))
	var g errgroup.Group
	for i, cfg := range configs {
		i, cfg := i, cfg
		g.Go(func() error {
			ys, xs, interval := source.Aligned(cfg.Pair.Base, cfg.Pair.Hedge)
			stats[i] = Compute(cfg.Pair, ys, xs, interval, cfg.Lookback)
			return nil
		})
	}
	_ = g.Wait()
	for _, s := range stats {
		log.Debug().
			Str("pair", s.Pair.String()).
			Int("samples", s.Samples).
			Float64("correlation", s.Correlation).
			Float64("hedge-ratio", s.HedgeRatio).
			Float64("z-score", s.ZScore).
			Float64("p-value", s.PValue).
			Float64("hurst", s.Hurst).
			Float64("half-life", s.HalfLife).
			Bool("actionable", s.Actionable).
			Str("reason", s.Reason).
			Msg("pair statistics")
	}
	return stats
}
