package arbitrage

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/drakos74/coin-ensemble/internal/history"
	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHedgeRatio(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		xs := coinmath.RandomWalk(rnd, 100, 1, 200)
		ys := coinmath.Linear(rnd, xs, 0, 2, 0.1)

		beta, err := HedgeRatio(ys, xs)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, beta, 0.05)
	}
}

func TestHedgeRatio_Degenerate(t *testing.T) {
	xs := make([]float64, 50)
	ys := make([]float64, 50)
	for i := range xs {
		xs[i] = 10
		ys[i] = float64(i)
	}
	_, err := HedgeRatio(ys, xs)
	assert.True(t, errors.Is(err, ErrDegenerateRegression))

	_, err = HedgeRatio(ys[:10], xs[:10])
	assert.True(t, errors.Is(err, ErrInsufficientData))

	stats := Compute(model.Pair{Base: model.ETH, Hedge: model.BTC}, ys, xs, time.Hour, DefaultLookback)
	assert.False(t, stats.Actionable)
	assert.Equal(t, model.NeutralHurst, stats.Hurst)
	assert.Equal(t, model.NeutralHalfLife, stats.HalfLife)
	assert.Equal(t, model.NeutralPValue, stats.PValue)
	assert.Equal(t, 0.0, stats.ZScore)
}

func TestCorrelation(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	xs := coinmath.RandomWalk(rnd, 100, 1, 100)
	ys := coinmath.Linear(rnd, xs, 5, -3, 0)

	c, err := Correlation(ys, xs)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, c, 1e-9)

	_, err = Correlation(ys[:5], xs[:5])
	assert.True(t, errors.Is(err, ErrInsufficientData))

	flat := make([]float64, 100)
	_, err = Correlation(flat, xs)
	assert.True(t, errors.Is(err, ErrDegenerateRegression))
}

func TestZScore(t *testing.T) {
	spread := coinmath.Series(1, 20)
	z, err := ZScore(spread, 20)
	require.NoError(t, err)
	// mean 9.5, sample std sqrt(35)
	assert.InDelta(t, 9.5/math.Sqrt(35), z, 1e-9)

	_, err = ZScore(spread[:19], 20)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = ZScore(make([]float64, 30), 20)
	assert.True(t, errors.Is(err, ErrDegenerateRegression))
}

func TestPValue(t *testing.T) {

	type test struct {
		statistic float64
		p         float64
	}

	tests := map[string]test{
		"strong":     {statistic: -4.2, p: 0.01},
		"boundary-3": {statistic: -3.0, p: 0.01},
		"five":       {statistic: -2.7, p: 0.05},
		"ten":        {statistic: -2.2, p: 0.10},
		"boundary-2": {statistic: -2.0, p: 0.10},
		"none":       {statistic: -1.9, p: 0.50},
		"positive":   {statistic: 1.2, p: 0.50},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.p, PValue(tt.statistic))
		})
	}
}

func TestStationarityStatistic(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	spread := coinmath.MeanReverting(rnd, 0, 0.5, 1, 200)

	statistic, err := StationarityStatistic(spread)
	require.NoError(t, err)
	assert.LessOrEqual(t, statistic, -3.0)
	assert.Equal(t, 0.01, PValue(statistic))

	_, err = StationarityStatistic(spread[:20])
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestHalfLife(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		spread := coinmath.MeanReverting(rnd, 0, 0.2, 1, 200)

		hl, err := HalfLife(spread, time.Hour)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, hl, 1.5)
		assert.LessOrEqual(t, hl, 12.0)

		hl2, err := HalfLife(spread, 2*time.Hour)
		require.NoError(t, err)
		assert.InDelta(t, 2*hl, hl2, 1e-9)

		// unknown interval is treated as hourly
		hl0, err := HalfLife(spread, 0)
		require.NoError(t, err)
		assert.Equal(t, hl, hl0)
	}
}

func TestHalfLife_Trending(t *testing.T) {
	spread := make([]float64, 100)
	for i := range spread {
		spread[i] = math.Pow(1.01, float64(i))
	}
	_, err := HalfLife(spread, time.Hour)
	assert.True(t, errors.Is(err, ErrDegenerateRegression))

	_, err = HalfLife(spread[:10], time.Hour)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestHurst_RandomWalk(t *testing.T) {
	seeds := 40
	var sum float64
	for seed := 0; seed < seeds; seed++ {
		rnd := rand.New(rand.NewSource(int64(seed)))
		walk := coinmath.RandomWalk(rnd, 100, 1, 200)
		h, err := Hurst(walk)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, h, 0.0)
		assert.LessOrEqual(t, h, 1.0)
		sum += h
	}
	assert.InDelta(t, 0.5, sum/float64(seeds), 0.15)
}

func TestHurst_MeanReverting(t *testing.T) {
	seeds := 20
	var sum float64
	for seed := 0; seed < seeds; seed++ {
		rnd := rand.New(rand.NewSource(int64(seed)))
		spread := coinmath.MeanReverting(rnd, 0, 0.8, 1, 200)
		h, err := Hurst(spread)
		require.NoError(t, err)
		sum += h
	}
	assert.Less(t, sum/float64(seeds), 0.5)
}

func TestHurst_Dispersion(t *testing.T) {
	seeds := 40
	var walks, spreads float64
	var low, high float64 = 1, 0
	for seed := 0; seed < seeds; seed++ {
		rnd := rand.New(rand.NewSource(int64(seed)))
		h, err := Hurst(coinmath.RandomWalk(rnd, 100, 1, 200))
		require.NoError(t, err)
		walks += h
		low = math.Min(low, h)
		high = math.Max(high, h)

		m, err := Hurst(coinmath.MeanReverting(rnd, 0, 0.8, 1, 200))
		require.NoError(t, err)
		spreads += m
	}
	// single estimates are noisy, the averages still rank the regimes
	assert.Greater(t, high-low, 0.0)
	assert.Greater(t, walks/float64(seeds), spreads/float64(seeds))
}

func TestHurst_Insufficient(t *testing.T) {
	_, err := Hurst(coinmath.Series(1, 50))
	assert.True(t, errors.Is(err, ErrInsufficientData))

	// a straight line has no valid rescaled range
	_, err = Hurst(coinmath.Series(1, 150))
	assert.True(t, errors.Is(err, ErrDegenerateRegression))
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.997, Confidence(3, 0.7, 0.01, 0.25), 1e-9)
	assert.InDelta(t, 0.997, Confidence(-4, -0.7, 0.01, 0.1), 1e-9)

	for _, z := range []float64{-10, -2, 0, 1, 5} {
		for _, c := range []float64{-1, -0.5, 0, 0.7, 1} {
			for _, p := range []float64{0.01, 0.05, 0.1, 0.5} {
				for _, h := range []float64{0, 0.3, 0.5, 1} {
					conf := Confidence(z, c, p, h)
					assert.GreaterOrEqual(t, conf, 0.0)
					assert.LessOrEqual(t, conf, 1.0)
				}
			}
		}
	}
}

func TestCompute(t *testing.T) {
	pair := model.Pair{Base: model.ETH, Hedge: model.BTC}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rnd := rand.New(rand.NewSource(11))
	xs := coinmath.RandomWalk(rnd, 100, 1, 150)
	noise := coinmath.MeanReverting(rnd, 0, 0.3, 0.5, 150)

	book := history.NewBook(200)
	for i := range xs {
		ts := now.Add(time.Duration(i) * time.Hour)
		require.NoError(t, book.Push(model.BTC, ts, xs[i]))
		require.NoError(t, book.Push(model.ETH, ts, 2*xs[i]+noise[i]))
	}

	stats := ComputeAll(book, []Config{
		DefaultConfig(pair),
		DefaultConfig(model.Pair{Base: model.ETH, Hedge: model.SOL}),
	})
	require.Len(t, stats, 2)

	s := stats[0]
	assert.True(t, s.Actionable)
	assert.Equal(t, 150, s.Samples)
	assert.InDelta(t, 2.0, s.HedgeRatio, 0.05)
	assert.Equal(t, 0.01, s.PValue)
	assert.Greater(t, s.Correlation, 0.9)
	assert.GreaterOrEqual(t, s.HalfLife, 1.0)
	assert.LessOrEqual(t, s.HalfLife, 168.0)
	assert.GreaterOrEqual(t, s.Hurst, 0.0)
	assert.LessOrEqual(t, s.Hurst, 1.0)
	assert.GreaterOrEqual(t, s.Confidence, 0.0)
	assert.LessOrEqual(t, s.Confidence, 1.0)

	missing := stats[1]
	assert.False(t, missing.Actionable)
	assert.Equal(t, 0, missing.Samples)
	assert.Equal(t, model.NeutralHurst, missing.Hurst)
}
