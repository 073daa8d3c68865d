package arbitrage

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/drakos74/coin-ensemble/internal/buffer"
	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// MinSamples is the number of samples needed for correlation, hedge ratio and z-score.
	MinSamples = 20
	// MinRegressionSamples is the number of samples needed for the mean reversion regression.
	MinRegressionSamples = 30
	// MinHurstSamples is the number of samples needed for the hurst exponent.
	MinHurstSamples = 100

	// DefaultLookback is the rolling window of the z-score.
	DefaultLookback = 20

	minHalfLife = 1.0
	maxHalfLife = 168.0
)

var (
	// ErrInsufficientData is returned when the sample count is below the statistic minimum.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateRegression is returned when a regression has a zero denominator.
	ErrDegenerateRegression = errors.New("degenerate regression")
)

// Correlation returns the pearson correlation of the two series.
func Correlation(ys, xs []float64) (float64, error) {
	if err := mustHave(ys, xs, MinSamples); err != nil {
		return 0, err
	}
	c := stat.Correlation(ys, xs, nil)
	if !coinmath.Valid(c) {
		return 0, fmt.Errorf("zero variance series: %w", ErrDegenerateRegression)
	}
	return coinmath.Clip(c, -1, 1), nil
}

// HedgeRatio returns the ordinary least squares coefficient of y on x.
//
//	β = (nΣxy − ΣxΣy) / (nΣx² − (Σx)²)
func HedgeRatio(ys, xs []float64) (float64, error) {
	if err := mustHave(ys, xs, MinSamples); err != nil {
		return 0, err
	}
	n := float64(len(xs))
	sx := floats.Sum(xs)
	sy := floats.Sum(ys)
	sxy := floats.Dot(xs, ys)
	sxx := floats.Dot(xs, xs)

	den := n*sxx - sx*sx
	if den == 0 || math.Abs(den) <= 1e-12*math.Abs(n*sxx) {
		return 0, fmt.Errorf("zero variance of hedge series: %w", ErrDegenerateRegression)
	}
	return (n*sxy - sx*sy) / den, nil
}

// Spread returns y − β·x for every sample.
func Spread(ys, xs []float64, beta float64) []float64 {
	ss := make([]float64, len(ys))
	for i := range ys {
		ss[i] = ys[i] - beta*xs[i]
	}
	return ss
}

// ZScore returns the distance of the last spread from its rolling mean, in standard deviations.
func ZScore(spread []float64, lookback int) (float64, error) {
	if len(spread) < MinSamples {
		return 0, fmt.Errorf("z-score needs %d samples, got %d: %w", MinSamples, len(spread), ErrInsufficientData)
	}
	if lookback < 2 {
		lookback = DefaultLookback
	}
	if lookback > len(spread) {
		lookback = len(spread)
	}
	window := buffer.NewStatsOf(spread[len(spread)-lookback:]...)
	std := window.SampleStDev()
	if std == 0 || !coinmath.Valid(std) {
		return 0, fmt.Errorf("flat spread: %w", ErrDegenerateRegression)
	}
	return (spread[len(spread)-1] - window.Avg()) / std, nil
}

// Confidence blends the pair statistics into a single score in [0,1].
func Confidence(z, correlation, pValue, hurst float64) float64 {
	zScore := math.Min(math.Abs(z)/3, 1)
	corr := coinmath.Bell(math.Abs(correlation), 0.7, 0.2)
	coint := 1 - pValue
	reversion := coinmath.Unit(1.5 - 2*hurst)
	return coinmath.Unit(0.3*zScore + 0.2*corr + 0.3*coint + 0.2*reversion)
}

// Compute calculates the statistics of the pair from the aligned price series.
// Any statistic that cannot be computed falls back to its neutral value,
// so the result is always usable.
func Compute(pair model.Pair, ys, xs []float64, interval time.Duration, lookback int) model.PairStatistics {
	n := len(ys)
	if len(xs) < n {
		n = len(xs)
	}
	ys, xs = ys[len(ys)-n:], xs[len(xs)-n:]
	if n < MinSamples {
		return model.NeutralPairStatistics(pair, n, fmt.Sprintf("%d samples, need %d", n, MinSamples))
	}

	correlation, err := Correlation(ys, xs)
	if err != nil {
		return model.NeutralPairStatistics(pair, n, err.Error())
	}

	beta, err := HedgeRatio(ys, xs)
	if err != nil {
		s := model.NeutralPairStatistics(pair, n, err.Error())
		s.Correlation = correlation
		return s
	}

	spread := Spread(ys, xs, beta)

	z, err := ZScore(spread, lookback)
	if err != nil {
		z = 0
	}

	var statistic float64
	pValue := model.NeutralPValue
	if statistic, err = StationarityStatistic(spread); err == nil {
		pValue = PValue(statistic)
	}

	hurst, err := Hurst(spread)
	if err != nil {
		hurst = model.NeutralHurst
	}

	halfLife, err := HalfLife(spread, interval)
	if err != nil {
		halfLife = model.NeutralHalfLife
	}

	return model.PairStatistics{
		Pair:          pair,
		Samples:       n,
		Correlation:   correlation,
		HedgeRatio:    beta,
		Spread:        spread[len(spread)-1],
		ZScore:        z,
		TestStatistic: statistic,
		PValue:        pValue,
		Hurst:         hurst,
		HalfLife:      halfLife,
		Confidence:    Confidence(z, correlation, pValue, hurst),
		Actionable:    true,
	}
}

func mustHave(ys, xs []float64, min int) error {
	if len(ys) != len(xs) {
		return fmt.Errorf("inconsistent sizes %d vs %d: %w", len(ys), len(xs), ErrInsufficientData)
	}
	if len(ys) < min {
		return fmt.Errorf("need %d samples, got %d: %w", min, len(ys), ErrInsufficientData)
	}
	return nil
}
