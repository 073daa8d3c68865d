package arbitrage

import (
	"fmt"
	"math"
	"time"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// regression is the fit of Δs(t) = alpha + beta·s(t−1).
type regression struct {
	n     int
	alpha float64
	beta  float64
	se    float64
}

func meanReversion(spread []float64) (regression, error) {
	if len(spread) < MinRegressionSamples {
		return regression{}, fmt.Errorf("regression needs %d samples, got %d: %w", MinRegressionSamples, len(spread), ErrInsufficientData)
	}
	lagged := spread[:len(spread)-1]
	delta := coinmath.Diff(spread)

	mx := stat.Mean(lagged, nil)
	var sxx float64
	for _, x := range lagged {
		sxx += (x - mx) * (x - mx)
	}
	if sxx == 0 || !coinmath.Valid(sxx) {
		return regression{}, fmt.Errorf("flat lagged spread: %w", ErrDegenerateRegression)
	}

	alpha, beta := stat.LinearRegression(lagged, delta, nil, false)

	residuals := make([]float64, len(delta))
	for i := range delta {
		residuals[i] = delta[i] - alpha - beta*lagged[i]
	}
	n := len(delta)
	ssr := floats.Dot(residuals, residuals)
	se := math.Sqrt(ssr / float64(n-2) / sxx)

	return regression{
		n:     n,
		alpha: alpha,
		beta:  beta,
		se:    se,
	}, nil
}

// StationarityStatistic is a single regression dickey-fuller statistic of the spread.
// It is a coarse proxy for cointegration, without lag selection.
func StationarityStatistic(spread []float64) (float64, error) {
	r, err := meanReversion(spread)
	if err != nil {
		return 0, err
	}
	if r.se == 0 || !coinmath.Valid(r.se) {
		return 0, fmt.Errorf("zero standard error: %w", ErrDegenerateRegression)
	}
	return r.beta / r.se, nil
}

// PValue maps the stationarity statistic to a p-value using fixed critical bands.
func PValue(statistic float64) float64 {
	switch {
	case statistic <= -3.0:
		return 0.01
	case statistic <= -2.5:
		return 0.05
	case statistic <= -2.0:
		return 0.10
	}
	return 0.50
}

// HalfLife returns the time in hours for the spread to recover half of its deviation.
// The interval is the time between samples, one hour is assumed if it is unknown.
func HalfLife(spread []float64, interval time.Duration) (float64, error) {
	r, err := meanReversion(spread)
	if err != nil {
		return 0, err
	}
	speed := -r.beta
	if speed <= 0 || !coinmath.Valid(speed) {
		return 0, fmt.Errorf("spread is not mean reverting (speed %v): %w", speed, ErrDegenerateRegression)
	}
	hours := interval.Hours()
	if hours <= 0 {
		hours = 1
	}
	return coinmath.Clip(math.Ln2/speed*hours, minHalfLife, maxHalfLife), nil
}
