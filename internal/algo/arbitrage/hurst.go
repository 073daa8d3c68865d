package arbitrage

import (
	"fmt"
	"math"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
)

// HurstWindows are the chunk sizes of the rescaled range analysis.
var HurstWindows = []int{16, 64}

// Hurst estimates the hurst exponent of the series with a simplified rescaled range analysis
// on its increments. Values below 0.5 indicate mean reversion, above 0.5 a trend.
// With two windows on a few hundred samples the estimate carries the small sample bias
// of R/S and no Anis-Lloyd correction is applied: a single random walk of 200 samples
// may score anywhere between roughly 0.3 and 0.85. Only the average over many series
// is centred on 0.5, so the value is used as a soft confidence factor and never as a gate.
func Hurst(series []float64) (float64, error) {
	if len(series) < MinHurstSamples {
		return 0, fmt.Errorf("hurst needs %d samples, got %d: %w", MinHurstSamples, len(series), ErrInsufficientData)
	}
	increments := coinmath.Diff(series)

	xx := make([]float64, 0, len(HurstWindows))
	yy := make([]float64, 0, len(HurstWindows))
	for _, w := range HurstWindows {
		if rs, ok := rescaledRange(increments, w); ok {
			xx = append(xx, math.Log(float64(w)))
			yy = append(yy, math.Log(rs))
		}
	}
	if len(xx) < 2 {
		return 0, fmt.Errorf("only %d valid windows: %w", len(xx), ErrDegenerateRegression)
	}

	h, err := coinmath.Slope(xx, yy)
	if err != nil || !coinmath.Valid(h) {
		return 0, fmt.Errorf("could not fit rescaled range: %v: %w", err, ErrDegenerateRegression)
	}
	return coinmath.Unit(h), nil
}

// rescaledRange returns the average R/S over the non-overlapping chunks of the given size.
func rescaledRange(xx []float64, size int) (float64, bool) {
	if size < 2 || size > len(xx) {
		return 0, false
	}
	var sum float64
	var count int
	for start := 0; start+size <= len(xx); start += size {
		chunk := xx[start : start+size]
		var mean float64
		for _, x := range chunk {
			mean += x
		}
		mean /= float64(size)

		var cum, min, max, variance float64
		for i, x := range chunk {
			d := x - mean
			cum += d
			variance += d * d
			if i == 0 || cum > max {
				max = cum
			}
			if i == 0 || cum < min {
				min = cum
			}
		}
		r := max - min
		s := math.Sqrt(variance / float64(size))
		if r <= 0 || s <= 0 {
			continue
		}
		sum += r / s
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
