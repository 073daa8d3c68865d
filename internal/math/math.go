package math

import (
	"math"
	"strconv"
)

// Format formats a float based on the given precision
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Clip clips the value to the [min,max] range.
func Clip(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Unit clips the value to the [0,1] range.
// NaN is mapped to 0.
func Unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clip(v, 0, 1)
}

// Bell is a gaussian shaped score in (0,1], peaking at the given center.
func Bell(v, center, width float64) float64 {
	if width <= 0 {
		if v == center {
			return 1
		}
		return 0
	}
	d := (v - center) / width
	return math.Exp(-0.5 * d * d)
}

// Valid checks that the value is a finite number.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Diff returns the first differences of the series.
func Diff(xx []float64) []float64 {
	if len(xx) < 2 {
		return []float64{}
	}
	dd := make([]float64, len(xx)-1)
	for i := 1; i < len(xx); i++ {
		dd[i-1] = xx[i] - xx[i-1]
	}
	return dd
}
