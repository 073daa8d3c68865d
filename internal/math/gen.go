package math

import (
	"math/rand"
)

// Series generates a linear series.
func Series(factor float64, limit int) []float64 {
	xx := make([]float64, 0)
	for i := 0; i < limit; i++ {
		xx = append(xx, factor*float64(i))
	}
	return xx
}

// RandomWalk generates a gaussian random walk starting at the given level.
func RandomWalk(rnd *rand.Rand, start, step float64, limit int) []float64 {
	xx := make([]float64, limit)
	v := start
	for i := 0; i < limit; i++ {
		xx[i] = v
		v += rnd.NormFloat64() * step
	}
	return xx
}

// Linear generates y = beta*x + alpha with gaussian noise.
func Linear(rnd *rand.Rand, x []float64, alpha, beta, noise float64) []float64 {
	yy := make([]float64, len(x))
	for i, v := range x {
		yy[i] = alpha + beta*v + rnd.NormFloat64()*noise
	}
	return yy
}

// MeanReverting generates an ornstein-uhlenbeck like series around the given mean,
// theta being the fraction of the deviation recovered at each step.
func MeanReverting(rnd *rand.Rand, mean, theta, step float64, limit int) []float64 {
	xx := make([]float64, limit)
	v := mean
	for i := 0; i < limit; i++ {
		xx[i] = v
		v += theta*(mean-v) + rnd.NormFloat64()*step
	}
	return xx
}
