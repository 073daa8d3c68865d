package buffer

import (
	"math"
)

// Stats tracks the mean and variance of a stream of values without keeping them.
// The mean and the squared distances follow the welford update.
type Stats struct {
	n      int
	mean   float64
	moment float64
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return new(Stats)
}

// NewStatsOf creates a Stats over the given values, e.g. the window of a spread.
func NewStatsOf(vv ...float64) *Stats {
	s := NewStats()
	for _, v := range vv {
		s.Push(v)
	}
	return s
}

// Push adds the value to the stream.
func (s *Stats) Push(v float64) {
	s.n++
	delta := v - s.mean
	s.mean += delta / float64(s.n)
	s.moment += delta * (v - s.mean)
}

func (s Stats) Avg() float64 {
	return s.mean
}

// SampleStDev is the unbiased standard deviation, 0 for fewer than two values.
func (s Stats) SampleStDev() float64 {
	if s.n < 2 {
		return 0
	}
	return math.Sqrt(s.moment / float64(s.n-1))
}
