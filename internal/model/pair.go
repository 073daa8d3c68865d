package model

import "fmt"

// Pair defines two assets traded against each other.
// Base is the dependent series (y) and Hedge the explanatory one (x).
type Pair struct {
	Base  Coin `json:"base"`
	Hedge Coin `json:"hedge"`
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Hedge)
}

const (
	// NeutralHurst is the hurst exponent of a random walk.
	NeutralHurst = 0.5
	// NeutralHalfLife is the default half-life in hours.
	NeutralHalfLife = 12.0
	// NeutralPValue is the p-value of a non-stationary spread.
	NeutralPValue = 0.5
)

// PairStatistics are the econometric properties of a pair for one cycle.
type PairStatistics struct {
	Pair          Pair    `json:"pair"`
	Samples       int     `json:"samples"`
	Correlation   float64 `json:"correlation"`
	HedgeRatio    float64 `json:"hedge_ratio"`
	Spread        float64 `json:"spread"`
	ZScore        float64 `json:"z_score"`
	TestStatistic float64 `json:"test_statistic"`
	PValue        float64 `json:"p_value"`
	Hurst         float64 `json:"hurst"`
	HalfLife      float64 `json:"half_life"`
	Confidence    float64 `json:"confidence"`
	Actionable    bool    `json:"actionable"`
	Reason        string  `json:"reason,omitempty"`
}

// NeutralPairStatistics returns the statistics of a pair we know nothing about.
func NeutralPairStatistics(pair Pair, samples int, reason string) PairStatistics {
	return PairStatistics{
		Pair:     pair,
		Samples:  samples,
		PValue:   NeutralPValue,
		Hurst:    NeutralHurst,
		HalfLife: NeutralHalfLife,
		Reason:   reason,
	}
}
