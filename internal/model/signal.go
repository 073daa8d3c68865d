package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// StrategyID identifies a strategy of the ensemble.
type StrategyID string

const (
	MomentumBreakthrough StrategyID = "momentum_breakthrough"
	MeanReversion        StrategyID = "mean_reversion"
	TrendFollowing       StrategyID = "trend_following"
	VolatilityBreakout   StrategyID = "volatility_breakout"
	WhaleTracking        StrategyID = "whale_tracking"
	SentimentMomentum    StrategyID = "sentiment_momentum"
	PatternRecognition   StrategyID = "pattern_recognition"
	StatisticalArbitrage StrategyID = "statistical_arbitrage"
)

// Strategies lists all known strategies in their canonical order.
var Strategies = []StrategyID{
	MomentumBreakthrough,
	MeanReversion,
	TrendFollowing,
	VolatilityBreakout,
	WhaleTracking,
	SentimentMomentum,
	PatternRecognition,
	StatisticalArbitrage,
}

// Known checks if the id is one of the ensemble strategies.
func (id StrategyID) Known() bool {
	for _, s := range Strategies {
		if s == id {
			return true
		}
	}
	return false
}

// Signal is the output of one strategy for one cycle.
type Signal struct {
	Strategy   StrategyID `json:"strategy"`
	Action     Action     `json:"action"`
	Confidence float64    `json:"confidence"`
	Strength   float64    `json:"strength"`
	Timeframe  string     `json:"timeframe"`
	Target     float64    `json:"target"`
	Stop       float64    `json:"stop"`
	Rationale  string     `json:"rationale"`
	Priority   int        `json:"priority"`
	Time       time.Time  `json:"time"`
	Detail     Detail     `json:"detail,omitempty"`
}

// UnmarshalJSON decodes the signal and its detail,
// the detail type is picked by the strategy of the signal.
func (s *Signal) UnmarshalJSON(b []byte) error {
	type plain Signal
	var raw struct {
		plain
		Detail json.RawMessage `json:"detail,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Signal(raw.plain)
	if len(raw.Detail) == 0 || string(raw.Detail) == "null" {
		s.Detail = nil
		return nil
	}
	detail, err := decodeDetail(s.Strategy, raw.Detail)
	if err != nil {
		return fmt.Errorf("could not decode detail of '%s': %w", s.Strategy, err)
	}
	s.Detail = detail
	return nil
}

// Detail carries the strategy specific values behind a signal.
type Detail interface {
	Strategy() StrategyID
}

func decodeDetail(id StrategyID, b []byte) (Detail, error) {
	switch id {
	case MomentumBreakthrough:
		return decodeAs[MomentumDetail](b)
	case MeanReversion:
		return decodeAs[ReversionDetail](b)
	case TrendFollowing:
		return decodeAs[TrendDetail](b)
	case VolatilityBreakout:
		return decodeAs[BreakoutDetail](b)
	case WhaleTracking:
		return decodeAs[WhaleDetail](b)
	case SentimentMomentum:
		return decodeAs[SentimentDetail](b)
	case PatternRecognition:
		return decodeAs[PatternDetail](b)
	case StatisticalArbitrage:
		return decodeAs[ArbitrageDetail](b)
	}
	return nil, fmt.Errorf("unknown strategy '%s'", id)
}

func decodeAs[D Detail](b []byte) (Detail, error) {
	var d D
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// MomentumDetail holds the price momentum and volume surge of a momentum signal.
type MomentumDetail struct {
	Momentum    float64 `json:"momentum"`
	VolumeRatio float64 `json:"volume_ratio"`
}

// Strategy returns the strategy the detail belongs to.
func (MomentumDetail) Strategy() StrategyID { return MomentumBreakthrough }

// ReversionDetail holds the deviation from the mean and the rsi of a reversion signal.
type ReversionDetail struct {
	Deviation float64 `json:"deviation"`
	RSI       float64 `json:"rsi"`
	Mean      float64 `json:"mean"`
}

// Strategy returns the strategy the detail belongs to.
func (ReversionDetail) Strategy() StrategyID { return MeanReversion }

// TrendDetail holds the trend strength behind a trend following signal.
type TrendDetail struct {
	ADX       float64 `json:"adx"`
	Histogram float64 `json:"histogram"`
	Strong    bool    `json:"strong"`
}

// Strategy returns the strategy the detail belongs to.
func (TrendDetail) Strategy() StrategyID { return TrendFollowing }

// BreakoutDetail holds the volatility expansion of a breakout signal.
type BreakoutDetail struct {
	VolatilityRatio float64 `json:"volatility_ratio"`
	VolumeRatio     float64 `json:"volume_ratio"`
	Band            float64 `json:"band"`
}

// Strategy returns the strategy the detail belongs to.
func (BreakoutDetail) Strategy() StrategyID { return VolatilityBreakout }

// WhaleDetail holds the large transaction flow behind a whale signal.
type WhaleDetail struct {
	NetFlow      float64 `json:"net_flow"`
	Accumulation float64 `json:"accumulation"`
	Transactions int     `json:"transactions"`
}

// Strategy returns the strategy the detail belongs to.
func (WhaleDetail) Strategy() StrategyID { return WhaleTracking }

// SentimentDetail holds the sentiment score and its change.
type SentimentDetail struct {
	Score        float64 `json:"score"`
	Delta        float64 `json:"delta"`
	BreakingNews bool    `json:"breaking_news"`
}

// Strategy returns the strategy the detail belongs to.
func (SentimentDetail) Strategy() StrategyID { return SentimentMomentum }

// PatternDetail holds the net pattern count and the patterns that confirmed it.
type PatternDetail struct {
	Net           int      `json:"net"`
	Strength      float64  `json:"strength"`
	Confirmations []string `json:"confirmations"`
}

// Strategy returns the strategy the detail belongs to.
func (PatternDetail) Strategy() StrategyID { return PatternRecognition }

// ArbitrageDetail holds the pair statistics the signal was derived from.
type ArbitrageDetail struct {
	Stats PairStatistics `json:"stats"`
}

// Strategy returns the strategy the detail belongs to.
func (ArbitrageDetail) Strategy() StrategyID { return StatisticalArbitrage }
