package model

import (
	"fmt"
	"strings"
)

// Regime is the coarse volatility/trend classification of the market.
type Regime byte

const (
	Neutral Regime = iota
	HighVolatility
	LowVolatility
	BullTrend
	BearTrend
)

func (r Regime) String() string {
	switch r {
	case HighVolatility:
		return "high_volatility"
	case LowVolatility:
		return "low_volatility"
	case BullTrend:
		return "bull_trend"
	case BearTrend:
		return "bear_trend"
	}
	return "neutral"
}

// MarshalText encodes the regime as its name.
func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses the regime name.
func (r *Regime) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "neutral", "":
		*r = Neutral
	case "high_volatility":
		*r = HighVolatility
	case "low_volatility":
		*r = LowVolatility
	case "bull_trend":
		*r = BullTrend
	case "bear_trend":
		*r = BearTrend
	default:
		return fmt.Errorf("unknown regime '%s'", string(b))
	}
	return nil
}

// Urgency defines how fast a decision should be acted upon.
type Urgency byte

const (
	Normal Urgency = iota
	High
)

func (u Urgency) String() string {
	if u == High {
		return "HIGH"
	}
	return "NORMAL"
}

// MarshalText encodes the urgency as its name.
func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText parses the urgency name.
func (u *Urgency) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "NORMAL", "":
		*u = Normal
	case "HIGH":
		*u = High
	default:
		return fmt.Errorf("unknown urgency '%s'", string(b))
	}
	return nil
}
