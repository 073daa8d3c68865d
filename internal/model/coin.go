package model

import (
	"fmt"
	"strings"
)

// Coin defines a custom asset identifier.
type Coin string

const (
	// NoCoin is a undefined coin
	NoCoin Coin = ""
	// BTC represents bitcoin
	BTC Coin = "BTC"
	// ETH represents the ethereum token
	ETH Coin = "ETH"
	// SOL represents the solana token
	SOL Coin = "SOL"
	// DOT represents the dot
	DOT Coin = "DOT"
	// LINK represents link
	LINK Coin = "LINK"
)

// Action defines the direction of a signal or decision.
type Action byte

const (
	// Hold means no directional commitment.
	Hold Action = iota
	// Buy defines a long bias.
	Buy
	// Sell defines a short bias.
	Sell
)

// Actions lists all actions in a stable order.
var Actions = []Action{Hold, Buy, Sell}

// SignedAction returns the action based on the given sign.
func SignedAction(v float64) Action {
	if v > 0 {
		return Buy
	} else if v < 0 {
		return Sell
	}
	return Hold
}

// Sign returns the appropriate sign for the given action for mathematical operations.
func (a Action) Sign() float64 {
	switch a {
	case Buy:
		return 1.0
	case Sell:
		return -1.0
	}
	return 0.0
}

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return "HOLD"
}

// MarshalText encodes the action as its name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the action name.
func (a *Action) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "BUY":
		*a = Buy
	case "SELL":
		*a = Sell
	case "HOLD", "":
		*a = Hold
	default:
		return fmt.Errorf("unknown action '%s'", string(b))
	}
	return nil
}
