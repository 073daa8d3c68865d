package model

import "time"

// Decision is the ensemble output for one cycle.
type Decision struct {
	ID           string             `json:"id"`
	Symbol       Coin               `json:"symbol"`
	Time         time.Time          `json:"time"`
	Action       Action             `json:"action"`
	Confidence   float64            `json:"confidence"`
	Consensus    float64            `json:"consensus"`
	Strategies   []StrategyID       `json:"strategies"`
	Totals       map[Action]float64 `json:"totals"`
	Size         float64            `json:"size"`
	Entry        float64            `json:"entry"`
	Target       float64            `json:"target"`
	Stop         float64            `json:"stop"`
	StopDistance float64            `json:"stop_distance"`
	Regime       Regime             `json:"regime"`
	Urgency      Urgency            `json:"urgency"`
	Rationale    string             `json:"rationale"`
}

// HoldDecision creates a non-committal decision with the given rationale.
func HoldDecision(mc MarketContext, regime Regime, rationale string) Decision {
	return Decision{
		Symbol: mc.Symbol,
		Time:   mc.Time,
		Action: Hold,
		Totals: map[Action]float64{
			Hold: 0,
			Buy:  0,
			Sell: 0,
		},
		Entry:     mc.Price,
		Regime:    regime,
		Rationale: rationale,
	}
}
