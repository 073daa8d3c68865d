package model

import "time"

// CurrentPrice is the price of a coin within a market context.
type CurrentPrice struct {
	Coin  Coin    `json:"coin"`
	Price float64 `json:"price"`
}

// Price is a sample of a price history.
type Price struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// PriceAt creates a price sample at the given time.
func PriceAt(t time.Time, v float64) Price {
	return Price{Value: v, Time: t}
}
