package model

import (
	"sort"
	"time"
)

// Returns holds the price change over multiple horizons, as fractions.
type Returns struct {
	M5  float64 `json:"m5"`
	M15 float64 `json:"m15"`
	H1  float64 `json:"h1"`
}

// Momentum is the average of the multi-horizon returns.
func (r Returns) Momentum() float64 {
	return (r.M5 + r.M15 + r.H1) / 3
}

// Volume holds the traded volume against its recent average.
type Volume struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
}

// Ratio returns the current volume relative to the average.
// A missing average yields a neutral ratio of 1.
func (v Volume) Ratio() float64 {
	if v.Average <= 0 {
		return 1
	}
	return v.Current / v.Average
}

// MACD holds the moving average convergence divergence values.
type MACD struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Bands holds the bollinger bands.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// SMA holds simple moving averages over three horizons.
type SMA struct {
	Fast float64 `json:"fast"`
	Slow float64 `json:"slow"`
	Long float64 `json:"long"`
}

// Indicators are the technical indicators computed upstream.
type Indicators struct {
	RSI             float64 `json:"rsi"`
	ADX             float64 `json:"adx"`
	MACD            MACD    `json:"macd"`
	Bollinger       Bands   `json:"bollinger"`
	ATR             float64 `json:"atr"`
	SMA             SMA     `json:"sma"`
	VolatilityRatio float64 `json:"volatility_ratio"`
}

// Sentiment is the aggregate sentiment in [0,1], 0.5 being neutral.
type Sentiment struct {
	Score        float64 `json:"score"`
	Previous     float64 `json:"previous"`
	BreakingNews bool    `json:"breaking_news"`
}

// Delta is the first difference of the sentiment score.
func (s Sentiment) Delta() float64 {
	return s.Score - s.Previous
}

// Whale holds the large transaction flow metrics.
type Whale struct {
	Inflow            float64 `json:"inflow"`
	Outflow           float64 `json:"outflow"`
	LargeTransactions int     `json:"large_transactions"`
	Accumulation      float64 `json:"accumulation"`
}

// NetFlow returns the net flow normalised by the total flow, in [-1,1].
func (w Whale) NetFlow() float64 {
	total := w.Inflow + w.Outflow
	if total <= 0 {
		return 0
	}
	return (w.Inflow - w.Outflow) / total
}

// Patterns holds the chart pattern flags.
type Patterns struct {
	Bullish       int      `json:"bullish"`
	Bearish       int      `json:"bearish"`
	Strength      float64  `json:"strength"`
	Confirmations []string `json:"confirmations"`
	Support       float64  `json:"support"`
	Resistance    float64  `json:"resistance"`
}

// MarketContext is the market state for one decision cycle.
// It is owned by the caller and must not be mutated while a cycle is running.
type MarketContext struct {
	Symbol     Coin             `json:"symbol"`
	Pair       Coin             `json:"pair"`
	Time       time.Time        `json:"time"`
	Price      float64          `json:"price"`
	Prices     map[Coin]float64 `json:"prices"`
	Returns    Returns          `json:"returns"`
	Volume     Volume           `json:"volume"`
	Indicators Indicators       `json:"indicators"`
	Sentiment  Sentiment        `json:"sentiment"`
	Whale      Whale            `json:"whale"`
	Patterns   Patterns         `json:"patterns"`
}

// CurrentPrices returns the prices to ingest for this cycle,
// including the symbol price when it is not part of the price map.
func (mc MarketContext) CurrentPrices() []CurrentPrice {
	prices := make([]CurrentPrice, 0, len(mc.Prices)+1)
	if _, ok := mc.Prices[mc.Symbol]; !ok && mc.Symbol != NoCoin && mc.Price > 0 {
		prices = append(prices, CurrentPrice{Coin: mc.Symbol, Price: mc.Price})
	}
	for c, p := range mc.Prices {
		prices = append(prices, CurrentPrice{Coin: c, Price: p})
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Coin < prices[j].Coin
	})
	return prices
}

// Snapshot is the read-only input shared by all strategies within a cycle.
type Snapshot struct {
	Context MarketContext
	Pairs   []PairStatistics
}
