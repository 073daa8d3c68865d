package strategy

import (
	"fmt"
	"math"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	trendADX  = 25.0
	strongADX = 40.0
)

// Trend joins an established trend when the moving averages, the ADX and the MACD agree.
type Trend struct{}

// ID returns the trend strategy id.
func (Trend) ID() model.StrategyID {
	return model.TrendFollowing
}

// Evaluate emits a signal when the ADX is strong and the moving averages line up with the MACD.
func (Trend) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	mc := snapshot.Context
	sma := mc.Indicators.SMA
	macd := mc.Indicators.MACD
	adx := mc.Indicators.ADX
	if adx <= trendADX {
		return model.Signal{}, false
	}

	var action model.Action
	switch {
	case sma.Fast > sma.Slow && sma.Slow > sma.Long && macd.Line > macd.Signal && macd.Histogram > 0:
		action = model.Buy
	case sma.Fast < sma.Slow && sma.Slow < sma.Long && macd.Line < macd.Signal && macd.Histogram < 0:
		action = model.Sell
	default:
		return model.Signal{}, false
	}

	strong := adx > strongADX
	strength := (adx - trendADX) / 30
	timeframe := "1h"
	if strong {
		strength *= 1.5
		timeframe = "4h"
	}

	confidence := math.Min(0.5+(adx-trendADX)/100, 0.9)
	signal := newSignal(model.TrendFollowing, mc, action, confidence, strength)
	signal.Timeframe = timeframe
	a := atr(mc)
	signal.Target = mc.Price + action.Sign()*3*a
	signal.Stop = mc.Price - action.Sign()*1.5*a
	signal.Rationale = fmt.Sprintf("%s trend with adx %s", action, coinmath.Format(adx))
	signal.Detail = model.TrendDetail{
		ADX:       adx,
		Histogram: macd.Histogram,
		Strong:    strong,
	}
	return signal, true
}
