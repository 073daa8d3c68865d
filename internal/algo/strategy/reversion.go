package strategy

import (
	"fmt"
	"math"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	minDeviation  = 0.02
	oversold      = 30.0
	overbought    = 70.0
	reversionStop = 0.03
)

// Reversion bets on the return of the price to the middle bollinger band
// once it is stretched beyond the outer bands with an extreme RSI.
type Reversion struct{}

// ID returns the reversion strategy id.
func (Reversion) ID() model.StrategyID {
	return model.MeanReversion
}

// Evaluate emits a signal when the price deviates from the middle band with an extreme RSI.
func (Reversion) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	mc := snapshot.Context
	bands := mc.Indicators.Bollinger
	rsi := mc.Indicators.RSI
	if bands.Middle <= 0 || mc.Price <= 0 {
		return model.Signal{}, false
	}
	deviation := math.Abs(mc.Price-bands.Middle) / bands.Middle
	if deviation < minDeviation {
		return model.Signal{}, false
	}

	var action model.Action
	var extreme float64
	switch {
	case mc.Price <= bands.Lower && rsi < oversold:
		action = model.Buy
		extreme = oversold - rsi
	case mc.Price >= bands.Upper && rsi > overbought:
		action = model.Sell
		extreme = rsi - overbought
	default:
		return model.Signal{}, false
	}

	confidence := math.Min(0.5+deviation*5+extreme/100, 0.9)
	signal := newSignal(model.MeanReversion, mc, action, confidence, deviation*10)
	signal.Timeframe = "4h"
	signal.Target = bands.Middle
	signal.Stop = mc.Price * (1 - action.Sign()*reversionStop)
	signal.Rationale = fmt.Sprintf("price %s%% off the mean with rsi %s", coinmath.Format(deviation*100), coinmath.Format(rsi))
	signal.Detail = model.ReversionDetail{
		Deviation: deviation,
		RSI:       rsi,
		Mean:      bands.Middle,
	}
	return signal, true
}
