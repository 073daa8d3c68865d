package strategy

import (
	"fmt"
	"math"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	volatilityExpansion = 1.5
	breakoutVolume      = 1.5
)

// Breakout trades the price escaping the bollinger bands during a volatility expansion.
type Breakout struct{}

// ID returns the breakout strategy id.
func (Breakout) ID() model.StrategyID {
	return model.VolatilityBreakout
}

// Evaluate emits a signal when the price leaves the bands on expanding volatility and volume.
func (Breakout) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	mc := snapshot.Context
	bands := mc.Indicators.Bollinger
	vr := mc.Indicators.VolatilityRatio
	volume := mc.Volume.Ratio()
	width := bands.Upper - bands.Lower
	if width <= 0 || vr <= volatilityExpansion || volume <= breakoutVolume {
		return model.Signal{}, false
	}

	var action model.Action
	var band float64
	switch {
	case mc.Price > bands.Upper:
		action = model.Buy
		band = (mc.Price - bands.Upper) / width
	case mc.Price < bands.Lower:
		action = model.Sell
		band = (bands.Lower - mc.Price) / width
	default:
		return model.Signal{}, false
	}

	confidence := math.Min(0.5+(vr-volatilityExpansion)*0.2+(volume-breakoutVolume)*0.1, 0.9)
	signal := newSignal(model.VolatilityBreakout, mc, action, confidence, 0.5+band)
	signal.Timeframe = "1h"
	signal.Target = mc.Price + action.Sign()*width
	signal.Stop = bands.Middle
	signal.Rationale = fmt.Sprintf("%s breakout with volatility x%s and volume x%s", action, coinmath.Format(vr), coinmath.Format(volume))
	signal.Detail = model.BreakoutDetail{
		VolatilityRatio: vr,
		VolumeRatio:     volume,
		Band:            band,
	}
	return signal, true
}
