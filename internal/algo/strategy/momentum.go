package strategy

import (
	"fmt"
	"math"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	momentumThreshold = 0.02
	volumeSurge       = 2.0
	momentumBuyCap    = 0.95
	momentumSellCap   = 0.85
)

// Momentum follows strong multi-horizon price moves that come with a volume surge.
type Momentum struct{}

// ID returns the momentum strategy id.
func (Momentum) ID() model.StrategyID {
	return model.MomentumBreakthrough
}

// Evaluate emits a signal when the momentum and the volume ratio both exceed their thresholds.
func (Momentum) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	mc := snapshot.Context
	m := mc.Returns.Momentum()
	ratio := mc.Volume.Ratio()
	if ratio <= volumeSurge || math.Abs(m) <= momentumThreshold {
		return model.Signal{}, false
	}

	action := model.SignedAction(m)
	limit := momentumBuyCap
	if action == model.Sell {
		limit = momentumSellCap
	}
	confidence := math.Min(0.5+math.Abs(m)*5+(ratio-volumeSurge)*0.1, limit)

	signal := newSignal(model.MomentumBreakthrough, mc, action, confidence, math.Abs(m)*10)
	signal.Timeframe = "1h"
	signal.Target = mc.Price * (1 + action.Sign()*2*math.Abs(m))
	signal.Stop = mc.Price * (1 - action.Sign()*math.Abs(m))
	signal.Rationale = fmt.Sprintf("momentum %s with volume x%s", coinmath.Format(m), coinmath.Format(ratio))
	signal.Detail = model.MomentumDetail{
		Momentum:    m,
		VolumeRatio: ratio,
	}
	return signal, true
}
