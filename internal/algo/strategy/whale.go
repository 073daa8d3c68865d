package strategy

import (
	"fmt"
	"math"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	netFlowThreshold = 0.3
	accumulating     = 0.6
	distributing     = 0.4
)

// Whale follows the net flow of large holders.
type Whale struct{}

// ID returns the whale strategy id.
func (Whale) ID() model.StrategyID {
	return model.WhaleTracking
}

// Evaluate emits a signal when the large holders clearly accumulate or distribute.
func (Whale) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	mc := snapshot.Context
	net := mc.Whale.NetFlow()
	acc := mc.Whale.Accumulation

	var action model.Action
	var conviction float64
	switch {
	case net > netFlowThreshold && acc > accumulating:
		action = model.Buy
		conviction = acc - accumulating
	case net < -netFlowThreshold && acc < distributing:
		action = model.Sell
		conviction = distributing - acc
	default:
		return model.Signal{}, false
	}

	confidence := math.Min(0.5+(math.Abs(net)-netFlowThreshold)+conviction*0.5, 0.9)
	signal := newSignal(model.WhaleTracking, mc, action, confidence, math.Abs(net))
	signal.Timeframe = "4h"
	signal.Rationale = fmt.Sprintf("whale net flow %s with accumulation %s over %d transactions",
		coinmath.Format(net), coinmath.Format(acc), mc.Whale.LargeTransactions)
	signal.Detail = model.WhaleDetail{
		NetFlow:      net,
		Accumulation: acc,
		Transactions: mc.Whale.LargeTransactions,
	}
	return signal, true
}
