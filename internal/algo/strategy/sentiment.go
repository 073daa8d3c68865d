package strategy

import (
	"fmt"
	"math"

	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

const (
	bullishSentiment = 0.65
	bearishSentiment = 0.35
	sentimentShift   = 0.05
	newsBonus        = 0.1
)

// Sentiment follows an improving or deteriorating market mood.
type Sentiment struct{}

// ID returns the sentiment strategy id.
func (Sentiment) ID() model.StrategyID {
	return model.SentimentMomentum
}

// Evaluate emits a signal when the sentiment score is clearly bullish or bearish.
func (Sentiment) Evaluate(snapshot model.Snapshot) (model.Signal, bool) {
	mc := snapshot.Context
	score := mc.Sentiment.Score
	delta := mc.Sentiment.Delta()

	var action model.Action
	var excess float64
	switch {
	case score > bullishSentiment && delta > sentimentShift:
		action = model.Buy
		excess = score - bullishSentiment
	case score < bearishSentiment && delta < -sentimentShift:
		action = model.Sell
		excess = bearishSentiment - score
	default:
		return model.Signal{}, false
	}

	confidence := 0.4 + excess*2 + math.Abs(delta)*2
	if mc.Sentiment.BreakingNews {
		confidence += newsBonus
	}
	signal := newSignal(model.SentimentMomentum, mc, action, math.Min(confidence, 0.9), math.Abs(delta)*5)
	signal.Timeframe = "1h"
	signal.Rationale = fmt.Sprintf("sentiment %s moving %s", coinmath.Format(score), coinmath.Format(delta))
	if mc.Sentiment.BreakingNews {
		signal.Rationale += " on breaking news"
	}
	signal.Detail = model.SentimentDetail{
		Score:        score,
		Delta:        delta,
		BreakingNews: mc.Sentiment.BreakingNews,
	}
	return signal, true
}
