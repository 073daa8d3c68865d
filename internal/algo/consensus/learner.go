package consensus

import (
	"math"

	"github.com/drakos74/coin-ensemble/internal/history"
	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/rs/zerolog/log"
)

// LearnerConfig holds the parameters of the weight adaptation.
type LearnerConfig struct {
	MinHistory int
	Window     int
	Boost      float64
	Decay      float64
	Cap        float64
	Floor      float64
	High       float64
	Low        float64
}

// DefaultLearnerConfig returns the default adaptation parameters.
func DefaultLearnerConfig() LearnerConfig {
	return LearnerConfig{
		MinHistory: 50,
		Window:     20,
		Boost:      1.05,
		Decay:      0.95,
		Cap:        0.25,
		Floor:      0.05,
		High:       0.6,
		Low:        0.3,
	}
}

// History is the performance log the learner reads from.
type History interface {
	Len() int
	Last(n int) []history.Record
}

// Learner slowly shifts weight towards the strategies that perform well.
type Learner struct {
	cfg LearnerConfig
}

// NewLearner creates a new weight learner.
func NewLearner(cfg LearnerConfig) *Learner {
	return &Learner{cfg: cfg}
}

// Quality scores each strategy over the given records.
// Realised outcomes are used when any has been attributed to the strategy,
// otherwise the mean signal confidence is the proxy.
func Quality(records []history.Record) map[model.StrategyID]float64 {
	type score struct {
		n          int
		confidence float64
		attributed int
		wins       int
	}
	scores := make(map[model.StrategyID]*score)
	for _, r := range records {
		s, ok := scores[r.Signal.Strategy]
		if !ok {
			s = new(score)
			scores[r.Signal.Strategy] = s
		}
		s.n++
		s.confidence += r.Signal.Confidence
		if r.Attributed {
			s.attributed++
			if r.Outcome > 0 {
				s.wins++
			}
		}
	}
	quality := make(map[model.StrategyID]float64, len(scores))
	for id, s := range scores {
		if s.attributed > 0 {
			quality[id] = float64(s.wins) / float64(s.attributed)
		} else {
			quality[id] = s.confidence / float64(s.n)
		}
	}
	return quality
}

// Adapt returns the adjusted weights.
// It returns false if the history is too short for an adaptation pass.
func (l *Learner) Adapt(h History, w Weights) (Weights, bool) {
	if h.Len() < l.cfg.MinHistory {
		return w, false
	}
	quality := Quality(h.Last(l.cfg.Window))

	adjusted := w.adjust(func(id model.StrategyID, v float64) float64 {
		q, ok := quality[id]
		if !ok {
			return v
		}
		switch {
		case q > l.cfg.High:
			// a boost never lowers a weight already above the cap
			return math.Max(v, math.Min(v*l.cfg.Boost, l.cfg.Cap))
		case q < l.cfg.Low:
			return math.Min(v, math.Max(v*l.cfg.Decay, l.cfg.Floor))
		}
		return v
	})

	normalized, err := adjusted.Normalize()
	if err != nil {
		log.Error().Err(err).Msg("could not normalize weights")
		return w, false
	}

	e := log.Info().Int("history", h.Len())
	for _, id := range w.IDs() {
		if q, ok := quality[id]; ok {
			e = e.Float64(string(id), q)
		}
	}
	e.Msg("adapted weights")
	return normalized, true
}
