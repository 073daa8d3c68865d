package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/drakos74/coin-ensemble/internal/api"
	"github.com/drakos74/coin-ensemble/internal/emoji"
	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Config defines when the hook stops calling a failing observer.
type Config struct {
	Failures uint32
	Timeout  time.Duration
}

// DefaultConfig returns the default breaker settings.
func DefaultConfig() Config {
	return Config{
		Failures: 5,
		Timeout:  30 * time.Second,
	}
}

// Hook calls the observer behind a circuit breaker.
// Observer failures and panics are logged and returned, they never reach the decision path.
type Hook struct {
	name     string
	observer api.Observer
	cb       *gobreaker.CircuitBreaker
}

// NewHook wraps the observer.
func NewHook(name string, observer api.Observer, cfg Config) *Hook {
	st := gobreaker.Settings{Name: name}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= cfg.Failures
	}
	st.Timeout = cfg.Timeout
	st.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
		log.Warn().Str("hook", name).Str("from", from.String()).Str("to", to.String()).Msg("observer state changed")
	}
	return &Hook{
		name:     name,
		observer: observer,
		cb:       gobreaker.NewCircuitBreaker(st),
	}
}

// Notify passes the decision to the observer.
func (h *Hook) Notify(decision model.Decision, signals []model.Signal) error {
	_, err := h.cb.Execute(func() (out interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("observer panic: %v", r)
			}
		}()
		return nil, h.observer(decision, signals)
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("hook", h.name).
			Str("decision", decision.ID).
			Str("state", h.cb.State().String()).
			Msg("could not notify observer")
	}
	return err
}

// Log is an observer that logs every decision.
func Log() api.Observer {
	return func(decision model.Decision, signals []model.Signal) error {
		log.Info().
			Str("id", decision.ID).
			Str("symbol", string(decision.Symbol)).
			Time("time", decision.Time).
			Str("action", decision.Action.String()).
			Float64("confidence", decision.Confidence).
			Float64("consensus", decision.Consensus).
			Float64("size", decision.Size).
			Str("regime", decision.Regime.String()).
			Str("urgency", decision.Urgency.String()).
			Str("signals", emoji.Signals(signals)).
			Str("rationale", decision.Rationale).
			Str("summary", emoji.Decision(decision)).
			Msg("decision")
		return nil
	}
}

// Chain calls all observers in order and returns the first error.
// A failing observer does not prevent the rest from being called.
func Chain(observers ...api.Observer) api.Observer {
	return func(decision model.Decision, signals []model.Signal) error {
		var first error
		for _, o := range observers {
			if err := o(decision, signals); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
}

// JSON writes every decision as a json line.
func JSON(w io.Writer) api.Observer {
	enc := json.NewEncoder(w)
	return func(decision model.Decision, signals []model.Signal) error {
		if err := enc.Encode(decision); err != nil {
			return fmt.Errorf("could not encode decision '%s': %w", decision.ID, err)
		}
		return nil
	}
}
