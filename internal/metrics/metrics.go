package metrics

import (
	"sync"

	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

var Observer = NewMetrics()

func init() {
	prometheus.MustRegister(Observer.prometheus.Collectors()...)
}

// Metrics records the engine activity.
type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
}

// NewMetrics creates a new unregistered metrics observer.
func NewMetrics() *Metrics {
	return &Metrics{
		mutex:      new(sync.RWMutex),
		prometheus: NewPrometheusMetrics(),
	}
}

// Decision records the decision and the signals it was based on.
func (m *Metrics) Decision(decision model.Decision, signals []model.Signal) {
	m.prometheus.Decisions.WithLabelValues(decision.Action.String(), decision.Regime.String()).Inc()
	if decision.Action != model.Hold {
		m.prometheus.Confidence.Observe(decision.Confidence)
	}
	for _, s := range signals {
		m.prometheus.Signals.WithLabelValues(string(s.Strategy), s.Action.String()).Inc()
	}
}

// Weights sets the current strategy weights.
func (m *Metrics) Weights(weights map[model.StrategyID]float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.prometheus.Weights.Reset()
	for id, w := range weights {
		m.prometheus.Weights.WithLabelValues(string(id)).Set(w)
	}
}
