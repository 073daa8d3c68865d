package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "ensemble"

// Prometheus holds the collectors of the ensemble.
type Prometheus struct {
	Decisions  *prometheus.CounterVec
	Signals    *prometheus.CounterVec
	Weights    *prometheus.GaugeVec
	Confidence prometheus.Histogram
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions",
			}, []string{"action", "regime"}),
		Signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signals",
			}, []string{"strategy", "action"}),
		Weights: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "weights",
			}, []string{"strategy"}),
		Confidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decision_confidence",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			}),
	}
}

// Collectors returns all collectors for registration.
func (p Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.Decisions, p.Signals, p.Weights, p.Confidence}
}
