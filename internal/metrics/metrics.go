// Package metrics exports expansion activity to Prometheus.
package metrics

import (
	"time"

	"github.com/meikuraledutech/canvas"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the expansion collectors.
type Metrics struct {
	Dispatched *prometheus.CounterVec
	Settled    *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_expansions_dispatched_total",
				Help: "Generation calls started, by kind",
			},
			[]string{"kind"},
		),
		Settled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_expansions_settled_total",
				Help: "Generation calls settled, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canvas_expansion_duration_seconds",
				Help:    "Time from dispatch to settlement",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.Dispatched, m.Settled, m.Duration)
	return m
}

// Hooks binds the collectors to an Expander.
func (m *Metrics) Hooks() canvas.ExpansionHooks {
	return canvas.ExpansionHooks{
		OnDispatch: func(kind string) {
			m.Dispatched.WithLabelValues(kind).Inc()
		},
		OnSettle: func(kind, outcome string, elapsed time.Duration) {
			m.Settled.WithLabelValues(kind, outcome).Inc()
			m.Duration.WithLabelValues(kind).Observe(elapsed.Seconds())
		},
	}
}
