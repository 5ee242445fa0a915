package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for calibrate_runs_total.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the calibration pipeline collectors
type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	LastScaleFactor prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calibrate_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "calibrate_run_duration_seconds",
			Help:    "Wall time of one pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		LastScaleFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "calibrate_last_scale_factor",
			Help: "Scale factor derived by the most recent successful detection",
		}),
	}

	m.registry.MustRegister(m.Runs, m.RunDuration, m.LastScaleFactor)
	for _, o := range []string{OutcomeFound, OutcomeNotFound, OutcomeError} {
		m.Runs.WithLabelValues(o)
	}
	return m
}

// Observe records one run. scale is ignored unless outcome is OutcomeFound.
// A nil receiver is a no-op so callers can run without metrics.
func (m *Metrics) Observe(outcome string, elapsed time.Duration, scale float64) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeFound {
		m.LastScaleFactor.Set(scale)
	}
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
