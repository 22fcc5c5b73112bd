package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics for the scoring pipeline. All
// observation methods are safe on a nil receiver so components can run
// without metrics in tests.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	ScorerCallDuration prometheus.Histogram
	ScorerAttemptFails prometheus.Counter
	FallbackEngaged    prometheus.Counter
	ReconcileModes     *prometheus.CounterVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reliscore_scoring_runs_total",
				Help: "Total number of scoring runs by terminal status.",
			},
			[]string{"status"},
		),
		RunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reliscore_scoring_run_duration_seconds",
				Help:    "End-to-end duration of scoring runs.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		ScorerCallDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reliscore_scorer_call_duration_seconds",
				Help:    "Duration of individual remote scorer calls.",
				Buckets: prometheus.DefBuckets,
			},
		),
		ScorerAttemptFails: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reliscore_scorer_attempt_failures_total",
				Help: "Total number of failed remote scoring attempts.",
			},
		),
		FallbackEngaged: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reliscore_scorer_fallback_total",
				Help: "Total number of batches scored by the heuristic fallback.",
			},
		),
		ReconcileModes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reliscore_reconcile_mode_total",
				Help: "Reconciliation outcomes by mode.",
			},
			[]string{"mode"},
		),
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// ObserveScorerCallDuration records one remote call's latency.
func (m *Metrics) ObserveScorerCallDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.ScorerCallDuration.Observe(duration.Seconds())
}

// ObserveScorerAttemptFailure counts a failed remote attempt.
func (m *Metrics) ObserveScorerAttemptFailure() {
	if m == nil {
		return
	}
	m.ScorerAttemptFails.Inc()
}

// ObserveFallbackEngaged counts a batch handed to the heuristic scorer.
func (m *Metrics) ObserveFallbackEngaged() {
	if m == nil {
		return
	}
	m.FallbackEngaged.Inc()
}

// ObserveReconcileMode counts the reconciliation outcome of a run.
func (m *Metrics) ObserveReconcileMode(mode string) {
	if m == nil {
		return
	}
	m.ReconcileModes.WithLabelValues(mode).Inc()
}
