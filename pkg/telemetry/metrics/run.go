package metrics

import (
	"time"

	"mercator-hq/warden/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks audit runs.
//
// Metrics:
//   - warden_audit_runs_total: Audit runs by audit kind and outcome
//   - warden_audit_run_duration_seconds: Audit run duration
//   - warden_audit_last_run_timestamp_seconds: Unix time of the last run by audit kind
type RunMetrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	lastRun     *prometheus.GaugeVec
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "runs_total",
				Help:      "Total number of audit runs",
			},
			[]string{"audit", "outcome"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "run_duration_seconds",
				Help:      "Duration of audit runs in seconds",
				// Audits read local files: 1ms to ~16s
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"audit"},
		),

		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last audit run",
			},
			[]string{"audit"},
		),
	}

	registry.MustRegister(rm.runsTotal, rm.runDuration, rm.lastRun)
	return rm
}

// Record records one audit run.
func (rm *RunMetrics) Record(audit, outcome string, duration time.Duration) {
	rm.runsTotal.WithLabelValues(audit, outcome).Inc()
	rm.runDuration.WithLabelValues(audit).Observe(duration.Seconds())
	rm.lastRun.WithLabelValues(audit).SetToCurrentTime()
}
