package metrics

import (
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics tracks the most recent violation scan of each corpus.
//
// Metrics:
//   - warden_scan_entries: Entries by corpus and disposition (scanned, skipped_time, skipped_exempt, malformed)
//   - warden_scan_violations: Violations by corpus
//   - warden_scan_violations_by_agent: Violations by corpus and agent
type ScanMetrics struct {
	entries           *prometheus.GaugeVec
	violations        *prometheus.GaugeVec
	violationsByAgent *prometheus.GaugeVec
}

// NewScanMetrics creates and registers scan metrics with the provided registry.
func NewScanMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ScanMetrics {
	sm := &ScanMetrics{
		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "scan",
				Name:      "entries",
				Help:      "Number of corpus entries by disposition in the last scan",
			},
			[]string{"corpus", "disposition"},
		),

		violations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "scan",
				Name:      "violations",
				Help:      "Number of violations in the last scan",
			},
			[]string{"corpus"},
		),

		violationsByAgent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "scan",
				Name:      "violations_by_agent",
				Help:      "Number of violations by agent in the last scan",
			},
			[]string{"corpus", "agent"},
		),
	}

	registry.MustRegister(sm.entries, sm.violations, sm.violationsByAgent)
	return sm
}

// Record sets the corpus gauges from a violation report.
func (sm *ScanMetrics) Record(r *scan.Report) {
	corpus := string(r.Corpus)
	sm.entries.WithLabelValues(corpus, "scanned").Set(float64(r.TotalScanned))
	sm.entries.WithLabelValues(corpus, "skipped_time").Set(float64(r.SkippedByTime))
	sm.entries.WithLabelValues(corpus, "skipped_exempt").Set(float64(r.SkippedExempt))
	sm.entries.WithLabelValues(corpus, "malformed").Set(float64(len(r.Malformed)))
	sm.violations.WithLabelValues(corpus).Set(float64(r.ViolationCount))
}
