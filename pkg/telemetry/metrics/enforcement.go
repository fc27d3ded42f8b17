package metrics

import (
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/policy"

	"github.com/prometheus/client_golang/prometheus"
)

// EnforcementMetrics tracks the most recent enforcement status aggregation.
//
// Metrics:
//   - warden_enforcement_coverage_percent: Percentage of rules enforced
//   - warden_enforcement_rules: Rules by enforcement status
type EnforcementMetrics struct {
	coveragePercent prometheus.Gauge
	rules           *prometheus.GaugeVec
}

// NewEnforcementMetrics creates and registers enforcement metrics with the provided registry.
func NewEnforcementMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EnforcementMetrics {
	em := &EnforcementMetrics{
		coveragePercent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "enforcement",
				Name:      "coverage_percent",
				Help:      "Percentage of rules with enforced status in the last aggregation",
			},
		),

		rules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "enforcement",
				Name:      "rules",
				Help:      "Number of rules by enforcement status in the last aggregation",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(em.coveragePercent, em.rules)
	return em
}

// Record sets the gauges from an enforcement report.
func (em *EnforcementMetrics) Record(r *enforcement.Report) {
	em.coveragePercent.Set(r.CoveragePercent)
	for _, status := range []policy.Status{
		policy.StatusEnforced, policy.StatusPending, policy.StatusPartial,
		policy.StatusWarning, policy.StatusGap, policy.StatusUnknown,
	} {
		em.rules.WithLabelValues(string(status)).Set(float64(r.Count(status)))
	}
}
