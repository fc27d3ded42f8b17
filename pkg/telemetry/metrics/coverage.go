package metrics

import (
	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CoverageMetrics tracks the most recent rule coverage audit.
//
// Metrics:
//   - warden_coverage_rules: Rules by coverage classification
//   - warden_coverage_agents: Agents in the known agent set
//   - warden_coverage_recommendations: Recommendations by severity
type CoverageMetrics struct {
	rules           *prometheus.GaugeVec
	agents          prometheus.Gauge
	recommendations *prometheus.GaugeVec
}

// NewCoverageMetrics creates and registers coverage metrics with the provided registry.
func NewCoverageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CoverageMetrics {
	cm := &CoverageMetrics{
		rules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "coverage",
				Name:      "rules",
				Help:      "Number of rules by coverage classification in the last audit",
			},
			[]string{"coverage"},
		),

		agents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "coverage",
				Name:      "agents",
				Help:      "Number of known agents in the last audit",
			},
		),

		recommendations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "coverage",
				Name:      "recommendations",
				Help:      "Number of recommendations by severity in the last audit",
			},
			[]string{"severity"},
		),
	}

	registry.MustRegister(cm.rules, cm.agents, cm.recommendations)
	return cm
}

// Record sets the gauges from a coverage report.
func (cm *CoverageMetrics) Record(r *coverage.Report) {
	cm.rules.WithLabelValues(string(coverage.Universal)).Set(float64(r.Summary.UniversalRules))
	cm.rules.WithLabelValues(string(coverage.Partial)).Set(float64(r.Summary.PartialCoverageRules))
	cm.rules.WithLabelValues(string(coverage.None)).Set(float64(r.Summary.NoCoverageRules))
	cm.rules.WithLabelValues(string(coverage.Error)).Set(float64(r.Summary.ErrorRules))
	cm.agents.Set(float64(r.TotalAgents))

	counts := map[coverage.Severity]int{
		coverage.SeverityCritical: 0,
		coverage.SeverityWarning:  0,
		coverage.SeverityError:    0,
	}
	for _, rec := range r.Recommendations {
		counts[rec.Severity]++
	}
	for severity, n := range counts {
		cm.recommendations.WithLabelValues(string(severity)).Set(float64(n))
	}
}
