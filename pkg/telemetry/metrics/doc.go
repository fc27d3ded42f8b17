// Package metrics provides Prometheus metrics for Warden audits.
//
// # Metrics Categories
//
//   - Coverage Metrics: rules by coverage classification, known agents, recommendations
//   - Scan Metrics: corpus entries by disposition, violations, violations per agent
//   - Enforcement Metrics: coverage percent and rules by status
//   - Run Metrics: audit runs by outcome, run duration, last run time
//
// Gauges describe the most recent report of each kind. Counters and the
// duration histogram accumulate for the life of the process, which matters
// for "warden watch" and "warden schedule".
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordCoverage(report)
//	collector.RecordRun("coverage", metrics.OutcomeFindings, elapsed)
//	if err := collector.WriteTextfile(); err != nil {
//		logger.Warn("metrics not written", "error", err)
//	}
//
// # Textfile Export
//
// Warden does not listen on a port. Metrics are written after each audit to
// a file in the Prometheus text format, for node_exporter's textfile
// collector:
//
//	# HELP warden_enforcement_coverage_percent Percentage of rules with enforced status in the last aggregation
//	# TYPE warden_enforcement_coverage_percent gauge
//	warden_enforcement_coverage_percent 60
//
// # Cardinality Management
//
// Agent names are the only unbounded label. Past 200 distinct corpus and
// agent pairs, further agents are aggregated into "other".
package metrics
