package metrics

import (
	"fmt"
	"sync"
	"time"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded by RecordRun.
const (
	OutcomeClean    = "clean"
	OutcomeFindings = "findings"
	OutcomeError    = "error"
)

// maxAgentLabels bounds the number of distinct agent label values.
const maxAgentLabels = 200

// Collector owns the audit metrics and the registry they are registered in.
// Gauges describe the most recent report of each kind; counters and the
// duration histogram accumulate over the life of the process.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	coverageMetrics    *CoverageMetrics
	scanMetrics        *ScanMetrics
	enforcementMetrics *EnforcementMetrics
	runMetrics         *RunMetrics

	// Cardinality tracking for the per-agent violation gauge
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:      true,
//		Namespace:    "warden",
//		TextfilePath: "data/warden.prom",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		coverageMetrics:    NewCoverageMetrics(cfg, registry),
		scanMetrics:        NewScanMetrics(cfg, registry),
		enforcementMetrics: NewEnforcementMetrics(cfg, registry),
		runMetrics:         NewRunMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxAgentLabels),
	}
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordCoverage records the gauges of a coverage report.
// A failed report records nothing.
func (c *Collector) RecordCoverage(r *coverage.Report) {
	if !c.Enabled() || r == nil || r.Error != nil {
		return
	}

	c.coverageMetrics.Record(r)
}

// RecordScan records the gauges of a violation report.
// A failed report records nothing.
func (c *Collector) RecordScan(r *scan.Report) {
	if !c.Enabled() || r == nil || r.Error != nil {
		return
	}

	corpus := string(r.Corpus)
	c.scanMetrics.Record(r)

	// Per-agent violations, aggregated into "other" past the label limit
	c.scanMetrics.violationsByAgent.DeletePartialMatch(prometheus.Labels{"corpus": corpus})
	counts := make(map[string]int)
	for _, v := range r.Violations {
		agent := v.Agent
		if agent == "" {
			agent = "unknown"
		}
		if !c.cardinalityLimiter.Allow(fmt.Sprintf("%s:%s", corpus, agent)) {
			agent = "other"
		}
		counts[agent]++
	}
	for agent, n := range counts {
		c.scanMetrics.violationsByAgent.WithLabelValues(corpus, agent).Set(float64(n))
	}
}

// RecordEnforcement records the gauges of an enforcement report.
// A failed report records nothing.
func (c *Collector) RecordEnforcement(r *enforcement.Report) {
	if !c.Enabled() || r == nil || r.Error != nil {
		return
	}

	c.enforcementMetrics.Record(r)
}

// RecordRun records a completed audit run.
//
// Parameters:
//   - audit: audit kind ("coverage", "logs", "imports", "enforcement")
//   - outcome: OutcomeClean, OutcomeFindings or OutcomeError
//   - duration: wall time of the run
func (c *Collector) RecordRun(audit, outcome string, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	c.runMetrics.Record(audit, outcome, duration)
}

// WriteTextfile writes every registered metric to the configured textfile
// in the Prometheus text format, for collection by node_exporter's
// textfile collector. The file is replaced atomically.
func (c *Collector) WriteTextfile() error {
	if !c.Enabled() {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.config.TextfilePath, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %q: %w", c.config.TextfilePath, err)
	}
	return nil
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
