package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/history"
	"mercator-hq/warden/pkg/policy"
	"mercator-hq/warden/pkg/policy/store"
	"mercator-hq/warden/pkg/telemetry/logging"
	"mercator-hq/warden/pkg/telemetry/metrics"
	"mercator-hq/warden/pkg/telemetry/tracing"
)

// Triggers recorded with each run.
const (
	TriggerCLI      = "cli"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
)

// Runner wires configuration to the analyzers and records every completed
// report in metrics, traces and history. The analyzers stay pure; all side
// effects happen here after a report is built.
type Runner struct {
	config     *config.Config
	loader     *store.Loader
	analyzer   *coverage.Analyzer
	scanner    *scan.Scanner
	aggregator *enforcement.Aggregator

	metrics *metrics.Collector
	tracer  *tracing.Tracer
	history history.Storage
	logger  *slog.Logger

	newID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics records each run in the collector and rewrites its textfile.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runner) { r.metrics = c }
}

// WithTracer wraps each run in a span.
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithHistory stores a summary of each run.
func WithHistory(s history.Storage) Option {
	return func(r *Runner) { r.history = s }
}

// NewRunner builds the analyzers from cfg.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	scanCfg, err := ScanConfig(&cfg.Scan)
	if err != nil {
		return nil, err
	}

	loaderCfg := store.DefaultLoaderConfig()
	loaderCfg.MaxFileSize = cfg.Policy.MaxFileSize
	loaderCfg.Workers = cfg.Policy.Workers
	if cfg.Policy.DefaultAgent != "" {
		loaderCfg.DefaultAgent = cfg.Policy.DefaultAgent
	}

	r := &Runner{
		config:     cfg,
		loader:     store.NewLoader(loaderCfg, logger),
		analyzer:   coverage.NewAnalyzer(cfg.Policy.CriticalRules, logger),
		scanner:    scan.NewScanner(scanCfg, logger),
		aggregator: enforcement.NewAggregator(logger),
		logger:     logger.With("component", "audit.runner"),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// ScanConfig converts scan configuration into a scanner configuration.
// Unset banned lists and exemptions keep the built-in defaults.
func ScanConfig(cfg *config.ScanConfig) (*scan.Config, error) {
	out := &scan.Config{
		DelegationTool: cfg.DelegationTool,
		ContextLimit:   cfg.ContextLimit,
	}
	if cfg.BannedSubagents != nil {
		out.BannedSubagents = scan.NewBannedSet(cfg.BannedSubagents...)
	}
	if cfg.BannedLibraries != nil {
		out.BannedLibraries = scan.NewBannedSet(cfg.BannedLibraries...)
	}

	patterns := cfg.Exemptions
	if patterns == nil {
		patterns = scan.DefaultExemptions
	}
	exemptions, err := scan.NewExemptionSet(patterns...)
	if err != nil {
		return nil, err
	}
	out.Exemptions = exemptions

	return out, nil
}

// Config returns the configuration the runner was built from.
func (r *Runner) Config() *config.Config {
	return r.config
}

// Coverage loads the policy store and analyzes rule coverage.
func (r *Runner) Coverage(ctx context.Context) *coverage.Report {
	ctx, run := r.begin(ctx, config.AuditCoverage)

	snap := r.loader.Load(r.config.Policy.AgentsDir, r.config.Policy.RulesDir)
	report := r.analyzer.Analyze(run.id, snap)

	run.span.SetAttributes(tracing.CoverageAttributes(report)...)
	r.metrics.RecordCoverage(report)

	outcome := Outcome(report)
	r.finish(ctx, run, report, summary{
		target:   r.config.Policy.RulesDir,
		outcome:  outcome,
		total:    report.TotalRules,
		findings: criticalFindings(report),
		err:      report.Error,
	})
	return report
}

// ScanLogs scans the execution log corpus for banned delegations.
func (r *Runner) ScanLogs(ctx context.Context, since *time.Time) *scan.Report {
	ctx, run := r.begin(ctx, config.AuditLogs)

	dir := r.config.Scan.LogsDir
	var report *scan.Report
	records, malformed, loadErr := scan.LoadLogCorpus(dir, r.config.Scan.Workers)
	if loadErr != nil {
		report = r.scanner.MissingTarget(run.id, scan.CorpusLogs, loadErr, since)
	} else {
		report = r.scanner.ScanLogs(run.id, dir, records, since)
		report.Malformed = append(report.Malformed, malformed...)
	}

	r.finishScan(ctx, run, report, dir)
	return report
}

// ScanImports scans source files for forbidden library imports.
func (r *Runner) ScanImports(ctx context.Context, since *time.Time) *scan.Report {
	ctx, run := r.begin(ctx, config.AuditImports)

	root := r.config.Scan.SourceDir
	var report *scan.Report
	files, unreadable, loadErr := scan.LoadSourceCorpus(root, r.config.Scan.SourceExtensions, r.config.Scan.Workers)
	if loadErr != nil {
		report = r.scanner.MissingTarget(run.id, scan.CorpusSources, loadErr, since)
	} else {
		report = r.scanner.ScanSources(run.id, root, files, since)
		report.Malformed = append(report.Malformed, unreadable...)
	}

	r.finishScan(ctx, run, report, root)
	return report
}

func (r *Runner) finishScan(ctx context.Context, run *runState, report *scan.Report, target string) {
	run.span.SetAttributes(tracing.ScanAttributes(report)...)
	r.metrics.RecordScan(report)

	r.finish(ctx, run, report, summary{
		target:   target,
		outcome:  Outcome(report),
		total:    report.TotalScanned,
		findings: report.ViolationCount,
		err:      report.Error,
	})
}

// Enforcement reads the status document and aggregates enforcement coverage.
func (r *Runner) Enforcement(ctx context.Context) *enforcement.Report {
	ctx, run := r.begin(ctx, config.AuditEnforcement)

	path := r.config.Enforcement.StatusFile
	var report *enforcement.Report
	doc, loadErr := enforcement.LoadDocument(path)
	if loadErr != nil {
		report = r.aggregator.Failed(run.id, loadErr)
	} else {
		report = r.aggregator.Aggregate(run.id, path, doc)
	}

	run.span.SetAttributes(tracing.EnforcementAttributes(report)...)
	r.metrics.RecordEnforcement(report)

	r.finish(ctx, run, report, summary{
		target:   path,
		outcome:  Outcome(report),
		total:    report.TotalRules,
		findings: len(report.Gaps),
		percent:  report.CoveragePercent,
		err:      report.Error,
	})
	return report
}

// Result pairs an audit name with its report.
type Result struct {
	Audit   string `json:"audit"`
	Report  any    `json:"report"`
	Outcome string `json:"outcome"`
}

// Run executes the named audit. since applies to the scans only.
func (r *Runner) Run(ctx context.Context, audit string, since *time.Time) (Result, error) {
	var report any
	switch audit {
	case config.AuditCoverage:
		report = r.Coverage(ctx)
	case config.AuditLogs:
		report = r.ScanLogs(ctx, since)
	case config.AuditImports:
		report = r.ScanImports(ctx, since)
	case config.AuditEnforcement:
		report = r.Enforcement(ctx)
	default:
		return Result{}, fmt.Errorf("unknown audit %q", audit)
	}
	return Result{Audit: audit, Report: report, Outcome: Outcome(report)}, nil
}

// All runs the named audits in order, or every audit when audits is empty.
// It stops early only when ctx is cancelled.
func (r *Runner) All(ctx context.Context, audits []string, since *time.Time) ([]Result, error) {
	if len(audits) == 0 {
		audits = config.AllAudits
	}

	results := make([]Result, 0, len(audits))
	for _, name := range audits {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Run(ctx, name, since)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

type runState struct {
	id      string
	audit   string
	trigger string
	start   time.Time
	span    trace.Span
}

type summary struct {
	target   string
	outcome  string
	total    int
	findings int
	percent  float64
	err      *policy.ReportError
}

// begin assigns a run ID, threads it through the context for logging and
// starts the span.
func (r *Runner) begin(ctx context.Context, audit string) (context.Context, *runState) {
	trigger := logging.GetTrigger(ctx)
	if trigger == "" {
		trigger = TriggerCLI
		ctx = logging.WithTrigger(ctx, trigger)
	}

	run := &runState{
		id:      r.newID(),
		audit:   audit,
		trigger: trigger,
		start:   time.Now(),
	}

	ctx = logging.WithRunID(ctx, run.id)
	ctx = logging.WithAudit(ctx, audit)
	ctx, run.span = r.tracer.Start(ctx, "audit."+audit,
		trace.WithAttributes(tracing.RunAttributes(run.id, audit, trigger)...))

	r.logger.DebugContext(ctx, "audit started")
	return ctx, run
}

// finish records the run and ends its span.
func (r *Runner) finish(ctx context.Context, run *runState, report any, s summary) {
	defer run.span.End()

	duration := time.Since(run.start)

	run.span.SetAttributes(attribute.String(tracing.AttrOutcome, s.outcome))
	if s.err != nil {
		tracing.SetReportError(run.span, s.err)
	} else {
		tracing.SetStatus(run.span, nil)
	}

	r.metrics.RecordRun(run.audit, s.outcome, duration)
	if err := r.metrics.WriteTextfile(); err != nil {
		r.logger.WarnContext(ctx, "failed to write metrics textfile", "error", err)
	}

	if r.history != nil {
		r.record(ctx, run, report, s, duration)
	}

	attrs := []any{
		"outcome", s.outcome,
		"total", s.total,
		"findings", s.findings,
		"duration", duration,
	}
	if s.err != nil {
		r.logger.WarnContext(ctx, "audit could not run", append(attrs, "error", s.err)...)
		return
	}
	r.logger.InfoContext(ctx, "audit completed", attrs...)
}

func (r *Runner) record(ctx context.Context, run *runState, report any, s summary, duration time.Duration) {
	payload, err := json.Marshal(report)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to encode report for history", "error", err)
		payload = nil
	}

	rec := &history.Record{
		ID:              r.newID(),
		RunID:           run.id,
		Audit:           run.audit,
		Trigger:         run.trigger,
		Target:          s.target,
		StartedAt:       run.start.UTC(),
		Duration:        duration,
		Outcome:         s.outcome,
		Total:           s.total,
		Findings:        s.findings,
		CoveragePercent: s.percent,
		Report:          payload,
	}
	if s.err != nil {
		rec.Error = s.err.Error()
	}

	if err := r.history.Store(ctx, rec); err != nil {
		r.logger.WarnContext(ctx, "failed to record audit history", "error", err)
	}
}

func criticalFindings(r *coverage.Report) int {
	n := 0
	for _, rec := range r.Recommendations {
		if rec.Severity == coverage.SeverityCritical || rec.Severity == coverage.SeverityError {
			n++
		}
	}
	return n
}
