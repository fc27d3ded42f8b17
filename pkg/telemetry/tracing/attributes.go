package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/policy"
)

// Attribute keys set on audit spans. Custom keys use the "warden.*" namespace.
const (
	// Run attributes
	AttrRunID   = "warden.run_id"
	AttrAudit   = "warden.audit"
	AttrTrigger = "warden.trigger"
	AttrOutcome = "warden.outcome"

	// Coverage attributes
	AttrRules           = "warden.coverage.rules"
	AttrAgents          = "warden.coverage.agents"
	AttrUniversal       = "warden.coverage.universal"
	AttrRecommendations = "warden.coverage.recommendations"

	// Scan attributes
	AttrCorpus     = "warden.scan.corpus"
	AttrTarget     = "warden.scan.target"
	AttrScanned    = "warden.scan.scanned"
	AttrViolations = "warden.scan.violations"
	AttrMalformed  = "warden.scan.malformed"

	// Enforcement attributes
	AttrEnforcementRules = "warden.enforcement.rules"
	AttrCoveragePercent  = "warden.enforcement.coverage_percent"
	AttrGaps             = "warden.enforcement.gaps"

	// Error attributes
	AttrErrorKind = "warden.error.kind"
	AttrErrorPath = "warden.error.path"
)

// RunAttributes returns the attributes identifying an audit run.
func RunAttributes(runID, audit, trigger string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrAudit, audit),
	}
	if trigger != "" {
		attrs = append(attrs, attribute.String(AttrTrigger, trigger))
	}
	return attrs
}

// CoverageAttributes returns the summary attributes of a coverage report.
func CoverageAttributes(r *coverage.Report) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrRules, r.TotalRules),
		attribute.Int(AttrAgents, r.TotalAgents),
		attribute.Int(AttrUniversal, r.Summary.UniversalRules),
		attribute.Int(AttrRecommendations, len(r.Recommendations)),
	}
}

// ScanAttributes returns the summary attributes of a violation report.
func ScanAttributes(r *scan.Report) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCorpus, string(r.Corpus)),
		attribute.String(AttrTarget, r.Target),
		attribute.Int(AttrScanned, r.TotalScanned),
		attribute.Int(AttrViolations, r.ViolationCount),
		attribute.Int(AttrMalformed, len(r.Malformed)),
	}
}

// EnforcementAttributes returns the summary attributes of an enforcement report.
func EnforcementAttributes(r *enforcement.Report) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrEnforcementRules, r.TotalRules),
		attribute.Float64(AttrCoveragePercent, r.CoveragePercent),
		attribute.Int(AttrGaps, len(r.Gaps)),
	}
}

// SetReportError marks the span as failed when a report carries an error.
// A nil error leaves the span unchanged.
func SetReportError(span trace.Span, err *policy.ReportError) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.String(AttrErrorKind, string(err.Kind)),
		attribute.String(AttrErrorPath, err.Path),
	)
	span.SetStatus(codes.Error, err.Error())
}
