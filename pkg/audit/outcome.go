package audit

import (
	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/history"
	"mercator-hq/warden/pkg/policy"
)

// Outcome classifies a report as history.OutcomeError when it carries a
// top-level error, history.OutcomeFindings when its gating query is true,
// and history.OutcomeClean otherwise.
func Outcome(report any) string {
	if ReportError(report) != nil {
		return history.OutcomeError
	}

	var findings bool
	switch r := report.(type) {
	case *coverage.Report:
		findings = r.HasCriticalFindings()
	case *scan.Report:
		findings = r.HasViolations()
	case *enforcement.Report:
		findings = r.HasGaps()
	}
	if findings {
		return history.OutcomeFindings
	}
	return history.OutcomeClean
}

// ReportError returns the top-level error carried by a report, if any.
func ReportError(report any) *policy.ReportError {
	switch r := report.(type) {
	case *coverage.Report:
		return r.Error
	case *scan.Report:
		return r.Error
	case *enforcement.Report:
		return r.Error
	}
	return nil
}
