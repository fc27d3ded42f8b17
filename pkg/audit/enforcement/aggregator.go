package enforcement

import (
	"log/slog"
	"math"
	"time"

	"mercator-hq/warden/pkg/policy"
)

// Gap is a rule whose enforcement is not complete.
type Gap struct {
	ID          string         `json:"id"`
	Section     policy.Section `json:"section"`
	Status      policy.Status  `json:"status"`
	Description string         `json:"description,omitempty"`
	Target      string         `json:"target,omitempty"`
}

// Reference carries the reference lists of the status document.
type Reference struct {
	ForbiddenLibraries  []string `json:"forbidden_libraries,omitempty"`
	BannedSubagentTypes []string `json:"banned_task_subagent_types,omitempty"`
	KnownAgents         []string `json:"known_agents,omitempty"`
}

// Report is the immutable result of an enforcement aggregation.
type Report struct {
	RunID           string                     `json:"run_id,omitempty"`
	Source          string                     `json:"source,omitempty"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	TotalRules      int                        `json:"total_rules"`
	Enforced        int                        `json:"enforced"`
	Pending         int                        `json:"pending"`
	Partial         int                        `json:"partial"`
	Warning         int                        `json:"warning"`
	Gap             int                        `json:"gap"`
	Unknown         int                        `json:"unknown"`
	CoveragePercent float64                    `json:"coverage_percent"`
	Gaps            []Gap                      `json:"gaps"`
	Rules           []policy.EnforcementRecord `json:"rules"`
	Reference       Reference                  `json:"reference"`
	Error           *policy.ReportError        `json:"error,omitempty"`
}

// HasGaps reports whether enforcement is incomplete: coverage is below 100
// and at least one gap is listed.
func (r *Report) HasGaps() bool {
	return r.CoveragePercent < 100 && len(r.Gaps) > 0
}

// Count returns the number of records with the given status.
func (r *Report) Count(s policy.Status) int {
	switch s {
	case policy.StatusEnforced:
		return r.Enforced
	case policy.StatusPending:
		return r.Pending
	case policy.StatusPartial:
		return r.Partial
	case policy.StatusWarning:
		return r.Warning
	case policy.StatusGap:
		return r.Gap
	default:
		return r.Unknown
	}
}

// Aggregator computes enforcement coverage from a status document.
type Aggregator struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger: logger.With("component", "audit.enforcement"),
		now:    time.Now,
	}
}

// Aggregate tallies the document. It is a pure function of doc.
func (a *Aggregator) Aggregate(runID, source string, doc *Document) *Report {
	report := a.newReport(runID, source)
	report.Reference = Reference{
		ForbiddenLibraries:  doc.ForbiddenLibraries,
		BannedSubagentTypes: doc.BannedSubagentTypes,
		KnownAgents:         doc.KnownAgents,
	}

	for _, rec := range doc.Records() {
		report.Rules = append(report.Rules, rec)
		report.TotalRules++

		switch rec.Status {
		case policy.StatusEnforced:
			report.Enforced++
		case policy.StatusPending:
			report.Pending++
		case policy.StatusPartial:
			report.Partial++
		case policy.StatusWarning:
			report.Warning++
		case policy.StatusGap:
			report.Gap++
		default:
			report.Unknown++
		}

		if rec.Status.IsGap() {
			report.Gaps = append(report.Gaps, Gap{
				ID:          rec.ID,
				Section:     rec.Section,
				Status:      rec.Status,
				Description: rec.Description,
				Target:      rec.Target(),
			})
		}
	}

	report.CoveragePercent = Percent(report.Enforced, report.TotalRules)

	a.logger.Debug("enforcement aggregated",
		"run_id", runID,
		"total", report.TotalRules,
		"enforced", report.Enforced,
		"gaps", len(report.Gaps),
		"coverage_percent", report.CoveragePercent,
	)
	return report
}

// Failed returns a report carrying only a top-level error.
func (a *Aggregator) Failed(runID string, err *policy.ReportError) *Report {
	report := a.newReport(runID, err.Path)
	report.Error = err
	return report
}

func (a *Aggregator) newReport(runID, source string) *Report {
	return &Report{
		RunID:       runID,
		Source:      source,
		GeneratedAt: a.now().UTC(),
		Gaps:        []Gap{},
		Rules:       []policy.EnforcementRecord{},
	}
}

// Percent returns enforced/total*100 rounded to one decimal, or 0 when
// total is 0.
func Percent(enforced, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(enforced) / float64(total) * 100
	return math.Round(pct*10) / 10
}
