package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/policy"
)

const (
	banner  = "============================================================"
	divider = "----------------------------------------"
)

var coverageIcons = map[coverage.Classification]string{
	coverage.Universal: "✓",
	coverage.Partial:   "○",
	coverage.None:      "✗",
	coverage.Error:     "!",
}

// lines accumulates output lines.
type lines []string

func (l *lines) add(format string, args ...any) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

func (l *lines) blank() {
	*l = append(*l, "")
}

func (l lines) String() string {
	return strings.Join(l, "\n") + "\n"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatPercent formats a coverage percentage with one decimal.
func FormatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64)
}

func coverageText(r *coverage.Report) string {
	var out lines
	out.add("%s", banner)
	out.add("RULES AUDIT REPORT")
	out.add("%s", banner)
	if r.RunID != "" {
		out.add("Run ID: %s", r.RunID)
	}
	out.add("Audit Time: %s", formatTime(r.AuditTime))

	if r.Error != nil {
		out.add("ERROR: %s", r.Error.Error())
		out.add("%s", banner)
		return out.String()
	}

	out.add("Total Rules: %d", r.TotalRules)
	out.add("Total Agents: %d", r.TotalAgents)
	out.add("Agents: %s", strings.Join(r.Agents, ", "))
	out.blank()

	out.add("SUMMARY")
	out.add("%s", divider)
	out.add("  Universal coverage: %d", r.Summary.UniversalRules)
	out.add("  Partial coverage:   %d", r.Summary.PartialCoverageRules)
	out.add("  No coverage:        %d", r.Summary.NoCoverageRules)
	out.add("  Parse errors:       %d", r.Summary.ErrorRules)
	out.blank()

	out.add("RULES DETAIL")
	out.add("%s", divider)
	for _, res := range r.Rules {
		icon, ok := coverageIcons[res.Coverage]
		if !ok {
			icon = "?"
		}
		out.blank()
		out.add("%s %s [%s]", icon, res.Rule, res.Coverage)

		if res.Coverage == coverage.Error {
			out.add("    ERROR: %s", res.Error)
			continue
		}
		if len(res.AppliesTo) > 0 {
			out.add("    Applies to: %s", strings.Join(res.AppliesTo, ", "))
		}
		if len(res.MissingAgents) > 0 {
			out.add("    Missing: %s", strings.Join(res.MissingAgents, ", "))
		}
		if len(res.UnknownAgents) > 0 {
			out.add("    Unknown agents: %s", strings.Join(res.UnknownAgents, ", "))
		}
	}

	if len(r.Recommendations) > 0 {
		out.blank()
		out.add("RECOMMENDATIONS")
		out.add("%s", divider)
		for _, rec := range r.Recommendations {
			out.add("  • [%s] %s", rec.Severity, rec.Message)
		}
	}

	if len(r.Warnings) > 0 {
		out.blank()
		out.add("WARNINGS")
		out.add("%s", divider)
		for _, w := range r.Warnings {
			out.add("  • %s", w)
		}
	}

	out.blank()
	out.add("%s", banner)
	return out.String()
}

func violationText(r *scan.Report) string {
	var out lines
	out.add("%s", banner)
	out.add("VIOLATION SCAN REPORT (%s)", r.Corpus)
	out.add("%s", banner)
	if r.RunID != "" {
		out.add("Run ID: %s", r.RunID)
	}
	out.add("Target: %s", r.Target)
	out.add("Scan Time: %s", formatTime(r.ScanTime))
	if r.Since != nil {
		out.add("Since: %s", formatTime(*r.Since))
	} else {
		out.add("Since: -")
	}

	if r.Error != nil {
		out.add("ERROR: %s", r.Error.Error())
		out.add("%s", banner)
		return out.String()
	}

	out.blank()
	out.add("SUMMARY")
	out.add("%s", divider)
	out.add("  Total scanned:   %d", r.TotalScanned)
	out.add("  Skipped by time: %d", r.SkippedByTime)
	out.add("  Skipped exempt:  %d", r.SkippedExempt)
	out.add("  Malformed:       %d", len(r.Malformed))
	out.add("  Violations:      %d", r.ViolationCount)

	if len(r.Violations) > 0 {
		out.blank()
		out.add("VIOLATIONS")
		out.add("%s", divider)
		for _, v := range r.Violations {
			stamp := v.Timestamp
			if stamp == "" {
				stamp = "-"
			}
			loc := v.Source
			if v.Line > 0 {
				loc = fmt.Sprintf("%s:%d", v.Source, v.Line)
			}
			who := ""
			if v.Agent != "" {
				who = " @" + v.Agent
			}
			out.add("  [%s]%s %s: %s %s", stamp, who, loc, v.Kind, v.Token())
			if v.Context != "" {
				out.add("      %s", oneLine(v.Context))
			}
		}
	}

	if len(r.Malformed) > 0 {
		out.blank()
		out.add("MALFORMED")
		out.add("%s", divider)
		for _, m := range r.Malformed {
			out.add("  • %s", m)
		}
	}

	out.blank()
	out.add("%s", banner)
	return out.String()
}

func enforcementText(r *enforcement.Report) string {
	if r.Error != nil {
		return fmt.Sprintf("Error: %s\n", r.Error.Error())
	}

	var out lines
	out.add("# Enforcement Coverage Report")
	out.blank()
	out.add("Coverage: %s%% (%d/%d rules enforced)", FormatPercent(r.CoveragePercent), r.Enforced, r.TotalRules)
	out.blank()
	out.add("## Status Breakdown")
	out.add("- Enforced: %d", r.Enforced)
	out.add("- Pending:  %d", r.Pending)
	out.add("- Partial:  %d", r.Partial)
	out.add("- Warning:  %d", r.Warning)
	out.add("- Gap:      %d", r.Gap)
	if r.Unknown > 0 {
		out.add("- Unknown:  %d", r.Unknown)
	}

	if len(r.Gaps) > 0 {
		out.blank()
		out.add("## Gaps to Close")
		for _, g := range r.Gaps {
			line := fmt.Sprintf("- [%s] %s:", g.Status, g.ID)
			if g.Description != "" {
				line += " " + oneLine(g.Description)
			}
			if g.Target != "" {
				line += fmt.Sprintf(" (target: %s)", g.Target)
			}
			out = append(out, line)
		}
	}
	return out.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// statusTitle returns the display name of a status.
func statusTitle(s policy.Status) string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
