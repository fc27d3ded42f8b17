package report

import (
	"io"
	"strconv"
	"time"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/history"
)

func agentText(v *coverage.AgentView) string {
	var out lines
	out.add("%s", banner)
	out.add("RULES FOR AGENT %s", v.Agent)
	out.add("%s", banner)
	if v.RunID != "" {
		out.add("Run ID: %s", v.RunID)
	}
	out.add("Audit Time: %s", formatTime(v.AuditTime))
	if !v.Known {
		out.add("WARNING: agent %q is not a known agent", v.Agent)
	}
	out.blank()

	if len(v.Rules) == 0 {
		out.add("No rules apply.")
	}
	for _, res := range v.Rules {
		scope := "targeted"
		if res.Coverage == coverage.Universal {
			scope = "universal"
		}
		out.add("  [%3d] %s (%s)", res.Priority, res.Rule, scope)
	}

	out.blank()
	out.add("%s", banner)
	return out.String()
}

func agentMarkdown(v *coverage.AgentView) string {
	var out lines
	out.add("# Rules for `%s`", cell(v.Agent))
	out.blank()
	out.add("*Generated: %s*", v.AuditTime.UTC().Format("2006-01-02 15:04"))
	out.blank()
	if !v.Known {
		out.add("> **Warning**: `%s` is not a known agent.", cell(v.Agent))
		out.blank()
	}
	out.add("| Priority | Rule | Coverage | File |")
	out.add("|---------:|------|----------|------|")
	for _, res := range v.Rules {
		out.add("| %d | %s | %s | %s |", res.Priority, code(res.Rule), res.Coverage, cell(res.File))
	}
	return out.String()
}

func agentCSV(w io.Writer, v *coverage.AgentView) error {
	rows := make([][]string, 0, len(v.Rules))
	for _, res := range v.Rules {
		rows = append(rows, []string{
			v.Agent, res.Rule, strconv.Itoa(res.Priority), string(res.Coverage), res.File,
		})
	}
	return writeCSV(w, []string{"agent", "rule", "priority", "coverage", "file"}, rows)
}

func historyText(records []*history.Record) string {
	if len(records) == 0 {
		return "No audit runs recorded.\n"
	}

	var out lines
	out.add("%-20s  %-11s  %-8s  %-8s  %6s  %8s  %s", "STARTED", "AUDIT", "TRIGGER", "OUTCOME", "TOTAL", "FINDINGS", "RUN ID")
	for _, rec := range records {
		out.add("%-20s  %-11s  %-8s  %-8s  %6d  %8d  %s",
			formatTime(rec.StartedAt), rec.Audit, rec.Trigger, rec.Outcome, rec.Total, rec.Findings, rec.RunID)
		if rec.Error != "" {
			out.add("    error: %s", oneLine(rec.Error))
		}
	}
	return out.String()
}

func historyMarkdown(records []*history.Record) string {
	var out lines
	out.add("# Audit History")
	out.blank()
	out.add("| Started | Audit | Trigger | Outcome | Total | Findings | Duration | Run ID |")
	out.add("|---------|-------|---------|---------|------:|---------:|---------:|--------|")
	for _, rec := range records {
		out.add("| %s | %s | %s | %s | %d | %d | %s | %s |",
			formatTime(rec.StartedAt), rec.Audit, rec.Trigger, rec.Outcome,
			rec.Total, rec.Findings, rec.Duration.Round(time.Millisecond), code(rec.RunID))
	}
	return out.String()
}

func historyCSV(w io.Writer, records []*history.Record) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		pct := ""
		if rec.Audit == "enforcement" && rec.Error == "" {
			pct = FormatPercent(rec.CoveragePercent)
		}
		rows = append(rows, []string{
			rec.ID,
			rec.RunID,
			rec.Audit,
			rec.Trigger,
			rec.Target,
			formatTime(rec.StartedAt),
			strconv.FormatInt(rec.Duration.Milliseconds(), 10),
			rec.Outcome,
			strconv.Itoa(rec.Total),
			strconv.Itoa(rec.Findings),
			pct,
			rec.Error,
		})
	}
	return writeCSV(w, []string{
		"id", "run_id", "audit", "trigger", "target", "started_at", "duration_ms",
		"outcome", "total", "findings", "coverage_percent", "error",
	}, rows)
}
