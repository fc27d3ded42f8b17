package report

import (
	"fmt"
	"strings"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/policy"
)

var statusIcons = map[policy.Status]string{
	policy.StatusEnforced: "✅",
	policy.StatusPending:  "🔄",
	policy.StatusPartial:  "🟡",
	policy.StatusWarning:  "⚠️",
	policy.StatusGap:      "❌",
}

func statusIcon(s policy.Status) string {
	if icon, ok := statusIcons[s]; ok {
		return icon
	}
	return "❓"
}

// cell escapes a value for use inside a markdown table.
func cell(s string) string {
	s = oneLine(s)
	return strings.ReplaceAll(s, "|", `\|`)
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + cell(s) + "`"
}

type sectionInfo struct {
	title string
	intro string
}

var sectionTitles = map[policy.Section]sectionInfo{
	policy.SectionPreCommit:  {"Pre-Commit Rules", "These rules are enforced at commit time via pre-commit hook."},
	policy.SectionRuntime:    {"Runtime Rules", "These rules are enforced at runtime during code execution."},
	policy.SectionPromptOnly: {"Prompt-Only Rules (Gaps)", "These rules exist only as prompt instructions and need code enforcement."},
}

func enforcementMarkdown(r *enforcement.Report) string {
	if r.Error != nil {
		return fmt.Sprintf("Error: %s\n", r.Error.Error())
	}

	var out lines
	out.add("# Code Enforcement Rules")
	out.blank()
	out.add("*Generated: %s*", r.GeneratedAt.UTC().Format("2006-01-02 15:04"))
	out.blank()
	out.add("> **Principle**: Prompts inform; code enforces.")
	out.blank()
	out.add("## Summary")
	out.blank()
	out.add("**Coverage**: %s%% (%d/%d rules enforced)", FormatPercent(r.CoveragePercent), r.Enforced, r.TotalRules)
	out.blank()
	out.add("| Status | Count |")
	out.add("|--------|------:|")
	for _, s := range []policy.Status{
		policy.StatusEnforced, policy.StatusPending, policy.StatusPartial,
		policy.StatusWarning, policy.StatusGap, policy.StatusUnknown,
	} {
		if n := r.Count(s); n > 0 {
			out.add("| %s %s | %d |", statusIcon(s), statusTitle(s), n)
		}
	}

	for _, section := range policy.Sections {
		var records []policy.EnforcementRecord
		for _, rec := range r.Rules {
			if rec.Section == section {
				records = append(records, rec)
			}
		}
		if len(records) == 0 {
			continue
		}

		info := sectionTitles[section]
		out.blank()
		out.add("## %s", info.title)
		out.blank()
		out.add("%s", info.intro)
		out.blank()

		if section == policy.SectionPromptOnly {
			out.add("| Status | Rule | Description | Target Mechanism | Current |")
			out.add("|:------:|------|-------------|------------------|---------|")
			for _, rec := range records {
				out.add("| %s | %s | %s | %s | %s |",
					statusIcon(rec.Status), cell(rec.ID), cell(rec.Description),
					cell(rec.TargetMechanism), cell(rec.Current))
			}
			continue
		}

		out.add("| Status | Rule | Description | Mechanism | Bypass |")
		out.add("|:------:|------|-------------|-----------|--------|")
		for _, rec := range records {
			bypass := rec.Bypass
			if bypass == "" {
				bypass = "none"
			}
			out.add("| %s | %s | %s | %s | %s |",
				statusIcon(rec.Status), cell(rec.ID), cell(rec.Description),
				code(rec.Mechanism), cell(bypass))
		}
	}

	ref := r.Reference
	if len(ref.ForbiddenLibraries)+len(ref.BannedSubagentTypes)+len(ref.KnownAgents) > 0 {
		out.blank()
		out.add("## Reference")
		referenceList(&out, "Forbidden Libraries", "These libraries must not be imported directly:", ref.ForbiddenLibraries, "")
		referenceList(&out, "Banned Task Subagent Types", "These delegation subagent types are banned:", ref.BannedSubagentTypes, "")
		referenceList(&out, "Known Agents", "Valid agents for delegation:", ref.KnownAgents, "@")
	}

	return out.String()
}

func referenceList(out *lines, title, intro string, items []string, prefix string) {
	if len(items) == 0 {
		return
	}
	out.blank()
	out.add("### %s", title)
	out.blank()
	out.add("%s", intro)
	out.blank()
	for _, item := range items {
		out.add("- `%s%s`", prefix, item)
	}
}

func coverageMarkdown(r *coverage.Report) string {
	var out lines
	out.add("# Rule Coverage Audit")
	out.blank()
	out.add("*Audited: %s*", formatTime(r.AuditTime))

	if r.Error != nil {
		out.blank()
		out.add("**Error**: %s", cell(r.Error.Error()))
		return out.String()
	}

	out.blank()
	out.add("**Agents** (%d): %s", r.TotalAgents, strings.Join(r.Agents, ", "))
	out.blank()
	out.add("## Summary")
	out.blank()
	out.add("| Coverage | Rules |")
	out.add("|----------|------:|")
	out.add("| Universal | %d |", r.Summary.UniversalRules)
	out.add("| Partial | %d |", r.Summary.PartialCoverageRules)
	out.add("| None | %d |", r.Summary.NoCoverageRules)
	out.add("| Error | %d |", r.Summary.ErrorRules)
	out.add("| **Total** | %d |", r.TotalRules)

	if len(r.Rules) > 0 {
		out.blank()
		out.add("## Rules")
		out.blank()
		out.add("| Rule | Priority | Coverage | Applies To | Missing | Unknown |")
		out.add("|------|---------:|----------|------------|---------|---------|")
		for _, res := range r.Rules {
			out.add("| %s | %d | %s | %s | %s | %s |",
				cell(res.Rule), res.Priority, res.Coverage,
				cell(strings.Join(res.AppliesTo, ", ")),
				cell(strings.Join(res.MissingAgents, ", ")),
				cell(strings.Join(res.UnknownAgents, ", ")))
		}
	}

	if len(r.Recommendations) > 0 {
		out.blank()
		out.add("## Recommendations")
		out.blank()
		for _, rec := range r.Recommendations {
			out.add("- **%s**: %s", rec.Severity, rec.Message)
		}
	}
	return out.String()
}

func violationMarkdown(r *scan.Report) string {
	var out lines
	out.add("# Violation Scan (%s)", r.Corpus)
	out.blank()
	out.add("*Scanned: %s*", formatTime(r.ScanTime))

	if r.Error != nil {
		out.blank()
		out.add("**Error**: %s", cell(r.Error.Error()))
		return out.String()
	}

	out.blank()
	out.add("| Scanned | Skipped (time) | Skipped (exempt) | Malformed | Violations |")
	out.add("|--------:|---------------:|-----------------:|----------:|-----------:|")
	out.add("| %d | %d | %d | %d | %d |",
		r.TotalScanned, r.SkippedByTime, r.SkippedExempt, len(r.Malformed), r.ViolationCount)

	if len(r.Violations) > 0 {
		out.blank()
		out.add("## Violations")
		out.blank()
		out.add("| Timestamp | Agent | Source | Kind | Match | Context |")
		out.add("|-----------|-------|--------|------|-------|---------|")
		for _, v := range r.Violations {
			src := v.Source
			if v.Line > 0 {
				src = fmt.Sprintf("%s:%d", v.Source, v.Line)
			}
			out.add("| %s | %s | %s | %s | %s | %s |",
				cell(v.Timestamp), cell(v.Agent), code(src), v.Kind, code(v.Token()), cell(v.Context))
		}
	}
	return out.String()
}
