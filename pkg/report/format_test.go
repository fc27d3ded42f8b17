package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/policy"
)

var fixedTime = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func sampleCoverage() *coverage.Report {
	return &coverage.Report{
		RunID:       "run-1",
		AuditTime:   fixedTime,
		TotalRules:  3,
		TotalAgents: 2,
		Agents:      []string{"builder", "pilot"},
		Rules: []coverage.Result{
			{Rule: "git-review-required", Priority: 90, AppliesTo: []string{"*"}, Coverage: coverage.Universal,
				MissingAgents: []string{}, UnknownAgents: []string{}},
			{Rule: "web-access-policy", Priority: 50, AppliesTo: []string{"ghost", "pilot"}, Coverage: coverage.Partial,
				MissingAgents: []string{"builder"}, UnknownAgents: []string{"ghost"}},
			{Rule: "broken", Coverage: coverage.Error, Error: "failed to parse: bad | yaml",
				AppliesTo: []string{}, MissingAgents: []string{}, UnknownAgents: []string{}},
		},
		Summary: coverage.Summary{UniversalRules: 1, PartialCoverageRules: 1, ErrorRules: 1},
		Recommendations: []coverage.Recommendation{
			{Rule: "web-access-policy", Kind: coverage.FindingUnknownAgents, Severity: coverage.SeverityWarning,
				Message: "Rule 'web-access-policy' references unknown agents: ghost"},
			{Rule: "broken", Kind: coverage.FindingParseError, Severity: coverage.SeverityError,
				Message: "Rule 'broken' has parse error - fix YAML syntax"},
		},
	}
}

func sampleViolations() *scan.Report {
	since := fixedTime.Add(-24 * time.Hour)
	return &scan.Report{
		RunID:         "run-2",
		Corpus:        scan.CorpusLogs,
		Target:        "logs/agents",
		ScanTime:      fixedTime,
		Since:         &since,
		TotalScanned:  7,
		SkippedByTime: 2,
		SkippedExempt: 1,
		Malformed:     []string{"builder/broken.json"},
		Violations: []scan.Violation{
			{Source: "builder/run_2.json", Timestamp: "2026-03-04T01:00:00", Agent: "builder",
				Kind: scan.ViolationDelegation, TaskType: "Explore", Context: "find | files\nnow"},
			{Source: "pilot/run_1.json", Agent: "pilot", Kind: scan.ViolationDelegation, TaskType: "Plan", Context: "plan"},
		},
		ViolationCount: 2,
	}
}

func sampleEnforcement() *enforcement.Report {
	return &enforcement.Report{
		RunID:           "run-3",
		GeneratedAt:     fixedTime,
		TotalRules:      4,
		Enforced:        2,
		Partial:         1,
		Gap:             1,
		CoveragePercent: 50,
		Gaps: []enforcement.Gap{
			{ID: "tests", Section: policy.SectionPreCommit, Status: policy.StatusPartial, Target: "full pytest"},
			{ID: "context-first", Section: policy.SectionPromptOnly, Status: policy.StatusGap,
				Description: "Read context first", Target: "session hook"},
		},
		Rules: []policy.EnforcementRecord{
			{ID: "secrets", Section: policy.SectionPreCommit, Status: policy.StatusEnforced, Mechanism: "gitleaks"},
			{ID: "tests", Section: policy.SectionPreCommit, Status: policy.StatusPartial, Mechanism: "pytest", TargetMechanism: "full pytest"},
			{ID: "web", Section: policy.SectionRuntime, Status: policy.StatusEnforced, Mechanism: "import hook", Bypass: "ALLOW_WEB=1"},
			{ID: "context-first", Section: policy.SectionPromptOnly, Status: policy.StatusGap,
				Description: "Read context first", TargetMechanism: "session hook", Current: "prompt"},
		},
		Reference: enforcement.Reference{ForbiddenLibraries: []string{"requests"}, KnownAgents: []string{"builder"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"summary", FormatText, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderIsStable(t *testing.T) {
	reports := map[string]func() any{
		"coverage":    func() any { return sampleCoverage() },
		"violations":  func() any { return sampleViolations() },
		"enforcement": func() any { return sampleEnforcement() },
	}

	for name, build := range reports {
		for _, format := range Formats {
			t.Run(name+"/"+string(format), func(t *testing.T) {
				rep := build()
				before, _ := json.Marshal(rep)

				first, err := String(format, rep)
				if err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				second, err := String(format, rep)
				if err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				if first != second {
					t.Error("rendering the same report twice produced different output")
				}
				if first == "" {
					t.Error("empty output")
				}

				after, _ := json.Marshal(rep)
				if !bytes.Equal(before, after) {
					t.Error("rendering modified the report")
				}
			})
		}
	}
}

func TestRenderUnknownType(t *testing.T) {
	if err := Render(&bytes.Buffer{}, FormatText, struct{}{}); err == nil {
		t.Error("expected an error for an unsupported report type")
	}
}

func TestRenderJSONUnchanged(t *testing.T) {
	rep := sampleEnforcement()
	out, err := String(FormatJSON, rep)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded enforcement.Report
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.TotalRules != 4 || decoded.CoveragePercent != 50 || len(decoded.Gaps) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func countLine(t *testing.T, text, pattern string) int {
	t.Helper()
	m := regexp.MustCompile(`(?m)` + pattern).FindStringSubmatch(text)
	if m == nil {
		t.Fatalf("pattern %q not found in:\n%s", pattern, text)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		t.Fatalf("bad count %q", m[1])
	}
	return n
}

func TestCoverageTextRoundTrip(t *testing.T) {
	rep := sampleCoverage()
	text, err := String(FormatText, rep)
	if err != nil {
		t.Fatal(err)
	}

	got := coverage.Summary{
		UniversalRules:       countLine(t, text, `^  Universal coverage:\s+(\d+)$`),
		PartialCoverageRules: countLine(t, text, `^  Partial coverage:\s+(\d+)$`),
		NoCoverageRules:      countLine(t, text, `^  No coverage:\s+(\d+)$`),
		ErrorRules:           countLine(t, text, `^  Parse errors:\s+(\d+)$`),
	}
	if got != rep.Summary {
		t.Errorf("summary from text = %+v, want %+v", got, rep.Summary)
	}
	if n := countLine(t, text, `^Total Rules: (\d+)$`); n != rep.TotalRules {
		t.Errorf("Total Rules = %d, want %d", n, rep.TotalRules)
	}
	if !strings.Contains(text, "○ web-access-policy [partial]") {
		t.Errorf("missing rule detail line:\n%s", text)
	}
	if !strings.Contains(text, "  • [error] Rule 'broken' has parse error - fix YAML syntax") {
		t.Errorf("missing recommendation:\n%s", text)
	}
}

func TestViolationTextRoundTrip(t *testing.T) {
	rep := sampleViolations()
	text, err := String(FormatText, rep)
	if err != nil {
		t.Fatal(err)
	}

	if n := countLine(t, text, `^  Total scanned:\s+(\d+)$`); n != rep.TotalScanned {
		t.Errorf("Total scanned = %d", n)
	}
	if n := countLine(t, text, `^  Skipped by time:\s+(\d+)$`); n != rep.SkippedByTime {
		t.Errorf("Skipped by time = %d", n)
	}
	if n := countLine(t, text, `^  Violations:\s+(\d+)$`); n != rep.ViolationCount {
		t.Errorf("Violations = %d", n)
	}
	if !strings.Contains(text, "  [2026-03-04T01:00:00] @builder builder/run_2.json: delegation Explore") {
		t.Errorf("missing violation line:\n%s", text)
	}
	if !strings.Contains(text, "      find | files now") {
		t.Errorf("context should be flattened to one line:\n%s", text)
	}
}

func TestEnforcementTextRoundTrip(t *testing.T) {
	rep := sampleEnforcement()
	text, err := String(FormatText, rep)
	if err != nil {
		t.Fatal(err)
	}

	m := regexp.MustCompile(`(?m)^Coverage: ([\d.]+)% \((\d+)/(\d+) rules enforced\)$`).FindStringSubmatch(text)
	if m == nil {
		t.Fatalf("coverage line not found:\n%s", text)
	}
	if m[1] != "50.0" || m[2] != "2" || m[3] != "4" {
		t.Errorf("coverage line = %q", m[0])
	}

	counts := map[string]int{
		"Enforced": countLine(t, text, `^- Enforced:\s+(\d+)$`),
		"Pending":  countLine(t, text, `^- Pending:\s+(\d+)$`),
		"Partial":  countLine(t, text, `^- Partial:\s+(\d+)$`),
		"Warning":  countLine(t, text, `^- Warning:\s+(\d+)$`),
		"Gap":      countLine(t, text, `^- Gap:\s+(\d+)$`),
	}
	want := map[string]int{"Enforced": 2, "Pending": 0, "Partial": 1, "Warning": 0, "Gap": 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}

	gaps := regexp.MustCompile(`(?m)^- \[\w+\] `).FindAllString(text, -1)
	if len(gaps) != len(rep.Gaps) {
		t.Errorf("gap lines = %d, want %d", len(gaps), len(rep.Gaps))
	}
	if !strings.Contains(text, "- [gap] context-first: Read context first (target: session hook)") {
		t.Errorf("missing gap line:\n%s", text)
	}
}

func TestEnforcementTextError(t *testing.T) {
	rep := &enforcement.Report{Error: policy.ConfigMissing("enforcement status document", "system/enforcement.yaml")}
	text, err := String(FormatText, rep)
	if err != nil {
		t.Fatal(err)
	}
	if text != "Error: enforcement status document not found: system/enforcement.yaml\n" {
		t.Errorf("text = %q", text)
	}
}

func TestEnforcementMarkdown(t *testing.T) {
	md, err := String(FormatMarkdown, sampleEnforcement())
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"*Generated: 2026-03-04 05:06*",
		"**Coverage**: 50.0% (2/4 rules enforced)",
		"| ✅ Enforced | 2 |",
		"## Pre-Commit Rules",
		"| ✅ | secrets |  | `gitleaks` | none |",
		"| ✅ | web |  | `import hook` | ALLOW_WEB=1 |",
		"## Prompt-Only Rules (Gaps)",
		"| ❌ | context-first | Read context first | session hook | prompt |",
		"- `requests`",
		"- `@builder`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Banned Task Subagent Types") {
		t.Error("empty reference lists should be omitted")
	}
}

func TestCoverageMarkdownEscapesPipes(t *testing.T) {
	md, err := String(FormatMarkdown, sampleCoverage())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "| web-access-policy | 50 | partial | ghost, pilot | builder | ghost |") {
		t.Errorf("missing rule row:\n%s", md)
	}
	if !strings.Contains(md, "| **Total** | 3 |") {
		t.Errorf("missing total row:\n%s", md)
	}
}

func TestViolationCSV(t *testing.T) {
	out, err := String(FormatCSV, sampleViolations())
	if err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want header + 2", len(records))
	}
	if records[1][5] != "Explore" || records[1][6] != "find | files\nnow" {
		t.Errorf("row = %v", records[1])
	}
}
