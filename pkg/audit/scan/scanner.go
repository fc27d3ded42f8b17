package scan

import (
	"log/slog"
	"sort"
	"time"

	"mercator-hq/warden/pkg/policy"
)

// CorpusKind names the shape of a scanned corpus.
type CorpusKind string

const (
	// CorpusLogs is a collection of structured execution records.
	CorpusLogs CorpusKind = "logs"
	// CorpusSources is a collection of source text files.
	CorpusSources CorpusKind = "sources"
)

// ViolationKind names what a violation matched.
type ViolationKind string

const (
	// ViolationDelegation is a banned sub-agent delegation.
	ViolationDelegation ViolationKind = "delegation"
	// ViolationImport is a forbidden library import.
	ViolationImport ViolationKind = "import"
)

// Violation is one banned occurrence in a corpus.
type Violation struct {
	// Source is the log record identifier or source file path.
	Source string `json:"source"`

	// Line is the 1-based line of an import violation.
	Line int `json:"line,omitempty"`

	// Timestamp is the raw timestamp of the record or file.
	Timestamp string `json:"timestamp,omitempty"`

	// Agent is the agent that produced a log record.
	Agent string `json:"agent,omitempty"`

	// Kind is the violation kind.
	Kind ViolationKind `json:"kind"`

	// TaskType is the banned sub-agent type of a delegation violation.
	TaskType string `json:"task_type,omitempty"`

	// Library is the banned library of an import violation.
	Library string `json:"library,omitempty"`

	// Context is the truncated offending text.
	Context string `json:"context"`

	at time.Time
}

// Token returns the matched banned token.
func (v Violation) Token() string {
	if v.Kind == ViolationImport {
		return v.Library
	}
	return v.TaskType
}

// Report is the immutable result of a scan.
type Report struct {
	RunID          string              `json:"run_id,omitempty"`
	Corpus         CorpusKind          `json:"corpus"`
	Target         string              `json:"target,omitempty"`
	ScanTime       time.Time           `json:"scan_time"`
	Since          *time.Time          `json:"since"`
	TotalScanned   int                 `json:"total_scanned"`
	SkippedByTime  int                 `json:"skipped_by_time"`
	SkippedExempt  int                 `json:"skipped_exempt"`
	Malformed      []string            `json:"malformed,omitempty"`
	ViolationCount int                 `json:"violation_count"`
	Violations     []Violation         `json:"violations"`
	Error          *policy.ReportError `json:"error,omitempty"`
}

// HasViolations reports whether the scan found anything or could not run.
func (r *Report) HasViolations() bool {
	return r.ViolationCount > 0
}

// Config configures a Scanner.
type Config struct {
	// DelegationTool is the tool name of sub-agent delegation
	// (default: "Task").
	DelegationTool string

	// BannedSubagents are matched against the sub-agent type of delegations.
	BannedSubagents BannedSet

	// BannedLibraries are matched against imported module names.
	BannedLibraries BannedSet

	// Exemptions are applied to every corpus entry before scanning.
	Exemptions *ExemptionSet

	// ContextLimit is the maximum context length in characters
	// (default: 200).
	ContextLimit int
}

// DefaultConfig returns a configuration with the built-in banned sets and
// exemptions.
func DefaultConfig() *Config {
	exemptions, _ := NewExemptionSet(DefaultExemptions...)
	return &Config{
		DelegationTool:  DefaultDelegationTool,
		BannedSubagents: NewBannedSet(DefaultBannedSubagents...),
		BannedLibraries: NewBannedSet(DefaultBannedLibraries...),
		Exemptions:      exemptions,
		ContextLimit:    DefaultContextLimit,
	}
}

// Scanner finds banned delegations in execution logs and forbidden imports
// in source text. A Scanner holds no per-run state and may be shared.
type Scanner struct {
	config *Config
	logger *slog.Logger
	now    func() time.Time
}

// NewScanner creates a scanner. Zero config fields take their defaults.
func NewScanner(config *Config, logger *slog.Logger) *Scanner {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	cfg := *config
	if cfg.DelegationTool == "" {
		cfg.DelegationTool = def.DelegationTool
	}
	if cfg.BannedSubagents == nil {
		cfg.BannedSubagents = def.BannedSubagents
	}
	if cfg.BannedLibraries == nil {
		cfg.BannedLibraries = def.BannedLibraries
	}
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = def.ContextLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scanner{
		config: &cfg,
		logger: logger.With("component", "audit.scan"),
		now:    time.Now,
	}
	s.logger.Debug("scanner configured",
		"delegation_tool", cfg.DelegationTool,
		"banned_subagents", cfg.BannedSubagents.Sorted(),
		"banned_libraries", cfg.BannedLibraries.Sorted(),
		"exemptions", cfg.Exemptions.Patterns(),
	)
	return s
}

// ScanLogs scans execution records for delegations to banned sub-agent
// types. When since is non-nil only records with a parseable timestamp at or
// after since are scanned; the rest are counted as skipped by time.
func (s *Scanner) ScanLogs(runID, target string, records []LogRecord, since *time.Time) *Report {
	report := s.newReport(runID, CorpusLogs, target, since)

	for _, rec := range records {
		if s.config.Exemptions.Match(rec.Source, rec.Agent) {
			report.SkippedExempt++
			continue
		}

		at, ok := ParseTimestamp(rec.Timestamp)
		if since != nil && (!ok || at.Before(*since)) {
			report.SkippedByTime++
			continue
		}
		report.TotalScanned++

		for _, use := range rec.Output.ToolUses {
			if use.Tool != s.config.DelegationTool {
				continue
			}
			if !s.config.BannedSubagents.Contains(use.Input.SubagentType) {
				continue
			}

			context := truncate(use.Input.Prompt, s.config.ContextLimit)
			if context == "" {
				context = truncate(use.Input.Description, s.config.ContextLimit)
			}

			report.Violations = append(report.Violations, Violation{
				Source:    rec.Source,
				Timestamp: rec.Timestamp,
				Agent:     rec.Agent,
				Kind:      ViolationDelegation,
				TaskType:  use.Input.SubagentType,
				Context:   context,
				at:        at,
			})
		}
	}

	return s.finish(report)
}

// ScanSources scans source files for imports of banned libraries. When
// since is non-nil, files with a zero or older timestamp are skipped by
// time.
func (s *Scanner) ScanSources(runID, target string, files []SourceFile, since *time.Time) *Report {
	report := s.newReport(runID, CorpusSources, target, since)

	for _, file := range files {
		if s.config.Exemptions.Match(file.Path) {
			report.SkippedExempt++
			continue
		}
		if since != nil && (file.Timestamp.IsZero() || file.Timestamp.Before(*since)) {
			report.SkippedByTime++
			continue
		}
		report.TotalScanned++

		var stamp string
		if !file.Timestamp.IsZero() {
			stamp = file.Timestamp.Format(time.RFC3339Nano)
		}

		for _, stmt := range extractImports(file.Content) {
			for _, mod := range stmt.modules {
				lib, ok := matchModule(s.config.BannedLibraries, mod)
				if !ok {
					continue
				}
				report.Violations = append(report.Violations, Violation{
					Source:    file.Path,
					Line:      stmt.line,
					Timestamp: stamp,
					Kind:      ViolationImport,
					Library:   lib,
					Context:   truncate(stmt.text, s.config.ContextLimit),
					at:        file.Timestamp,
				})
			}
		}
	}

	return s.finish(report)
}

// MissingTarget returns a report carrying only a top-level error.
func (s *Scanner) MissingTarget(runID string, corpus CorpusKind, err *policy.ReportError, since *time.Time) *Report {
	report := s.newReport(runID, corpus, err.Path, since)
	report.Error = err
	return report
}

func (s *Scanner) newReport(runID string, corpus CorpusKind, target string, since *time.Time) *Report {
	return &Report{
		RunID:      runID,
		Corpus:     corpus,
		Target:     target,
		ScanTime:   s.now().UTC(),
		Since:      since,
		Violations: []Violation{},
	}
}

func (s *Scanner) finish(report *Report) *Report {
	SortViolations(report.Violations)
	report.ViolationCount = len(report.Violations)

	s.logger.Debug("corpus scanned",
		"run_id", report.RunID,
		"corpus", report.Corpus,
		"scanned", report.TotalScanned,
		"skipped_by_time", report.SkippedByTime,
		"skipped_exempt", report.SkippedExempt,
		"violations", report.ViolationCount,
	)
	return report
}

// SortViolations orders violations newest first. Violations without a
// parseable timestamp go last; ties keep their input order.
func SortViolations(vs []Violation) {
	for i := range vs {
		if vs[i].at.IsZero() {
			if at, ok := ParseTimestamp(vs[i].Timestamp); ok {
				vs[i].at = at
			}
		}
	}
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i].at, vs[j].at
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}

// truncate keeps the first limit characters of s and marks truncation with
// an ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
