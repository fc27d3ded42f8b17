package coverage

import (
	"time"

	"mercator-hq/warden/pkg/policy"
)

// Classification describes how completely a rule's applicability spans the
// known agents.
type Classification string

const (
	// Universal means the rule applies to every known agent.
	Universal Classification = "universal"
	// Partial means the rule applies to some but not all known agents.
	Partial Classification = "partial"
	// None means the rule names no agents.
	None Classification = "none"
	// Error means the rule document could not be loaded.
	Error Classification = "error"
)

// Severity ranks recommendations.
type Severity string

const (
	// SeverityCritical is used for critical-universal rules that do not
	// cover every agent.
	SeverityCritical Severity = "critical"
	// SeverityWarning is used for incomplete or inconsistent rules.
	SeverityWarning Severity = "warning"
	// SeverityError is used for rules that failed to parse.
	SeverityError Severity = "error"
)

// Result is the coverage analysis of a single rule.
type Result struct {
	// Rule is the rule identifier.
	Rule string `json:"rule"`

	// File is the rule's source document.
	File string `json:"file,omitempty"`

	// Priority is the rule priority.
	Priority int `json:"priority"`

	// Status is the declared rule status.
	Status policy.Status `json:"status,omitempty"`

	// AppliesTo is the sorted, deduplicated set of referenced agents, or
	// ["*"] for universal wildcard rules.
	AppliesTo []string `json:"applies_to"`

	// Coverage is the classification.
	Coverage Classification `json:"coverage"`

	// MissingAgents are known agents the rule does not cover.
	MissingAgents []string `json:"missing_agents"`

	// UnknownAgents are referenced agents absent from the known set.
	UnknownAgents []string `json:"unknown_agents"`

	// Error is the load failure message when Coverage is Error.
	Error string `json:"error,omitempty"`
}

// Summary holds aggregate classification counts.
type Summary struct {
	UniversalRules       int `json:"universal_rules"`
	PartialCoverageRules int `json:"partial_coverage_rules"`
	NoCoverageRules      int `json:"no_coverage_rules"`
	ErrorRules           int `json:"error_rules"`
}

// FindingKind identifies what a recommendation is about.
type FindingKind string

const (
	FindingParseError        FindingKind = "parse_error"
	FindingUnknownAgents     FindingKind = "unknown_agents"
	FindingCriticalUniversal FindingKind = "critical_not_universal"
	FindingNoCoverage        FindingKind = "no_coverage"
)

// Recommendation is a deterministic follow-up suggested by the analysis.
type Recommendation struct {
	// Rule is the rule the recommendation is about.
	Rule string `json:"rule"`

	// Kind identifies the finding.
	Kind FindingKind `json:"kind"`

	// Severity ranks the recommendation.
	Severity Severity `json:"severity"`

	// Message is the human-readable recommendation.
	Message string `json:"message"`
}

// Report is the immutable output of a coverage analysis.
type Report struct {
	// RunID identifies the audit run that produced the report.
	RunID string `json:"run_id,omitempty"`

	// AuditTime is when the analysis ran.
	AuditTime time.Time `json:"audit_time"`

	// TotalRules is the number of rules considered, including failed ones.
	TotalRules int `json:"total_rules"`

	// TotalAgents is the size of the known agent set.
	TotalAgents int `json:"total_agents"`

	// Agents is the sorted known agent set.
	Agents []string `json:"agents"`

	// Rules holds one result per rule, in rule ID order.
	Rules []Result `json:"rules"`

	// Summary holds aggregate counts. Failed rules are excluded from the
	// universal, partial, and none counts.
	Summary Summary `json:"summary"`

	// Recommendations are ordered by rule.
	Recommendations []Recommendation `json:"recommendations"`

	// Warnings are non-fatal loader conditions carried through.
	Warnings []string `json:"warnings,omitempty"`

	// Error is set when the policy store could not be read.
	Error *policy.ReportError `json:"error,omitempty"`
}

// Result returns the result for a rule, or nil.
func (r *Report) Result(rule string) *Result {
	for i := range r.Rules {
		if r.Rules[i].Rule == rule {
			return &r.Rules[i]
		}
	}
	return nil
}

// HasCriticalFindings reports whether the audit should fail a gate: the
// policy store is missing, a rule failed to parse, or a critical-universal
// rule does not cover every agent.
func (r *Report) HasCriticalFindings() bool {
	if r.Error != nil {
		return true
	}
	for _, rec := range r.Recommendations {
		if rec.Severity == SeverityCritical || rec.Severity == SeverityError {
			return true
		}
	}
	return false
}

// RulesForAgent returns the results of rules that apply to the agent,
// ordered by descending priority then rule ID.
func (r *Report) RulesForAgent(agent string) []Result {
	var out []Result
	for _, res := range r.Rules {
		if res.Coverage == Error {
			continue
		}
		for _, a := range res.AppliesTo {
			if a == agent || a == policy.WildcardAgent {
				out = append(out, res)
				break
			}
		}
	}
	sortByPriority(out)
	return out
}

// AgentView lists the rules that apply to one agent.
type AgentView struct {
	RunID     string    `json:"run_id,omitempty"`
	AuditTime time.Time `json:"audit_time"`
	Agent     string    `json:"agent"`

	// Known is false when the agent is not in the known agent set.
	Known bool     `json:"known"`
	Rules []Result `json:"rules"`
}

// ForAgent returns the agent view of the report.
func (r *Report) ForAgent(agent string) *AgentView {
	view := &AgentView{
		RunID:     r.RunID,
		AuditTime: r.AuditTime,
		Agent:     agent,
		Rules:     r.RulesForAgent(agent),
	}
	if view.Rules == nil {
		view.Rules = []Result{}
	}
	for _, a := range r.Agents {
		if a == agent {
			view.Known = true
			break
		}
	}
	return view
}
