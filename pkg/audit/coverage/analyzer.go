package coverage

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"mercator-hq/warden/pkg/policy"
	"mercator-hq/warden/pkg/policy/store"
)

// DefaultCriticalRules are the rules expected to apply to every agent.
var DefaultCriticalRules = []string{
	"git-review-required",
	"web-access-policy",
	"context-first",
	"minimalism",
}

// Analyzer computes rule coverage over a policy snapshot.
// An Analyzer holds no per-run state and may be shared.
type Analyzer struct {
	critical map[string]bool
	logger   *slog.Logger
	now      func() time.Time
}

// NewAnalyzer creates an analyzer. A nil critical list selects
// DefaultCriticalRules; an empty non-nil list disables the critical check.
func NewAnalyzer(critical []string, logger *slog.Logger) *Analyzer {
	if critical == nil {
		critical = DefaultCriticalRules
	}
	if logger == nil {
		logger = slog.Default()
	}

	set := make(map[string]bool, len(critical))
	for _, id := range critical {
		set[id] = true
	}

	return &Analyzer{
		critical: set,
		logger:   logger.With("component", "audit.coverage"),
		now:      time.Now,
	}
}

// IsCritical reports whether a rule is designated critical-universal.
func (a *Analyzer) IsCritical(rule string) bool {
	return a.critical[rule]
}

// Analyze builds a coverage report for the snapshot. It never fails: a
// missing policy store is carried on Report.Error.
func (a *Analyzer) Analyze(runID string, snap *store.Snapshot) *Report {
	agents := snap.AgentIDs()

	report := &Report{
		RunID:           runID,
		AuditTime:       a.now().UTC(),
		TotalRules:      len(snap.Rules),
		TotalAgents:     len(agents),
		Agents:          agents,
		Rules:           make([]Result, 0, len(snap.Rules)),
		Recommendations: []Recommendation{},
		Warnings:        snap.Warnings,
		Error:           snap.Err,
	}

	if snap.Err != nil {
		a.logger.Warn("policy store unavailable", "error", snap.Err)
		return report
	}

	known := make(map[string]bool, len(agents))
	for _, id := range agents {
		known[id] = true
	}

	for _, rule := range snap.Rules {
		res := classify(rule, agents, known)
		report.Rules = append(report.Rules, res)

		switch res.Coverage {
		case Universal:
			report.Summary.UniversalRules++
		case Partial:
			report.Summary.PartialCoverageRules++
		case None:
			report.Summary.NoCoverageRules++
		case Error:
			report.Summary.ErrorRules++
		}

		report.Recommendations = append(report.Recommendations, a.recommend(res)...)
	}

	a.logger.Debug("coverage analysed",
		"run_id", runID,
		"rules", report.TotalRules,
		"agents", report.TotalAgents,
		"universal", report.Summary.UniversalRules,
		"partial", report.Summary.PartialCoverageRules,
		"none", report.Summary.NoCoverageRules,
		"errors", report.Summary.ErrorRules,
	)

	return report
}

// classify computes the coverage of one rule against the sorted agent list.
func classify(rule *policy.Rule, agents []string, known map[string]bool) Result {
	res := Result{
		Rule:          rule.ID,
		File:          rule.File,
		Priority:      rule.Priority,
		Status:        rule.Status,
		AppliesTo:     []string{},
		MissingAgents: []string{},
		UnknownAgents: []string{},
	}

	if rule.HasError() {
		res.Coverage = Error
		res.Error = rule.Err.Error()
		return res
	}

	if rule.When.IsEmpty() {
		res.Coverage = None
		res.MissingAgents = append(res.MissingAgents, agents...)
		return res
	}

	if rule.When.HasWildcard() {
		res.Coverage = Universal
		res.AppliesTo = []string{policy.WildcardAgent}
		return res
	}

	resolved := make(map[string]bool, len(rule.When.Entries))
	for _, entry := range rule.When.Entries {
		name := entry.Name()
		if resolved[name] {
			continue
		}
		resolved[name] = true
		res.AppliesTo = append(res.AppliesTo, name)
		if !known[name] {
			res.UnknownAgents = append(res.UnknownAgents, name)
		}
	}
	sort.Strings(res.AppliesTo)
	sort.Strings(res.UnknownAgents)

	for _, id := range agents {
		if !resolved[id] {
			res.MissingAgents = append(res.MissingAgents, id)
		}
	}

	switch {
	case len(res.AppliesTo) == 0:
		res.Coverage = None
	case len(res.MissingAgents) == 0:
		res.Coverage = Universal
	default:
		res.Coverage = Partial
	}
	return res
}

// recommend returns the recommendations for one result in a fixed order.
func (a *Analyzer) recommend(res Result) []Recommendation {
	if res.Coverage == Error {
		return []Recommendation{{
			Rule:     res.Rule,
			Kind:     FindingParseError,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Rule '%s' has parse error - fix YAML syntax", res.Rule),
		}}
	}

	var recs []Recommendation

	if len(res.UnknownAgents) > 0 {
		recs = append(recs, Recommendation{
			Rule:     res.Rule,
			Kind:     FindingUnknownAgents,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("Rule '%s' references unknown agents: %s",
				res.Rule, strings.Join(res.UnknownAgents, ", ")),
		})
	}

	if a.IsCritical(res.Rule) && res.Coverage != Universal {
		msg := fmt.Sprintf("CRITICAL: Rule '%s' should apply to all agents - add '*' to when field", res.Rule)
		if len(res.MissingAgents) > 0 {
			msg = fmt.Sprintf("CRITICAL: Rule '%s' should apply to all agents (missing: %s) - add '*' to when field",
				res.Rule, strings.Join(res.MissingAgents, ", "))
		}
		recs = append(recs, Recommendation{
			Rule:     res.Rule,
			Kind:     FindingCriticalUniversal,
			Severity: SeverityCritical,
			Message:  msg,
		})
	}

	if res.Coverage == None {
		recs = append(recs, Recommendation{
			Rule:     res.Rule,
			Kind:     FindingNoCoverage,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Rule '%s' has no 'when' specification - add agents or '*'", res.Rule),
		})
	}

	return recs
}

// sortByPriority orders results by descending priority, then rule ID.
func sortByPriority(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Priority != results[j].Priority {
			return results[i].Priority > results[j].Priority
		}
		return results[i].Rule < results[j].Rule
	})
}
