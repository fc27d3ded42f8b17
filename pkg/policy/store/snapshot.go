package store

import (
	"time"

	"mercator-hq/warden/pkg/policy"
)

// Snapshot is the in-memory result of reading a policy store.
// It is built once per load and not modified afterwards.
type Snapshot struct {
	// AgentsDir is the directory agent definitions were read from.
	AgentsDir string

	// RulesDir is the directory rule definitions were read from.
	RulesDir string

	// Agents is the known agent set sorted by ID, including the default agent.
	Agents []policy.Agent

	// Rules are the loaded rules sorted by ID. Rules whose documents failed
	// to load are included with Err set.
	Rules []*policy.Rule

	// AgentErrors lists agent documents that could not be parsed.
	AgentErrors []error

	// Warnings lists non-fatal conditions such as duplicate identifiers.
	Warnings []string

	// Err is set when the rules directory is missing.
	Err *policy.ReportError

	// LoadTime is the duration of the load.
	LoadTime time.Duration
}

// AgentIDs returns the sorted agent identifiers.
func (s *Snapshot) AgentIDs() []string {
	ids := make([]string, 0, len(s.Agents))
	for _, a := range s.Agents {
		ids = append(ids, a.ID)
	}
	return ids
}

// FailedRules returns the rules that carry a load error.
func (s *Snapshot) FailedRules() []*policy.Rule {
	var failed []*policy.Rule
	for _, r := range s.Rules {
		if r.HasError() {
			failed = append(failed, r)
		}
	}
	return failed
}
