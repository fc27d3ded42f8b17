package policy

// WildcardAgent is the applicability token that selects every agent.
const WildcardAgent = "*"

// DefaultAgent is the orchestrator agent. It is always part of the known
// agent set, even when no definition document exists for it.
const DefaultAgent = "pilot"

// DefaultPriority is assigned to rules whose document omits a priority.
const DefaultPriority = 50

// Status is the declared implementation state of a rule.
type Status string

const (
	// StatusEnforced means the rule is enforced in code.
	StatusEnforced Status = "enforced"
	// StatusPending means code enforcement is planned but not yet in place.
	StatusPending Status = "pending"
	// StatusPartial means only part of the rule is enforced in code.
	StatusPartial Status = "partial"
	// StatusWarning means violations are reported but not blocked.
	StatusWarning Status = "warning"
	// StatusGap means the rule is documented only.
	StatusGap Status = "gap"
	// StatusUnknown is used when the status is absent or unrecognised.
	StatusUnknown Status = "unknown"
)

// ParseStatus converts a raw status string to a Status.
// Unrecognised or empty values map to StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusEnforced, StatusPending, StatusPartial, StatusWarning, StatusGap:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// IsGap reports whether the status counts as an enforcement gap.
func (s Status) IsGap() bool {
	switch s {
	case StatusGap, StatusPending, StatusPartial, StatusWarning:
		return true
	default:
		return false
	}
}

// Agent is an identified actor that rules may apply to.
type Agent struct {
	// ID is the agent identifier (the document's name field).
	ID string `json:"id"`

	// File is the definition document the agent was loaded from.
	// Empty for the implicit default agent.
	File string `json:"file,omitempty"`
}

// Rule is a named policy statement loaded from a rule definition document.
type Rule struct {
	// ID is the unique rule identifier. Falls back to the file stem when the
	// document has no name or cannot be parsed.
	ID string `json:"id"`

	// File is the path of the source document.
	File string `json:"file"`

	// Description is the human-readable rule description.
	Description string `json:"description,omitempty"`

	// Priority orders rules; higher is more important.
	Priority int `json:"priority"`

	// When is the normalised applicability.
	When Applicability `json:"when"`

	// Mechanism is the current enforcement mechanism.
	Mechanism string `json:"mechanism,omitempty"`

	// TargetMechanism is the planned enforcement mechanism.
	TargetMechanism string `json:"target_mechanism,omitempty"`

	// Bypass describes how the rule can be bypassed, if at all.
	Bypass string `json:"bypass,omitempty"`

	// Status is the declared status. Empty when Err is set.
	Status Status `json:"status,omitempty"`

	// Err is the load or parse failure for this document, if any.
	Err error `json:"-"`
}

// HasError reports whether the rule failed to load.
func (r *Rule) HasError() bool {
	return r.Err != nil
}

// Section is the enforcement-status document section a record belongs to.
type Section string

const (
	// SectionPreCommit holds rules enforced by commit hooks.
	SectionPreCommit Section = "pre_commit"
	// SectionRuntime holds rules enforced while code runs.
	SectionRuntime Section = "runtime"
	// SectionPromptOnly holds rules that exist only in prompts.
	SectionPromptOnly Section = "prompt_only"
)

// Sections lists the enforcement sections in document order.
var Sections = []Section{SectionPreCommit, SectionRuntime, SectionPromptOnly}

// EnforcementRecord is one rule entry in the enforcement status document.
type EnforcementRecord struct {
	ID              string  `yaml:"id" json:"id"`
	Section         Section `yaml:"-" json:"section"`
	Description     string  `yaml:"description" json:"description,omitempty"`
	Status          Status  `yaml:"status" json:"status"`
	Mechanism       string  `yaml:"mechanism" json:"mechanism,omitempty"`
	TargetMechanism string  `yaml:"target_mechanism" json:"target_mechanism,omitempty"`
	Bypass          string  `yaml:"bypass" json:"bypass,omitempty"`
	Current         string  `yaml:"current" json:"current,omitempty"`
}

// Target returns the target mechanism, falling back to the current one.
func (r EnforcementRecord) Target() string {
	if r.TargetMechanism != "" {
		return r.TargetMechanism
	}
	return r.Mechanism
}
