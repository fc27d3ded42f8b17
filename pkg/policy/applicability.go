package policy

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// ApplicabilityEntry is one resolved reference in a rule's when field.
// It is either a named agent or the wildcard.
type ApplicabilityEntry struct {
	// Agent is the referenced agent identifier. Empty for the wildcard.
	Agent string

	// Wildcard is true when the entry selects every agent.
	Wildcard bool
}

// AgentRef returns an entry referencing a single agent.
func AgentRef(name string) ApplicabilityEntry {
	if name == WildcardAgent {
		return Wildcard()
	}
	return ApplicabilityEntry{Agent: name}
}

// Wildcard returns the entry that selects every agent.
func Wildcard() ApplicabilityEntry {
	return ApplicabilityEntry{Wildcard: true}
}

// Name returns the agent identifier, or "*" for the wildcard.
func (e ApplicabilityEntry) Name() string {
	if e.Wildcard {
		return WildcardAgent
	}
	return e.Agent
}

// Applicability is the normalised form of a rule's when field.
//
// The document may give when as the scalar "*", a list of agent names, a
// list of {agent: name} mappings, or any mix of the list forms. Everything
// else, including a bare agent name, decodes to an empty Applicability.
type Applicability struct {
	// Universal is true when when was the scalar wildcard.
	Universal bool

	// Entries are the references in document order.
	Entries []ApplicabilityEntry
}

// IsEmpty reports whether the rule names no agents at all.
func (a Applicability) IsEmpty() bool {
	return !a.Universal && len(a.Entries) == 0
}

// HasWildcard reports whether the applicability selects every agent,
// either as the scalar form or as a wildcard entry inside the list.
func (a Applicability) HasWildcard() bool {
	if a.Universal {
		return true
	}
	for _, e := range a.Entries {
		if e.Wildcard {
			return true
		}
	}
	return false
}

// Names returns the referenced identifiers in document order.
func (a Applicability) Names() []string {
	if a.Universal {
		return []string{WildcardAgent}
	}
	names := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		names = append(names, e.Name())
	}
	return names
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Applicability) UnmarshalYAML(node *yaml.Node) error {
	*a = Applicability{}

	switch node.Kind {
	case yaml.ScalarNode:
		a.Universal = node.ShortTag() == "!!str" && node.Value == WildcardAgent
		return nil

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if entry, ok := decodeEntry(item); ok {
				a.Entries = append(a.Entries, entry)
			}
		}
		return nil

	case yaml.AliasNode:
		return a.UnmarshalYAML(node.Alias)

	default:
		return nil
	}
}

// decodeEntry reads one list item. Plain strings and mappings with an
// agent key are accepted; other items are ignored.
func decodeEntry(item *yaml.Node) (ApplicabilityEntry, bool) {
	switch item.Kind {
	case yaml.ScalarNode:
		if item.ShortTag() != "!!str" || item.Value == "" {
			return ApplicabilityEntry{}, false
		}
		return AgentRef(item.Value), true

	case yaml.MappingNode:
		for i := 0; i+1 < len(item.Content); i += 2 {
			key, value := item.Content[i], item.Content[i+1]
			if key.Value != "agent" {
				continue
			}
			if value.Kind != yaml.ScalarNode || value.ShortTag() != "!!str" || value.Value == "" {
				return ApplicabilityEntry{}, false
			}
			return AgentRef(value.Value), true
		}
		return ApplicabilityEntry{}, false

	case yaml.AliasNode:
		return decodeEntry(item.Alias)

	default:
		return ApplicabilityEntry{}, false
	}
}

// MarshalJSON renders the applicability as "*" or a list of names.
func (a Applicability) MarshalJSON() ([]byte, error) {
	if a.Universal {
		return json.Marshal(WildcardAgent)
	}
	return json.Marshal(a.Names())
}
