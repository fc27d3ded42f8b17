package enforcement

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"mercator-hq/warden/pkg/policy"
)

// Document is the enforcement status document.
type Document struct {
	// PreCommit holds rules enforced by commit hooks.
	PreCommit []policy.EnforcementRecord `yaml:"pre_commit"`

	// Runtime holds rules enforced at runtime.
	Runtime []policy.EnforcementRecord `yaml:"runtime"`

	// PromptOnly holds rules that only exist as prompt instructions.
	PromptOnly []policy.EnforcementRecord `yaml:"prompt_only"`

	// ForbiddenLibraries is the reference list of banned imports.
	ForbiddenLibraries []string `yaml:"forbidden_libraries"`

	// BannedSubagentTypes is the reference list of banned delegation types.
	BannedSubagentTypes []string `yaml:"banned_task_subagent_types"`

	// KnownAgents is the reference list of valid delegation targets.
	KnownAgents []string `yaml:"known_agents"`
}

// Section returns the records of one section.
func (d *Document) Section(s policy.Section) []policy.EnforcementRecord {
	switch s {
	case policy.SectionPreCommit:
		return d.PreCommit
	case policy.SectionRuntime:
		return d.Runtime
	case policy.SectionPromptOnly:
		return d.PromptOnly
	default:
		return nil
	}
}

// Records returns every record in section order with Section set and the
// status normalised. The document is not modified.
func (d *Document) Records() []policy.EnforcementRecord {
	var out []policy.EnforcementRecord
	for _, section := range policy.Sections {
		for _, rec := range d.Section(section) {
			rec.Section = section
			rec.Status = policy.ParseStatus(string(rec.Status))
			out = append(out, rec)
		}
	}
	return out
}

// ParseDocument decodes an enforcement status document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse enforcement document: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads and decodes the document at path. A missing file is a
// config-missing report error; a malformed one is a document-parse error.
func LoadDocument(path string) (*Document, *policy.ReportError) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, policy.ConfigMissing("enforcement status document", path)
		}
		return nil, &policy.ReportError{
			Kind:    policy.KindConfigMissing,
			Path:    path,
			Message: fmt.Sprintf("enforcement status document unreadable: %v", err),
		}
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, policy.DocumentParse(path, err)
	}
	return doc, nil
}
