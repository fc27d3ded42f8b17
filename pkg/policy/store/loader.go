package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"mercator-hq/warden/pkg/policy"
	"mercator-hq/warden/pkg/worker"
)

// LoaderConfig contains configuration for the policy store loader.
type LoaderConfig struct {
	// MaxFileSize is the maximum document size in bytes (default: 1MB)
	MaxFileSize int64

	// AllowedExtensions is the list of document extensions (default: [".yaml", ".yml"])
	AllowedExtensions []string

	// SkipHidden controls whether dot-files are ignored (default: true)
	SkipHidden bool

	// Workers is the number of parallel document parsers (default: NumCPU)
	Workers int

	// DefaultAgent is always part of the agent set (default: "pilot")
	DefaultAgent string
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize:       1024 * 1024,
		AllowedExtensions: []string{".yaml", ".yml"},
		SkipHidden:        true,
		DefaultAgent:      policy.DefaultAgent,
	}
}

// Loader reads agent and rule definition documents from directories.
type Loader struct {
	config *LoaderConfig
	logger *slog.Logger
}

// NewLoader creates a new loader. A nil config uses DefaultLoaderConfig.
func NewLoader(config *LoaderConfig, logger *slog.Logger) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		config: config,
		logger: logger.With("component", "policy.store"),
	}
}

// agentDocument is the subset of an agent definition the audit needs.
type agentDocument struct {
	Name string `yaml:"name"`
}

// ruleDocument mirrors a rule definition document.
type ruleDocument struct {
	Name            string               `yaml:"name"`
	Description     string               `yaml:"description"`
	Priority        *int                 `yaml:"priority"`
	When            policy.Applicability `yaml:"when"`
	Status          string               `yaml:"status"`
	Mechanism       string               `yaml:"mechanism"`
	TargetMechanism string               `yaml:"target_mechanism"`
	Bypass          string               `yaml:"bypass"`
}

// Load reads both directories and returns a snapshot.
//
// Load never fails: a missing rules directory is recorded on Snapshot.Err,
// and per-document failures are recorded on the affected entity.
func (l *Loader) Load(agentsDir, rulesDir string) *Snapshot {
	start := time.Now()

	snap := &Snapshot{
		AgentsDir: agentsDir,
		RulesDir:  rulesDir,
	}

	agents, agentErrs, warnings := l.LoadAgents(agentsDir)
	snap.Agents = agents
	snap.AgentErrors = agentErrs
	snap.Warnings = append(snap.Warnings, warnings...)

	rules, ruleWarnings, err := l.LoadRules(rulesDir)
	if err != nil {
		if re, ok := policy.AsReportError(err); ok {
			snap.Err = re
		} else {
			snap.Err = &policy.ReportError{
				Kind:    policy.KindConfigMissing,
				Path:    rulesDir,
				Message: err.Error(),
			}
		}
	}
	snap.Rules = rules
	snap.Warnings = append(snap.Warnings, ruleWarnings...)
	snap.LoadTime = time.Since(start)

	failed := snap.FailedRules()
	for _, rule := range failed {
		l.logger.Warn("rule document failed to load", "rule", rule.ID, "file", rule.File, "error", rule.Err)
	}

	l.logger.Info("policy store loaded",
		"agents", len(snap.Agents),
		"rules", len(snap.Rules),
		"rule_errors", len(failed),
		"agent_errors", len(snap.AgentErrors),
		"warnings", len(snap.Warnings),
		"duration_ms", snap.LoadTime.Milliseconds(),
	)

	return snap
}

// LoadAgents reads agent definitions from dir. The default agent is always
// included. A missing directory produces a warning, not an error, because the
// orchestrator is known even without definition files.
func (l *Loader) LoadAgents(dir string) ([]policy.Agent, []error, []string) {
	var warnings []string
	var errs []error

	byID := make(map[string]policy.Agent)

	files, err := l.collectFiles(dir)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("agents directory unavailable: %v", err))
		l.logger.Warn("agents directory unavailable", "path", dir, "error", err)
	}

	pool := worker.NewPool[*policy.Agent](l.config.Workers)
	for _, res := range pool.Process(files, l.parseAgent) {
		if res.Err != nil {
			errs = append(errs, res.Err)
			l.logger.Debug("skipping malformed agent document", "file", res.Path, "error", res.Err)
			continue
		}
		if res.Value == nil {
			continue
		}
		if _, dup := byID[res.Value.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate agent %q in %s", res.Value.ID, res.Path))
			continue
		}
		byID[res.Value.ID] = *res.Value
	}

	if l.config.DefaultAgent != "" {
		if _, ok := byID[l.config.DefaultAgent]; !ok {
			byID[l.config.DefaultAgent] = policy.Agent{ID: l.config.DefaultAgent}
		}
	}

	agents := make([]policy.Agent, 0, len(byID))
	for _, a := range byID {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })

	return agents, errs, warnings
}

// LoadRules reads rule definitions from dir, sorted by rule ID. It returns a
// *policy.ReportError when the directory is missing.
func (l *Loader) LoadRules(dir string) ([]*policy.Rule, []string, error) {
	files, err := l.collectFiles(dir)
	if err != nil {
		return nil, nil, policy.ConfigMissing("rules directory", dir)
	}

	var warnings []string
	seen := make(map[string]string)
	rules := make([]*policy.Rule, 0, len(files))

	pool := worker.NewPool[*policy.Rule](l.config.Workers)
	for _, res := range pool.Process(files, l.parseRule) {
		rule := res.Value
		if prev, dup := seen[rule.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate rule %q in %s (already defined in %s)", rule.ID, rule.File, prev))
			continue
		}
		seen[rule.ID] = rule.File
		if rule.HasError() {
			l.logger.Debug("rule document failed to load", "file", rule.File, "error", rule.Err)
		}
		rules = append(rules, rule)
	}

	sort.SliceStable(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	return rules, warnings, nil
}

// parseAgent parses a single agent document. A document without a name
// yields a nil agent and no error.
func (l *Loader) parseAgent(path string) (*policy.Agent, error) {
	data, err := l.readDocument(path)
	if err != nil {
		return nil, err
	}

	var doc agentDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newParseError(path, err)
	}
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return nil, nil
	}
	return &policy.Agent{ID: name, File: path}, nil
}

// parseRule parses a single rule document. It never returns an error: a
// failure is stored on the returned rule, keyed by the file stem.
func (l *Loader) parseRule(path string) (*policy.Rule, error) {
	rule := &policy.Rule{
		ID:       fileStem(path),
		File:     path,
		Priority: policy.DefaultPriority,
	}

	data, err := l.readDocument(path)
	if err != nil {
		rule.Err = err
		return rule, nil
	}

	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		rule.Err = newParseError(path, err)
		return rule, nil
	}

	if name := strings.TrimSpace(doc.Name); name != "" {
		rule.ID = name
	}
	rule.Description = doc.Description
	if doc.Priority != nil {
		rule.Priority = *doc.Priority
	}
	rule.When = doc.When
	rule.Status = policy.ParseStatus(doc.Status)
	rule.Mechanism = doc.Mechanism
	rule.TargetMechanism = doc.TargetMechanism
	rule.Bypass = doc.Bypass

	return rule, nil
}

// readDocument reads a document after size and encoding checks.
func (l *Loader) readDocument(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &policy.LoadError{
			FilePath: path,
			Message:  "failed to access file",
			Cause:    err,
		}
	}

	if l.config.MaxFileSize > 0 && info.Size() > l.config.MaxFileSize {
		return nil, &policy.LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &policy.LoadError{
			FilePath: path,
			Message:  "failed to read file",
			Cause:    err,
		}
	}

	if !utf8.Valid(data) {
		return nil, &policy.LoadError{
			FilePath: path,
			Message:  "file contains invalid UTF-8 encoding",
		}
	}

	return data, nil
}

// collectFiles lists policy documents directly inside dir, sorted by name.
func (l *Loader) collectFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &policy.LoadError{
			FilePath: dir,
			Message:  "directory not found",
			Cause:    err,
		}
	}
	if !info.IsDir() {
		return nil, &policy.LoadError{
			FilePath: dir,
			Message:  "not a directory",
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &policy.LoadError{
			FilePath: dir,
			Message:  "failed to read directory",
			Cause:    err,
		}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if l.config.SkipHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !l.hasValidExtension(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// hasValidExtension checks if the file has a valid policy file extension.
func (l *Loader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.AllowedExtensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// newParseError wraps a yaml error, extracting the line number when the
// parser reports one ("yaml: line 3: ...").
func newParseError(path string, err error) *policy.ParseError {
	pe := &policy.ParseError{
		FilePath: path,
		Message:  "YAML parsing failed",
		Cause:    err,
	}
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		pe.Line = line
	}
	return pe
}
