package store

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mercator-hq/warden/pkg/policy"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func findRule(snap *Snapshot, id string) *policy.Rule {
	for _, r := range snap.Rules {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func newPolicyTree(t *testing.T) (agentsDir, rulesDir string) {
	t.Helper()
	root := t.TempDir()
	agentsDir = filepath.Join(root, "agents")
	rulesDir = filepath.Join(root, "rules")

	writeFile(t, agentsDir, "builder.yaml", "name: builder\nrole: build things\n")
	writeFile(t, agentsDir, "reviewer.yml", "name: reviewer\n")
	writeFile(t, agentsDir, "nameless.yaml", "role: nothing\n")
	writeFile(t, agentsDir, "broken.yaml", "name: [unterminated\n")
	writeFile(t, agentsDir, "notes.txt", "name: ignored\n")
	writeFile(t, agentsDir, ".hidden.yaml", "name: hidden\n")

	writeFile(t, rulesDir, "git-review.yaml", `name: git-review-required
description: Commits need review
priority: 90
when: "*"
status: enforced
mechanism: pre-commit hook
`)
	writeFile(t, rulesDir, "web.yaml", `name: web-access-policy
when:
  - agent: pilot
  - agent: builder
status: partial
target_mechanism: import guard
`)
	writeFile(t, rulesDir, "bad-rule.yaml", "name: bad\nwhen: [oops\n")
	writeFile(t, rulesDir, "anonymous.yaml", "description: no name here\nwhen: [builder]\n")

	return agentsDir, rulesDir
}

func TestLoaderLoad(t *testing.T) {
	agentsDir, rulesDir := newPolicyTree(t)

	snap := NewLoader(nil, nil).Load(agentsDir, rulesDir)

	if snap.Err != nil {
		t.Fatalf("snap.Err = %v, want nil", snap.Err)
	}

	wantAgents := []string{"builder", "pilot", "reviewer"}
	if got := snap.AgentIDs(); !reflect.DeepEqual(got, wantAgents) {
		t.Errorf("AgentIDs() = %v, want %v", got, wantAgents)
	}

	if len(snap.AgentErrors) != 1 {
		t.Errorf("len(AgentErrors) = %d, want 1", len(snap.AgentErrors))
	}

	var ids []string
	for _, r := range snap.Rules {
		ids = append(ids, r.ID)
	}
	wantRules := []string{"anonymous", "bad-rule", "git-review-required", "web-access-policy"}
	if !reflect.DeepEqual(ids, wantRules) {
		t.Errorf("rule IDs = %v, want %v", ids, wantRules)
	}
}

func TestLoaderRuleFields(t *testing.T) {
	agentsDir, rulesDir := newPolicyTree(t)
	snap := NewLoader(nil, nil).Load(agentsDir, rulesDir)

	review := findRule(snap, "git-review-required")
	if review == nil {
		t.Fatal("git-review-required not loaded")
	}
	if review.Priority != 90 {
		t.Errorf("Priority = %d, want 90", review.Priority)
	}
	if review.Status != policy.StatusEnforced {
		t.Errorf("Status = %q, want enforced", review.Status)
	}
	if !review.When.Universal {
		t.Error("When.Universal = false, want true")
	}
	if review.Mechanism != "pre-commit hook" {
		t.Errorf("Mechanism = %q", review.Mechanism)
	}

	web := findRule(snap, "web-access-policy")
	if web == nil {
		t.Fatal("web-access-policy not loaded")
	}
	if web.Priority != policy.DefaultPriority {
		t.Errorf("Priority = %d, want default %d", web.Priority, policy.DefaultPriority)
	}
	if got := web.When.Names(); !reflect.DeepEqual(got, []string{"pilot", "builder"}) {
		t.Errorf("When.Names() = %v", got)
	}
	if web.TargetMechanism != "import guard" {
		t.Errorf("TargetMechanism = %q", web.TargetMechanism)
	}

	anon := findRule(snap, "anonymous")
	if anon == nil {
		t.Fatal("nameless rule should be recorded under its file stem")
	}
	if anon.HasError() {
		t.Errorf("anonymous rule has error %v", anon.Err)
	}
	if anon.Status != policy.StatusUnknown {
		t.Errorf("Status = %q, want unknown", anon.Status)
	}
}

func TestLoaderMalformedRuleIsolated(t *testing.T) {
	agentsDir, rulesDir := newPolicyTree(t)
	snap := NewLoader(nil, nil).Load(agentsDir, rulesDir)

	bad := findRule(snap, "bad-rule")
	if bad == nil {
		t.Fatal("malformed rule should be recorded under its file stem")
	}
	if !bad.HasError() {
		t.Fatal("malformed rule should carry an error")
	}
	var pe *policy.ParseError
	if !errors.As(bad.Err, &pe) {
		t.Errorf("Err = %T, want *policy.ParseError", bad.Err)
	}
	if bad.Status != "" {
		t.Errorf("Status = %q, want empty for a failed rule", bad.Status)
	}

	if got := len(snap.FailedRules()); got != 1 {
		t.Errorf("len(FailedRules()) = %d, want 1", got)
	}
}

func TestLoaderLogsFailedRules(t *testing.T) {
	agentsDir, rulesDir := newPolicyTree(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	NewLoader(nil, logger).Load(agentsDir, rulesDir)

	out := buf.String()
	if !strings.Contains(out, "rule document failed to load") || !strings.Contains(out, "rule=bad-rule") {
		t.Errorf("expected a warning for the malformed rule, got:\n%s", out)
	}
}

func TestLoaderMissingRulesDirectory(t *testing.T) {
	root := t.TempDir()
	snap := NewLoader(nil, nil).Load(filepath.Join(root, "agents"), filepath.Join(root, "rules"))

	if snap.Err == nil {
		t.Fatal("snap.Err = nil, want config-missing error")
	}
	if !snap.Err.IsConfigMissing() {
		t.Errorf("snap.Err.Kind = %q, want %q", snap.Err.Kind, policy.KindConfigMissing)
	}
	if len(snap.Rules) != 0 {
		t.Errorf("len(Rules) = %d, want 0", len(snap.Rules))
	}
	if got := snap.AgentIDs(); !reflect.DeepEqual(got, []string{"pilot"}) {
		t.Errorf("AgentIDs() = %v, want [pilot]", got)
	}
	if len(snap.Warnings) == 0 {
		t.Error("missing agents directory should produce a warning")
	}
}

func TestLoaderRulesPathIsFile(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "rules", "not a dir")

	snap := NewLoader(nil, nil).Load(root, file)
	if !snap.Err.IsConfigMissing() {
		t.Errorf("snap.Err = %v, want config-missing", snap.Err)
	}
}

func TestLoaderDuplicateRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rules/a.yaml", "name: same\nwhen: \"*\"\n")
	writeFile(t, root, "rules/b.yaml", "name: same\nwhen: []\n")

	snap := NewLoader(nil, nil).Load(filepath.Join(root, "agents"), filepath.Join(root, "rules"))

	if len(snap.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(snap.Rules))
	}
	if !strings.HasSuffix(snap.Rules[0].File, "a.yaml") {
		t.Errorf("kept rule from %s, want a.yaml", snap.Rules[0].File)
	}
	found := false
	for _, w := range snap.Warnings {
		if strings.Contains(w, "duplicate rule") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a duplicate rule warning", snap.Warnings)
	}
}

func TestLoaderMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rules/big.yaml", "name: big\ndescription: "+strings.Repeat("x", 200)+"\n")

	cfg := DefaultLoaderConfig()
	cfg.MaxFileSize = 64
	snap := NewLoader(cfg, nil).Load(filepath.Join(root, "agents"), filepath.Join(root, "rules"))

	rule := findRule(snap, "big")
	if rule == nil {
		t.Fatal("oversized rule should still be recorded")
	}
	var le *policy.LoadError
	if !errors.As(rule.Err, &le) {
		t.Errorf("Err = %v, want *policy.LoadError", rule.Err)
	}
}

func TestLoaderInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rules/bin.yaml", "name: \xff\xfe\n")

	snap := NewLoader(nil, nil).Load(filepath.Join(root, "agents"), filepath.Join(root, "rules"))
	rule := findRule(snap, "bin")
	if rule == nil || !rule.HasError() {
		t.Fatalf("rule = %+v, want error recorded", rule)
	}
}

func TestLoaderCustomDefaultAgent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rules/r.yaml", "name: r\n")

	cfg := DefaultLoaderConfig()
	cfg.DefaultAgent = "conductor"
	snap := NewLoader(cfg, nil).Load(filepath.Join(root, "agents"), filepath.Join(root, "rules"))

	if got := snap.AgentIDs(); !reflect.DeepEqual(got, []string{"conductor"}) {
		t.Errorf("AgentIDs() = %v, want [conductor]", got)
	}
}

func TestNewParseErrorLine(t *testing.T) {
	pe := newParseError("x.yaml", errors.New("yaml: line 7: did not find expected key"))
	if pe.Line != 7 {
		t.Errorf("Line = %d, want 7", pe.Line)
	}

	pe = newParseError("x.yaml", errors.New("yaml: unmarshal errors"))
	if pe.Line != 0 {
		t.Errorf("Line = %d, want 0", pe.Line)
	}
}
