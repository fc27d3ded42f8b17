package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := writeConfig(t, `
policy:
  agents_dir: "team/agents"
  rules_dir: "team/rules"
  critical_rules: ["context-first"]
  watch:
    debounce: "1s"

scan:
  logs_dir: "var/logs"
  banned_libraries: ["requests"]
  exemptions: ["tools/**/*.py"]
  context_limit: 80

enforcement:
  status_file: "team/enforcement.yaml"

history:
  enabled: true
  backend: "memory"

telemetry:
  logging:
    level: "debug"
    format: "json"
  metrics:
    enabled: true
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Policy.AgentsDir != "team/agents" {
		t.Errorf("expected agents dir %q, got %q", "team/agents", cfg.Policy.AgentsDir)
	}
	if cfg.Policy.Watch.Debounce != time.Second {
		t.Errorf("expected debounce %v, got %v", time.Second, cfg.Policy.Watch.Debounce)
	}
	if !slices.Equal(cfg.Policy.CriticalRules, []string{"context-first"}) {
		t.Errorf("unexpected critical rules: %v", cfg.Policy.CriticalRules)
	}
	if cfg.Scan.ContextLimit != 80 {
		t.Errorf("expected context limit 80, got %d", cfg.Scan.ContextLimit)
	}
	if !slices.Equal(cfg.Scan.Exemptions, []string{"tools/**/*.py"}) {
		t.Errorf("unexpected exemptions: %v", cfg.Scan.Exemptions)
	}
	if cfg.Enforcement.StatusFile != "team/enforcement.yaml" {
		t.Errorf("expected status file %q, got %q", "team/enforcement.yaml", cfg.Enforcement.StatusFile)
	}
	if !cfg.History.Enabled || cfg.History.Backend != "memory" {
		t.Errorf("unexpected history config: %+v", cfg.History)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}

	// Unset fields pick up defaults
	if cfg.Scan.DelegationTool != DefaultDelegationTool {
		t.Errorf("expected default delegation tool, got %q", cfg.Scan.DelegationTool)
	}
	if cfg.Telemetry.Metrics.TextfilePath != DefaultMetricsTextfile {
		t.Errorf("expected default textfile path, got %q", cfg.Telemetry.Metrics.TextfilePath)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	configPath := writeConfig(t, "policy:\n  agents_dir: [unclosed\n")

	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
history:
  backend: "postgres"
`)

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError in chain, got %T", err)
	}
	if validationErr.Errors[0].Field != "history.backend" {
		t.Errorf("expected history.backend error, got %q", validationErr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Policy.RulesDir != DefaultRulesDir {
		t.Errorf("expected rules dir %q, got %q", DefaultRulesDir, cfg.Policy.RulesDir)
	}
}

func TestLoadConfigWithEnvOverrides_BasicOverrides(t *testing.T) {
	configPath := writeConfig(t, `
policy:
  rules_dir: "file/rules"
telemetry:
  logging:
    level: "info"
`)

	t.Setenv("WARDEN_POLICY_RULES_DIR", "env/rules")
	t.Setenv("WARDEN_TELEMETRY_LOGGING_LEVEL", "debug")
	t.Setenv("WARDEN_SCAN_BANNED_LIBRARIES", "requests, httpx ,")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Policy.RulesDir != "env/rules" {
		t.Errorf("expected rules dir %q from env, got %q", "env/rules", cfg.Policy.RulesDir)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q from env, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	if !slices.Equal(cfg.Scan.BannedLibraries, []string{"requests", "httpx"}) {
		t.Errorf("unexpected banned libraries from env: %v", cfg.Scan.BannedLibraries)
	}
}

func TestLoadConfigWithEnvOverrides_TypedValues(t *testing.T) {
	t.Setenv("WARDEN_POLICY_WATCH_DEBOUNCE", "2s")
	t.Setenv("WARDEN_POLICY_MAX_FILE_SIZE", "2048")
	t.Setenv("WARDEN_SCAN_CONTEXT_LIMIT", "50")
	t.Setenv("WARDEN_HISTORY_ENABLED", "true")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Policy.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Policy.Watch.Debounce)
	}
	if cfg.Policy.MaxFileSize != 2048 {
		t.Errorf("expected max file size 2048, got %d", cfg.Policy.MaxFileSize)
	}
	if cfg.Scan.ContextLimit != 50 {
		t.Errorf("expected context limit 50, got %d", cfg.Scan.ContextLimit)
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled from env")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnvValues(t *testing.T) {
	t.Setenv("WARDEN_POLICY_WATCH_DEBOUNCE", "soon")
	t.Setenv("WARDEN_SCAN_CONTEXT_LIMIT", "many")
	t.Setenv("WARDEN_HISTORY_ENABLED", "perhaps")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Unparseable values are ignored
	if cfg.Policy.Watch.Debounce != DefaultWatchDebounce {
		t.Errorf("expected default debounce, got %v", cfg.Policy.Watch.Debounce)
	}
	if cfg.Scan.ContextLimit != DefaultContextLimit {
		t.Errorf("expected default context limit, got %d", cfg.Scan.ContextLimit)
	}
	if cfg.History.Enabled {
		t.Error("expected history to stay disabled")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverrideFailsValidation(t *testing.T) {
	t.Setenv("WARDEN_TELEMETRY_LOGGING_FORMAT", "xml")

	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Fatal("expected validation error after override")
	}
}
