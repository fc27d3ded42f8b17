package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "WARDEN_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention WARDEN_SECTION_FIELD (e.g., WARDEN_POLICY_RULES_DIR).
// Environment variables always take precedence over file-based configuration.
//
// An empty path starts from the defaults instead of a file.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Policy overrides
	envString("POLICY_AGENTS_DIR", &cfg.Policy.AgentsDir)
	envString("POLICY_RULES_DIR", &cfg.Policy.RulesDir)
	envString("POLICY_DEFAULT_AGENT", &cfg.Policy.DefaultAgent)
	envList("POLICY_CRITICAL_RULES", &cfg.Policy.CriticalRules)
	envInt64("POLICY_MAX_FILE_SIZE", &cfg.Policy.MaxFileSize)
	envInt("POLICY_WORKERS", &cfg.Policy.Workers)
	envDuration("POLICY_WATCH_DEBOUNCE", &cfg.Policy.Watch.Debounce)

	// Scan overrides
	envString("SCAN_LOGS_DIR", &cfg.Scan.LogsDir)
	envString("SCAN_SOURCE_DIR", &cfg.Scan.SourceDir)
	envList("SCAN_SOURCE_EXTENSIONS", &cfg.Scan.SourceExtensions)
	envString("SCAN_DELEGATION_TOOL", &cfg.Scan.DelegationTool)
	envList("SCAN_BANNED_SUBAGENTS", &cfg.Scan.BannedSubagents)
	envList("SCAN_BANNED_LIBRARIES", &cfg.Scan.BannedLibraries)
	envList("SCAN_EXEMPTIONS", &cfg.Scan.Exemptions)
	envInt("SCAN_CONTEXT_LIMIT", &cfg.Scan.ContextLimit)
	envInt("SCAN_WORKERS", &cfg.Scan.Workers)

	// Enforcement overrides
	envString("ENFORCEMENT_STATUS_FILE", &cfg.Enforcement.StatusFile)

	// History overrides
	envBool("HISTORY_ENABLED", &cfg.History.Enabled)
	envString("HISTORY_BACKEND", &cfg.History.Backend)
	envString("HISTORY_SQLITE_PATH", &cfg.History.SQLite.Path)
	envInt("HISTORY_RETENTION_DAYS", &cfg.History.Retention.Days)
	envInt("HISTORY_RETENTION_MAX_RECORDS", &cfg.History.Retention.MaxRecords)
	envString("HISTORY_RETENTION_PRUNE_SCHEDULE", &cfg.History.Retention.PruneSchedule)

	// Schedule overrides
	envString("SCHEDULE_CRON", &cfg.Schedule.Cron)
	envList("SCHEDULE_AUDITS", &cfg.Schedule.Audits)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_TEXTFILE_PATH", &cfg.Telemetry.Metrics.TextfilePath)
	envString("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	envString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

// envList reads a comma-separated list.
func envList(name string, dst *[]string) {
	val := os.Getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envInt64(name string, dst *int64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
