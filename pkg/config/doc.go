// Package config provides configuration management for Warden.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. Every field has a default,
// so Warden runs without a configuration file against the conventional
// layout (agents/, system/rules/, logs/agents/, system/enforcement.yaml).
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("warden.yaml")
//
//  2. From a YAML file (or the defaults, for an empty path) with
//     environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("warden.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention WARDEN_SECTION_FIELD.
// For example:
//
//   - WARDEN_POLICY_RULES_DIR overrides policy.rules_dir
//   - WARDEN_SCAN_BANNED_LIBRARIES overrides scan.banned_libraries (comma-separated)
//   - WARDEN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Global Configuration
//
// The CLI initializes a process-wide configuration once per command and
// "warden watch" reloads it when the file changes:
//
//	if err := config.Initialize(path); err != nil {
//	    return err
//	}
//	cfg := config.GetConfig()
//
// Library code takes an explicit *Config instead.
//
// # Validation
//
// Validation errors include field paths:
//
//	configuration validation failed with 2 errors:
//	  - history.backend: invalid backend "postgres": must be 'sqlite' or 'memory'
//	  - schedule.cron: invalid cron expression: expected exactly 5 fields, found 3: [* * *]
//
// # Example Configuration
//
//	policy:
//	  agents_dir: "agents"
//	  rules_dir: "system/rules"
//	  critical_rules: ["git-review-required", "context-first"]
//
//	scan:
//	  logs_dir: "logs/agents"
//	  source_dir: "."
//	  exemptions: ["tools/**/*.py"]
//
//	enforcement:
//	  status_file: "system/enforcement.yaml"
//
//	history:
//	  enabled: true
//	  backend: "sqlite"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "text"
package config
