package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "policy.rules_dir").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// cronParser accepts the standard five-field format plus descriptors such
// as "@hourly", matching what the scheduler accepts.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// Directory fields are not checked for existence: a missing directory is
// reported by the audit that reads it.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateScan(&cfg.Scan)...)

	if cfg.Enforcement.StatusFile == "" {
		errs = append(errs, FieldError{
			Field:   "enforcement.status_file",
			Message: "status file is required",
		})
	}

	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validatePolicy validates policy store configuration.
func validatePolicy(cfg *PolicyConfig) []FieldError {
	var errs []FieldError

	if cfg.AgentsDir == "" {
		errs = append(errs, FieldError{Field: "policy.agents_dir", Message: "agents directory is required"})
	}
	if cfg.RulesDir == "" {
		errs = append(errs, FieldError{Field: "policy.rules_dir", Message: "rules directory is required"})
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{Field: "policy.max_file_size", Message: "max file size must be positive"})
	}
	if cfg.Workers < 0 {
		errs = append(errs, FieldError{Field: "policy.workers", Message: "workers must be non-negative"})
	}
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, FieldError{Field: "policy.watch.debounce", Message: "debounce must be non-negative"})
	}
	for i, id := range cfg.CriticalRules {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("policy.critical_rules[%d]", i),
				Message: "rule identifier must not be empty",
			})
		}
	}

	return errs
}

// validateScan validates violation scanner configuration.
func validateScan(cfg *ScanConfig) []FieldError {
	var errs []FieldError

	if cfg.DelegationTool == "" {
		errs = append(errs, FieldError{Field: "scan.delegation_tool", Message: "delegation tool is required"})
	}
	if cfg.ContextLimit < 0 {
		errs = append(errs, FieldError{Field: "scan.context_limit", Message: "context limit must be non-negative"})
	}
	if cfg.Workers < 0 {
		errs = append(errs, FieldError{Field: "scan.workers", Message: "workers must be non-negative"})
	}
	for i, ext := range cfg.SourceExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("scan.source_extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}
	for i, pattern := range cfg.Exemptions {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("scan.exemptions[%d]", i),
				Message: fmt.Sprintf("invalid pattern %q", pattern),
			})
		}
	}

	return errs
}

// validateHistory validates history configuration.
func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}
	if cfg.Enabled && cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{Field: "history.sqlite.path", Message: "SQLite path is required"})
	}
	if cfg.SQLite.MaxOpenConns < 0 {
		errs = append(errs, FieldError{Field: "history.sqlite.max_open_conns", Message: "max open connections must be non-negative"})
	}
	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "history.sqlite.busy_timeout", Message: "busy timeout must be non-negative"})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{Field: "history.retention.max_records", Message: "max records must be non-negative"})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cronParser.Parse(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "history.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateSchedule validates periodic audit configuration.
func validateSchedule(cfg *ScheduleConfig) []FieldError {
	var errs []FieldError

	if _, err := cronParser.Parse(cfg.Cron); err != nil {
		errs = append(errs, FieldError{
			Field:   "schedule.cron",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}
	for i, name := range cfg.Audits {
		if !slices.Contains(AllAudits, name) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("schedule.audits[%d]", i),
				Message: fmt.Sprintf("unknown audit %q: must be one of %s", name, strings.Join(AllAudits, ", ")),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	// Validate tracing sampler
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.TextfilePath == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.textfile_path",
			Message: "textfile path is required when metrics are enabled",
		})
	}

	return errs
}
