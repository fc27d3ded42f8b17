package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("expected default config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	// Nothing set: no directories, no backend, no cron, no logging level
	err := Validate(&Config{})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		errorField string
	}{
		{
			name:       "empty rules dir",
			modify:     func(c *Config) { c.Policy.RulesDir = "" },
			errorField: "policy.rules_dir",
		},
		{
			name:       "non-positive max file size",
			modify:     func(c *Config) { c.Policy.MaxFileSize = -1 },
			errorField: "policy.max_file_size",
		},
		{
			name:       "blank critical rule",
			modify:     func(c *Config) { c.Policy.CriticalRules = []string{"minimalism", " "} },
			errorField: "policy.critical_rules[1]",
		},
		{
			name:       "negative workers",
			modify:     func(c *Config) { c.Scan.Workers = -2 },
			errorField: "scan.workers",
		},
		{
			name:       "extension without dot",
			modify:     func(c *Config) { c.Scan.SourceExtensions = []string{"py"} },
			errorField: "scan.source_extensions[0]",
		},
		{
			name:       "invalid exemption pattern",
			modify:     func(c *Config) { c.Scan.Exemptions = []string{"tools/[a-"} },
			errorField: "scan.exemptions[0]",
		},
		{
			name:       "empty status file",
			modify:     func(c *Config) { c.Enforcement.StatusFile = "" },
			errorField: "enforcement.status_file",
		},
		{
			name:       "unknown history backend",
			modify:     func(c *Config) { c.History.Backend = "postgres" },
			errorField: "history.backend",
		},
		{
			name:       "invalid prune schedule",
			modify:     func(c *Config) { c.History.Retention.PruneSchedule = "every day" },
			errorField: "history.retention.prune_schedule",
		},
		{
			name:       "invalid schedule cron",
			modify:     func(c *Config) { c.Schedule.Cron = "* * *" },
			errorField: "schedule.cron",
		},
		{
			name:       "unknown audit",
			modify:     func(c *Config) { c.Schedule.Audits = []string{"coverage", "lint"} },
			errorField: "schedule.audits[1]",
		},
		{
			name:       "invalid logging level",
			modify:     func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			errorField: "telemetry.logging.level",
		},
		{
			name:       "invalid logging format",
			modify:     func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			errorField: "telemetry.logging.format",
		},
		{
			name: "metrics without textfile",
			modify: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.TextfilePath = ""
			},
			errorField: "telemetry.metrics.textfile_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.errorField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %v", tt.errorField, validationErr.Errors)
			}
		})
	}
}

func TestValidate_ScheduleDescriptor(t *testing.T) {
	cfg := Default()
	cfg.Schedule.Cron = "@every 10m"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected descriptor schedule to validate, got %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		contains string
	}{
		{
			name:     "empty errors",
			err:      ValidationError{Errors: []FieldError{}},
			contains: "configuration validation failed",
		},
		{
			name: "single error",
			err: ValidationError{
				Errors: []FieldError{
					{Field: "policy.rules_dir", Message: "required"},
				},
			},
			contains: "policy.rules_dir",
		},
		{
			name: "multiple errors",
			err: ValidationError{
				Errors: []FieldError{
					{Field: "policy.rules_dir", Message: "required"},
					{Field: "schedule.cron", Message: "invalid"},
				},
			},
			contains: "2 errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := tt.err.Error()
			if !strings.Contains(errMsg, tt.contains) {
				t.Errorf("expected error message to contain %q, got: %s", tt.contains, errMsg)
			}
		})
	}
}
