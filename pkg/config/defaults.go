package config

import "time"

// Default values for configuration fields.
const (
	// Policy defaults
	DefaultAgentsDir      = "agents"
	DefaultRulesDir       = "system/rules"
	DefaultAgent          = "pilot"
	DefaultMaxFileSize    = int64(1048576) // 1MB
	DefaultWatchDebounce  = 250 * time.Millisecond
	DefaultStatusFile     = "system/enforcement.yaml"
	DefaultLogsDir        = "logs/agents"
	DefaultSourceDir      = "."
	DefaultDelegationTool = "Task"
	DefaultContextLimit   = 200

	// History defaults
	DefaultHistoryBackend        = "sqlite"
	DefaultHistorySQLitePath     = "data/warden.db"
	DefaultHistoryMaxOpenConns   = 4
	DefaultHistoryBusyTimeout    = 5 * time.Second
	DefaultHistoryRetentionDays  = 90
	DefaultHistoryRetentionPrune = "0 3 * * *"
	DefaultScheduleCron          = "0 * * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsTextfile    = "data/warden.prom"
	DefaultMetricsNamespace   = "warden"
	DefaultTracingServiceName = "warden"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
)

// Audit names accepted by schedule.audits.
const (
	AuditCoverage    = "coverage"
	AuditLogs        = "logs"
	AuditImports     = "imports"
	AuditEnforcement = "enforcement"
)

// AllAudits lists every audit in the order they run.
var AllAudits = []string{AuditCoverage, AuditLogs, AuditImports, AuditEnforcement}

// DefaultSourceExtensions are the source file extensions scanned for imports.
var DefaultSourceExtensions = []string{".py"}

// Default returns a configuration with every default applied. It is what
// Warden runs with when no configuration file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Policy defaults
	if cfg.Policy.AgentsDir == "" {
		cfg.Policy.AgentsDir = DefaultAgentsDir
	}
	if cfg.Policy.RulesDir == "" {
		cfg.Policy.RulesDir = DefaultRulesDir
	}
	if cfg.Policy.DefaultAgent == "" {
		cfg.Policy.DefaultAgent = DefaultAgent
	}
	if cfg.Policy.MaxFileSize == 0 {
		cfg.Policy.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Policy.Watch.Debounce == 0 {
		cfg.Policy.Watch.Debounce = DefaultWatchDebounce
	}

	// Scan defaults. Banned sets and exemptions stay nil so the scanner's
	// built-in lists apply.
	if cfg.Scan.LogsDir == "" {
		cfg.Scan.LogsDir = DefaultLogsDir
	}
	if cfg.Scan.SourceDir == "" {
		cfg.Scan.SourceDir = DefaultSourceDir
	}
	if len(cfg.Scan.SourceExtensions) == 0 {
		cfg.Scan.SourceExtensions = append([]string(nil), DefaultSourceExtensions...)
	}
	if cfg.Scan.DelegationTool == "" {
		cfg.Scan.DelegationTool = DefaultDelegationTool
	}
	if cfg.Scan.ContextLimit == 0 {
		cfg.Scan.ContextLimit = DefaultContextLimit
	}

	// Enforcement defaults
	if cfg.Enforcement.StatusFile == "" {
		cfg.Enforcement.StatusFile = DefaultStatusFile
	}

	// History defaults
	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.SQLite.Path == "" {
		cfg.History.SQLite.Path = DefaultHistorySQLitePath
	}
	if cfg.History.SQLite.MaxOpenConns == 0 {
		cfg.History.SQLite.MaxOpenConns = DefaultHistoryMaxOpenConns
	}
	if cfg.History.SQLite.BusyTimeout == 0 {
		cfg.History.SQLite.BusyTimeout = DefaultHistoryBusyTimeout
	}
	if cfg.History.Retention.Days == 0 {
		cfg.History.Retention.Days = DefaultHistoryRetentionDays
	}
	if cfg.History.Retention.PruneSchedule == "" {
		cfg.History.Retention.PruneSchedule = DefaultHistoryRetentionPrune
	}

	// Schedule defaults
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = DefaultScheduleCron
	}
	if len(cfg.Schedule.Audits) == 0 {
		cfg.Schedule.Audits = append([]string(nil), AllAudits...)
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.TextfilePath == "" {
		cfg.Telemetry.Metrics.TextfilePath = DefaultMetricsTextfile
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
}
