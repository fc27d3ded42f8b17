package config

import "time"

// Config is the root configuration structure for Warden.
// It contains the locations of the policy store, enforcement status
// document and scan corpora, plus history, scheduling and telemetry settings.
type Config struct {
	// Policy contains configuration for reading agent and rule definitions.
	Policy PolicyConfig `yaml:"policy"`

	// Scan contains configuration for the violation scanner including
	// corpus locations, banned sets and exemptions.
	Scan ScanConfig `yaml:"scan"`

	// Enforcement contains configuration for the enforcement status aggregator.
	Enforcement EnforcementConfig `yaml:"enforcement"`

	// History contains configuration for persisting audit run summaries.
	History HistoryConfig `yaml:"history"`

	// Schedule contains configuration for periodic audits.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PolicyConfig contains configuration for the policy store.
type PolicyConfig struct {
	// AgentsDir is the directory holding agent definition documents.
	// Default: "agents"
	AgentsDir string `yaml:"agents_dir"`

	// RulesDir is the directory holding rule definition documents.
	// Default: "system/rules"
	RulesDir string `yaml:"rules_dir"`

	// DefaultAgent is always a member of the known agent set.
	// Default: "pilot"
	DefaultAgent string `yaml:"default_agent"`

	// CriticalRules lists rule identifiers that must apply to every agent.
	// When omitted the built-in critical list is used.
	CriticalRules []string `yaml:"critical_rules"`

	// MaxFileSize is the maximum size in bytes of a single definition document.
	// Default: 1048576 (1MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// Workers is the number of parallel document parsers.
	// Zero means one per CPU.
	Workers int `yaml:"workers"`

	// Watch contains file watching configuration for "warden watch".
	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig contains configuration for watching policy documents.
type WatchConfig struct {
	// Debounce is the quiet period after a change before an audit runs.
	// Default: 250ms
	Debounce time.Duration `yaml:"debounce"`
}

// ScanConfig contains configuration for the violation scanner.
type ScanConfig struct {
	// LogsDir is the root of the execution log corpus, laid out as
	// <logs_dir>/<agent>/<record>.json.
	// Default: "logs/agents"
	LogsDir string `yaml:"logs_dir"`

	// SourceDir is the root of the source corpus scanned for imports.
	// Default: "."
	SourceDir string `yaml:"source_dir"`

	// SourceExtensions lists the file extensions treated as source.
	// Default: [".py"]
	SourceExtensions []string `yaml:"source_extensions"`

	// DelegationTool is the tool name whose uses are delegations.
	// Default: "Task"
	DelegationTool string `yaml:"delegation_tool"`

	// BannedSubagents lists delegation subagent types that are violations.
	// When omitted the built-in list is used.
	BannedSubagents []string `yaml:"banned_subagents"`

	// BannedLibraries lists module names that must not be imported.
	// When omitted the built-in list is used.
	BannedLibraries []string `yaml:"banned_libraries"`

	// Exemptions lists path patterns (doublestar globs allowed) whose
	// entries are never flagged. When omitted the built-in list is used.
	Exemptions []string `yaml:"exemptions"`

	// ContextLimit is the maximum number of characters of prompt context
	// kept on a violation.
	// Default: 200
	ContextLimit int `yaml:"context_limit"`

	// Workers is the number of parallel corpus readers.
	// Zero means one per CPU.
	Workers int `yaml:"workers"`
}

// EnforcementConfig contains configuration for the enforcement status aggregator.
type EnforcementConfig struct {
	// StatusFile is the path of the enforcement status document.
	// Default: "system/enforcement.yaml"
	StatusFile string `yaml:"status_file"`
}

// HistoryConfig contains configuration for audit run history.
type HistoryConfig struct {
	// Enabled controls whether audit run summaries are persisted.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for run summaries.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/warden.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains history retention configuration.
type RetentionConfig struct {
	// Days is the number of days to keep run summaries.
	// A negative value disables age-based pruning.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the number of stored run summaries.
	// Zero means unlimited.
	MaxRecords int `yaml:"max_records"`

	// PruneSchedule is the cron expression for automatic pruning.
	// Default: "0 3 * * *" (daily at 3am)
	PruneSchedule string `yaml:"prune_schedule"`
}

// ScheduleConfig contains configuration for periodic audits.
type ScheduleConfig struct {
	// Cron is the cron expression for running audits in "warden schedule".
	// Default: "0 * * * *" (hourly)
	Cron string `yaml:"cron"`

	// Audits lists the audits run on each tick.
	// Options: "coverage", "logs", "imports", "enforcement"
	// Default: all four
	Audits []string `yaml:"audits"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource adds source file and line to log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether audit metrics are written.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// TextfilePath is the file metrics are written to after each audit,
	// in the Prometheus text exposition format.
	// Default: "data/warden.prom"
	TextfilePath string `yaml:"textfile_path"`

	// Namespace is the metric name prefix.
	// Default: "warden"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	// Enabled controls whether audit runs create spans.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is the service.name resource attribute and tracer name.
	// Default: "warden"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector address (e.g., "localhost:4317").
	// When empty, spans are created for log correlation but not exported.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Sampler is the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of runs sampled with the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}
