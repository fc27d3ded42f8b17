package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the history tables. Timestamps and durations are stored
// as integer nanoseconds so range filters compare numerically.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_runs (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    audit TEXT NOT NULL,
    trigger_source TEXT NOT NULL,
    target TEXT,
    started_at INTEGER NOT NULL,
    duration INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    total INTEGER NOT NULL,
    findings INTEGER NOT NULL,
    coverage_percent REAL NOT NULL DEFAULT 0,
    error TEXT,
    report TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_runs_started_at ON audit_runs(started_at);
CREATE INDEX IF NOT EXISTS idx_audit_runs_audit ON audit_runs(audit);
CREATE INDEX IF NOT EXISTS idx_audit_runs_run_id ON audit_runs(run_id);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const selectColumns = `id, run_id, audit, trigger_source, target, started_at, duration,
outcome, total, findings, coverage_percent, error, report`
