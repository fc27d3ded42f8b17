package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mercator-hq/warden/pkg/config"
)

// SQLiteStorage implements Storage on a SQLite database file using the
// pure-Go modernc.org/sqlite driver.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the database at cfg.Path,
// enables WAL mode and creates the schema.
func NewSQLiteStorage(cfg config.SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history.sqlite")

	if cfg.Path == "" {
		return nil, NewStorageError("sqlite", "open", errors.New("database path is required"))
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = config.DefaultHistoryBusyTimeout
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = config.DefaultHistoryMaxOpenConns
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewStorageError("sqlite", "create_dir", err)
		}
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("SQLite history opened",
		"path", cfg.Path,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

// initialize creates the schema and verifies its version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store inserts a record. Storing an existing ID replaces it.
func (s *SQLiteStorage) Store(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return NewStorageError("sqlite", "store", errors.New("record ID is required"))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO audit_runs (
			id, run_id, audit, trigger_source, target, started_at, duration,
			outcome, total, findings, coverage_percent, error, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RunID, record.Audit, record.Trigger, nullString(record.Target),
		record.StartedAt.UnixNano(), int64(record.Duration),
		record.Outcome, record.Total, record.Findings, record.CoveragePercent,
		nullString(record.Error), nullString(string(record.Report)),
	)
	if err != nil {
		return NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves matching records.
func (s *SQLiteStorage) Query(ctx context.Context, query *Query) ([]*Record, error) {
	if query == nil {
		query = &Query{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM audit_runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	order := "DESC"
	if query.Ascending {
		order = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY started_at %s, id %s LIMIT %d", order, order, query.limit())
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *Query) (int64, error) {
	if query == nil {
		query = &Query{}
	}
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM audit_runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes matching records.
func (s *SQLiteStorage) Delete(ctx context.Context, query *Query) (int64, error) {
	if query == nil {
		query = &Query{}
	}
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM audit_runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	s.logger.Debug("SQLite history closed")
	return nil
}

// buildWhereClause builds a WHERE clause (without the keyword) and its
// arguments from the query filters.
func buildWhereClause(query *Query) (string, []any) {
	var conditions []string
	var args []any

	if query.ID != "" {
		conditions = append(conditions, "id = ?")
		args = append(args, query.ID)
	}
	if query.Audit != "" {
		conditions = append(conditions, "audit = ?")
		args = append(args, query.Audit)
	}
	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, query.Outcome)
	}
	if query.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, query.RunID)
	}
	if query.Trigger != "" {
		conditions = append(conditions, "trigger_source = ?")
		args = append(args, query.Trigger)
	}
	if query.Since != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, query.Since.UnixNano())
	}
	if query.Until != nil {
		conditions = append(conditions, "started_at <= ?")
		args = append(args, query.Until.UnixNano())
	}

	return strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*Record, error) {
	var record Record
	var startedAt, duration int64
	var target, errorVal, report sql.NullString

	err := rows.Scan(
		&record.ID, &record.RunID, &record.Audit, &record.Trigger, &target,
		&startedAt, &duration,
		&record.Outcome, &record.Total, &record.Findings, &record.CoveragePercent,
		&errorVal, &report,
	)
	if err != nil {
		return nil, err
	}

	record.StartedAt = time.Unix(0, startedAt).UTC()
	record.Duration = time.Duration(duration)
	record.Target = target.String
	record.Error = errorVal.String
	if report.Valid && report.String != "" {
		record.Report = []byte(report.String)
	}

	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
