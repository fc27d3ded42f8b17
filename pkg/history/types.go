package history

import (
	"context"
	"encoding/json"
	"time"
)

// Outcome values recorded for an audit run.
const (
	OutcomeClean    = "clean"
	OutcomeFindings = "findings"
	OutcomeError    = "error"
)

// Record is the persisted summary of one audit run.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// RunID is the identifier carried by the report itself.
	RunID string `json:"run_id"`

	// Audit is the audit kind ("coverage", "logs", "imports", "enforcement").
	Audit string `json:"audit"`

	// Trigger says what started the run ("cli", "watch", "schedule").
	Trigger string `json:"trigger"`

	// Target is the directory or file the audit read.
	Target string `json:"target,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Outcome is one of OutcomeClean, OutcomeFindings or OutcomeError.
	Outcome string `json:"outcome"`

	// Total is the number of items examined: rules for coverage and
	// enforcement, entries for scans.
	Total int `json:"total"`

	// Findings counts violations, gaps or critical recommendations.
	Findings int `json:"findings"`

	// CoveragePercent is set for enforcement audits only.
	CoveragePercent float64 `json:"coverage_percent,omitempty"`

	// Error holds the report error message, if any.
	Error string `json:"error,omitempty"`

	// Report is the full report as JSON.
	Report json.RawMessage `json:"report,omitempty"`
}

// Query filters stored records. Zero values match everything.
type Query struct {
	ID      string `json:"id,omitempty"`
	Audit   string `json:"audit,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	RunID   string `json:"run_id,omitempty"`
	Trigger string `json:"trigger,omitempty"`

	// Since and Until bound StartedAt, both inclusive.
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`

	// Limit caps the result size; zero means DefaultQueryLimit.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Ascending returns oldest first. The default is newest first.
	Ascending bool `json:"ascending,omitempty"`
}

// DefaultQueryLimit is used when Query.Limit is zero.
const DefaultQueryLimit = 100

// Validate checks the query for inconsistent bounds.
func (q *Query) Validate() error {
	if q.Limit < 0 {
		return NewQueryError(q, errNegativeLimit)
	}
	if q.Offset < 0 {
		return NewQueryError(q, errNegativeOffset)
	}
	if q.Since != nil && q.Until != nil && q.Until.Before(*q.Since) {
		return NewQueryError(q, errInvertedRange)
	}
	return nil
}

func (q *Query) limit() int {
	if q.Limit > 0 {
		return q.Limit
	}
	return DefaultQueryLimit
}

// Storage persists audit run records.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filters, newest first unless
	// Ascending is set. An empty slice means no match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters,
	// ignoring Limit and Offset.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters, ignoring Limit and
	// Offset, and returns how many were removed.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}
