package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for audit run identifiers.
	RunIDKey contextKey = "run_id"

	// AuditKey is the context key for the audit kind (coverage, logs, ...).
	AuditKey contextKey = "audit"

	// TriggerKey is the context key for what started a run (cli, watch, schedule).
	TriggerKey contextKey = "trigger"
)

// WithRunID adds an audit run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the audit run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithAudit adds the audit kind to the context.
func WithAudit(ctx context.Context, audit string) context.Context {
	return context.WithValue(ctx, AuditKey, audit)
}

// GetAudit retrieves the audit kind from the context.
func GetAudit(ctx context.Context) string {
	if audit, ok := ctx.Value(AuditKey).(string); ok {
		return audit
	}
	return ""
}

// WithTrigger adds the run trigger to the context.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, TriggerKey, trigger)
}

// GetTrigger retrieves the run trigger from the context.
func GetTrigger(ctx context.Context) string {
	if trigger, ok := ctx.Value(TriggerKey).(string); ok {
		return trigger
	}
	return ""
}

// contextAttrs extracts log fields from the context. Trace and span IDs
// come from an active OpenTelemetry span, when there is one.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, slog.String("run_id", runID))
	}
	if audit := GetAudit(ctx); audit != "" {
		attrs = append(attrs, slog.String("audit", audit))
	}
	if trigger := GetTrigger(ctx); trigger != "" {
		attrs = append(attrs, slog.String("trigger", trigger))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	return attrs
}
