// Package logging builds the structured logger used across Warden.
//
// The logger is a plain *slog.Logger with a JSON or text handler. Records
// logged through the *Context methods pick up audit fields stored in the
// context (run_id, audit, trigger) and the trace and span IDs of an active
// OpenTelemetry span.
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.With("component", "runner").InfoContext(ctx, "audit complete", "rules", n)
//
// Logs go to stderr by default so they never mix with reports on stdout.
package logging
