// Package audit runs Warden's audits.
//
// The subpackages hold the analyzers: coverage (rule applicability across
// agents), scan (banned delegations and forbidden imports) and enforcement
// (status document aggregation). Each is a pure function of its input.
//
// Runner is the single entry point used by the CLI, the policy watcher and
// the scheduler. For every audit it assigns a run ID, threads the run ID,
// audit name and trigger into the context for logging, wraps the work in a
// span, and after the report is built records metrics and a history
// summary:
//
//	runner, err := audit.NewRunner(cfg, logger,
//	    audit.WithMetrics(collector),
//	    audit.WithTracer(tracer),
//	    audit.WithHistory(store),
//	)
//	report := runner.Coverage(ctx)
//	if audit.Outcome(report) != history.OutcomeClean {
//	    ...
//	}
package audit
