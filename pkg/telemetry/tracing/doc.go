// Package tracing provides OpenTelemetry spans for audit runs.
//
// Each audit run is one span carrying the run ID, the audit kind and the
// summary counts of the report it produced. "warden audit" nests the four
// audits under a parent span.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "localhost:4317"   # OTLP gRPC collector
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.25
//
// Without an endpoint, spans are created but not exported. The trace and
// span IDs still appear in log records, which is useful for correlating
// the log lines of one scheduled run.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "audit.coverage")
//	span.SetAttributes(tracing.CoverageAttributes(report)...)
//	span.End()
package tracing
