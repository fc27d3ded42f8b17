// Package telemetry groups Warden's observability packages.
//
// # Components
//
//   - logging: slog construction from configuration, with run, audit and
//     trace identifiers pulled from the context into every record
//   - metrics: Prometheus gauges, counters and histograms for audit results,
//     exported to a node-exporter textfile
//   - tracing: OpenTelemetry spans around each audit, optionally exported
//     over OTLP/gRPC
//   - health: preflight checks behind "warden doctor"
//
// Each component is configured from config.TelemetryConfig and is a no-op
// when disabled, so audits run the same way with or without it.
package telemetry
