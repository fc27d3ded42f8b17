package tracing

import (
	"context"
	"errors"
	"testing"

	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/policy"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func enabledConfig() *config.TracingConfig {
	return &config.TracingConfig{
		Enabled:     true,
		ServiceName: "warden-test",
		Sampler:     SamplerAlways,
		SampleRatio: 1.0,
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:    "disabled tracing",
			config:  &config.TracingConfig{Enabled: false, ServiceName: "warden-test"},
			wantErr: false,
		},
		{
			name:    "enabled without endpoint",
			config:  enabledConfig(),
			wantErr: false,
		},
		{
			name: "invalid sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				ServiceName: "warden-test",
				Sampler:     "sometimes",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer tracer.Shutdown(context.Background())

			if tracer.Enabled() != tt.config.Enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.config.Enabled)
			}
		})
	}
}

func TestTracer_DisabledSpansInvalid(t *testing.T) {
	tracer, err := New(&config.TracingConfig{ServiceName: "warden-test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "audit.coverage")
	defer span.End()

	if TraceID(ctx) != "" {
		t.Error("disabled tracer produced a valid trace ID")
	}
}

func TestTracer_NilSafe(t *testing.T) {
	var tracer *Tracer

	_, span := tracer.Start(context.Background(), "audit.logs")
	span.End()

	if tracer.Enabled() {
		t.Error("nil tracer reported enabled")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("nil tracer Shutdown() error = %v", err)
	}
}

func TestTracer_ExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(enabledConfig(), WithExporter(exporter))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(context.Background(), "audit.enforcement")
	if TraceID(ctx) == "" {
		t.Error("expected a valid trace ID inside the span")
	}
	span.SetAttributes(RunAttributes("run-1", "enforcement", "cli")...)
	span.SetAttributes(EnforcementAttributes(&enforcement.Report{TotalRules: 10, CoveragePercent: 60})...)
	SetStatus(span, nil)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 exported span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != "audit.enforcement" {
		t.Errorf("span name = %q", got.Name)
	}
	if got.Status.Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", got.Status.Code)
	}

	attrs := make(map[string]any)
	for _, kv := range got.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs[AttrRunID] != "run-1" {
		t.Errorf("%s = %v", AttrRunID, attrs[AttrRunID])
	}
	if attrs[AttrCoveragePercent] != 60.0 {
		t.Errorf("%s = %v", AttrCoveragePercent, attrs[AttrCoveragePercent])
	}
}

func TestSetReportError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(enabledConfig(), WithExporter(exporter))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "audit.coverage")
	SetReportError(span, nil)
	SetReportError(span, policy.ConfigMissing("rules directory", "system/rules"))
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("span status = %v, want Error", got.Status.Code)
	}
}

func TestSetStatus_Error(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(enabledConfig(), WithExporter(exporter))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "history.store")
	SetStatus(span, errors.New("disk full"))
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error || got.Status.Description != "disk full" {
		t.Errorf("unexpected status: %+v", got.Status)
	}
	if len(got.Events) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}
