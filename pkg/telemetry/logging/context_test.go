package logging

import (
	"context"
	"testing"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	if got := GetRunID(ctx); got != "" {
		t.Errorf("GetRunID() on empty context = %q", got)
	}

	ctx = WithRunID(ctx, "run-123")
	if got := GetRunID(ctx); got != "run-123" {
		t.Errorf("GetRunID() = %q, want %q", got, "run-123")
	}

	ctx = WithAudit(ctx, "enforcement")
	if got := GetAudit(ctx); got != "enforcement" {
		t.Errorf("GetAudit() = %q, want %q", got, "enforcement")
	}

	ctx = WithTrigger(ctx, "watch")
	if got := GetTrigger(ctx); got != "watch" {
		t.Errorf("GetTrigger() = %q, want %q", got, "watch")
	}
}

func TestContextAttrs(t *testing.T) {
	if attrs := contextAttrs(context.Background()); len(attrs) != 0 {
		t.Errorf("expected no attrs for empty context, got %v", attrs)
	}

	ctx := WithAudit(WithRunID(context.Background(), "r"), "logs")
	attrs := contextAttrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attrs, got %v", attrs)
	}
	if attrs[0].Key != "run_id" || attrs[1].Key != "audit" {
		t.Errorf("unexpected attr order: %v", attrs)
	}
}
