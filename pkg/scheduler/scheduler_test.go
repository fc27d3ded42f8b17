package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func TestAddValidatesSchedule(t *testing.T) {
	s := New(nil)
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name    string
		job     string
		spec    string
		fn      JobFunc
		wantErr bool
	}{
		{name: "five fields", job: "audit", spec: "0 * * * *", fn: noop},
		{name: "descriptor", job: "prune", spec: "@daily", fn: noop},
		{name: "every", job: "fast", spec: "@every 1m", fn: noop},
		{name: "duplicate name", job: "audit", spec: "@hourly", fn: noop, wantErr: true},
		{name: "bad spec", job: "bad", spec: "* * *", fn: noop, wantErr: true},
		{name: "seconds field rejected", job: "secs", spec: "*/5 * * * * *", fn: noop, wantErr: true},
		{name: "nil func", job: "nil", spec: "@hourly", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.job, tt.spec, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("Add(%q, %q) error = %v, wantErr %v", tt.job, tt.spec, err, tt.wantErr)
			}
		})
	}

	jobs := s.Jobs()
	slices.Sort(jobs)
	if !slices.Equal(jobs, []string{"audit", "fast", "prune"}) {
		t.Errorf("unexpected jobs: %v", jobs)
	}
}

func TestStartRequiresJobs(t *testing.T) {
	s := New(nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error when starting without jobs")
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	s := New(nil)
	if err := s.Add("audit", "@hourly", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if next := s.NextRun("audit"); next != nil {
		t.Errorf("expected no next run before start, got %v", next)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.IsRunning() {
		t.Error("expected scheduler to be running")
	}
	if err := s.Start(ctx); err == nil {
		t.Error("expected error on second Start")
	}

	next := s.NextRun("audit")
	if next == nil || !next.After(time.Now()) {
		t.Errorf("expected a future next run, got %v", next)
	}
	if s.NextRun("unknown") != nil {
		t.Error("expected nil next run for unknown job")
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("expected scheduler to stop after context cancellation")
	}
}

func TestRunLogsFailureAndSkipsCancelled(t *testing.T) {
	s := New(nil)
	var calls atomic.Int32
	failing := func(context.Context) error {
		calls.Add(1)
		return errors.New("rules directory not found")
	}

	s.run("audit", failing)
	if calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", calls.Load())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.ctx = ctx
	s.run("audit", failing)
	if calls.Load() != 1 {
		t.Errorf("expected job to be skipped after cancellation, got %d calls", calls.Load())
	}
}
