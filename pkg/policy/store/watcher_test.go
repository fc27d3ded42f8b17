package store

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestDefaultWatcherConfig(t *testing.T) {
	config := DefaultWatcherConfig()

	if config.DebounceInterval != 250*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 250ms", config.DebounceInterval)
	}
	if len(config.Extensions) != 2 {
		t.Errorf("len(Extensions) = %d, want 2", len(config.Extensions))
	}
	if !config.SkipHidden {
		t.Error("SkipHidden = false, want true")
	}
}

func TestWatcherShouldProcessEvent(t *testing.T) {
	w, err := NewWatcher(nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"yaml write", fsnotify.Event{Name: "rules/a.yaml", Op: fsnotify.Write}, true},
		{"yml create", fsnotify.Event{Name: "rules/a.yml", Op: fsnotify.Create}, true},
		{"upper-case extension", fsnotify.Event{Name: "rules/A.YAML", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "rules/a.yaml", Op: fsnotify.Chmod}, false},
		{"other extension", fsnotify.Event{Name: "rules/a.txt", Op: fsnotify.Write}, false},
		{"hidden file", fsnotify.Event{Name: "rules/.a.yaml", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatcherTriggersOnChange(t *testing.T) {
	dir := t.TempDir()

	config := DefaultWatcherConfig()
	config.Paths = []string{dir, filepath.Join(dir, "missing")}
	config.DebounceInterval = 20 * time.Millisecond

	w, err := NewWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() { calls.Add(1) })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "rule.yaml"), []byte("name: r\n"), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Fatal("onChange was not called")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
	_ = w.Stop()
}

func TestWatcherNoWatchablePaths(t *testing.T) {
	config := DefaultWatcherConfig()
	config.Paths = []string{filepath.Join(t.TempDir(), "nope")}

	w, err := NewWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	if err := w.Watch(context.Background(), func() {}); err == nil {
		t.Error("Watch() with no watchable paths should return an error")
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", got)
	}
}
