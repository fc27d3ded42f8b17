package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/warden/pkg/config"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(config.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "history.db"),
	}, nil)
	if err != nil {
		t.Fatalf("failed to open SQLite history: %v", err)
	}
	return s
}

func TestNewSQLiteStorageCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "warden.db")

	s, err := NewSQLiteStorage(config.SQLiteConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file at %s: %v", path, err)
	}
}

func TestNewSQLiteStorageRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStorage(config.SQLiteConfig{}, nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSQLiteStoragePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := NewSQLiteStorage(config.SQLiteConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := first.Store(ctx, newRecord("a", "coverage", 0)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := NewSQLiteStorage(config.SQLiteConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	count, err := second.Count(ctx, &Query{})
	if err != nil || count != 1 {
		t.Errorf("expected 1 record after reopen, got %d (err %v)", count, err)
	}
}

func TestSQLiteStorageStoreReplacesExistingID(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	defer s.Close()

	r := newRecord("a", "coverage", 0)
	if err := s.Store(ctx, r); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	r.Outcome = OutcomeFindings
	if err := s.Store(ctx, r); err != nil {
		t.Fatalf("second Store failed: %v", err)
	}

	got, _ := s.Query(ctx, &Query{})
	if len(got) != 1 || got[0].Outcome != OutcomeFindings {
		t.Errorf("expected a single replaced record, got %+v", got)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.HistoryConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.HistoryConfig{Backend: "memory"}},
		{name: "sqlite", cfg: config.HistoryConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "h.db")}}},
		{name: "unknown", cfg: config.HistoryConfig{Backend: "postgres"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(&tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open error = %v, wantErr %v", err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}
