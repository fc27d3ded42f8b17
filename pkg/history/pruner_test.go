package history

import (
	"context"
	"testing"
	"time"

	"mercator-hq/warden/pkg/config"
)

func TestPrunerByAge(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	now := baseTime
	for i, age := range []int{0, 5, 30, 31, 120} {
		r := newRecord(string(rune('a'+i)), "coverage", 0)
		r.StartedAt = now.AddDate(0, 0, -age)
		s.Store(ctx, r)
	}

	p := NewPruner(s, config.RetentionConfig{Days: 30}, nil)
	p.now = func() time.Time { return now }

	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	// The record exactly 30 days old is kept.
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}
	if s.Size() != 3 {
		t.Errorf("expected 3 remaining, got %d", s.Size())
	}
}

func TestPrunerByCountKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	defer s.Close()

	for i, id := range []string{"a", "b", "c", "d", "e"} {
		s.Store(ctx, newRecord(id, "logs", time.Duration(i)*time.Minute))
	}

	p := NewPruner(s, config.RetentionConfig{Days: -1, MaxRecords: 2}, nil)
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	left, _ := s.Query(ctx, &Query{})
	if len(left) != 2 || left[0].ID != "e" || left[1].ID != "d" {
		t.Errorf("expected newest records e, d to remain, got %+v", left)
	}
}

func TestPrunerDisabled(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	s.Store(ctx, newRecord("a", "coverage", -1000*time.Hour))

	p := NewPruner(s, config.RetentionConfig{Days: -1}, nil)
	deleted, err := p.Prune(ctx)
	if err != nil || deleted != 0 {
		t.Errorf("expected no pruning, got %d (err %v)", deleted, err)
	}
}
