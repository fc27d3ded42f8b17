package history

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
)

// MemoryStorage keeps records in a map. Records do not survive the
// process, so it suits tests and one-shot runs.
type MemoryStorage struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*Record),
	}
}

// Store persists a copy of the record.
func (s *MemoryStorage) Store(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return NewStorageError("memory", "store", errors.New("record ID is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = cloneRecord(record)
	return nil
}

// Query returns copies of matching records.
func (s *MemoryStorage) Query(ctx context.Context, query *Query) ([]*Record, error) {
	if query == nil {
		query = &Query{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	results := s.matching(query)

	slices.SortFunc(results, func(a, b *Record) int {
		c := a.StartedAt.Compare(b.StartedAt)
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if !query.Ascending {
			c = -c
		}
		return c
	})

	if query.Offset >= len(results) {
		return []*Record{}, nil
	}
	results = results[query.Offset:]
	if limit := query.limit(); len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *Query) (int64, error) {
	if query == nil {
		query = &Query{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes matching records.
func (s *MemoryStorage) Delete(ctx context.Context, query *Query) (int64, error) {
	if query == nil {
		query = &Query{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*Record)
	return nil
}

// Size returns the number of stored records.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *MemoryStorage) matching(query *Query) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Record
	for _, record := range s.records {
		if matchesQuery(record, query) {
			results = append(results, cloneRecord(record))
		}
	}
	return results
}

func matchesQuery(record *Record, query *Query) bool {
	if query.ID != "" && record.ID != query.ID {
		return false
	}
	if query.Audit != "" && record.Audit != query.Audit {
		return false
	}
	if query.Outcome != "" && record.Outcome != query.Outcome {
		return false
	}
	if query.RunID != "" && record.RunID != query.RunID {
		return false
	}
	if query.Trigger != "" && record.Trigger != query.Trigger {
		return false
	}
	if query.Since != nil && record.StartedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && record.StartedAt.After(*query.Until) {
		return false
	}
	return true
}

func cloneRecord(record *Record) *Record {
	c := *record
	c.Report = slices.Clone(record.Report)
	return &c
}
