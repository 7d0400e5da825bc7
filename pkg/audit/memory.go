package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements the Store interface using an in-memory slice.
// Intended for testing only.
type MemoryStore struct {
	records []*Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append persists a record to memory.
func (s *MemoryStore) Append(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records = append(s.records, &recordCopy)
	return nil
}

// Query retrieves records matching the filters, newest first.
func (s *MemoryStore) Query(ctx context.Context, query *Query) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Record
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Time.After(results[j].Time)
	})

	start := query.Offset
	if start > len(results) {
		return []*Record{}, nil
	}
	results = results[start:]

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of records matching the filters.
func (s *MemoryStore) Count(ctx context.Context, query *Query) (int64, error) {
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

// DeleteBefore removes records older than the cutoff.
func (s *MemoryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if record.Time.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return deleted, nil
}

// DeleteOverCount removes the oldest records until at most max remain.
func (s *MemoryStore) DeleteOverCount(ctx context.Context, max int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int64(len(s.records)) <= max {
		return 0, nil
	}

	sorted := make([]*Record, len(s.records))
	copy(sorted, s.records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	toDelete := int64(len(sorted)) - max
	drop := make(map[string]bool, toDelete)
	for _, record := range sorted[:toDelete] {
		drop[record.ID] = true
	}

	kept := s.records[:0]
	for _, record := range s.records {
		if drop[record.ID] {
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return toDelete, nil
}

// Close clears the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// Size returns the number of stored records (for testing).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *Record, query *Query) bool {
	if query.StartTime != nil && record.Time.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Time.After(*query.EndTime) {
		return false
	}
	if query.Tool != "" && record.Tool != query.Tool {
		return false
	}
	if query.Reason != "" && record.Reason != query.Reason {
		return false
	}
	if query.Allowed != nil && record.Allowed != *query.Allowed {
		return false
	}
	return true
}
