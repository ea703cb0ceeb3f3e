package memory

import (
	"context"
	"sync"

	"renewables/internal/core"
	"renewables/internal/dataset"
)

var _ dataset.Provider = (*Store)(nil)

// Store keeps every record in memory. The year list is derived once, at
// construction, and reused for every ListYears call.
type Store struct {
	mu      sync.RWMutex
	records []core.Record
	years   []int
}

func New(records []core.Record) *Store {
	s := &Store{}
	s.load(records)
	return s
}

func (s *Store) load(records []core.Record) {
	s.records = append([]core.Record(nil), records...)
	s.years = core.DistinctYears(s.records)
}

// Replace swaps the full record set and recomputes the years.
func (s *Store) Replace(records []core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(records)
}

// ListYears returns the distinct years in first-seen order.
func (s *Store) ListYears(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.years...), nil
}

// RecordsForYear returns the records of one year; an unknown year yields an empty slice.
func (s *Store) RecordsForYear(ctx context.Context, year int) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.FilterYear(s.records, year), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
