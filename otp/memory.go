package otp

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Expired entries are removed
// lazily by Check and in bulk by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Put(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	s.records[key] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, ErrNotRequested
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// Sweep drops every record expired at now and returns how many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}
