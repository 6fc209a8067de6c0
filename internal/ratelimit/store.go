package ratelimit

import (
	"context"
	"sync"
)

// Store is pure I/O for lockout records. Get returns nil when no record
// exists for the key.
type Store interface {
	Get(ctx context.Context, key string) (*Lockout, error)
	Put(ctx context.Context, record *Lockout) error
	Clear(ctx context.Context, key string) error
}

// MemoryStore keeps lockout records in process memory. Suitable for
// single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Lockout
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Lockout)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Lockout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryStore) Put(_ context.Context, record *Lockout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Identifier] = *record
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
