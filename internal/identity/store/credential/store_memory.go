package credential

import (
	"context"
	"sync"
	"time"

	"nutricore/internal/domain"
	"nutricore/pkg/platform/sentinel"
)

// MemoryStore keeps credentials in process memory. It emulates the unique
// email index so services observe the same conflict behavior as against
// Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.Credential
	byEmail map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]domain.Credential),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[cred.Email]; exists {
		return sentinel.ErrDuplicateEmail
	}
	s.byID[cred.ID] = cred
	s.byEmail[cred.Email] = cred.ID
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.Credential{}, sentinel.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.byID[id]
	if !ok {
		return domain.Credential{}, sentinel.ErrNotFound
	}
	return cred, nil
}

func (s *MemoryStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	cred.PasswordHash = hash
	cred.UpdatedAt = time.Now()
	s.byID[id] = cred
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, cred.Email)
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Credential, 0, len(s.byID))
	for _, cred := range s.byID {
		out = append(out, cred)
	}
	return out, nil
}
