package profile

import (
	"context"
	"sync"
	"time"

	"nutricore/internal/domain"
	"nutricore/pkg/platform/sentinel"
)

// MemoryStore keeps one role collection in process memory, emulating the
// collection's unique indexes on display name, phone and license number so
// the conflict behavior matches Postgres exactly.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]domain.Profile
	byName    map[string]string
	byPhone   map[string]string
	byLicense map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]domain.Profile),
		byName:    make(map[string]string),
		byPhone:   make(map[string]string),
		byLicense: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.DisplayName != "" {
		if _, exists := s.byName[p.DisplayName]; exists {
			return sentinel.ErrDuplicateName
		}
	}
	if p.Phone != "" {
		if _, exists := s.byPhone[p.Phone]; exists {
			return sentinel.ErrDuplicatePhone
		}
	}
	if p.LicenseNumber != "" {
		if _, exists := s.byLicense[p.LicenseNumber]; exists {
			return sentinel.ErrDuplicateLicense
		}
	}
	s.index(p)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return domain.Profile{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) FindByDisplayName(_ context.Context, name string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return domain.Profile{}, sentinel.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) FindByPhone(_ context.Context, phone string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPhone[phone]
	if !ok {
		return domain.Profile{}, sentinel.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) Update(_ context.Context, p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if p.DisplayName != old.DisplayName {
		if _, exists := s.byName[p.DisplayName]; exists {
			return sentinel.ErrDuplicateName
		}
	}
	if p.Phone != old.Phone {
		if _, exists := s.byPhone[p.Phone]; exists {
			return sentinel.ErrDuplicatePhone
		}
	}
	s.unindex(old)
	s.index(p)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.unindex(p)
	return nil
}

func (s *MemoryStore) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Profile
	for _, p := range s.byID {
		if p.CreatedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

// index and unindex must be called with s.mu held.
func (s *MemoryStore) index(p domain.Profile) {
	s.byID[p.ID] = p
	if p.DisplayName != "" {
		s.byName[p.DisplayName] = p.ID
	}
	if p.Phone != "" {
		s.byPhone[p.Phone] = p.ID
	}
	if p.LicenseNumber != "" {
		s.byLicense[p.LicenseNumber] = p.ID
	}
}

func (s *MemoryStore) unindex(p domain.Profile) {
	delete(s.byID, p.ID)
	if p.DisplayName != "" {
		delete(s.byName, p.DisplayName)
	}
	if p.Phone != "" {
		delete(s.byPhone, p.Phone)
	}
	if p.LicenseNumber != "" {
		delete(s.byLicense, p.LicenseNumber)
	}
}
