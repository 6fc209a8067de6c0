package verification

import (
	"context"
	"sync"

	"nutricore/internal/domain"
)

// TransitionLog is the append-only history of verification status changes.
// Entries are never updated or deleted.
type TransitionLog interface {
	Append(ctx context.Context, tr domain.VerificationTransition) error
	ListByProfile(ctx context.Context, profileID string) ([]domain.VerificationTransition, error)
}

// MemoryLog keeps transitions in process memory, ordered by append.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []domain.VerificationTransition
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Append(_ context.Context, tr domain.VerificationTransition) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, tr)
	return nil
}

func (l *MemoryLog) ListByProfile(_ context.Context, profileID string) ([]domain.VerificationTransition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.VerificationTransition
	for _, tr := range l.entries {
		if tr.ProfileID == profileID {
			out = append(out, tr)
		}
	}
	return out, nil
}
