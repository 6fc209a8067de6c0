// Package profile persists the per-role profile collections. Each role has
// its own collection; the Registry maps the closed role set onto its stores
// and is the unit the uniqueness checker and services consume.
package profile

import (
	"context"
	"time"

	"nutricore/internal/domain"
)

// Store is pure I/O over one role collection. Each collection carries unique
// indexes on display name, phone and (where present) license number; hits
// surface as sentinel duplicate errors.
type Store interface {
	Create(ctx context.Context, p domain.Profile) error
	FindByID(ctx context.Context, id string) (domain.Profile, error)
	FindByDisplayName(ctx context.Context, name string) (domain.Profile, error)
	FindByPhone(ctx context.Context, phone string) (domain.Profile, error)
	Update(ctx context.Context, p domain.Profile) error
	Delete(ctx context.Context, id string) error
	// ListCreatedBefore supports the orphan reconciliation sweep.
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Profile, error)
}

// Registry resolves the store backing each role collection.
type Registry struct {
	stores map[domain.Role]Store
}

func NewRegistry(stores map[domain.Role]Store) *Registry {
	return &Registry{stores: stores}
}

// NewMemoryRegistry builds a registry with one in-memory store per role.
func NewMemoryRegistry() *Registry {
	stores := make(map[domain.Role]Store, len(domain.Roles()))
	for _, role := range domain.Roles() {
		stores[role] = NewMemoryStore()
	}
	return NewRegistry(stores)
}

// ForRole returns the store for a role, or nil for an unknown role. Callers
// validate roles with domain.ParseRole before reaching the registry.
func (r *Registry) ForRole(role domain.Role) Store {
	return r.stores[role]
}

// All returns every (role, store) pair for cross-collection probes.
func (r *Registry) All() map[domain.Role]Store {
	out := make(map[domain.Role]Store, len(r.stores))
	for role, store := range r.stores {
		out[role] = store
	}
	return out
}
