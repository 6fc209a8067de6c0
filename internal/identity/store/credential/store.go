// Package credential persists the login identity records. One record exists
// per email; the store's unique index on email is the arbiter under
// concurrent registration.
package credential

import (
	"context"

	"nutricore/internal/domain"
)

// Store is pure I/O. Duplicate and missing records surface as
// pkg/platform/sentinel errors; services translate them into domain errors.
type Store interface {
	Create(ctx context.Context, cred domain.Credential) error
	FindByEmail(ctx context.Context, email string) (domain.Credential, error)
	FindByID(ctx context.Context, id string) (domain.Credential, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	// List returns every credential. Used by the reconciliation sweep to pair
	// credentials with profiles; the identity space is small enough that a
	// full scan is acceptable there.
	List(ctx context.Context) ([]domain.Credential, error)
}
