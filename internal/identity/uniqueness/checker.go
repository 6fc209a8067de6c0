// Package uniqueness enforces the cross-collection constraint: display names
// and phone numbers must be unique across the union of every profile
// collection, not merely within one role. The check probes every collection;
// the per-collection unique indexes remain the arbiter when two registrations
// race past the probe.
package uniqueness

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"nutricore/internal/identity/store/profile"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/platform/sentinel"
)

type Checker struct {
	profiles *profile.Registry
}

func NewChecker(profiles *profile.Registry) *Checker {
	return &Checker{profiles: profiles}
}

// CheckDisplayName returns a conflict error if any collection already holds
// the display name.
func (c *Checker) CheckDisplayName(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return c.probe(ctx, "name", "name already in use", func(ctx context.Context, s profile.Store) error {
		_, err := s.FindByDisplayName(ctx, name)
		return err
	})
}

// CheckPhone returns a conflict error if any collection already holds the
// phone number.
func (c *Checker) CheckPhone(ctx context.Context, phone string) error {
	if phone == "" {
		return nil
	}
	return c.probe(ctx, "phone", "phone number already in use", func(ctx context.Context, s profile.Store) error {
		_, err := s.FindByPhone(ctx, phone)
		return err
	})
}

// probe fans the lookup out across all collections. A found record anywhere
// is a conflict; only "not found" everywhere passes.
func (c *Checker) probe(ctx context.Context, field, message string, find func(context.Context, profile.Store) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for role, store := range c.profiles.All() {
		g.Go(func() error {
			err := find(ctx, store)
			if err == nil {
				return dErrors.Conflict(field, message)
			}
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal,
				fmt.Sprintf("uniqueness probe failed for role %s", role))
		})
	}
	return g.Wait()
}
