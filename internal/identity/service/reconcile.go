package service

import (
	"context"
	"time"

	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/requestcontext"
)

// ReconcileOrphans deletes profiles that have no matching credential and are
// older than the grace window. A client disconnecting between the profile
// write and the credential write leaves exactly this kind of orphan; the
// sweep is the compensating transaction for the two-phase create. It is
// idempotent and meant to be driven by an external scheduler.
func (s *Service) ReconcileOrphans(ctx context.Context, grace time.Duration) (int, error) {
	creds, err := s.credentials.List(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	referenced := make(map[string]struct{}, len(creds))
	for _, cred := range creds {
		referenced[cred.ProfileID] = struct{}{}
	}

	cutoff := requestcontext.Now(ctx).Add(-grace)
	removed := 0
	for role, store := range s.profiles.All() {
		profiles, err := store.ListCreatedBefore(ctx, cutoff)
		if err != nil {
			return removed, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list profiles")
		}
		for _, prof := range profiles {
			if _, ok := referenced[prof.ID]; ok {
				continue
			}
			if err := store.Delete(ctx, prof.ID); err != nil {
				s.logger.WarnContext(ctx, "failed to delete orphaned profile",
					"profile_id", prof.ID,
					"role", role,
					"error", err,
				)
				continue
			}
			s.logger.InfoContext(ctx, "deleted orphaned profile",
				"profile_id", prof.ID,
				"role", role,
			)
			removed++
		}
	}
	return removed, nil
}
