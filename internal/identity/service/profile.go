package service

import (
	"context"
	"errors"

	"nutricore/internal/domain"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/platform/sentinel"
)

// Profile loads the profile record behind a session.
func (s *Service) Profile(ctx context.Context, role domain.Role, profileID string) (domain.Profile, error) {
	prof, err := s.profiles.ForRole(role).FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Profile{}, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return domain.Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return prof, nil
}
