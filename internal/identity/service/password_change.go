package service

import (
	"context"
	"errors"

	"nutricore/internal/audit"
	"nutricore/internal/identity/password"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/platform/sentinel"
)

// ChangePassword rotates the password for an authenticated identity. Session
// validity is the transport middleware's job; this method trusts identityID.
//
// Existing session tokens stay valid until they expire; there is no session
// table to revoke against.
func (s *Service) ChangePassword(ctx context.Context, identityID, oldPassword, newPassword string) error {
	ctx, span := s.tracer.Start(ctx, "identity.change_password")
	defer span.End()

	cred, err := s.credentials.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// A verified session naming a credential that no longer exists
			// is an integrity anomaly, not a client mistake.
			return dErrors.New(dErrors.CodeIntegrity, "credential record missing for session")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}

	if err := s.hasher.Compare(oldPassword, cred.PasswordHash); err != nil {
		return dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	}

	// Reuse of the current password is rejected before the length check so
	// the caller learns the most specific problem first.
	if err := s.hasher.Compare(newPassword, cred.PasswordHash); err == nil {
		return dErrors.New(dErrors.CodeSamePassword, "new password must differ from the current one")
	}

	if len(newPassword) < password.MinLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	if err := s.credentials.UpdatePasswordHash(ctx, cred.ID, hash); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist password")
	}

	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionPasswordChanged,
		IdentityID: cred.ID,
		ProfileID:  cred.ProfileID,
		Role:       string(cred.Role),
	})
	return nil
}
