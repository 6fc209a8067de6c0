package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nutricore/internal/audit"
	"nutricore/internal/domain"
	"nutricore/internal/identity/password"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/platform/sentinel"
	"nutricore/pkg/requestcontext"
)

// RegisterRequest carries everything a registration needs. Role-specific
// fields are simply left empty for roles that don't use them.
type RegisterRequest struct {
	Role          string
	Email         string
	Password      string
	DisplayName   string
	Phone         string
	LicenseNumber string
	DateOfBirth   string
	Gender        string
	Address       string
	Age           int
}

// RegisterResult is returned on success. ProfileID is included so callers
// can immediately upload verification documents.
type RegisterResult struct {
	Token       string
	Role        domain.Role
	IdentityID  string
	ProfileID   string
	DisplayName string
	ExpiresIn   time.Duration
}

// Register validates the request, enforces the global uniqueness rules,
// creates the profile record first and the credential second, and issues the
// initial session token.
//
// The uniqueness probes are best-effort: two registrations racing on the
// same display name may both pass them, and the per-collection unique index
// decides the winner. The loser's storage conflict is translated into the
// same conflict taxonomy the probe would have produced.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.register")
	defer span.End()

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	spec := domain.SpecFor(role)

	req.Email = domain.NormalizeEmail(req.Email)
	if req.Email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(req.Password) < password.MinLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if req.Phone != "" && len(req.Phone) != domain.PhoneLength {
		return nil, dErrors.New(dErrors.CodeValidation, "phone number must be 10 digits")
	}

	if err := s.checker.CheckDisplayName(ctx, req.DisplayName); err != nil {
		return nil, err
	}
	if err := s.checker.CheckPhone(ctx, req.Phone); err != nil {
		return nil, err
	}

	if _, err := s.credentials.FindByEmail(ctx, req.Email); err == nil {
		return nil, dErrors.Conflict("email", "email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}

	if err := spec.ValidateLicense(req.LicenseNumber); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	prof := domain.Profile{
		ID:            uuid.NewString(),
		Role:          role,
		DisplayName:   req.DisplayName,
		Email:         req.Email,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		Address:       req.Address,
		Age:           req.Age,
		Verification: domain.VerificationState{
			Status:    domain.VerificationNotReceived,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.profiles.ForRole(role).Create(ctx, prof); err != nil {
		return nil, translateProfileConflict(err)
	}

	cred := domain.Credential{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		ProfileID:    prof.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		// The profile write already landed. Attempt the compensating delete;
		// if it fails too, the orphan is picked up by the reconciliation
		// sweep rather than left silently inconsistent.
		if delErr := s.profiles.ForRole(role).Delete(ctx, prof.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "orphaned profile after credential failure",
				"profile_id", prof.ID,
				"role", role,
				"error", delErr,
			)
		}
		if errors.Is(err, sentinel.ErrDuplicateEmail) {
			return nil, dErrors.Conflict("email", "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create credential")
	}

	tok, err := s.tokens.Issue(cred.ID, role, prof.ID, s.sessionTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionRegistered,
		IdentityID: cred.ID,
		ProfileID:  prof.ID,
		Role:       string(role),
	})

	return &RegisterResult{
		Token:       tok,
		Role:        role,
		IdentityID:  cred.ID,
		ProfileID:   prof.ID,
		DisplayName: prof.DisplayName,
		ExpiresIn:   s.sessionTTL,
	}, nil
}

// translateProfileConflict maps the storage-level duplicate sentinels onto
// the conflict taxonomy, so a race loser sees the same error a probe hit
// produces.
func translateProfileConflict(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrDuplicateName):
		return dErrors.Conflict("name", "name already in use")
	case errors.Is(err, sentinel.ErrDuplicatePhone):
		return dErrors.Conflict("phone", "phone number already in use")
	case errors.Is(err, sentinel.ErrDuplicateLicense):
		return dErrors.Conflict("licenseNumber", "license number already in use")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	event.ClientIP = requestcontext.ClientIP(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
