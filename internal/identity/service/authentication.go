package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"nutricore/internal/audit"
	"nutricore/internal/domain"
	"nutricore/internal/identity/device"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/platform/sentinel"
	"nutricore/pkg/requestcontext"
)

type LoginRequest struct {
	Role          string
	Email         string
	Password      string
	LicenseNumber string
	AdminKey      string
	RememberMe    bool
}

type LoginResult struct {
	Token      string
	Role       domain.Role
	IdentityID string
	ProfileID  string
	ExpiresIn  time.Duration
}

// errInvalidCredentials is shared by the "no such user", "role mismatch" and
// "wrong password" paths so none of them is distinguishable to a caller.
var errInvalidCredentials = dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")

// Login authenticates email+password plus the role's secondary factor and
// issues a session token. It performs no writes.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.login")
	defer span.End()

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	cred, err := s.credentials.FindByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.emitLoginFailure(ctx, role, "", "unknown email")
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up credential")
	}
	// A role mismatch is reported exactly like an unknown email so callers
	// cannot enumerate which emails exist under which roles.
	if cred.Role != role {
		s.emitLoginFailure(ctx, role, cred.ID, "role mismatch")
		return nil, errInvalidCredentials
	}

	if err := s.hasher.Compare(req.Password, cred.PasswordHash); err != nil {
		s.emitLoginFailure(ctx, role, cred.ID, "wrong password")
		return nil, errInvalidCredentials
	}

	prof, err := s.profiles.ForRole(role).FindByID(ctx, cred.ProfileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// The credential points at a profile that no longer exists. A
			// data-integrity anomaly, not a client error.
			return nil, dErrors.New(dErrors.CodeIntegrity, "profile record missing for credential")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	switch domain.SpecFor(role).Secondary {
	case domain.FactorLicense:
		if req.LicenseNumber == "" || req.LicenseNumber != prof.LicenseNumber {
			s.emitLoginFailure(ctx, role, cred.ID, "wrong license")
			return nil, dErrors.New(dErrors.CodeInvalidLicense, "invalid license number")
		}
	case domain.FactorAdminKey:
		// An unset key fails closed; otherwise ConstantTimeCompare("", "")
		// would turn the factor into a no-op on a misconfigured deployment.
		if s.adminKey == "" ||
			subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(s.adminKey)) != 1 {
			s.emitLoginFailure(ctx, role, cred.ID, "wrong admin key")
			return nil, dErrors.New(dErrors.CodeInvalidAdminKey, "invalid admin key")
		}
	case domain.FactorNone:
	}

	ttl := s.sessionTTL
	if req.RememberMe {
		ttl = s.rememberTTL
	}
	tok, err := s.tokens.Issue(cred.ID, role, cred.ProfileID, ttl)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionLoginSucceeded,
		IdentityID: cred.ID,
		ProfileID:  cred.ProfileID,
		Role:       string(role),
		Device:     device.Summary(requestcontext.UserAgent(ctx)),
	})

	return &LoginResult{
		Token:      tok,
		Role:       role,
		IdentityID: cred.ID,
		ProfileID:  cred.ProfileID,
		ExpiresIn:  ttl,
	}, nil
}

func (s *Service) emitLoginFailure(ctx context.Context, role domain.Role, identityID, reason string) {
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionLoginFailed,
		IdentityID: identityID,
		Role:       string(role),
		Reason:     reason,
		Device:     device.Summary(requestcontext.UserAgent(ctx)),
	})
}
