package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricore/internal/audit"
	"nutricore/internal/domain"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/requestcontext"
)

func TestLogin_User(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := mustRegister(t, env, userRegistration("a@x.com", "Jane Runner", "9998887776"))

	res, err := env.svc.Login(ctx, LoginRequest{
		Role:     "user",
		Email:    "a@x.com",
		Password: "secret-password-1",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.ProfileID, res.ProfileID)
	assert.Equal(t, DefaultSessionTTL, res.ExpiresIn)

	claims, err := env.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.IdentityID, claims.IdentityID)
}

func TestLogin_RememberMeExtendsTTL(t *testing.T) {
	env := newTestEnv(t)
	mustRegister(t, env, userRegistration("a@x.com", "Jane Runner", "9998887776"))

	res, err := env.svc.Login(context.Background(), LoginRequest{
		Role:       "user",
		Email:      "a@x.com",
		Password:   "secret-password-1",
		RememberMe: true,
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultRememberTTL, res.ExpiresIn)
}

func TestLogin_InvalidCredentialPaths_AreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mustRegister(t, env, userRegistration("a@x.com", "Jane Runner", "9998887776"))

	unknownEmail := func() error {
		_, err := env.svc.Login(ctx, LoginRequest{Role: "user", Email: "nobody@x.com", Password: "secret-password-1"})
		return err
	}
	wrongPassword := func() error {
		_, err := env.svc.Login(ctx, LoginRequest{Role: "user", Email: "a@x.com", Password: "wrong-password-1"})
		return err
	}
	roleMismatch := func() error {
		_, err := env.svc.Login(ctx, LoginRequest{Role: "dietitian", Email: "a@x.com", Password: "secret-password-1"})
		return err
	}

	for name, attempt := range map[string]func() error{
		"unknown email":  unknownEmail,
		"wrong password": wrongPassword,
		"role mismatch":  roleMismatch,
	} {
		t.Run(name, func(t *testing.T) {
			err := attempt()
			require.ErrorIs(t, err, errInvalidCredentials,
				"every primary-credential failure must look identical")
		})
	}
}

// Scenario C: correct email/password but wrong license number.
func TestLogin_DietitianWrongLicense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mustRegister(t, env, dietitianRegistration("d@x.com", "Diet One", "5551234567", "DT12345"))

	_, err := env.svc.Login(ctx, LoginRequest{
		Role:          "dietitian",
		Email:         "d@x.com",
		Password:      "secret-password-1",
		LicenseNumber: "DT99999",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidLicense))

	t.Run("missing license fails the same way", func(t *testing.T) {
		_, err := env.svc.Login(ctx, LoginRequest{
			Role:     "dietitian",
			Email:    "d@x.com",
			Password: "secret-password-1",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidLicense))
	})

	t.Run("correct license succeeds", func(t *testing.T) {
		_, err := env.svc.Login(ctx, LoginRequest{
			Role:          "dietitian",
			Email:         "d@x.com",
			Password:      "secret-password-1",
			LicenseNumber: "DT12345",
		})
		assert.NoError(t, err)
	})
}

func TestLogin_AdminKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mustRegister(t, env, RegisterRequest{
		Role: "admin", Email: "ad@x.com", Password: "secret-password-1",
		DisplayName: "Admin One", Phone: "1000000002",
	})

	t.Run("wrong admin key", func(t *testing.T) {
		_, err := env.svc.Login(ctx, LoginRequest{
			Role: "admin", Email: "ad@x.com", Password: "secret-password-1",
			AdminKey: "not-the-key",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAdminKey))
	})

	t.Run("correct admin key", func(t *testing.T) {
		_, err := env.svc.Login(ctx, LoginRequest{
			Role: "admin", Email: "ad@x.com", Password: "secret-password-1",
			AdminKey: testAdminKey,
		})
		assert.NoError(t, err)
	})
}

func TestLogin_UnsetAdminKeyFailsClosed(t *testing.T) {
	env := newTestEnvWithoutAdminKey(t)
	ctx := context.Background()
	mustRegister(t, env, RegisterRequest{
		Role: "admin", Email: "bare@x.com", Password: "secret-password-1",
		DisplayName: "Bare Admin", Phone: "1000000003",
	})

	// A service that was never given an admin key must reject every admin
	// login, including one presenting the matching empty string.
	_, err := env.svc.Login(ctx, LoginRequest{
		Role: "admin", Email: "bare@x.com", Password: "secret-password-1",
		AdminKey: "",
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAdminKey))
}

func TestLogin_BrokenProfileLinkIsIntegrityError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := mustRegister(t, env, userRegistration("a@x.com", "Jane Runner", "9998887776"))

	// Break the pairing invariant behind the service's back.
	require.NoError(t, env.profiles.ForRole(domain.RoleUser).Delete(ctx, reg.ProfileID))

	_, err := env.svc.Login(ctx, LoginRequest{Role: "user", Email: "a@x.com", Password: "secret-password-1"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeIntegrity))
}

func TestLogin_FailuresAreAudited(t *testing.T) {
	env := newTestEnv(t)
	ctx := requestcontext.WithClientMetadata(context.Background(),
		"203.0.113.9",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	)
	mustRegister(t, env, userRegistration("a@x.com", "Jane Runner", "9998887776"))

	_, err := env.svc.Login(ctx, LoginRequest{Role: "user", Email: "a@x.com", Password: "wrong-password-1"})
	require.Error(t, err)

	var failure *audit.Event
	for _, e := range env.auditStore.All() {
		if e.Action == audit.ActionLoginFailed {
			failure = &e
			break
		}
	}
	require.NotNil(t, failure, "failed login must be audited")
	assert.Equal(t, "203.0.113.9", failure.ClientIP)
	assert.Contains(t, failure.Device, "Chrome")
}
