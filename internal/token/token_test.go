package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricore/internal/domain"
	dErrors "nutricore/pkg/domain-errors"
)

var tokenService = NewService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var identityID = "cred-1234"
var profileID = "prof-5678"
var ttl = time.Hour

func Test_Issue_RoundTrip(t *testing.T) {
	tok, err := tokenService.Issue(identityID, domain.RoleDietitian, profileID, ttl)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := tokenService.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, identityID, claims.IdentityID)
	assert.Equal(t, string(domain.RoleDietitian), claims.Role)
	assert.Equal(t, profileID, claims.ProfileID)
	assert.NotEmpty(t, claims.ID, "token should carry a jti")
	assert.WithinDuration(t, time.Now().Add(ttl), claims.ExpiresAt.Time, time.Minute)
}

func Test_Verify_MalformedToken(t *testing.T) {
	_, err := tokenService.Verify("not-a-token")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeInvalidToken, "invalid token"))
}

func Test_Verify_ExpiredToken(t *testing.T) {
	tok, err := tokenService.Issue(identityID, domain.RoleUser, profileID, -time.Hour)
	require.NoError(t, err)

	_, err = tokenService.Verify(tok)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeTokenExpired, "token has expired"))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeInvalidToken),
		"expired must not be reported as generic invalid")
}

func Test_Verify_WrongKey(t *testing.T) {
	other := NewService("another-key", "test-issuer", "test-audience")
	tok, err := other.Issue(identityID, domain.RoleUser, profileID, ttl)
	require.NoError(t, err)

	_, err = tokenService.Verify(tok)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeInvalidToken, "invalid token"))
}
