package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

// Tests run at MinCost; production cost comes from config.
var hasher = NewHasher(bcrypt.MinCost)

func TestHashAndCompare_RoundTrip(t *testing.T) {
	hash, err := hasher.Hash("secret-password-1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret-password-1", hash)

	assert.NoError(t, hasher.Compare("secret-password-1", hash))
}

func TestCompare_WrongPassword(t *testing.T) {
	hash, err := hasher.Hash("secret-password-1")
	require.NoError(t, err)

	require.ErrorIs(t, hasher.Compare("secret-password-2", hash), ErrMismatch)
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	h1, err := hasher.Hash("secret-password-1")
	require.NoError(t, err)
	h2, err := hasher.Hash("secret-password-1")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "salted hashes must differ per invocation")
}

func TestNewHasher_ClampsOutOfRangeCost(t *testing.T) {
	h := NewHasher(99)
	assert.Equal(t, DefaultCost, h.cost)
	h = NewHasher(-1)
	assert.Equal(t, DefaultCost, h.cost)
}
