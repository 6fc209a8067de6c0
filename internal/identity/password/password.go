// Package password wraps bcrypt so the rest of the identity core never
// touches hashing primitives directly.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the minimum accepted password length at registration and
// password change.
const MinLength = 8

// DefaultCost is the bcrypt work factor used unless config overrides it.
const DefaultCost = 12

// ErrMismatch is returned when a password does not match its stored hash.
var ErrMismatch = errors.New("password does not match hash")

// Hasher hashes and compares passwords with a fixed cost.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash generates an adaptive salted hash of the password.
func (h *Hasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare validates the given cleartext password against a stored hash.
// bcrypt's comparison is resistant to timing side channels.
func (h *Hasher) Compare(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}
