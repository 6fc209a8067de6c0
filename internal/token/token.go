// Package token issues and verifies the signed session tokens carried by
// every authenticated request. A token holds three claims: identity id, role,
// profile id. Expiry is the only bound on its lifetime; there is no
// revocation set in this design.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"nutricore/internal/domain"
	dErrors "nutricore/pkg/domain-errors"
)

// Claims represents the JWT claims for session tokens.
type Claims struct {
	IdentityID string `json:"identity_id"`
	Role       string `json:"role"`
	ProfileID  string `json:"profile_id"`
	jwt.RegisteredClaims
}

// Service handles session token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Issue signs a session token for the given identity with the given lifetime.
func (s *Service) Issue(identityID string, role domain.Role, profileID string, ttl time.Duration) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		IdentityID: identityID,
		Role:       string(role),
		ProfileID:  profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// Verify parses and validates a token. Expired tokens are distinguishable
// from malformed or wrongly signed ones so callers can prompt re-login
// instead of reporting a corrupt session.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeTokenExpired, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeInvalidToken, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeInvalidToken, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidToken, "invalid token claims")
	}

	return claims, nil
}
