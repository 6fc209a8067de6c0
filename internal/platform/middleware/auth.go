package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"nutricore/internal/domain"
	"nutricore/internal/token"
	"nutricore/internal/verification"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/requestcontext"
)

// Session 401 reason codes. Distinguishable so clients can tell "log in
// again" from "your stored token is garbage".
const (
	ReasonNoToken       = "NO_TOKEN"
	ReasonInvalidFormat = "INVALID_FORMAT"
	ReasonTokenExpired  = "TOKEN_EXPIRED"
	ReasonInvalidToken  = "INVALID_TOKEN"
)

// Verification 403 reason codes for the RequireVerified gate.
const (
	ReasonVerificationRejected = "VERIFICATION_REJECTED"
	ReasonVerificationPending  = "VERIFICATION_PENDING"
)

// TokenVerifier validates a bearer token into session claims.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// RequireAuth validates the Authorization header and stores the session
// identity in the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, ReasonNoToken, "authorization header is required")
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				writeJSON(w, http.StatusUnauthorized, ReasonInvalidFormat, "authorization header must be 'Bearer <token>'")
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				logger.WarnContext(ctx, "rejected session token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				if dErrors.HasCode(err, dErrors.CodeTokenExpired) {
					writeJSON(w, http.StatusUnauthorized, ReasonTokenExpired, "token has expired")
					return
				}
				writeJSON(w, http.StatusUnauthorized, ReasonInvalidToken, "invalid token")
				return
			}

			if _, err := domain.ParseRole(claims.Role); err != nil {
				writeJSON(w, http.StatusUnauthorized, ReasonInvalidToken, "invalid token")
				return
			}

			ctx = requestcontext.WithIdentity(ctx, claims.IdentityID, claims.Role, claims.ProfileID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VerificationAuthorizer decides whether a profile may pass verification
// gated operations.
type VerificationAuthorizer interface {
	AuthorizeByID(ctx context.Context, role domain.Role, profileID string) (verification.Decision, error)
}

// RequireVerified denies professional profiles whose documents are not yet
// verified. Must run after RequireAuth.
func RequireVerified(authorizer VerificationAuthorizer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			profileID := requestcontext.ProfileID(ctx)
			if profileID == "" {
				writeJSON(w, http.StatusUnauthorized, ReasonNoToken, "authentication required")
				return
			}
			role, err := domain.ParseRole(requestcontext.Role(ctx))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, ReasonInvalidToken, "invalid token")
				return
			}

			decision, err := authorizer.AuthorizeByID(ctx, role, profileID)
			if err != nil {
				logger.ErrorContext(ctx, "verification gate lookup failed",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to check verification status")
				return
			}
			if !decision.Allowed {
				switch decision.Reason {
				case verification.ReasonRejected:
					writeJSON(w, http.StatusForbidden, ReasonVerificationRejected, "verification documents were rejected")
				default:
					writeJSON(w, http.StatusForbidden, ReasonVerificationPending, "verification is pending review")
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
