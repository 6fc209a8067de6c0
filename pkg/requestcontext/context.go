// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and handlers read them. Keeping the
// package free of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	identityID := requestcontext.IdentityID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithIdentity(ctx, identityID, role, profileID)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	identityIDKey  struct{}
	roleKey        struct{}
	profileIDKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
)

// IdentityID retrieves the authenticated credential ID from the context.
func IdentityID(ctx context.Context) string {
	if v, ok := ctx.Value(identityIDKey{}).(string); ok {
		return v
	}
	return ""
}

// Role retrieves the authenticated role string from the context.
func Role(ctx context.Context) string {
	if v, ok := ctx.Value(roleKey{}).(string); ok {
		return v
	}
	return ""
}

// ProfileID retrieves the authenticated profile ID from the context.
func ProfileID(ctx context.Context) string {
	if v, ok := ctx.Value(profileIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects the authenticated identity triple into the context.
func WithIdentity(ctx context.Context, identityID, role, profileID string) context.Context {
	ctx = context.WithValue(ctx, identityIDKey{}, identityID)
	ctx = context.WithValue(ctx, roleKey{}, role)
	return context.WithValue(ctx, profileIDKey{}, profileID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent retrieves the User-Agent header value from the context.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts such as workers and tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context so every operation within a
// request observes the same "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
