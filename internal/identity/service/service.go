// Package service orchestrates registration, authentication and password
// lifecycle over the credential and profile stores. Handlers stay thin;
// every rule about the identity records lives here or in domain.
package service

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"nutricore/internal/audit"
	"nutricore/internal/identity/password"
	"nutricore/internal/identity/store/credential"
	"nutricore/internal/identity/store/profile"
	"nutricore/internal/identity/uniqueness"
	"nutricore/internal/token"
)

// Default session lifetimes. Login with rememberMe gets the longer one.
const (
	DefaultSessionTTL  = 24 * time.Hour
	DefaultRememberTTL = 7 * 24 * time.Hour
)

type Service struct {
	credentials credential.Store
	profiles    *profile.Registry
	checker     *uniqueness.Checker
	hasher      *password.Hasher
	tokens      *token.Service

	adminKey    string
	sessionTTL  time.Duration
	rememberTTL time.Duration

	logger *slog.Logger
	audit  *audit.Publisher
	tracer trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithAdminKey(key string) Option {
	return func(s *Service) { s.adminKey = key }
}

func WithSessionTTLs(session, remember time.Duration) Option {
	return func(s *Service) {
		s.sessionTTL = session
		s.rememberTTL = remember
	}
}

func New(
	credentials credential.Store,
	profiles *profile.Registry,
	checker *uniqueness.Checker,
	hasher *password.Hasher,
	tokens *token.Service,
	opts ...Option,
) *Service {
	s := &Service{
		credentials: credentials,
		profiles:    profiles,
		checker:     checker,
		hasher:      hasher,
		tokens:      tokens,
		sessionTTL:  DefaultSessionTTL,
		rememberTTL: DefaultRememberTTL,
		logger:      slog.Default(),
		audit:       audit.NewPublisher(audit.NewMemoryStore()),
		tracer:      otel.Tracer("nutricore/identity"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
