// Package httptransport is the thin HTTP layer. Handlers decode, validate
// shape, delegate to the domain services, and encode; every business rule
// lives below this package.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nutricore/internal/identity/service"
	"nutricore/internal/platform/metrics"
	"nutricore/internal/platform/middleware"
	"nutricore/internal/ratelimit"
	"nutricore/internal/token"
	"nutricore/internal/verification"
)

const requestTimeout = 30 * time.Second

// HealthCheck reports one dependency's health.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	identity *service.Service
	verifier *verification.Service
	tokens   *token.Service
	lockout  *ratelimit.Service
	health   map[string]HealthCheck
}

type Option func(*Handler)

func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) { h.health[name] = check }
}

func New(
	identity *service.Service,
	verifier *verification.Service,
	tokens *token.Service,
	lockout *ratelimit.Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Handler {
	h := &Handler{
		logger:   logger,
		metrics:  m,
		identity: identity,
		verifier: verifier,
		tokens:   tokens,
		lockout:  lockout,
		health:   make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the full route tree with the middleware chain.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(h.metrics))

	r.Post("/auth/{role}/register", h.handleRegister)
	r.Post("/auth/{role}/login", h.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.tokens, h.logger))
		pr.Get("/auth/session", h.handleSession)
		pr.Post("/auth/password", h.handleChangePassword)

		pr.Post("/profiles/{role}/{profileID}/documents", h.handleUploadDocuments)
		pr.Get("/profiles/{role}/{profileID}/verification", h.handleVerificationStatus)
		pr.Post("/profiles/{role}/{profileID}/verification/review", h.handleReview)
	})

	// The practice surface is only reachable with verified documents; this is
	// where professional-facing operations mount.
	r.Group(func(vr chi.Router) {
		vr.Use(middleware.RequireAuth(h.tokens, h.logger))
		vr.Use(middleware.RequireVerified(h.verifier, h.logger))
		vr.Get("/practice/profile", h.handlePracticeProfile)
	})

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	body := map[string]any{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}
