// Package ratelimit tracks failed login attempts per email+IP and locks out
// repeat offenders. The login handler consults Check before authenticating
// and records the outcome afterwards. A lockout store outage never blocks
// login; the service fails open and logs.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nutricore/pkg/requestcontext"
)

// Lockout is the failure record for one email+IP pair. Stores hold it as-is;
// every rule about when to lock lives in the service.
type Lockout struct {
	Identifier    string     `json:"identifier"`
	FailureCount  int        `json:"failure_count"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	LastFailureAt time.Time  `json:"last_failure_at"`
}

// IsLockedAt reports whether the hard lock is still in force at t.
func (l *Lockout) IsLockedAt(t time.Time) bool {
	return l.LockedUntil != nil && t.Before(*l.LockedUntil)
}

// Config tunes the sliding window and the hard lock.
type Config struct {
	AttemptsPerWindow int
	WindowDuration    time.Duration
	HardLockThreshold int
	HardLockDuration  time.Duration
}

func DefaultConfig() Config {
	return Config{
		AttemptsPerWindow: 5,
		WindowDuration:    15 * time.Minute,
		HardLockThreshold: 10,
		HardLockDuration:  15 * time.Minute,
	}
}

// Result is the outcome of a lockout check.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set when not allowed
}

type Service struct {
	store  Store
	config Config
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithConfig(cfg Config) Option {
	return func(s *Service) { s.config = cfg }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(email, ip string) string {
	return fmt.Sprintf("authlockout:%s:%s", email, ip)
}

// Check reports whether a login attempt for email from ip may proceed. Store
// errors fail open so an outage of the lockout backend cannot take down
// authentication.
func (s *Service) Check(ctx context.Context, email, ip string) Result {
	now := requestcontext.Now(ctx)
	record, err := s.store.Get(ctx, key(email, ip))
	if err != nil {
		s.logger.WarnContext(ctx, "lockout store unavailable, allowing attempt", "error", err)
		return Result{Allowed: true, Remaining: s.config.AttemptsPerWindow}
	}
	// Zero-valued record keeps one code path whether the pair has failed
	// before or not.
	if record == nil {
		record = &Lockout{}
	}

	if record.IsLockedAt(now) {
		return Result{
			ResetAt:    *record.LockedUntil,
			RetryAfter: retryAfter(*record.LockedUntil, now),
		}
	}

	// Failures outside the sliding window no longer count.
	if now.Sub(record.LastFailureAt) > s.config.WindowDuration {
		return Result{Allowed: true, Remaining: s.config.AttemptsPerWindow}
	}

	if record.FailureCount >= s.config.AttemptsPerWindow {
		resetAt := record.LastFailureAt.Add(s.config.WindowDuration)
		return Result{
			ResetAt:    resetAt,
			RetryAfter: retryAfter(resetAt, now),
		}
	}

	return Result{
		Allowed:   true,
		Remaining: s.config.AttemptsPerWindow - record.FailureCount,
		ResetAt:   now.Add(s.config.WindowDuration),
	}
}

// RecordFailure bumps the failure count and applies the hard lock once the
// count crosses the threshold. Store errors are logged, not returned.
func (s *Service) RecordFailure(ctx context.Context, email, ip string) {
	now := requestcontext.Now(ctx)
	k := key(email, ip)
	record, err := s.store.Get(ctx, k)
	if err != nil {
		s.logger.WarnContext(ctx, "lockout store unavailable, failure not recorded", "error", err)
		return
	}
	if record == nil {
		record = &Lockout{Identifier: k}
	}
	if now.Sub(record.LastFailureAt) > s.config.WindowDuration {
		record.FailureCount = 0
	}
	record.FailureCount++
	record.LastFailureAt = now

	if record.FailureCount >= s.config.HardLockThreshold && !record.IsLockedAt(now) {
		until := now.Add(s.config.HardLockDuration)
		record.LockedUntil = &until
		s.logger.InfoContext(ctx, "auth lockout triggered",
			"identifier", k,
			"locked_until", until,
		)
	}

	if err := s.store.Put(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "failed to persist lockout record", "error", err)
	}
}

// Clear drops the failure record after a successful login.
func (s *Service) Clear(ctx context.Context, email, ip string) {
	if err := s.store.Clear(ctx, key(email, ip)); err != nil {
		s.logger.WarnContext(ctx, "failed to clear lockout record", "error", err)
	}
}

func retryAfter(until, now time.Time) int {
	return max(int(until.Sub(now).Seconds()), 0)
}
