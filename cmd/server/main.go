// main wires the identity core: stores (memory or Postgres), the lockout
// backend (memory or Redis), the audit sink (with optional Kafka tee), the
// domain services, and the HTTP surface. Business logic lives in the
// internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nutricore/internal/audit"
	"nutricore/internal/identity/password"
	"nutricore/internal/identity/service"
	credentialstore "nutricore/internal/identity/store/credential"
	profilestore "nutricore/internal/identity/store/profile"
	"nutricore/internal/identity/uniqueness"
	"nutricore/internal/platform/config"
	"nutricore/internal/platform/httpserver"
	"nutricore/internal/platform/logger"
	"nutricore/internal/platform/metrics"
	"nutricore/internal/platform/postgres"
	platformredis "nutricore/internal/platform/redis"
	"nutricore/internal/ratelimit"
	"nutricore/internal/token"
	httptransport "nutricore/internal/transport/http"
	"nutricore/internal/verification"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New("dev").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage backends.
	var (
		pool        *pgxpool.Pool
		credentials credentialstore.Store
		profiles    *profilestore.Registry
		auditStore  audit.Store
		transitions verification.TransitionLog
	)
	if cfg.PostgresDSN != "" {
		pool, err = postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		credentials = credentialstore.NewPostgres(pool)
		profiles = profilestore.NewPostgresRegistry(pool)
		auditStore = audit.NewPostgres(pool)
		transitions = verification.NewPostgresLog(pool)
		log.Info("using postgres storage")
	} else {
		credentials = credentialstore.NewMemoryStore()
		profiles = profilestore.NewMemoryRegistry()
		auditStore = audit.NewMemoryStore()
		transitions = verification.NewMemoryLog()
		log.Warn("no NUTRICORE_POSTGRES_DSN set, using in-memory storage")
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaClient, err := audit.NewKafkaClient(cfg.KafkaBrokers)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()
		auditStore = audit.NewKafkaStore(auditStore, kafkaClient, cfg.KafkaTopic)
		log.Info("audit events teed to kafka", "topic", cfg.KafkaTopic)
	}
	asyncAudit, auditWorker := audit.NewAsyncStore(auditStore, 256)
	go func() {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()
	auditPublisher := audit.NewPublisher(asyncAudit)

	// Lockout backend.
	var lockoutStore ratelimit.Store = ratelimit.NewMemoryStore()
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		lockoutStore = ratelimit.NewRedisStore(redisClient.Client)
		log.Info("lockout records shared via redis")
	}

	m := metrics.New()
	tokens := token.NewService(cfg.JWTSigningKey, "nutricore", "nutricore-clients")

	identity := service.New(
		credentials,
		profiles,
		uniqueness.NewChecker(profiles),
		password.NewHasher(cfg.BcryptCost),
		tokens,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithAdminKey(cfg.AdminKey),
		service.WithSessionTTLs(cfg.SessionTTL, cfg.RememberTTL),
	)
	verifier := verification.New(profiles, transitions,
		verification.WithLogger(log),
		verification.WithAuditPublisher(auditPublisher),
	)
	lockout := ratelimit.New(lockoutStore, ratelimit.WithLogger(log))

	opts := []httptransport.Option{}
	if pool != nil {
		opts = append(opts, httptransport.WithHealthCheck("postgres", pool.Ping))
	}
	if redisClient != nil {
		opts = append(opts, httptransport.WithHealthCheck("redis", redisClient.Health))
	}
	handler := httptransport.New(identity, verifier, tokens, lockout, log, m, opts...)

	// Orphaned profiles from interrupted registrations are swept in the
	// background; registration itself never blocks on this.
	go runReconciler(ctx, log, identity, cfg.ReconcileInterval, cfg.ReconcileGrace)

	srv := httpserver.New(cfg.Addr, handler.Router())
	go func() {
		log.Info("starting nutricore identity server", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func runReconciler(ctx context.Context, log *slog.Logger, identity *service.Service, interval, grace time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := identity.ReconcileOrphans(ctx, grace)
			if err != nil {
				log.Error("reconciliation sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("reconciliation sweep removed orphaned profiles", "count", removed)
			}
		}
	}
}
