// Package config builds runtime configuration from the environment so main
// stays lean. Every knob has a development default except the JWT signing
// key, which is mandatory outside dev.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Addr string

	JWTSigningKey string
	AdminKey      string
	BcryptCost    int

	SessionTTL  time.Duration
	RememberTTL time.Duration

	// PostgresDSN empty means memory stores.
	PostgresDSN string
	// RedisURL empty means the in-process lockout store.
	RedisURL string
	// KafkaBrokers empty means audit events stay in the primary store only.
	KafkaBrokers []string
	KafkaTopic   string

	ReconcileGrace    time.Duration
	ReconcileInterval time.Duration
}

// FromEnv reads NUTRICORE_* variables. It fails rather than falling back
// when a production deployment misses the signing key.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:               envOr("NUTRICORE_ENV", "dev"),
		Addr:              envOr("NUTRICORE_ADDR", ":8080"),
		JWTSigningKey:     os.Getenv("NUTRICORE_JWT_SIGNING_KEY"),
		AdminKey:          os.Getenv("NUTRICORE_ADMIN_KEY"),
		PostgresDSN:       os.Getenv("NUTRICORE_POSTGRES_DSN"),
		RedisURL:          os.Getenv("NUTRICORE_REDIS_URL"),
		KafkaTopic:        envOr("NUTRICORE_KAFKA_TOPIC", "nutricore.audit"),
		SessionTTL:        24 * time.Hour,
		RememberTTL:       7 * 24 * time.Hour,
		ReconcileGrace:    time.Hour,
		ReconcileInterval: 15 * time.Minute,
	}

	if brokers := os.Getenv("NUTRICORE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cost, err := intEnvOr("NUTRICORE_BCRYPT_COST", 12)
	if err != nil {
		return Config{}, err
	}
	cfg.BcryptCost = cost

	if cfg.JWTSigningKey == "" {
		if cfg.Env != "dev" {
			return Config{}, fmt.Errorf("NUTRICORE_JWT_SIGNING_KEY is required when NUTRICORE_ENV=%s", cfg.Env)
		}
		cfg.JWTSigningKey = "dev-signing-key-change-in-production"
	}
	// Same rule as the signing key: the admin secondary factor fails closed
	// in the service when the key is empty, so an unset key outside dev is a
	// deployment mistake, not a tolerable default.
	if cfg.AdminKey == "" && cfg.Env != "dev" {
		return Config{}, fmt.Errorf("NUTRICORE_ADMIN_KEY is required when NUTRICORE_ENV=%s", cfg.Env)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnvOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
