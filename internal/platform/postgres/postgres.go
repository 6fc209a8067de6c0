// Package postgres owns the connection pool and the schema for the single
// authoritative data store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"nutricore/internal/domain"
)

// New creates a pgx pool from the DSN and verifies connectivity.
func New(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the identity tables if they don't exist. The unique
// indexes declared here are the real arbiter of registration races: the
// uniqueness checker's probe is best-effort, these indexes decide.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{`
		CREATE TABLE IF NOT EXISTS credentials (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL,
			profile_id    TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`, `
		CREATE TABLE IF NOT EXISTS profile_documents (
			collection   TEXT NOT NULL,
			profile_id   TEXT NOT NULL,
			slot         TEXT NOT NULL,
			filename     TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size         BIGINT NOT NULL,
			data         BYTEA NOT NULL,
			uploaded_at  TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (collection, profile_id, slot)
		)`, `
		CREATE TABLE IF NOT EXISTS verification_transitions (
			id          TEXT PRIMARY KEY,
			profile_id  TEXT NOT NULL,
			role        TEXT NOT NULL,
			from_status TEXT NOT NULL,
			to_status   TEXT NOT NULL,
			actor       TEXT NOT NULL,
			reason      TEXT NOT NULL,
			moved_at    TIMESTAMPTZ NOT NULL
		)`, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id          TEXT PRIMARY KEY,
			occurred_at TIMESTAMPTZ NOT NULL,
			action      TEXT NOT NULL,
			identity_id TEXT NOT NULL,
			profile_id  TEXT NOT NULL,
			role        TEXT NOT NULL,
			actor       TEXT NOT NULL,
			reason      TEXT NOT NULL,
			client_ip   TEXT NOT NULL,
			device      TEXT NOT NULL
		)`,
	}

	// display_name, phone and license_number are optional; absent values are
	// stored as NULL so the unique constraints never collide on them.
	for _, role := range domain.Roles() {
		table := domain.SpecFor(role).Collection
		stmts = append(stmts, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                      TEXT PRIMARY KEY,
			display_name            TEXT,
			email                   TEXT NOT NULL,
			phone                   TEXT,
			license_number          TEXT,
			date_of_birth           TEXT NOT NULL DEFAULT '',
			gender                  TEXT NOT NULL DEFAULT '',
			address                 TEXT NOT NULL DEFAULT '',
			age                     INT NOT NULL DEFAULT 0,
			verification_status     TEXT NOT NULL,
			verification_updated_at TIMESTAMPTZ NOT NULL,
			profile_image           BYTEA,
			created_at              TIMESTAMPTZ NOT NULL,
			updated_at              TIMESTAMPTZ NOT NULL,
			CONSTRAINT %s_display_name_key UNIQUE (display_name),
			CONSTRAINT %s_phone_key UNIQUE (phone),
			CONSTRAINT %s_license_number_key UNIQUE (license_number)
		)`, table, table, table, table))
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
