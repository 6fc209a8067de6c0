package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (id, occurred_at, action, identity_id, profile_id, role, actor, reason, client_ip, device)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, event.ID, event.Timestamp, event.Action, event.IdentityID, event.ProfileID,
		event.Role, event.Actor, event.Reason, event.ClientIP, event.Device)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByProfile(ctx context.Context, profileID string) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, occurred_at, action, identity_id, profile_id, role, actor, reason, client_ip, device
		FROM audit_events
		WHERE profile_id = $1
		ORDER BY occurred_at
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.IdentityID, &e.ProfileID,
			&e.Role, &e.Actor, &e.Reason, &e.ClientIP, &e.Device); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
