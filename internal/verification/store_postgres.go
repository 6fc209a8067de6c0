package verification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"nutricore/internal/domain"
)

// PostgresLog persists the transition history in the verification_transitions
// table.
type PostgresLog struct {
	pool *pgxpool.Pool
}

func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

func (l *PostgresLog) Append(ctx context.Context, tr domain.VerificationTransition) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO verification_transitions (id, profile_id, role, from_status, to_status, actor, reason, moved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tr.ID, tr.ProfileID, string(tr.Role), string(tr.From), string(tr.To), tr.Actor, tr.Reason, tr.At)
	if err != nil {
		return fmt.Errorf("append verification transition: %w", err)
	}
	return nil
}

func (l *PostgresLog) ListByProfile(ctx context.Context, profileID string) ([]domain.VerificationTransition, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, profile_id, role, from_status, to_status, actor, reason, moved_at
		FROM verification_transitions
		WHERE profile_id = $1
		ORDER BY moved_at
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list verification transitions: %w", err)
	}
	defer rows.Close()

	var out []domain.VerificationTransition
	for rows.Next() {
		var tr domain.VerificationTransition
		var role, from, to string
		if err := rows.Scan(&tr.ID, &tr.ProfileID, &role, &from, &to, &tr.Actor, &tr.Reason, &tr.At); err != nil {
			return nil, fmt.Errorf("scan verification transition: %w", err)
		}
		tr.Role = domain.Role(role)
		tr.From = domain.VerificationStatus(from)
		tr.To = domain.VerificationStatus(to)
		out = append(out, tr)
	}
	return out, rows.Err()
}
