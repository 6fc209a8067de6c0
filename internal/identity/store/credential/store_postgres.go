package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricore/internal/domain"
	"nutricore/pkg/platform/sentinel"
)

// PostgresStore persists credentials in PostgreSQL. The unique index on email
// is the real backstop for the registration check-then-write; violations are
// translated into sentinel errors so services stay backend-agnostic.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, cred domain.Credential) error {
	query := `
		INSERT INTO credentials (id, email, password_hash, role, profile_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		cred.ID, cred.Email, cred.PasswordHash, string(cred.Role), cred.ProfileID,
		cred.CreatedAt, cred.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrDuplicateEmail
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (domain.Credential, error) {
	query := `
		SELECT id, email, password_hash, role, profile_id, created_at, updated_at
		FROM credentials
		WHERE email = $1
	`
	return s.scanOne(s.pool.QueryRow(ctx, query, email), "find credential by email")
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (domain.Credential, error) {
	query := `
		SELECT id, email, password_hash, role, profile_id, created_at, updated_at
		FROM credentials
		WHERE id = $1
	`
	return s.scanOne(s.pool.QueryRow(ctx, query, id), "find credential by id")
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE credentials SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, hash,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Credential, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, password_hash, role, profile_id, created_at, updated_at FROM credentials`,
	)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []domain.Credential
	for rows.Next() {
		var cred domain.Credential
		var role string
		if err := rows.Scan(&cred.ID, &cred.Email, &cred.PasswordHash, &role,
			&cred.ProfileID, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		cred.Role = domain.Role(role)
		out = append(out, cred)
	}
	return out, rows.Err()
}

func (s *PostgresStore) scanOne(row pgx.Row, op string) (domain.Credential, error) {
	var cred domain.Credential
	var role string
	err := row.Scan(&cred.ID, &cred.Email, &cred.PasswordHash, &role,
		&cred.ProfileID, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Credential{}, sentinel.ErrNotFound
		}
		return domain.Credential{}, fmt.Errorf("%s: %w", op, err)
	}
	cred.Role = domain.Role(role)
	return cred, nil
}
