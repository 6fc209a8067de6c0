package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricore/internal/domain"
	"nutricore/pkg/platform/sentinel"
)

// PostgresStore persists one role collection. The table name comes from the
// role dispatch table, so the five collections share this implementation.
// Unique indexes on display_name, phone and license_number are the storage
// backstop for the registration check-then-write race.
type PostgresStore struct {
	pool  *pgxpool.Pool
	role  domain.Role
	table string
}

func NewPostgres(pool *pgxpool.Pool, role domain.Role) *PostgresStore {
	return &PostgresStore{
		pool:  pool,
		role:  role,
		table: domain.SpecFor(role).Collection,
	}
}

// NewPostgresRegistry builds a registry with one Postgres-backed store per role.
func NewPostgresRegistry(pool *pgxpool.Pool) *Registry {
	stores := make(map[domain.Role]Store, len(domain.Roles()))
	for _, role := range domain.Roles() {
		stores[role] = NewPostgres(pool, role)
	}
	return NewRegistry(stores)
}

const uniqueViolation = "23505"

// translateConflict maps a unique-index violation onto the sentinel error for
// the column the index covers.
func translateConflict(pgErr *pgconn.PgError) error {
	switch {
	case strings.Contains(pgErr.ConstraintName, "display_name"):
		return sentinel.ErrDuplicateName
	case strings.Contains(pgErr.ConstraintName, "phone"):
		return sentinel.ErrDuplicatePhone
	case strings.Contains(pgErr.ConstraintName, "license"):
		return sentinel.ErrDuplicateLicense
	default:
		return sentinel.ErrDuplicateName
	}
}

func (s *PostgresStore) Create(ctx context.Context, p domain.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, display_name, email, phone, license_number,
			date_of_birth, gender, address, age,
			verification_status, verification_updated_at, profile_image,
			created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, s.table)
	_, err := s.pool.Exec(ctx, query,
		p.ID, p.DisplayName, p.Email, p.Phone, p.LicenseNumber,
		p.DateOfBirth, p.Gender, p.Address, p.Age,
		string(p.Verification.Status), p.Verification.UpdatedAt, p.ProfileImage,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return translateConflict(pgErr)
		}
		return fmt.Errorf("create profile in %s: %w", s.table, err)
	}
	return s.saveDocuments(ctx, p)
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (domain.Profile, error) {
	return s.findBy(ctx, "id", id)
}

func (s *PostgresStore) FindByDisplayName(ctx context.Context, name string) (domain.Profile, error) {
	return s.findBy(ctx, "display_name", name)
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (domain.Profile, error) {
	return s.findBy(ctx, "phone", phone)
}

func (s *PostgresStore) findBy(ctx context.Context, column, value string) (domain.Profile, error) {
	query := fmt.Sprintf(`
		SELECT id, COALESCE(display_name, ''), email, COALESCE(phone, ''), COALESCE(license_number, ''),
			date_of_birth, gender, address, age,
			verification_status, verification_updated_at, profile_image,
			created_at, updated_at
		FROM %s
		WHERE %s = $1
	`, s.table, column)

	p, err := s.scanProfile(s.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, sentinel.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("find profile by %s in %s: %w", column, s.table, err)
	}
	if err := s.loadDocuments(ctx, &p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p domain.Profile) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			display_name = NULLIF($2, ''), email = $3, phone = NULLIF($4, ''), license_number = NULLIF($5, ''),
			date_of_birth = $6, gender = $7, address = $8, age = $9,
			verification_status = $10, verification_updated_at = $11,
			profile_image = $12, updated_at = $13
		WHERE id = $1
	`, s.table)
	tag, err := s.pool.Exec(ctx, query,
		p.ID, p.DisplayName, p.Email, p.Phone, p.LicenseNumber,
		p.DateOfBirth, p.Gender, p.Address, p.Age,
		string(p.Verification.Status), p.Verification.UpdatedAt,
		p.ProfileImage, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return translateConflict(pgErr)
		}
		return fmt.Errorf("update profile in %s: %w", s.table, err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return s.saveDocuments(ctx, p)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM profile_documents WHERE collection = $1 AND profile_id = $2`,
		s.table, id,
	); err != nil {
		return fmt.Errorf("delete profile documents: %w", err)
	}
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id)
	if err != nil {
		return fmt.Errorf("delete profile in %s: %w", s.table, err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Profile, error) {
	query := fmt.Sprintf(`
		SELECT id, COALESCE(display_name, ''), email, COALESCE(phone, ''), COALESCE(license_number, ''),
			date_of_birth, gender, address, age,
			verification_status, verification_updated_at, profile_image,
			created_at, updated_at
		FROM %s
		WHERE created_at < $1
	`, s.table)
	rows, err := s.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list profiles in %s: %w", s.table, err)
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		p, err := s.scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile in %s: %w", s.table, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) scanProfile(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	var status string
	err := row.Scan(&p.ID, &p.DisplayName, &p.Email, &p.Phone, &p.LicenseNumber,
		&p.DateOfBirth, &p.Gender, &p.Address, &p.Age,
		&status, &p.Verification.UpdatedAt, &p.ProfileImage,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, err
	}
	p.Role = s.role
	p.Verification.Status = domain.VerificationStatus(status)
	return p, nil
}

// saveDocuments upserts every document slot. Document rows are only ever
// added or replaced, never removed by profile updates.
func (s *PostgresStore) saveDocuments(ctx context.Context, p domain.Profile) error {
	for slot, doc := range p.Documents {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO profile_documents (collection, profile_id, slot, filename, content_type, size, data, uploaded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (collection, profile_id, slot) DO UPDATE SET
				filename = EXCLUDED.filename,
				content_type = EXCLUDED.content_type,
				size = EXCLUDED.size,
				data = EXCLUDED.data,
				uploaded_at = EXCLUDED.uploaded_at
		`, s.table, p.ID, slot, doc.Filename, doc.ContentType, doc.Size, doc.Data, doc.UploadedAt)
		if err != nil {
			return fmt.Errorf("save document %s: %w", slot, err)
		}
	}
	return nil
}

func (s *PostgresStore) loadDocuments(ctx context.Context, p *domain.Profile) error {
	rows, err := s.pool.Query(ctx, `
		SELECT slot, filename, content_type, size, data, uploaded_at
		FROM profile_documents
		WHERE collection = $1 AND profile_id = $2
	`, s.table, p.ID)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot string
		var doc domain.Document
		if err := rows.Scan(&slot, &doc.Filename, &doc.ContentType, &doc.Size, &doc.Data, &doc.UploadedAt); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		if p.Documents == nil {
			p.Documents = make(map[string]domain.Document)
		}
		p.Documents[slot] = doc
	}
	return rows.Err()
}
