//go:build integration

package credential_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"nutricore/internal/domain"
	"nutricore/internal/identity/store/credential"
	"nutricore/pkg/platform/sentinel"
	"nutricore/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *credential.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = credential.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "credentials")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newCredential(email string) domain.Credential {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "$2a$10$fakehashfortest",
		Role:         domain.RoleUser,
		ProfileID:    uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	cred := s.newCredential("alice@example.com")
	s.Require().NoError(s.store.Create(ctx, cred))

	byEmail, err := s.store.FindByEmail(ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(cred.ID, byEmail.ID)
	s.Equal(cred.ProfileID, byEmail.ProfileID)
	s.Equal(domain.RoleUser, byEmail.Role)
	s.True(cred.CreatedAt.Equal(byEmail.CreatedAt))

	byID, err := s.store.FindByID(ctx, cred.ID)
	s.Require().NoError(err)
	s.Equal(cred.Email, byID.Email)
}

func (s *PostgresStoreSuite) TestFindMissingReturnsNotFound() {
	ctx := context.Background()

	_, err := s.store.FindByEmail(ctx, "nobody@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByID(ctx, uuid.NewString())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateEmailHitsUniqueIndex() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newCredential("bob@example.com")))

	// Same email, different identity. The unique index is the backstop for
	// the registration check-then-write race.
	err := s.store.Create(ctx, s.newCredential("bob@example.com"))
	s.Require().ErrorIs(err, sentinel.ErrDuplicateEmail)
}

func (s *PostgresStoreSuite) TestUpdatePasswordHash() {
	ctx := context.Background()
	cred := s.newCredential("carol@example.com")
	s.Require().NoError(s.store.Create(ctx, cred))

	s.Require().NoError(s.store.UpdatePasswordHash(ctx, cred.ID, "$2a$10$newhash"))

	got, err := s.store.FindByID(ctx, cred.ID)
	s.Require().NoError(err)
	s.Equal("$2a$10$newhash", got.PasswordHash)
	s.True(got.UpdatedAt.After(cred.UpdatedAt))

	err = s.store.UpdatePasswordHash(ctx, uuid.NewString(), "$2a$10$newhash")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteAndList() {
	ctx := context.Background()
	keep := s.newCredential("keep@example.com")
	gone := s.newCredential("gone@example.com")
	s.Require().NoError(s.store.Create(ctx, keep))
	s.Require().NoError(s.store.Create(ctx, gone))

	s.Require().NoError(s.store.Delete(ctx, gone.ID))
	s.Require().ErrorIs(s.store.Delete(ctx, gone.ID), sentinel.ErrNotFound)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(keep.ID, all[0].ID)
}
