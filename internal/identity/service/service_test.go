package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"nutricore/internal/audit"
	"nutricore/internal/identity/password"
	"nutricore/internal/identity/store/credential"
	"nutricore/internal/identity/store/profile"
	"nutricore/internal/identity/uniqueness"
	"nutricore/internal/token"
)

const testAdminKey = "super-admin-passphrase"

type testEnv struct {
	svc         *Service
	credentials *credential.MemoryStore
	profiles    *profile.Registry
	tokens      *token.Service
	auditStore  *audit.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	creds := credential.NewMemoryStore()
	profiles := profile.NewMemoryRegistry()
	tokens := token.NewService("test-signing-key", "nutricore", "nutricore-clients")
	auditStore := audit.NewMemoryStore()

	svc := New(
		creds,
		profiles,
		uniqueness.NewChecker(profiles),
		password.NewHasher(bcrypt.MinCost),
		tokens,
		WithAdminKey(testAdminKey),
		WithAuditPublisher(audit.NewPublisher(auditStore)),
	)
	return &testEnv{
		svc:         svc,
		credentials: creds,
		profiles:    profiles,
		tokens:      tokens,
		auditStore:  auditStore,
	}
}

// newTestEnvWithoutAdminKey builds a service missing the admin key option,
// the shape of a deployment that forgot to configure it.
func newTestEnvWithoutAdminKey(t *testing.T) *testEnv {
	t.Helper()
	creds := credential.NewMemoryStore()
	profiles := profile.NewMemoryRegistry()
	tokens := token.NewService("test-signing-key", "nutricore", "nutricore-clients")
	auditStore := audit.NewMemoryStore()

	svc := New(
		creds,
		profiles,
		uniqueness.NewChecker(profiles),
		password.NewHasher(bcrypt.MinCost),
		tokens,
		WithAuditPublisher(audit.NewPublisher(auditStore)),
	)
	return &testEnv{
		svc:         svc,
		credentials: creds,
		profiles:    profiles,
		tokens:      tokens,
		auditStore:  auditStore,
	}
}

func userRegistration(email, name, phone string) RegisterRequest {
	return RegisterRequest{
		Role:        "user",
		Email:       email,
		Password:    "secret-password-1",
		DisplayName: name,
		Phone:       phone,
		DateOfBirth: "1993-04-12",
		Gender:      "female",
		Address:     "12 Oat Lane",
	}
}

func dietitianRegistration(email, name, phone, license string) RegisterRequest {
	return RegisterRequest{
		Role:          "dietitian",
		Email:         email,
		Password:      "secret-password-1",
		DisplayName:   name,
		Phone:         phone,
		LicenseNumber: license,
		Age:           34,
	}
}

func mustRegister(t *testing.T, env *testEnv, req RegisterRequest) *RegisterResult {
	t.Helper()
	res, err := env.svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	return res
}
