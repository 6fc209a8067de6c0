package domain

import (
	"strings"
	"time"
)

// Credential is the single login identity record. Exactly one exists per
// email; Role and ProfileID together must resolve to exactly one profile in
// the role's collection. PasswordHash is a bcrypt hash and never leaves the
// identity core.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	ProfileID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email so lookups and the unique
// index agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
