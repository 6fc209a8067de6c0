package domain

import "time"

// Profile is a role-specific attribute record extending a Credential. The
// five role collections share this shape; role-specific fields stay zero for
// roles that don't use them. DisplayName and Phone are unique across the
// union of all collections, not merely within one.
type Profile struct {
	ID          string
	Role        Role
	DisplayName string
	// Email is a denormalized copy of the credential's email, kept for read
	// convenience. The credential store owns the canonical value.
	Email string
	Phone string

	// LicenseNumber is present only for dietitian, organization and
	// corporate-partner profiles; unique within its own role collection.
	LicenseNumber string

	DateOfBirth string
	Gender      string
	Address     string
	Age         int

	Documents    map[string]Document
	Verification VerificationState
	ProfileImage []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document holds one uploaded verification document under a named slot.
type Document struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
	UploadedAt  time.Time
}

// PhoneLength is the fixed length every stored phone number has.
const PhoneLength = 10
