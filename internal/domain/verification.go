package domain

import "time"

// VerificationStatus is the document-review state of a professional profile.
type VerificationStatus string

const (
	VerificationNotReceived VerificationStatus = "not-received"
	VerificationReceived    VerificationStatus = "received"
	VerificationVerified    VerificationStatus = "verified"
	VerificationRejected    VerificationStatus = "rejected"
)

// VerificationState couples the current status with its last change. The full
// history lives in the transition log, not on the profile.
type VerificationState struct {
	Status    VerificationStatus
	UpdatedAt time.Time
}

// legalTransitions is the explicit state machine. NotReceived is initial.
// Rejected has no automatic way out; re-uploading documents moves it back to
// Received.
var legalTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationNotReceived: {VerificationReceived},
	VerificationReceived:    {VerificationVerified, VerificationRejected},
	VerificationVerified:    {},
	VerificationRejected:    {VerificationReceived},
}

// CanTransition reports whether moving from one verification status to
// another is legal.
func CanTransition(from, to VerificationStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// VerificationTransition is one entry of the append-only transition log,
// recording who moved a profile's status, when, and why.
type VerificationTransition struct {
	ID        string
	ProfileID string
	Role      Role
	From      VerificationStatus
	To        VerificationStatus
	Actor     string
	Reason    string
	At        time.Time
}
