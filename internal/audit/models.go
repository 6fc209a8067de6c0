package audit

import "time"

// Actions recorded by the identity core.
const (
	ActionRegistered      = "identity.registered"
	ActionLoginSucceeded  = "login.succeeded"
	ActionLoginFailed     = "login.failed"
	ActionPasswordChanged = "password.changed"

	// Verification transitions share one action with From/To in Reason via
	// the verification service's transition log entries.
	ActionVerificationMoved = "verification.transitioned"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	IdentityID string    `json:"identity_id,omitempty"`
	ProfileID  string    `json:"profile_id,omitempty"`
	Role       string    `json:"role,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Device     string    `json:"device,omitempty"`
}
