package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors without knowing
// which backend produced them.
//
// These represent factual states about stored records, not validation
// failures:
// - ErrNotFound: record does not exist in the store
// - ErrDuplicateEmail: credential insert hit the unique email index
// - ErrDuplicateName: profile insert hit the unique display-name index
// - ErrDuplicatePhone: profile insert hit the unique phone index
// - ErrDuplicateLicense: profile insert hit the per-role unique license index
// - ErrUnavailable: backend temporarily unreachable
//
// For input validation use pkg/domain-errors directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateEmail   = errors.New("duplicate email")
	ErrDuplicateName    = errors.New("duplicate display name")
	ErrDuplicatePhone   = errors.New("duplicate phone number")
	ErrDuplicateLicense = errors.New("duplicate license number")
	ErrUnavailable      = errors.New("unavailable")
)
