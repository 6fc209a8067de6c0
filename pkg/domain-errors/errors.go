// Package domainerrors defines the coded errors every layer of the identity
// core speaks. Stores return sentinel errors; services translate them into
// these codes; the transport layer maps codes onto HTTP statuses and a stable
// JSON envelope. Handlers and clients branch on Code, never on message text.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	// CodeValidation covers malformed or missing input detected before any write.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeBadRequest covers unparseable request bodies.
	CodeBadRequest Code = "BAD_REQUEST"
	// CodeInvalidRole is returned when the requested role is not a known kind.
	CodeInvalidRole Code = "INVALID_ROLE"
	// CodeConflict signals a uniqueness violation. The Field names the
	// conflicting attribute (email, name, phone, licenseNumber).
	CodeConflict Code = "CONFLICT"

	// The three credential-check codes all map to 401 and deliberately carry
	// uninformative messages so a caller cannot learn which check failed first.
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidLicense     Code = "INVALID_LICENSE"
	CodeInvalidAdminKey    Code = "INVALID_ADMIN_KEY"

	// CodeTokenExpired and CodeInvalidToken are distinct so clients can decide
	// between "prompt re-login" and "corrupt client state".
	CodeTokenExpired Code = "TOKEN_EXPIRED"
	CodeInvalidToken Code = "INVALID_TOKEN"

	CodeSamePassword Code = "SAME_PASSWORD"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	// CodeIntegrity marks a broken credential/profile link. It is a data bug,
	// not a client error; surfaced for the reconciliation sweep to resolve.
	CodeIntegrity Code = "INTEGRITY_ERROR"
	CodeInternal  Code = "INTERNAL_ERROR"
)

// Error is the domain error value. Field is only set for conflicts.
type Error struct {
	Code    Code
	Message string
	Field   string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two domain errors by code and message so tests can assert with
// errors.Is against a freshly constructed value.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && (t.Message == "" || e.Message == t.Message)
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Conflict builds a uniqueness-violation error naming the conflicting field.
func Conflict(field, message string) *Error {
	return &Error{Code: CodeConflict, Message: message, Field: field}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for logs while keeping the client-visible surface stable.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// From extracts the domain error from err, or nil if err carries none.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// ToHTTPStatus maps a domain code to its HTTP status. Unknown codes are
// treated as internal failures rather than leaking a misleading status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest, CodeInvalidRole, CodeSamePassword:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidCredentials, CodeInvalidLicense, CodeInvalidAdminKey,
		CodeTokenExpired, CodeInvalidToken:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeIntegrity, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
