package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "nutricore/pkg/domain-errors"
)

// errorResponse is the stable JSON envelope every error returns. Clients
// branch on the error code, never on the message.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error onto its HTTP status and the JSON envelope.
// Anything without a domain code is reported as an internal error without
// leaking its message.
func writeError(w http.ResponseWriter, err error) {
	dErr := dErrors.From(err)
	if dErr == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   string(dErrors.CodeInternal),
			Message: "internal server error",
		})
		return
	}
	// Integrity problems are an internal matter; the client sees only a 500.
	if dErr.Code == dErrors.CodeIntegrity || dErr.Code == dErrors.CodeInternal {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   string(dErrors.CodeInternal),
			Message: "internal server error",
		})
		return
	}
	writeJSON(w, dErrors.ToHTTPStatus(dErr.Code), errorResponse{
		Error:   string(dErr.Code),
		Message: dErr.Message,
		Field:   dErr.Field,
	})
}
