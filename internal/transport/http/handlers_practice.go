package httptransport

import (
	"net/http"

	"nutricore/internal/domain"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/requestcontext"
)

type practiceProfileResponse struct {
	ProfileID     string `json:"profileId"`
	Role          string `json:"role"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"licenseNumber,omitempty"`
	Status        string `json:"verificationStatus"`
}

// handlePracticeProfile is the entry point of the verified-only practice
// surface. Reaching it at all means the verification gate let the session
// through.
func (h *Handler) handlePracticeProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role, err := domain.ParseRole(requestcontext.Role(ctx))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidToken, "invalid token"))
		return
	}

	state, _, err := h.verifier.Status(ctx, role, requestcontext.ProfileID(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	prof, err := h.identity.Profile(ctx, role, requestcontext.ProfileID(ctx))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, practiceProfileResponse{
		ProfileID:     prof.ID,
		Role:          string(prof.Role),
		DisplayName:   prof.DisplayName,
		Email:         prof.Email,
		Phone:         prof.Phone,
		LicenseNumber: prof.LicenseNumber,
		Status:        string(state.Status),
	})
}
