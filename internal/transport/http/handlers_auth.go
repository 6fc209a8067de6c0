package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"nutricore/internal/domain"
	"nutricore/internal/identity/service"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/requestcontext"
)

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"licenseNumber"`
	DateOfBirth   string `json:"dateOfBirth"`
	Gender        string `json:"gender"`
	Address       string `json:"address"`
	Age           int    `json:"age"`
}

type registerResponse struct {
	Token       string `json:"token"`
	Role        string `json:"role"`
	ProfileID   string `json:"profileId"`
	DisplayName string `json:"displayName"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role := chi.URLParam(r, "role")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateRegisterRequest(req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.identity.Register(ctx, service.RegisterRequest{
		Role:          role,
		Email:         req.Email,
		Password:      req.Password,
		DisplayName:   req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		Address:       req.Address,
		Age:           req.Age,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"role", role,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		writeError(w, err)
		return
	}

	h.metrics.RegistrationsTotal.WithLabelValues(string(res.Role)).Inc()
	writeJSON(w, http.StatusCreated, registerResponse{
		Token:       res.Token,
		Role:        string(res.Role),
		ProfileID:   res.ProfileID,
		DisplayName: res.DisplayName,
	})
}

// validateRegisterRequest rejects obviously malformed input at the edge. The
// service layer re-checks everything it depends on.
func validateRegisterRequest(req registerRequest) error {
	if !govalidator.StringLength(req.Email, "1", "255") || !govalidator.IsEmail(req.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if !govalidator.StringLength(req.Password, "8", "128") {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if len(req.Name) > 100 {
		return dErrors.New(dErrors.CodeValidation, "name too long")
	}
	if req.Phone != "" && !govalidator.IsNumeric(req.Phone) {
		return dErrors.New(dErrors.CodeValidation, "phone must contain only digits")
	}
	if req.Age < 0 || req.Age > 150 {
		return dErrors.New(dErrors.CodeValidation, "invalid age")
	}
	return nil
}

type loginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	LicenseNumber string `json:"licenseNumber"`
	AdminKey      string `json:"adminKey"`
	RememberMe    bool   `json:"rememberMe"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresIn int    `json:"expiresIn"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role := chi.URLParam(r, "role")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if !govalidator.IsEmail(req.Email) || req.Password == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "email and password are required"))
		return
	}

	// The lockout counter must track the same identity the credential lookup
	// sees, or case variants of one email each get their own window.
	email := domain.NormalizeEmail(req.Email)
	ip := requestcontext.ClientIP(ctx)
	if check := h.lockout.Check(ctx, email, ip); !check.Allowed {
		h.metrics.LoginsTotal.WithLabelValues("locked_out").Inc()
		w.Header().Set("Retry-After", strconv.Itoa(check.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:   "TOO_MANY_ATTEMPTS",
			Message: "too many failed login attempts, try again later",
		})
		return
	}

	res, err := h.identity.Login(ctx, service.LoginRequest{
		Role:          role,
		Email:         req.Email,
		Password:      req.Password,
		LicenseNumber: req.LicenseNumber,
		AdminKey:      req.AdminKey,
		RememberMe:    req.RememberMe,
	})
	if err != nil {
		h.lockout.RecordFailure(ctx, email, ip)
		h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		writeError(w, err)
		return
	}

	h.lockout.Clear(ctx, email, ip)
	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		Role:      string(res.Role),
		ExpiresIn: int(res.ExpiresIn.Seconds()),
	})
}

type sessionResponse struct {
	IdentityID string `json:"identityId"`
	Role       string `json:"role"`
	ProfileID  string `json:"profileId"`
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, sessionResponse{
		IdentityID: requestcontext.IdentityID(ctx),
		Role:       requestcontext.Role(ctx),
		ProfileID:  requestcontext.ProfileID(ctx),
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "oldPassword and newPassword are required"))
		return
	}

	if err := h.identity.ChangePassword(ctx, requestcontext.IdentityID(ctx), req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	h.metrics.PasswordChangesTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
