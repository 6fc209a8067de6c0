package httptransport

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nutricore/internal/domain"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/requestcontext"
)

// maxUploadBytes bounds one multipart upload request.
const maxUploadBytes = 32 << 20

type uploadResponse struct {
	UploadedSlots []string  `json:"uploadedSlots"`
	UploadedAt    time.Time `json:"uploadedAt"`
	Status        string    `json:"status"`
}

// handleUploadDocuments accepts a multipart form where each file field is a
// named document slot. Owner-only: the session's profile must match the URL.
func (h *Handler) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role, profileID, err := pathTarget(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if requestcontext.ProfileID(ctx) != profileID || requestcontext.Role(ctx) != string(role) {
		writeError(w, dErrors.New(dErrors.CodeForbidden, "documents can only be uploaded to your own profile"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	docs := make(map[string]domain.Document)
	for slot, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		hdr := headers[0]
		file, err := hdr.Open()
		if err != nil {
			writeError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable document"))
			return
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			writeError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable document"))
			return
		}
		docs[slot] = domain.Document{
			Filename:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        hdr.Size,
			Data:        data,
		}
	}

	res, err := h.verifier.UploadDocuments(ctx, role, profileID, requestcontext.IdentityID(ctx), docs)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.DocumentsUploadedTotal.Add(float64(len(res.UploadedSlots)))
	writeJSON(w, http.StatusOK, uploadResponse{
		UploadedSlots: res.UploadedSlots,
		UploadedAt:    res.UploadedAt,
		Status:        string(res.Status),
	})
}

type transitionResponse struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Actor  string    `json:"actor"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

type verificationResponse struct {
	Status      string               `json:"status"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Transitions []transitionResponse `json:"transitions"`
}

// handleVerificationStatus returns the current status and the transition
// history. Owners see their own; admins see anyone's.
func (h *Handler) handleVerificationStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role, profileID, err := pathTarget(r)
	if err != nil {
		writeError(w, err)
		return
	}
	isOwner := requestcontext.ProfileID(ctx) == profileID && requestcontext.Role(ctx) == string(role)
	isAdmin := requestcontext.Role(ctx) == string(domain.RoleAdmin)
	if !isOwner && !isAdmin {
		writeError(w, dErrors.New(dErrors.CodeForbidden, "not allowed to view this profile's verification"))
		return
	}

	state, transitions, err := h.verifier.Status(ctx, role, profileID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := verificationResponse{
		Status:      string(state.Status),
		UpdatedAt:   state.UpdatedAt,
		Transitions: make([]transitionResponse, 0, len(transitions)),
	}
	for _, tr := range transitions {
		out.Transitions = append(out.Transitions, transitionResponse{
			From:   string(tr.From),
			To:     string(tr.To),
			Actor:  tr.Actor,
			Reason: tr.Reason,
			At:     tr.At,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// handleReview applies an admin's verified/rejected decision.
func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role, profileID, err := pathTarget(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if requestcontext.Role(ctx) != string(domain.RoleAdmin) {
		writeError(w, dErrors.New(dErrors.CodeForbidden, "only admins can review verification documents"))
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	state, err := h.verifier.Review(ctx, role, profileID, requestcontext.IdentityID(ctx), req.Decision, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.VerificationTransitions.WithLabelValues(string(state.Status)).Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    string(state.Status),
		"updatedAt": state.UpdatedAt,
	})
}

func pathTarget(r *http.Request) (domain.Role, string, error) {
	role, err := domain.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		return "", "", err
	}
	profileID := chi.URLParam(r, "profileID")
	if profileID == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "profile id is required")
	}
	return role, profileID, nil
}
