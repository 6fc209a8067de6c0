// Package verification owns the document-review state machine for
// professional profiles. Status lives on the profile record; every change
// goes through the explicit transition table and leaves an entry in the
// append-only transition log.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"nutricore/internal/audit"
	"nutricore/internal/domain"
	"nutricore/internal/identity/store/profile"
	dErrors "nutricore/pkg/domain-errors"
	"nutricore/pkg/platform/sentinel"
	"nutricore/pkg/requestcontext"
)

// Decision is the read-side verdict for a gated operation.
type Decision struct {
	Allowed bool
	// Reason is "rejected" or "pending" when Allowed is false.
	Reason string
}

const (
	ReasonRejected = "rejected"
	ReasonPending  = "pending"
)

type Service struct {
	profiles *profile.Registry
	log      TransitionLog

	logger *slog.Logger
	audit  *audit.Publisher
	tracer trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func New(profiles *profile.Registry, log TransitionLog, opts ...Option) *Service {
	s := &Service{
		profiles: profiles,
		log:      log,
		logger:   slog.Default(),
		audit:    audit.NewPublisher(audit.NewMemoryStore()),
		tracer:   otel.Tracer("nutricore/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadResult reports which document slots an upload touched.
type UploadResult struct {
	UploadedSlots []string
	UploadedAt    time.Time
	Status        domain.VerificationStatus
}

// UploadDocuments stores raw bytes plus metadata under named slots on the
// profile. For license-carrying roles the first upload moves the status to
// received, and a re-upload after rejection moves it back to received.
func (s *Service) UploadDocuments(ctx context.Context, role domain.Role, profileID, actor string, docs map[string]domain.Document) (*UploadResult, error) {
	ctx, span := s.tracer.Start(ctx, "verification.upload_documents")
	defer span.End()

	if len(docs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one document is required")
	}
	for slot, doc := range docs {
		if slot == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "document slot name is required")
		}
		if len(doc.Data) == 0 {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("document %q is empty", slot))
		}
	}

	prof, err := s.loadProfile(ctx, role, profileID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if prof.Documents == nil {
		prof.Documents = make(map[string]domain.Document, len(docs))
	}
	slots := make([]string, 0, len(docs))
	for slot, doc := range docs {
		doc.UploadedAt = now
		if doc.Size == 0 {
			doc.Size = int64(len(doc.Data))
		}
		prof.Documents[slot] = doc
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	if domain.SpecFor(role).RequiresLicense &&
		domain.CanTransition(prof.Verification.Status, domain.VerificationReceived) {
		if err := s.transition(ctx, &prof, domain.VerificationReceived, actor, "documents uploaded"); err != nil {
			return nil, err
		}
	}
	prof.UpdatedAt = now

	if err := s.profiles.ForRole(role).Update(ctx, prof); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist documents")
	}

	return &UploadResult{
		UploadedSlots: slots,
		UploadedAt:    now,
		Status:        prof.Verification.Status,
	}, nil
}

// Review applies a reviewer decision to a profile currently in received.
func (s *Service) Review(ctx context.Context, role domain.Role, profileID, actor, decision, reason string) (*domain.VerificationState, error) {
	ctx, span := s.tracer.Start(ctx, "verification.review")
	defer span.End()

	var target domain.VerificationStatus
	switch decision {
	case "verified":
		target = domain.VerificationVerified
	case "rejected":
		target = domain.VerificationRejected
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "decision must be verified or rejected")
	}

	prof, err := s.loadProfile(ctx, role, profileID)
	if err != nil {
		return nil, err
	}
	if !domain.SpecFor(role).RequiresLicense {
		return nil, dErrors.New(dErrors.CodeValidation, "role has no verification requirement")
	}
	if !domain.CanTransition(prof.Verification.Status, target) {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("cannot move verification from %s to %s", prof.Verification.Status, target))
	}

	if err := s.transition(ctx, &prof, target, actor, reason); err != nil {
		return nil, err
	}
	prof.UpdatedAt = requestcontext.Now(ctx)
	if err := s.profiles.ForRole(role).Update(ctx, prof); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verification status")
	}
	state := prof.Verification
	return &state, nil
}

// Status returns the current verification state plus the full transition
// history for a profile.
func (s *Service) Status(ctx context.Context, role domain.Role, profileID string) (*domain.VerificationState, []domain.VerificationTransition, error) {
	prof, err := s.loadProfile(ctx, role, profileID)
	if err != nil {
		return nil, nil, err
	}
	transitions, err := s.log.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transition history")
	}
	state := prof.Verification
	return &state, transitions, nil
}

// Authorize is the read-and-branch consulted before gated operations. Roles
// without a verification requirement are always allowed.
func (s *Service) Authorize(prof domain.Profile) Decision {
	if !domain.SpecFor(prof.Role).RequiresLicense {
		return Decision{Allowed: true}
	}
	switch prof.Verification.Status {
	case domain.VerificationVerified:
		return Decision{Allowed: true}
	case domain.VerificationRejected:
		return Decision{Reason: ReasonRejected}
	default:
		return Decision{Reason: ReasonPending}
	}
}

// AuthorizeByID loads the profile and applies Authorize. The transport gate
// uses this with the role and profile id from the session claims.
func (s *Service) AuthorizeByID(ctx context.Context, role domain.Role, profileID string) (Decision, error) {
	prof, err := s.loadProfile(ctx, role, profileID)
	if err != nil {
		return Decision{}, err
	}
	return s.Authorize(prof), nil
}

func (s *Service) loadProfile(ctx context.Context, role domain.Role, profileID string) (domain.Profile, error) {
	prof, err := s.profiles.ForRole(role).FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Profile{}, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return domain.Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return prof, nil
}

// transition mutates the in-memory profile state, appends to the log and
// emits an audit event. The caller persists the profile.
func (s *Service) transition(ctx context.Context, prof *domain.Profile, to domain.VerificationStatus, actor, reason string) error {
	from := prof.Verification.Status
	now := requestcontext.Now(ctx)
	tr := domain.VerificationTransition{
		ID:        uuid.NewString(),
		ProfileID: prof.ID,
		Role:      prof.Role,
		From:      from,
		To:        to,
		Actor:     actor,
		Reason:    reason,
		At:        now,
	}
	if err := s.log.Append(ctx, tr); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification transition")
	}
	prof.Verification = domain.VerificationState{Status: to, UpdatedAt: now}

	if err := s.audit.Emit(ctx, audit.Event{
		Action:    audit.ActionVerificationMoved,
		ProfileID: prof.ID,
		Role:      string(prof.Role),
		Actor:     actor,
		Reason:    fmt.Sprintf("%s to %s: %s", from, to, reason),
		ClientIP:  requestcontext.ClientIP(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", audit.ActionVerificationMoved,
			"error", err,
		)
	}
	return nil
}
