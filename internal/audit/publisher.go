// Package audit records security-relevant actions (registrations, logins,
// password changes, verification transitions) as append-only events. The
// publisher writes through a Store; deployments with Kafka configured swap in
// the Kafka sink.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) ListByProfile(ctx context.Context, profileID string) ([]Event, error) {
	return p.store.ListByProfile(ctx, profileID)
}
