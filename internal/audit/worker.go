package audit

import "context"

// Worker consumes audit events from a channel and persists them, decoupling
// request latency from the audit sink.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// AsyncStore queues appends for a background Worker while serving reads from
// the durable store directly. Emitting an audit event then costs a channel
// send, not a round trip to the sink.
type AsyncStore struct {
	inner Store
	inbox chan<- Event
}

// NewAsyncStore returns the queueing store plus the Worker that drains it.
// The caller runs the Worker.
func NewAsyncStore(inner Store, buffer int) (*AsyncStore, *Worker) {
	inbox := make(chan Event, buffer)
	return &AsyncStore{inner: inner, inbox: inbox}, NewWorker(inner, inbox)
}

func (s *AsyncStore) Append(ctx context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncStore) ListByProfile(ctx context.Context, profileID string) ([]Event, error) {
	return s.inner.ListByProfile(ctx, profileID)
}
