package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twmb/franz-go/pkg/kgo"
)

func TestPublisher_FillsIDAndTimestamp(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), Event{
		Action:    ActionRegistered,
		ProfileID: "p1",
		Role:      "user",
	})
	require.NoError(t, err)

	events := store.All()
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_ListByProfile(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, Event{Action: ActionLoginSucceeded, ProfileID: "p1"}))
	require.NoError(t, pub.Emit(ctx, Event{Action: ActionLoginFailed, ProfileID: "p2"}))
	require.NoError(t, pub.Emit(ctx, Event{Action: ActionPasswordChanged, ProfileID: "p1"}))

	got, err := pub.ListByProfile(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ActionLoginSucceeded, got[0].Action)
	assert.Equal(t, ActionPasswordChanged, got[1].Action)
}

func TestWorker_DrainsInbox(t *testing.T) {
	store := NewMemoryStore()
	inbox := make(chan Event, 4)
	worker := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- Event{ID: "e1", Action: ActionRegistered}
	inbox <- Event{ID: "e2", Action: ActionLoginSucceeded}

	require.Eventually(t, func() bool {
		return len(store.All()) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestAsyncStore_QueuesForWorkerAndReadsThrough(t *testing.T) {
	inner := NewMemoryStore()
	async, worker := NewAsyncStore(inner, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	pub := NewPublisher(async)
	require.NoError(t, pub.Emit(ctx, Event{Action: ActionRegistered, ProfileID: "p1"}))

	require.Eventually(t, func() bool {
		return len(inner.All()) == 1
	}, time.Second, 5*time.Millisecond)

	got, err := pub.ListByProfile(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ActionRegistered, got[0].Action)
}

func TestKafkaStore_ProducesAfterInnerAppend(t *testing.T) {
	inner := NewMemoryStore()
	var produced []*kgo.Record
	store := &KafkaStore{
		inner: inner,
		topic: "identity.audit",
		produce: func(_ context.Context, record *kgo.Record) error {
			produced = append(produced, record)
			return nil
		},
	}

	event := Event{ID: "e1", Timestamp: time.Now(), Action: ActionVerificationMoved, ProfileID: "p1"}
	require.NoError(t, store.Append(context.Background(), event))

	require.Len(t, inner.All(), 1)
	require.Len(t, produced, 1)
	assert.Equal(t, "identity.audit", produced[0].Topic)
	assert.Equal(t, []byte("p1"), produced[0].Key)

	var decoded Event
	require.NoError(t, json.Unmarshal(produced[0].Value, &decoded))
	assert.Equal(t, ActionVerificationMoved, decoded.Action)
}
