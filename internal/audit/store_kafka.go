package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaStore tees every event to a Kafka topic while delegating persistence
// and reads to an inner store. Losing the broker must not lose the event:
// the inner append happens first and a produce failure is returned to the
// caller's error path, not swallowed.
type KafkaStore struct {
	inner Store
	topic string
	// produce is swappable so unit tests can capture records without a broker.
	produce func(ctx context.Context, record *kgo.Record) error
}

func NewKafkaStore(inner Store, client *kgo.Client, topic string) *KafkaStore {
	return &KafkaStore{
		inner: inner,
		topic: topic,
		produce: func(ctx context.Context, record *kgo.Record) error {
			return client.ProduceSync(ctx, record).FirstErr()
		},
	}
}

// NewKafkaClient builds a franz-go client for the audit topic.
func NewKafkaClient(brokers []string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	if err := s.inner.Append(ctx, event); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ProfileID),
		Value: payload,
	}
	if err := s.produce(ctx, record); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *KafkaStore) ListByProfile(ctx context.Context, profileID string) ([]Event, error) {
	return s.inner.ListByProfile(ctx, profileID)
}
