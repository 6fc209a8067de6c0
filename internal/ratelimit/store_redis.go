package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// recordTTL bounds how long a stale record can linger; any record older than
// this is irrelevant to every window and lock rule.
const recordTTL = 24 * time.Hour

// RedisStore shares lockout records across instances.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Lockout, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lockout record: %w", err)
	}
	var record Lockout
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode lockout record: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) Put(ctx context.Context, record *Lockout) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode lockout record: %w", err)
	}
	if err := s.client.Set(ctx, record.Identifier, raw, recordTTL).Err(); err != nil {
		return fmt.Errorf("put lockout record: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear lockout record: %w", err)
	}
	return nil
}
