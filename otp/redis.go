package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "otp:"

// expiredGrace keeps a record readable briefly past ExpiresAt so callers
// can tell an expired code from one that was never requested.
const expiredGrace = time.Minute

// RedisStore shares pending records across server instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding otp record: %w", err)
	}
	ttl := time.Until(rec.ExpiresAt) + expiredGrace
	if ttl < expiredGrace {
		ttl = expiredGrace
	}
	return s.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotRequested
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding otp record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}
