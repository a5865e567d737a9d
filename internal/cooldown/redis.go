package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore is a Store shared across service instances through redis.
// Reservations are SET NX keys with a TTL, so expiry is handled by the
// server.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store using the given client. The prefix
// namespaces the reservation keys.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// Acquire implements Store.
func (s *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (time.Duration, error) {
	name := s.prefix + ":" + key

	ok, err := s.client.SetNX(ctx, name, 1, ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("cooldown setnx: %w", err)
	}
	if ok {
		return 0, nil
	}

	remaining, err := s.client.PTTL(ctx, name).Result()
	if err != nil {
		return 0, fmt.Errorf("cooldown pttl: %w", err)
	}
	if remaining < 0 {
		// Key vanished between SETNX and PTTL; treat as free next call.
		remaining = time.Millisecond
	}
	return remaining, nil
}

// Release implements Store.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+":"+key).Err(); err != nil {
		return fmt.Errorf("cooldown del: %w", err)
	}
	return nil
}
