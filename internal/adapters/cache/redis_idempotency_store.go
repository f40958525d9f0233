package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
)

const defaultKeyPrefix = "pma:idempotency:"

// RedisIdempotencyStore implements IdempotencyStore on Redis, for
// deployments where multiple instances must share deduplication state.
// Values are written with SET NX so exactly one writer wins per key.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore connects to Redis and verifies the connection.
func NewRedisIdempotencyStore(addr, password string, db int) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisIdempotencyStore{client: client, keyPrefix: defaultKeyPrefix}, nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client, useful for
// tests and for sharing a client across components.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

var _ portssvc.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// Get returns the stored response for a key; an expired or absent key is a
// miss, not an error.
func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return json.RawMessage(value), true, nil
}

// Put stores the response under the key if absent, with the given TTL.
// Returns false when another writer already stored a value.
func (s *RedisIdempotencyStore) Put(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) (bool, error) {
	set, err := s.client.SetNX(ctx, s.keyPrefix+key, []byte(value), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to write idempotency key: %w", err)
	}
	return set, nil
}

// Close closes the underlying Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}
