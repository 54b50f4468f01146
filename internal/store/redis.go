package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/redis/go-redis/v9"
)

// deleteIfEqual compares and deletes in one server-side step.
var deleteIfEqual = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore implements Store backed by Redis.
type RedisStore struct {
	client redis.UniversalClient
}

var _ Store = (*RedisStore)(nil)

// NewRedisClient creates a redis client from configuration.
func NewRedisClient(cfg *config.RedisConfig) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStore constructs a Redis-backed store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete %v: %w", keys, err)
	}
	return nil
}

// Take uses GETDEL so the read and the delete happen atomically on the server.
func (s *RedisStore) Take(ctx context.Context, key string) (string, error) {
	value, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("take %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) DeleteIfEqual(ctx context.Context, key, expected string) (bool, error) {
	deleted, err := deleteIfEqual.Run(ctx, s.client, []string{key}, expected).Int()
	if err != nil {
		return false, fmt.Errorf("delete %s if equal: %w", key, err)
	}
	return deleted == 1, nil
}

// Ping checks connectivity to the server.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
