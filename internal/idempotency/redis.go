// Package idempotency remembers which order an Idempotency-Key produced, so a client
// retrying a checkout gets the same order back instead of a second one.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode"

	"github.com/redis/go-redis/v9"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

const (
	keyPrefix  = "pos:idempotency:order:"
	pending    = "pending"
	maxKeySize = 255
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

// ValidateKey rejects keys that are empty, oversized or contain control characters.
func ValidateKey(key string) error {
	if key == "" || len(key) > maxKeySize {
		return apperr.Validation("Idempotency-Key must be 1-%d characters", maxKeySize)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return apperr.Validation("Idempotency-Key contains control characters")
		}
	}
	return nil
}

func (s *RedisStore) Reserve(ctx context.Context, key string) (int64, bool, error) {
	if err := ValidateKey(key); err != nil {
		return 0, false, err
	}
	k := keyPrefix + key

	ok, err := s.client.SetNX(ctx, k, pending, s.ttl).Result()
	if err != nil {
		return 0, false, apperr.Unavailable(fmt.Errorf("reserve idempotency key: %w", err))
	}
	if ok {
		return 0, false, nil
	}

	v, err := s.client.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, false, apperr.Conflict("Idempotency-Key %q expired during the request, retry", key)
	case err != nil:
		return 0, false, apperr.Unavailable(fmt.Errorf("read idempotency key: %w", err))
	case v == pending:
		return 0, false, apperr.Conflict("a request with Idempotency-Key %q is still in progress", key)
	}

	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, apperr.Internal("corrupt idempotency record", err)
	}
	return id, true, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, orderID int64) error {
	return s.client.Set(ctx, keyPrefix+key, strconv.FormatInt(orderID, 10), s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
