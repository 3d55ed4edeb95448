package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "idempotency:order:"
	// pendingMarker is stored while the first request is still placing the order
	pendingMarker = "-"
)

// IdempotencyStore remembers order placement keys in Redis
type IdempotencyStore struct {
	client *Client
}

// NewIdempotencyStore creates a store on client
func NewIdempotencyStore(client *Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Reserve claims key with SETNX. A taken key reports the stored order id, or
// "" while the first request is in flight.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	return s.reserve(ctx, key, ttl, true)
}

func (s *IdempotencyStore) reserve(ctx context.Context, key string, ttl time.Duration, retry bool) (string, bool, error) {
	ok, err := s.client.Redis.SetNX(ctx, idempotencyPrefix+key, pendingMarker, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	val, err := s.client.Redis.Get(ctx, idempotencyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; claim it once more as a fresh key
		if retry {
			return s.reserve(ctx, key, ttl, false)
		}
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if val == pendingMarker {
		return "", false, nil
	}
	return val, false, nil
}

// Complete records the order created for key
func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return s.client.Redis.Set(ctx, idempotencyPrefix+key, orderID, ttl).Err()
}

// Release frees key after a failed placement
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Redis.Del(ctx, idempotencyPrefix+key).Err()
}
