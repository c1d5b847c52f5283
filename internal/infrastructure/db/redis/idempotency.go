package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gigboard/marketplace-api/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour

	// pendingValue marks a claimed key whose resource is not created yet.
	pendingValue = "pending"
)

// IdempotencyStore records which resource an Idempotency-Key produced.
// Key format: idem:<scope>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim sets the key to pendingValue with SETNX; only one caller wins.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) (string, bool, error) {
	k := s.key(scope, key)
	ok, err := s.client.SetNX(ctx, k, pendingValue, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return "", true, nil
	}

	id, err := s.client.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil), err == nil && id == pendingValue:
		// Released or expired between the two calls, or still in flight.
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, scope, key, resourceID string) error {
	if err := s.client.Set(ctx, s.key(scope, key), resourceID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, s.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
