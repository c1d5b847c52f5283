package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

// idempotency wraps the key store with the claim, create, complete sequence
// shared by job and proposal creation.
type idempotency struct {
	store ports.IdempotencyStore
	log   zerolog.Logger
}

func newIdempotency(store ports.IdempotencyStore, log zerolog.Logger) idempotency {
	if store == nil {
		store = noopIdempotency{}
	}
	return idempotency{store: store, log: log}
}

// begin claims key within scope. A non-empty replayID names the resource an
// earlier request created with the same key. claimed means the caller must
// create the resource and then call finish. A key whose first request is
// still in flight yields domain.ErrIdempotencyConflict.
func (i idempotency) begin(ctx context.Context, scope, key string) (replayID string, claimed bool, err error) {
	if key == "" {
		return "", false, nil
	}
	id, claimed, err := i.store.Claim(ctx, scope, key)
	if err != nil {
		i.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed, creating anyway")
		return "", false, nil
	}
	if claimed {
		return "", true, nil
	}
	if id == "" {
		return "", false, fmt.Errorf("%w: a request with this key is still in progress", domain.ErrIdempotencyConflict)
	}
	return id, false, nil
}

// finish records resourceID under a claimed key, or releases the claim when
// the create failed.
func (i idempotency) finish(ctx context.Context, scope, key, resourceID string, createErr error) {
	if createErr != nil {
		if err := i.store.Release(ctx, scope, key); err != nil {
			i.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
		}
		return
	}
	if err := i.store.Complete(ctx, scope, key, resourceID); err != nil {
		i.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to record idempotency key")
	}
}

type noopIdempotency struct{}

func (noopIdempotency) Claim(context.Context, string, string) (string, bool, error) {
	return "", true, nil
}

func (noopIdempotency) Complete(context.Context, string, string, string) error { return nil }

func (noopIdempotency) Release(context.Context, string, string) error { return nil }
