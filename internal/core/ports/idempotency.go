package ports

import "context"

// IdempotencyStore remembers which resource a client-supplied
// Idempotency-Key produced, so a retried create returns the same resource.
// A key is claimed before the resource is created; concurrent requests with
// the same key never both create.
type IdempotencyStore interface {
	// Claim reserves key within scope. When the key is already taken it
	// returns claimed=false and the recorded resource id, which is empty while
	// the request holding the claim has not completed yet.
	Claim(ctx context.Context, scope, key string) (resourceID string, claimed bool, err error)
	// Complete records the resource created under a claimed key.
	Complete(ctx context.Context, scope, key, resourceID string) error
	// Release drops a claim whose create failed, so the client may retry.
	Release(ctx context.Context, scope, key string) error
}
