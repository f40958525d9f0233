package services

import (
	"context"
	"encoding/json"
	"time"
)

// IdempotencyStore deduplicates externally-triggered operations. The stored
// value is the serialized response of the first execution; entries expire so
// a duplicate external event is only deduplicated within the TTL window.
type IdempotencyStore interface {
	// Get returns the stored response for a key, with found=false on a miss
	// (an expired entry is a miss).
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)

	// Put stores the response under the key if absent. Returns false when an
	// entry already existed, in which case the store is left untouched.
	Put(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) (bool, error)

	Close() error
}
