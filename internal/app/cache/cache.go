// Package cache provides the short-TTL read cache in front of the rank
// table. A miss is reported as a nil payload rather than an error so callers
// can treat cache trouble and cache absence the same way: fall through to
// the durable store.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized read-path snapshots under string keys with a TTL.
type Cache interface {
	// Get returns the payload stored under key, or nil when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl. Byte slices and strings are
	// stored as-is; other values are JSON-encoded.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
