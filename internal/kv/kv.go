// Package kv defines the TTL-capable key-value store used for short-lived tokens,
// with Redis and in-memory backends.
package kv

import (
	"context"
	"time"
)

// Store is a string key-value store with per-key expiry.
// A zero ttl means the key never expires.
type Store interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
