// Package cache is a small JSON key/value store with expiry, backed by Redis
// in production and by memory in tests and single-process setups.
package cache

import (
	"context"
	"time"
)

// Store is implemented by Redis and Memory.
type Store interface {
	// Get unmarshals the value at key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// Driver names the backend for logs and metrics.
	Driver() string
}
