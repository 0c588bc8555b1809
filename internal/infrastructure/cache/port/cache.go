package port

import (
	"context"
	"time"
)

// Cache is the minimal key-value contract used by the application.
// Implementations must be concurrency-safe and honor ctx for timeouts.
// Values are plain strings; callers own any encoding.
type Cache interface {
	// Get returns ErrMiss when key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss signals a cache miss, distinct from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
