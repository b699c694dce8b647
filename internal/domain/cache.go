package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value port used for study sessions, flow results and
// embeddings. The API server backs it with Redis, the CLI with a bbolt file.
type Cache interface {
	// Get returns ErrCacheMiss if the key is missing or expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. An expiration of 0 keeps the item until deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete does not fail when the key is absent.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error

	// Expire resets the time to live of an existing key.
	Expire(ctx context.Context, key string, expiration time.Duration) error
}
