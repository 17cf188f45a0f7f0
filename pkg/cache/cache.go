package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when a key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// DedupCache is the shared store behind alert deduplication. CheckAndSet is
// the only operation intake depends on for correctness: it must atomically
// test for a live entry and create one when absent, so that concurrent
// submissions of the same fingerprint observe exactly one insertion.
type DedupCache interface {
	// CheckAndSet creates key with the given TTL if no live entry exists.
	// Returns true when this call created the entry (first sight), false
	// when a live entry was already present.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error)

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	HealthCheck(ctx context.Context) error
}
