// Package cache stores rendered artifacts and parsed profiles by key.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for servers sharing renders, and [NullCache] when caching is disabled.
// Keys are derived by a [Keyer] from a content hash of the profile and the
// options that affect the output, so any change invalidates naturally.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is reported with ok false and
	// a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry type.
const (
	TreeTTL     = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
	MinimapTTL  = 24 * time.Hour
)
