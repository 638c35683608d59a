// Package cache provides content-addressed caching for lineage traces,
// settled layouts and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: JSON files under the XDG cache directory (CLI default)
//   - [RedisCache]: shared cache for multiple lens serve replicas
//   - [MongoCache]: persistent cache with a TTL index
//   - [NullCache]: disables caching
//
// # Keys
//
// Keys are produced by a [Keyer] from content hashes and the options that
// influence the result, so a key never needs explicit invalidation:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(graphHash, cache.LayoutKeyOpts{Width: 800, Height: 600, Seed: 42})
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads by key.
//
// Get reports a miss with (nil, false, nil); errors are reserved for
// backend failures. A ttl of zero means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per entry type.
const (
	TTLLineage  = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)
