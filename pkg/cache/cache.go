// Package cache stores rendered skyline frames.
//
// A frame is fully determined by the snapshot it was drawn from, the
// animation counter, the focused entity and the output format, so
// [Keyer.FrameKey] builds a key from exactly those. Snapshots are never
// edited in place, which means cached frames never go stale; the TTL only
// bounds how much disk or memory old snapshots occupy.
//
// Three backends implement [Cache]:
//
//   - [NullCache] stores nothing
//   - [FileCache] keeps one JSON file per entry under a directory
//   - [RedisCache] shares frames between several server replicas
//
// [GetOrRender] is the read-through helper the server uses; it reports
// hits, misses and writes to the registered observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
