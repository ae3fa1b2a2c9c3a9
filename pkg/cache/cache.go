// Package cache provides pluggable storage for computed layouts and
// rendered artifacts.
//
// Layouts are pure functions of their input document and options, so the
// pipeline keys each result by a content hash and skips recomputation when
// the same document is laid out again. Edge bundling makes this worthwhile:
// a converged simulation can take hundreds of ticks.
//
// # Implementations
//
//   - [FileCache] stores entries as JSON files below a directory (CLI).
//   - [MemoryCache] keeps entries in process memory (tests, watch mode).
//   - [NullCache] never stores anything (caching disabled).
//
// Wrap any of them with [Observe] to report hits, misses and writes to
// the hooks registered in the observability package.
//
// # Keys
//
// A [Keyer] derives keys from content hashes and option structs. Use
// [NewScopedKeyer] to isolate namespaces that share one cache.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key.
//
// Get returns hit=false with a nil error for missing or expired entries.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLs applied by the pipeline. Zero means the entry never expires.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
