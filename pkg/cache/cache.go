// Package cache stores rendered artifacts keyed by scene structure.
//
// # Overview
//
// Rendering a large scene through Graphviz is slow compared to everything
// else the tools do, and the output depends only on the scene's structure
// and the render options. Artifacts are therefore cached under a key derived
// from the scene's structural hash (see scene.Graph.Hash) plus the options.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one file per entry below a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for teams rendering the same scenes
//   - [NullCache]: never stores anything (caching disabled)
//
// # Keys
//
// A [Keyer] turns a scene hash and options into a key. Wrap it with
// [NewScopedKeyer] to give a deployment its own namespace.
//
// # Errors
//
// Backend failures that may succeed on a second attempt (connection resets,
// timeouts) are wrapped with [Retryable]; use [RetryWithBackoff] to retry
// them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
