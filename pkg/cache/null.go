package cache

import (
	"context"
	"time"
)

// NullCache misses every read and drops every write. The CLI falls back to
// it for --no-cache, for the "none" backend and when the configured
// backend cannot be opened, so rendering never depends on the cache.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
