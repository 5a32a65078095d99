// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// TypedCache stores JSON-encoded values of type T in a Cache.
//
// Delete bumps a generation counter. GetOrLoad stores a loaded value only if
// no Delete happened while it was loading, so an invalidation racing a load
// never leaves the pre-invalidation value cached.
type TypedCache[T any] struct {
	cache Cache
	ttl   time.Duration

	mu  sync.Mutex
	gen uint64
}

// NewTypedCache wraps c. A zero ttl uses the cache default.
func NewTypedCache[T any](c Cache, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: c, ttl: ttl}
}

// Get returns the value and true if a decodable entry exists.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}

// Set encodes and stores value.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, c.ttl)
}

// Delete removes key and discards values still being loaded.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.cache.Delete(ctx, key)
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Cache write failures are logged; the loaded value is still returned.
func (c *TypedCache[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		slog.DebugContext(ctx, "cache invalidated during load, not storing", "key", key)
		return value, nil
	}
	if err := c.Set(ctx, key, value); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return value, nil
}
