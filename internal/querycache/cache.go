// Package querycache is the client-side read cache. Reads are keyed by
// resource family plus canonicalized parameters, served from cache inside
// a per-family staleness window, de-duplicated with singleflight while a
// fetch is in flight, and invalidated through a static dependency table
// when a mutation succeeds.
package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key identifies one cache entry. Scope carries the owning resource ID for
// families keyed per animal, so invalidation can target one animal's
// entries across all parameter combinations.
type Key struct {
	Family string
	Scope  string
	Params string
}

func (k Key) String() string { return k.Family + "|" + k.Scope + "|" + k.Params }

// NewKey builds a key from a family name and arbitrary parameters. The
// parameters are canonicalized (object keys sorted) so equivalent parameter
// sets map to the same key regardless of field order.
func NewKey(family string, params any) Key {
	return Key{Family: family, Params: canonicalize(params)}
}

// NewScopedKey builds a key for a family whose entries belong to one
// resource (e.g. an animal's care history pages).
func NewScopedKey(family, scope string, params any) Key {
	return Key{Family: family, Scope: scope, Params: canonicalize(params)}
}

// canonicalize renders params as JSON with deterministic object key order.
func canonicalize(params any) string {
	if params == nil {
		return ""
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("!%v", params)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}
	var b strings.Builder
	writeCanonical(&b, generic)
	return b.String()
}

func writeCanonical(b *strings.Builder, v any) {
	switch vv := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kj, _ := json.Marshal(k)
			b.Write(kj)
			b.WriteByte(':')
			writeCanonical(b, vv[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, e := range vv {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, e)
		}
		b.WriteByte(']')
	default:
		raw, _ := json.Marshal(vv)
		b.Write(raw)
	}
}

type entry struct {
	data      any
	fetchedAt time.Time
	stale     bool
}

// Cache is the shared read-through cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	group   singleflight.Group
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option { return func(c *Cache) { c.log = log } }

// New builds an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]*entry),
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lookup returns the entry and whether it is fresh for the given ttl.
func (c *Cache) lookup(key Key, ttl time.Duration) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	fresh := !e.stale && c.now().Sub(e.fetchedAt) < ttl
	return e, fresh
}

// Fetch serves key from cache when fresh, otherwise runs fn exactly once
// for all concurrent callers of the same key and caches a successful
// result. A failed fetch leaves any previous entry in place (stale, not
// poisoned) so a later read can retry.
func (c *Cache) Fetch(ctx context.Context, key Key, ttl time.Duration, fn func(ctx context.Context) (any, error)) (any, error) {
	if e, fresh := c.lookup(key, ttl); fresh {
		return e.data, nil
	}

	v, err, shared := c.group.Do(key.String(), func() (any, error) {
		// Re-check: another caller may have refreshed while we queued.
		if e, fresh := c.lookup(key, ttl); fresh {
			return e.data, nil
		}
		data, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = &entry{data: data, fetchedAt: c.now()}
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		c.log.Debug("fetch failed, keeping stale entry",
			zap.String("key", key.String()), zap.Bool("shared", shared), zap.Error(err))
		return nil, err
	}
	return v, nil
}

// Fetch is the typed read-through helper.
func Fetch[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// InvalidateFamily marks every entry of the family stale.
func (c *Cache) InvalidateFamily(family string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if k.Family == family {
			e.stale = true
		}
	}
}

// InvalidateKey marks one exact entry stale.
func (c *Cache) InvalidateKey(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
}

// InvalidateScope marks every entry of the family belonging to scope stale.
func (c *Cache) InvalidateScope(family, scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if k.Family == family && k.Scope == scope {
			e.stale = true
		}
	}
}

// Peek reports whether the cache currently holds a fresh entry for key.
func (c *Cache) Peek(key Key, ttl time.Duration) bool {
	_, fresh := c.lookup(key, ttl)
	return fresh
}

// Len returns the number of entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
