// ABOUTME: Thread-safe keyed cache with optional TTL expiration
// ABOUTME: GetOrCompute collapses concurrent misses for one key into a single computation

package cache

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	data      V
	expiresAt time.Time // zero means never expires
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache stores values by string key. A zero TTL keeps entries forever.
type Cache[V any] struct {
	mu    sync.RWMutex
	store map[string]entry[V]
	ttl   time.Duration
	group singleflight.Group
	done  chan struct{}
	once  sync.Once
}

// New creates a cache. With a positive TTL an entry expires that long after
// its Set; hits do not extend it. A background sweep removes expired entries
// until Close is called.
func New[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		store: make(map[string]entry[V]),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	if ttl > 0 {
		go c.startCleanup(sweepInterval(ttl))
	}
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		slog.Debug("Cache miss", "key", key)
		var zero V
		return zero, false
	}

	if now := time.Now(); e.expired(now) {
		c.removeExpired(key, now)
		slog.Debug("Cache expired", "key", key)
		var zero V
		return zero, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.store[key] = c.newEntry(value)
	c.mu.Unlock()
	slog.Debug("Cache set", "key", key, "ttl", c.ttl)
}

// GetOrCompute returns the cached value for key, or runs compute once and
// stores its result. Concurrent callers for the same key share one compute call.
// Errors are returned to every waiting caller and nothing is stored.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have stored the value between Get and Do
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	if shared {
		slog.Debug("Cache compute shared", "key", key)
	}
	return v.(V), nil
}

func (c *Cache[V]) Clear(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// removeExpired deletes key only if the stored entry is still expired, so a
// value Set after the caller's read survives.
func (c *Cache[V]) removeExpired(key string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.store[key]; ok && e.expired(now) {
		delete(c.store, key)
	}
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the background sweep. Safe to call more than once.
func (c *Cache[V]) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache[V]) newEntry(value V) entry[V] {
	e := entry[V]{data: value}
	if c.ttl > 0 {
		e.expiresAt = time.Now().Add(c.ttl)
	}
	return e
}

func (c *Cache[V]) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.store {
				if e.expired(now) {
					delete(c.store, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// sweepInterval is one minute, or the TTL itself when that is shorter.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	return time.Minute
}
