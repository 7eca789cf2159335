/*
Package cache is a small TTL cache with lazy expiry.

Entries expire a fixed lifetime after they were written. Nothing sweeps in the
background: a stale entry stays in memory until the next lookup of its key, which
reports the miss and purges it.
*/
package cache

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/krisalay/kiro/expiration"
	"github.com/krisalay/kiro/logger"
	"github.com/krisalay/kiro/types"
)

/*
Cache maps string keys to values of type V.

Every entry carries its own lifetime, taken from the cache default unless the
caller supplies one on write. A single mutex guards the entry map, so one Cache may
be shared by several goroutines. Resolvers run outside the lock and concurrent misses
on one key share a single resolver call.
*/
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*types.Entry

	// lifetime is the default for writes and reads that do not name one.
	lifetime time.Duration

	expiration expiration.Strategy
	metrics    types.Metrics
	log        *logger.Logger
	now        func() time.Time

	// sf collapses concurrent resolver calls for the same key into one.
	sf singleflight.Group
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	expiration expiration.Strategy
	metrics    types.Metrics
	log        *logger.Logger
	now        func() time.Time
}

// WithClock replaces time.Now. Tests use it to move time without sleeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics reports hits, misses, expirations and resolver calls to m.
func WithMetrics(m types.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger logs cache traffic at debug level.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithExpiration swaps the expiration rule.
func WithExpiration(s expiration.Strategy) Option {
	return func(o *options) { o.expiration = s }
}

// New creates an empty cache whose entries live for lifetime unless told otherwise.
func New[V any](lifetime time.Duration, opts ...Option) *Cache[V] {
	o := options{
		expiration: expiration.Lifetime{},
		metrics:    types.NoopMetrics{},
		log:        logger.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[V]{
		entries:    make(map[string]*types.Entry),
		lifetime:   lifetime,
		expiration: o.expiration,
		metrics:    o.metrics,
		log:        o.log,
		now:        o.now,
	}
}

/*
Set stores value under key with the default lifetime.
*/
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithLifetime(key, value, 0)
}

/*
SetWithLifetime stores value under key. A non-positive lifetime means the cache default.
Any previous entry is replaced and its clock restarts.
*/
func (c *Cache[V]) SetWithLifetime(key string, value V, lifetime time.Duration) {
	if lifetime <= 0 {
		lifetime = c.lifetime
	}

	ent := &types.Entry{
		Key:      key,
		Value:    value,
		Lifetime: lifetime,
	}
	c.expiration.OnWrite(ent, c.now())

	c.mu.Lock()
	c.entries[key] = ent
	c.mu.Unlock()

	c.log.Debug("set %q for %v", key, lifetime)
}

/*
Delete removes key. Deleting a key that is not there is a no-op.
*/
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.log.Debug("delete %q", key)
}

/*
GetOrRaise returns the live value stored under key, measured against the entry's
own lifetime.

ERRORS:
-------
- ErrMiss    : nothing stored under key
- ErrTimeout : an entry exists but expired; it is deleted before returning
*/
func (c *Cache[V]) GetOrRaise(key string) (V, error) {
	return c.GetOrRaiseWithin(key, 0)
}

/*
GetOrRaiseWithin is GetOrRaise measured against lifetime instead of the entry's own.
A non-positive lifetime means the entry's own.
*/
func (c *Cache[V]) GetOrRaiseWithin(key string, lifetime time.Duration) (V, error) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.metrics.Miss()
		c.log.Debug("miss %q", key)
		return zero, fmt.Errorf("%w: %q", ErrMiss, key)
	}

	now := c.now()
	if c.expiration.IsExpired(ent, lifetime, now) {
		delete(c.entries, key)
		c.metrics.Expire()
		c.metrics.Miss()
		c.log.Debug("timeout %q after %v, deleted", key, ent.Age(now))
		return zero, fmt.Errorf("%w: %q", ErrTimeout, key)
	}

	c.log.Debug("hit %q, last read %v ago", key, now.Sub(ent.LastAccessedAt))
	c.expiration.OnAccess(ent, now)
	c.metrics.Hit()
	return valueOf[V](ent.Value), nil
}

/*
GetOrResolve returns the cached value for key, calling resolver on a miss and
storing what it returns with the default lifetime.
*/
func (c *Cache[V]) GetOrResolve(key string, resolver types.Resolver) (V, error) {
	return c.GetOrResolveWithin(key, resolver, 0, 0)
}

/*
GetOrResolveWithin is the full read-through lookup.

BEHAVIOR:
---------
1. A hit (checked against lifetime) returns immediately; resolver is not called.
2. On any miss, absent or expired, resolver.Resolve(key) is called once.
3. The result is stored with itemLifetime, falling back to lifetime, then to the default.
4. A resolver error is returned as is and nothing is stored.

Concurrent callers missing on the same key wait for one shared resolver call.
*/
func (c *Cache[V]) GetOrResolveWithin(key string, resolver types.Resolver, lifetime, itemLifetime time.Duration) (V, error) {
	if v, err := c.GetOrRaiseWithin(key, lifetime); err == nil {
		return v, nil
	}

	if itemLifetime <= 0 {
		itemLifetime = lifetime
	}

	c.log.Debug("resolving %q", key)
	val, err, _ := c.sf.Do(key, func() (any, error) {
		c.metrics.Resolve()
		v, err := resolver.Resolve(key)
		if err != nil {
			return nil, err
		}
		typed, ok := v.(V)
		if !ok && v != nil {
			return nil, fmt.Errorf("resolver for %q returned %T", key, v)
		}
		c.SetWithLifetime(key, typed, itemLifetime)
		return typed, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return valueOf[V](val), nil
}

// valueOf unwraps v, mapping a nil interface to the zero V.
func valueOf[V any](v any) V {
	typed, _ := v.(V)
	return typed
}

/*
Get is GetOrRaise without the error: the second return is false on any miss.
*/
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.GetWithin(key, 0)
}

// GetWithin is Get measured against lifetime.
func (c *Cache[V]) GetWithin(key string, lifetime time.Duration) (V, bool) {
	v, err := c.GetOrRaiseWithin(key, lifetime)
	return v, err == nil
}

// Len counts stored entries, stale ones included until they are next looked up.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

/*
Clear drops every entry. Tests call it between cases so one case never sees another's data.
*/
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*types.Entry)
	c.mu.Unlock()

	c.log.Debug("cleared")
}
