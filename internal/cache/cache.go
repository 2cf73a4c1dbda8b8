package cache

import (
	"container/list"
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Option configures a Cache.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces time.Now.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Expired   uint64 `json:"expired"`
}

type entry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// Cache maps keys to values that expire after a TTL.
//
// Cache is safe for concurrent use by multiple goroutines. Values are stored
// and returned as is; callers must not mutate a value after storing it.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        Clock
	order      *list.List
	items      map[K]*list.Element
	stats      Stats
}

// New creates an empty cache.
//
// Parameters:
//   - ttl: How long a stored value stays valid.
//   - maxEntries: Upper bound on stored values. Values below 1 are treated as 1.
//   - opts: Optional settings such as WithClock.
func New[K comparable, V any](ttl time.Duration, maxEntries int, opts ...Option) *Cache[K, V] {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache[K, V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        o.clock,
		order:      list.New(),
		items:      make(map[K]*list.Element),
	}
}

// Get returns the value for key if present and not expired.
//
// An expired entry is removed on access and reported as a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}

	e := el.Value.(*entry[K, V])
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.removeElement(el)
		c.stats.Expired++
		c.stats.Misses++
		return zero, false
	}

	c.order.MoveToFront(el)
	c.stats.Hits++
	return e.value, true
}

// Set stores value under key, replacing any previous value and restarting
// its TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.storedAt = now
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, storedAt: now})
	for c.order.Len() > c.maxEntries {
		c.removeElement(c.order.Back())
		c.stats.Evictions++
	}
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// Clear removes every entry and returns how many were removed.
func (c *Cache[K, V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.order.Len()
	c.order.Init()
	c.items = make(map[K]*list.Element)
	return n
}

// Len returns the number of stored entries, including expired ones not yet
// accessed.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = c.order.Len()
	return s
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}
