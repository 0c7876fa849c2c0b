// ABOUTME: In-memory LRU cache with TTL refresh-on-read semantics
// ABOUTME: Bounded capacity; eviction removes the least recently read entry

package memory

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultMaxEntries caps the cache when no explicit capacity is configured
const DefaultMaxEntries = 500

// entry is one cached value with its expiration
type entry struct {
	key        string
	value      []byte
	ttl        time.Duration
	expiration time.Time
	noExpire   bool
}

// MemoryCache implements the Cache interface with an LRU eviction policy.
// Reading an entry refreshes both its recency and its TTL, so hot results
// stay alive under sustained traffic.
type MemoryCache struct {
	mu         sync.Mutex
	order      *list.List // front = most recently used
	items      map[string]*list.Element
	maxEntries int
}

// NewMemoryCache creates a cache holding at most maxEntries values;
// zero or negative selects DefaultMaxEntries.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		order:      list.New(),
		items:      make(map[string]*list.Element),
		maxEntries: maxEntries,
	}
}

// Get retrieves a value, refreshing its recency and TTL
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, errors.New("key not found")
	}

	e := elem.Value.(*entry)
	if !e.noExpire && time.Now().After(e.expiration) {
		c.removeLocked(elem)
		return nil, errors.New("key not found")
	}

	if !e.noExpire {
		e.expiration = time.Now().Add(e.ttl)
	}
	c.order.MoveToFront(elem)

	result := make([]byte, len(e.value))
	copy(result, e.value)
	return result, nil
}

// Set stores a value; at capacity the least recently used entry is evicted
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		e.value = valueCopy
		e.ttl = ttl
		e.noExpire = ttl == 0
		if ttl > 0 {
			e.expiration = time.Now().Add(ttl)
		}
		c.order.MoveToFront(elem)
		return nil
	}

	if c.order.Len() >= c.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	e := &entry{
		key:      key,
		value:    valueCopy,
		ttl:      ttl,
		noExpire: ttl == 0,
	}
	if ttl > 0 {
		e.expiration = time.Now().Add(ttl)
	}
	c.items[key] = c.order.PushFront(e)

	return nil
}

// Delete removes a key from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeLocked(elem)
	}
	return nil
}

// Len returns the current number of entries, expired ones included until
// their next read.
func (c *MemoryCache) Len(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *MemoryCache) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(c.items, e.key)
	c.order.Remove(elem)
}
