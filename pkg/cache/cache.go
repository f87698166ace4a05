// Package cache provides a thread-safe LRU cache keyed by xxh3 hashes.
//
// gojexp uses it for compiled programs, where the key combines the source
// text with the compile options, and for compiled regular expressions.
//
// # Example
//
//	c := cache.New[[]*types.Expression](1024)
//	prog, err := c.GetOrCompile(cache.NewKey("x + 1", "simple"), compile)
package cache

import (
	"container/list"
	"encoding/binary"
	"sync"

	"github.com/zeebo/xxh3"
)

// Key identifies a cache entry. Hash selects the slot and ID must match for
// a hit, so two keys whose hashes collide never share a value.
type Key struct {
	Hash uint64
	ID   string
}

// NewKey builds the key of the parts. Parts are length-prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func NewKey(parts ...string) Key {
	n := 0
	for _, p := range parts {
		n += 8 + len(p)
	}
	buf := make([]byte, 0, n)
	for _, p := range parts {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(p)))
		buf = append(buf, p...)
	}
	return Key{Hash: xxh3.Hash(buf), ID: string(buf)}
}

type entry[V any] struct {
	key   Key
	value V
}

// Cache is a thread-safe LRU (Least Recently Used) cache.
// Once the capacity is reached, the least recently accessed entry is evicted.
type Cache[V any] struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[uint64]*list.Element

	hits, misses uint64
}

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// New creates a new LRU cache with the given capacity.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element, capacity),
	}
}

// lookupLocked returns the element holding key, or nil when the slot is
// empty or holds a colliding key.
func (c *Cache[V]) lookupLocked(key Key) *list.Element {
	el, ok := c.items[key.Hash]
	if !ok || el.Value.(*entry[V]).key.ID != key.ID {
		return nil
	}
	return el
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[V]) Get(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el := c.lookupLocked(key)
	if el == nil {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.ll.MoveToFront(el)
	return el.Value.(*entry[V]).value, true
}

// Set inserts or replaces a value, evicting the least recently used entry
// when the cache is full.
// A colliding key takes over the slot.
func (c *Cache[V]) Set(key Key, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key.Hash]; ok {
		el.Value = &entry[V]{key: key, value: value}
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[key.Hash] = c.ll.PushFront(&entry[V]{key: key, value: value})
}

// GetOrCompile returns the cached value for key, or calls compile, caches
// its result and returns it. Errors are not cached.
func (c *Cache[V]) GetOrCompile(key Key, compile func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compile()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Stats returns the number of hits and misses observed by Get.
func (c *Cache[V]) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Invalidate removes a single entry.
func (c *Cache[V]) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el := c.lookupLocked(key); el != nil {
		c.ll.Remove(el)
		delete(c.items, key.Hash)
	}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[uint64]*list.Element, c.capacity)
}

func (c *Cache[V]) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key.Hash)
}
