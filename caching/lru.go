package caching

import (
	"fmt"
	"iter"
)

// OnEvictFunc is a function that is called when an entry is evicted from the cache.
type OnEvictFunc[K comparable, V any] func(key K, value V)

// Option configures a [Cache] at construction time.
type Option[K comparable, V any] func(*Cache[K, V])

// WithOnEvict sets the eviction callback of a new cache.
func WithOnEvict[K comparable, V any](f OnEvictFunc[K, V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = f
	}
}

// Cache is a fixed-size LRU cache.
//
// Cache is not safe for concurrent use. Wrap it in [Synced] or guard every
// logical operation (including get-then-set sequences) with a lock.
// A Cache must be created with [New] or [MustNew]; the zero value is not ready for use.
type Cache[K comparable, V any] struct {
	capacity int
	items    map[K]*entry[K, V]
	head     *entry[K, V] // least recently used
	tail     *entry[K, V] // most recently used
	onEvict  OnEvictFunc[K, V]
}

// entry is an intrusive doubly-linked list node.
type entry[K comparable, V any] struct {
	key  K
	val  V
	prev *entry[K, V]
	next *entry[K, V]
}

// New creates a new LRU cache with the given capacity.
// The capacity must be greater than zero; it is never clamped.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidCapacity, capacity)
	}

	c := &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*entry[K, V], capacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MustNew creates a new LRU cache with the given capacity.
// It panics if the capacity is less than or equal to zero.
func MustNew[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	cache, err := New(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return cache
}

// Get retrieves a value from the cache by key.
// A hit always marks the entry as most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, found := c.items[key]
	if !found {
		var zero V
		return zero, false
	}

	c.moveToBack(e)
	return e.val, true
}

// GetOrDefault returns the value for key, or def if the key is not present.
// A miss leaves the recency order untouched.
func (c *Cache[K, V]) GetOrDefault(key K, def V) V {
	if val, found := c.Get(key); found {
		return val
	}
	return def
}

// Peek retrieves a value from the cache by key without updating its position
// in the LRU list.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	e, found := c.items[key]
	if !found {
		var zero V
		return zero, false
	}
	return e.val, true
}

// Set adds or updates an item in the cache and marks it as most recently used.
//
// If the key is new and the cache is full, the least recently used entry is
// removed and handed to the eviction callback before the new entry is linked.
// Should the callback panic, the evicted entry stays removed and the new one
// is not admitted.
func (c *Cache[K, V]) Set(key K, value V) {
	if e, found := c.items[key]; found {
		e.val = value
		c.moveToBack(e)
		return
	}

	if len(c.items) >= c.capacity {
		if oldest := c.head; oldest != nil {
			c.unlink(oldest)
			delete(c.items, oldest.key)
			c.evict(oldest.key, oldest.val)
		}
	}

	e := &entry[K, V]{key: key, val: value}
	c.pushBack(e)
	c.items[key] = e
}

// Delete removes an item from the cache by key and passes it to the eviction
// callback. It returns whether the key was found.
func (c *Cache[K, V]) Delete(key K) bool {
	e, found := c.items[key]
	if !found {
		return false
	}

	c.unlink(e)
	delete(c.items, key)
	c.evict(e.key, e.val)
	return true
}

// Clear removes all items from the cache.
// When invokeCallback is true, the eviction callback receives every removed
// entry, least recently used first. The cache is already empty by then.
func (c *Cache[K, V]) Clear(invokeCallback bool) {
	first := c.head

	c.items = make(map[K]*entry[K, V], c.capacity)
	c.head = nil
	c.tail = nil

	if !invokeCallback || c.onEvict == nil {
		return
	}
	for e := first; e != nil; e = e.next {
		c.onEvict(e.key, e.val)
	}
}

// Len returns the current number of items in the cache.
func (c *Cache[K, V]) Len() int {
	return len(c.items)
}

// Contains checks if a key exists in the cache without updating its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, found := c.items[key]
	return found
}

// Keys returns all keys from least to most recently used.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.items))
	for e := c.head; e != nil; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Values returns all values from least to most recently used.
func (c *Cache[K, V]) Values() []V {
	values := make([]V, 0, len(c.items))
	for e := c.head; e != nil; e = e.next {
		values = append(values, e.val)
	}
	return values
}

// All returns an iterator over the entries from least to most recently used.
// Iterating does not change the recency order. The cache must not be modified
// during iteration.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for e := c.head; e != nil; e = e.next {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// Capacity returns the maximum capacity of the cache.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// OnEvict replaces the eviction callback. Passing nil disables it.
func (c *Cache[K, V]) OnEvict(f OnEvictFunc[K, V]) {
	c.onEvict = f
}

func (c *Cache[K, V]) evict(key K, val V) {
	if c.onEvict != nil {
		c.onEvict(key, val)
	}
}

// moveToBack marks an entry as most recently used.
func (c *Cache[K, V]) moveToBack(e *entry[K, V]) {
	if c.tail == e {
		return
	}
	c.unlink(e)
	c.pushBack(e)
}

func (c *Cache[K, V]) pushBack(e *entry[K, V]) {
	e.next = nil
	e.prev = c.tail
	if c.tail != nil {
		c.tail.next = e
	}
	c.tail = e
	if c.head == nil {
		c.head = e
	}
}

func (c *Cache[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}
