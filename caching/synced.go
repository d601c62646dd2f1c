package caching

import "sync"

// Synced is a thread-safe LRU cache built on [Cache].
//
// Eviction callbacks are collected while the internal lock is held and invoked
// after it is released, so a callback may call back into the cache. Callbacks
// may run concurrently from multiple goroutines and must be safe for concurrent use.
type Synced[K comparable, V any] struct {
	mu      sync.Mutex
	cache   *Cache[K, V]
	onEvict OnEvictFunc[K, V]
	pending []evicted[K, V]
	flights flightGroup[K]
}

type evicted[K comparable, V any] struct {
	key K
	val V
}

// NewSynced creates a new thread-safe LRU cache with the given capacity.
// The capacity must be greater than zero.
func NewSynced[K comparable, V any](capacity int, opts ...Option[K, V]) (*Synced[K, V], error) {
	cache, err := New(capacity, opts...)
	if err != nil {
		return nil, err
	}

	s := &Synced[K, V]{
		cache:   cache,
		onEvict: cache.onEvict,
	}
	cache.OnEvict(s.enqueue)
	return s, nil
}

// MustNewSynced is like [NewSynced] but panics if the capacity is invalid.
func MustNewSynced[K comparable, V any](capacity int, opts ...Option[K, V]) *Synced[K, V] {
	s, err := NewSynced(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// enqueue runs with mu held.
func (s *Synced[K, V]) enqueue(key K, val V) {
	if s.onEvict != nil {
		s.pending = append(s.pending, evicted[K, V]{key: key, val: val})
	}
}

// unlock releases mu and delivers evictions queued while it was held.
func (s *Synced[K, V]) unlock() {
	queued := s.pending
	s.pending = nil
	onEvict := s.onEvict
	s.mu.Unlock()

	for _, e := range queued {
		onEvict(e.key, e.val)
	}
}

// Get retrieves a value from the cache by key and marks it as most recently used.
func (s *Synced[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(key)
}

// GetOrDefault returns the value for key, or def if the key is not present.
func (s *Synced[K, V]) GetOrDefault(key K, def V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.GetOrDefault(key, def)
}

// Peek retrieves a value without updating its position in the LRU list.
func (s *Synced[K, V]) Peek(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Peek(key)
}

// Set adds or updates an item in the cache.
func (s *Synced[K, V]) Set(key K, value V) {
	s.mu.Lock()
	s.cache.Set(key, value)
	s.unlock()
}

// GetOrSet retrieves a value from the cache by key, or computes and sets it if not present.
// The compute function runs outside the lock. If multiple goroutines miss the
// same key concurrently, compute may be called more than once; the first
// stored result wins.
func (s *Synced[K, V]) GetOrSet(key K, compute func() (V, error)) (V, error) {
	if val, found := s.Get(key); found {
		return val, nil
	}

	val, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	return s.setIfAbsent(key, val), nil
}

// GetOrSetSingleflight is like [Synced.GetOrSet], but concurrent misses for
// the same key share a single call to compute.
func (s *Synced[K, V]) GetOrSetSingleflight(key K, compute func() (V, error)) (V, error) {
	if val, found := s.Get(key); found {
		return val, nil
	}

	result, err := s.flights.do(key, func() (any, error) {
		// another flight may have stored it since the first check
		if val, found := s.Get(key); found {
			return val, nil
		}

		val, err := compute()
		if err != nil {
			return nil, err
		}
		return s.setIfAbsent(key, val), nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	val, _ := result.(V)
	return val, nil
}

// setIfAbsent stores val unless another caller stored key first, and returns
// whichever value ends up cached.
func (s *Synced[K, V]) setIfAbsent(key K, val V) V {
	s.mu.Lock()
	if existing, found := s.cache.Get(key); found {
		s.mu.Unlock()
		return existing
	}
	s.cache.Set(key, val)
	s.unlock()
	return val
}

// Delete removes an item by key and passes it to the eviction callback.
func (s *Synced[K, V]) Delete(key K) bool {
	s.mu.Lock()
	found := s.cache.Delete(key)
	s.unlock()
	return found
}

// Clear removes all items, optionally passing each to the eviction callback.
func (s *Synced[K, V]) Clear(invokeCallback bool) {
	s.mu.Lock()
	s.cache.Clear(invokeCallback)
	s.unlock()
}

// Len returns the current number of items in the cache.
func (s *Synced[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// Contains checks if a key exists without updating its recency.
func (s *Synced[K, V]) Contains(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Contains(key)
}

// Keys returns a snapshot of all keys from least to most recently used.
func (s *Synced[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Keys()
}

// Capacity returns the maximum capacity of the cache.
func (s *Synced[K, V]) Capacity() int {
	return s.cache.Capacity()
}

// OnEvict replaces the eviction callback. Passing nil disables it.
func (s *Synced[K, V]) OnEvict(f OnEvictFunc[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = f
}
