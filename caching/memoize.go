package caching

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// store is the backing storage of a [Memoized] function.
// Implementations need not be safe for concurrent use.
type store[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K) bool
	Clear(invokeCallback bool)
	Len() int
}

// mapStore is an unbounded store.
type mapStore[K comparable, V any] map[K]V

func (m mapStore[K, V]) Get(key K) (V, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapStore[K, V]) Set(key K, value V) { m[key] = value }

func (m mapStore[K, V]) Delete(key K) bool {
	_, ok := m[key]
	delete(m, key)
	return ok
}

func (m mapStore[K, V]) Clear(bool) { clear(m) }

func (m mapStore[K, V]) Len() int { return len(m) }

type memoEntry[V any] struct {
	val      V
	storedAt time.Time
}

type memoizeOptions struct {
	logger  *slog.Logger
	timeNow func() time.Time
}

// MemoizeOption configures a [Memoized] function.
type MemoizeOption func(*memoizeOptions)

// WithLogger sets the logger used to report compute failures and expirations
// at debug level. By default nothing is logged.
func WithLogger(logger *slog.Logger) MemoizeOption {
	return func(o *memoizeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimeNowFunc replaces the clock used for TTL bookkeeping.
// This is primarily useful for testing. Passing nil keeps time.Now.
func WithTimeNowFunc(f func() time.Time) MemoizeOption {
	return func(o *memoizeOptions) {
		if f != nil {
			o.timeNow = f
		}
	}
}

// Memoized caches the results of a single-argument function.
// Functions of several arguments can use a comparable struct as K.
// Errors are never cached. Memoized is safe for concurrent use, and
// concurrent misses for the same key share one call to the function.
type Memoized[K comparable, V any] struct {
	fn      func(K) (V, error)
	ttl     time.Duration // zero means no expiry
	timeNow func() time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	store   store[K, memoEntry[V]]
	gen     uint64 // bumped by Forget and Clear
	flights flightGroup[K]
}

// Memoize caches every result of fn for the lifetime of the returned value,
// or until [Memoized.Clear] or [Memoized.Forget] is called.
func Memoize[K comparable, V any](fn func(K) (V, error), opts ...MemoizeOption) *Memoized[K, V] {
	return newMemoized(fn, mapStore[K, memoEntry[V]]{}, 0, opts)
}

// MemoizeLRU caches the results of fn for the capacity most recently used keys.
func MemoizeLRU[K comparable, V any](capacity int, fn func(K) (V, error), opts ...MemoizeOption) (*Memoized[K, V], error) {
	cache, err := New[K, memoEntry[V]](capacity)
	if err != nil {
		return nil, err
	}
	return newMemoized(fn, cache, 0, opts), nil
}

// MemoizeWithTTL caches the results of fn and recomputes any result older than ttl.
func MemoizeWithTTL[K comparable, V any](ttl time.Duration, fn func(K) (V, error), opts ...MemoizeOption) (*Memoized[K, V], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidTTL, ttl)
	}
	return newMemoized(fn, mapStore[K, memoEntry[V]]{}, ttl, opts), nil
}

func newMemoized[K comparable, V any](fn func(K) (V, error), s store[K, memoEntry[V]], ttl time.Duration, opts []MemoizeOption) *Memoized[K, V] {
	o := memoizeOptions{
		logger:  slog.New(slog.DiscardHandler),
		timeNow: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Memoized[K, V]{
		fn:      fn,
		ttl:     ttl,
		timeNow: o.timeNow,
		logger:  o.logger,
		store:   s,
	}
}

// Get returns the cached result for key, calling the function on a miss or
// when the cached result has expired.
func (m *Memoized[K, V]) Get(key K) (V, error) {
	return m.get(key, func() (V, error) { return m.fn(key) })
}

// get returns the cached result for key, running compute on a miss.
// A result is not stored if Forget or Clear ran while it was being computed.
func (m *Memoized[K, V]) get(key K, compute func() (V, error)) (V, error) {
	if val, found := m.lookup(key); found {
		return val, nil
	}

	result, err := m.flights.do(key, func() (any, error) {
		if val, found := m.lookup(key); found {
			return val, nil
		}

		m.mu.Lock()
		gen := m.gen
		m.mu.Unlock()

		val, err := compute()
		if err != nil {
			m.logger.Debug("memoized call failed", slog.Any("key", key), slog.Any("error", err))
			return nil, err
		}

		m.mu.Lock()
		if m.gen == gen {
			m.store.Set(key, memoEntry[V]{val: val, storedAt: m.timeNow()})
		}
		m.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	val, _ := result.(V)
	return val, nil
}

// lookup returns a fresh cached value, dropping it if it has expired.
func (m *Memoized[K, V]) lookup(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, found := m.store.Get(key)
	if !found {
		var zero V
		return zero, false
	}

	if m.ttl > 0 {
		if age := m.timeNow().Sub(e.storedAt); age > m.ttl {
			m.store.Delete(key)
			m.logger.Debug("memoized value expired", slog.Any("key", key), slog.Duration("age", age))
			var zero V
			return zero, false
		}
	}
	return e.val, true
}

// Forget drops the cached result for key so the next Get recomputes it.
// It reports whether a result was cached.
func (m *Memoized[K, V]) Forget(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	return m.store.Delete(key)
}

// Clear drops all cached results.
func (m *Memoized[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.store.Clear(false)
}

// Len returns the number of cached results, including expired ones not yet dropped.
func (m *Memoized[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Len()
}

// Func returns the memoized function as a plain function value.
func (m *Memoized[K, V]) Func() func(K) (V, error) {
	return m.Get
}

// KeyedMemoized caches the results of a function under a key derived from its
// argument, so large arguments need not be retained and inputs that do not
// affect the result can be ignored.
type KeyedMemoized[A any, K comparable, V any] struct {
	memo  *Memoized[K, V]
	keyFn func(A) K
	fn    func(A) (V, error)
}

// MemoizeLRUWithKey is like [MemoizeLRU], but caches the result of fn(arg)
// under keyFn(arg).
func MemoizeLRUWithKey[A any, K comparable, V any](capacity int, keyFn func(A) K, fn func(A) (V, error), opts ...MemoizeOption) (*KeyedMemoized[A, K, V], error) {
	cache, err := New[K, memoEntry[V]](capacity)
	if err != nil {
		return nil, err
	}
	return &KeyedMemoized[A, K, V]{
		memo:  newMemoized[K, V](nil, cache, 0, opts),
		keyFn: keyFn,
		fn:    fn,
	}, nil
}

// Get returns the cached result for keyFn(arg), calling the function on a miss.
func (k *KeyedMemoized[A, K, V]) Get(arg A) (V, error) {
	return k.memo.get(k.keyFn(arg), func() (V, error) { return k.fn(arg) })
}

// Forget drops the cached result for keyFn(arg).
func (k *KeyedMemoized[A, K, V]) Forget(arg A) bool {
	return k.memo.Forget(k.keyFn(arg))
}

// Clear drops all cached results.
func (k *KeyedMemoized[A, K, V]) Clear() { k.memo.Clear() }

// Len returns the number of cached results.
func (k *KeyedMemoized[A, K, V]) Len() int { return k.memo.Len() }

// Func returns the memoized function as a plain function value.
func (k *KeyedMemoized[A, K, V]) Func() func(A) (V, error) {
	return k.Get
}
