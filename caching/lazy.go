package caching

import "sync"

// LazyConstant holds a lazily computed, rarely changing value.
//
// The value is produced on first use and kept until [LazyConstant.Clear] or
// [LazyConstant.Compute] is called, typically in response to some event that
// invalidates it. A produced zero value counts as computed.
//
// LazyConstant is not safe for concurrent use: concurrent first calls may run
// the provider more than once. Use [SyncLazyConstant] when that matters.
type LazyConstant[T any] struct {
	provider func() (T, error)
	value    T
	computed bool
}

// NewLazyConstant creates a LazyConstant backed by provider.
func NewLazyConstant[T any](provider func() (T, error)) *LazyConstant[T] {
	return &LazyConstant[T]{provider: provider}
}

// Get returns the cached value, computing it first if necessary.
// Provider errors are returned as is and nothing is cached.
func (l *LazyConstant[T]) Get() (T, error) {
	if l.computed {
		return l.value, nil
	}
	return l.Compute()
}

// Compute runs the provider unconditionally and caches its result.
// On error the previous value is discarded.
func (l *LazyConstant[T]) Compute() (T, error) {
	val, err := l.provider()
	if err != nil {
		l.Clear()
		var zero T
		return zero, err
	}

	l.value = val
	l.computed = true
	return val, nil
}

// Clear discards the cached value.
func (l *LazyConstant[T]) Clear() {
	var zero T
	l.value = zero
	l.computed = false
}

// Computed reports whether a value is currently cached.
func (l *LazyConstant[T]) Computed() bool {
	return l.computed
}

// SyncLazyConstant is a [LazyConstant] that is safe for concurrent use.
// The provider runs under a lock, so it is invoked at most once between clears
// no matter how many goroutines call Get. The provider must not call back into
// the same SyncLazyConstant.
type SyncLazyConstant[T any] struct {
	mu    sync.Mutex
	inner LazyConstant[T]
}

// NewSyncLazyConstant creates a SyncLazyConstant backed by provider.
func NewSyncLazyConstant[T any](provider func() (T, error)) *SyncLazyConstant[T] {
	return &SyncLazyConstant[T]{inner: LazyConstant[T]{provider: provider}}
}

// Get returns the cached value, computing it first if necessary.
func (l *SyncLazyConstant[T]) Get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Get()
}

// Compute runs the provider unconditionally and caches its result.
func (l *SyncLazyConstant[T]) Compute() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Compute()
}

// Clear discards the cached value.
func (l *SyncLazyConstant[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Clear()
}

// Computed reports whether a value is currently cached.
func (l *SyncLazyConstant[T]) Computed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Computed()
}

// LazyFunc returns a function that calls provider once and then keeps
// returning its result. Failed calls are retried on the next invocation.
// The returned function is safe for concurrent use.
func LazyFunc[T any](provider func() (T, error)) func() (T, error) {
	return NewSyncLazyConstant(provider).Get
}
