// Package caching provides low-level caching primitives.
//
// The package offers:
//
//   - [Cache]: a fixed-capacity LRU cache with an eviction callback
//   - [Synced]: a thread-safe wrapper around [Cache] with compute-on-miss helpers
//   - [LazyConstant] and [SyncLazyConstant]: lazily computed, rarely changing values
//   - [Memoized]: memoization of single-argument functions, optionally bounded or expiring
//
// # LRU Cache
//
// Create a cache and store values:
//
//	cache := caching.MustNew[string, int](100, caching.WithOnEvict(func(key string, value int) {
//	    fmt.Printf("evicted: %s=%d\n", key, value)
//	}))
//	cache.Set("key", 42)
//	value, found := cache.Get("key")
//
// [Cache] is not safe for concurrent use. [Synced] adds locking and delivers
// eviction callbacks after releasing it.
//
// # Lazy Constants
//
//	config := caching.NewLazyConstant(loadConfig)
//	cfg, err := config.Get() // loadConfig runs here
//	cfg, err = config.Get()  // cached
//	config.Clear()           // next Get runs loadConfig again
//
// # Memoization
//
//	square := caching.Memoize(func(n int) (int, error) { return n * n, nil })
//	v, err := square.Get(4)
//
// Use [MemoizeLRU] to bound the number of cached results and [MemoizeWithTTL]
// to recompute results after a fixed duration.
package caching
