package caching_test

import (
	"fmt"
	"math"

	"github.com/quora/qcore/caching"
)

// This example demonstrates basic usage of the LRU cache.
func Example_basic() {
	cache := caching.MustNew(3, caching.WithOnEvict(func(key string, value int) {
		fmt.Printf("evicted %s=%d\n", key, value)
	}))

	cache.Set("one", 1)
	cache.Set("two", 2)
	cache.Set("three", 3)

	if value, found := cache.Get("one"); found {
		fmt.Printf("Value for 'one': %d\n", value)
	}

	// "two" is now the least recently used entry
	cache.Set("four", 4)

	fmt.Printf("Missing 'two' defaults to %d\n", cache.GetOrDefault("two", -1))
	fmt.Printf("Cache keys: %v\n", cache.Keys())

	cache.Clear(true)
	fmt.Printf("Len after clear: %d, capacity: %d\n", cache.Len(), cache.Capacity())

	// Output:
	// Value for 'one': 1
	// evicted two=2
	// Missing 'two' defaults to -1
	// Cache keys: [three one four]
	// evicted three=3
	// evicted one=1
	// evicted four=4
	// Len after clear: 0, capacity: 3
}

// This example demonstrates a lazily computed value that is recomputed on demand.
func Example_lazyConstant() {
	version := 0
	current := caching.NewLazyConstant(func() (string, error) {
		version++
		return fmt.Sprintf("v%d", version), nil
	})

	v, _ := current.Get()
	fmt.Println(v)
	v, _ = current.Get()
	fmt.Println(v)

	current.Clear()
	v, _ = current.Get()
	fmt.Println(v)

	// Output:
	// v1
	// v1
	// v2
}

// This example demonstrates memoizing an expensive computation with a bounded cache.
func Example_memoizeLRU() {
	computeCount := 0
	sqrt, err := caching.MemoizeLRU(10, func(n float64) (float64, error) {
		computeCount++
		return math.Sqrt(n), nil
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, n := range []float64{16, 16, 25} {
		result, err := sqrt.Get(n)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Printf("sqrt(%.0f) = %.1f\n", n, result)
	}
	fmt.Printf("computed %d times\n", computeCount)

	// Output:
	// sqrt(16) = 4.0
	// sqrt(16) = 4.0
	// sqrt(25) = 5.0
	// computed 2 times
}
