package caching

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLazyConstant_Get(t *testing.T) {
	r := require.New(t)

	calls := 0
	lazy := NewLazyConstant(func() (int, error) {
		calls++
		return calls * 10, nil
	})
	r.False(lazy.Computed())

	v, err := lazy.Get()
	r.NoError(err)
	r.Equal(10, v)

	v, err = lazy.Get()
	r.NoError(err)
	r.Equal(10, v)
	r.Equal(1, calls)
	r.True(lazy.Computed())
}

func TestLazyConstant_Compute(t *testing.T) {
	r := require.New(t)

	calls := 0
	lazy := NewLazyConstant(func() (int, error) {
		calls++
		return calls, nil
	})

	v, err := lazy.Compute()
	r.NoError(err)
	r.Equal(1, v)

	// Compute ignores the cache
	v, err = lazy.Compute()
	r.NoError(err)
	r.Equal(2, v)

	v, err = lazy.Get()
	r.NoError(err)
	r.Equal(2, v)
	r.Equal(2, calls)
}

func TestLazyConstant_Clear(t *testing.T) {
	r := require.New(t)

	calls := 0
	lazy := NewLazyConstant(func() (string, error) {
		calls++
		return "value", nil
	})

	_, _ = lazy.Get()
	lazy.Clear()
	r.False(lazy.Computed())

	v, err := lazy.Get()
	r.NoError(err)
	r.Equal("value", v)
	r.Equal(2, calls)
}

func TestLazyConstant_ZeroValueIsComputed(t *testing.T) {
	r := require.New(t)

	calls := 0
	lazy := NewLazyConstant(func() (*int, error) {
		calls++
		return nil, nil
	})

	for i := 0; i < 3; i++ {
		v, err := lazy.Get()
		r.NoError(err)
		r.Nil(v)
	}
	r.Equal(1, calls)
	r.True(lazy.Computed())
}

func TestLazyConstant_Errors(t *testing.T) {
	errBoom := errors.New("boom")

	tests := map[string]struct {
		primed bool
		call   func(l *LazyConstant[int]) (int, error)
	}{
		"get on empty cache": {
			primed: false,
			call:   (*LazyConstant[int]).Get,
		},
		"compute over cached value": {
			primed: true,
			call:   (*LazyConstant[int]).Compute,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r := require.New(t)

			fail := false
			lazy := NewLazyConstant(func() (int, error) {
				if fail {
					return 0, errBoom
				}
				return 7, nil
			})
			if tc.primed {
				_, err := lazy.Get()
				r.NoError(err)
			}

			fail = true
			v, err := tc.call(lazy)
			r.ErrorIs(err, errBoom)
			r.Zero(v)
			r.False(lazy.Computed(), "no partial state may stay cached")

			fail = false
			v, err = lazy.Get()
			r.NoError(err)
			r.Equal(7, v)
		})
	}
}

func TestSyncLazyConstant_ComputesOnce(t *testing.T) {
	r := require.New(t)

	var calls atomic.Int32
	lazy := NewSyncLazyConstant(func() (int, error) {
		calls.Add(1)
		return 42, nil
	})

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			v, err := lazy.Get()
			if err != nil {
				return err
			}
			if v != 42 {
				return errors.New("unexpected value")
			}
			return nil
		})
	}
	r.NoError(g.Wait())
	r.Equal(int32(1), calls.Load())
	r.True(lazy.Computed())

	lazy.Clear()
	r.False(lazy.Computed())

	v, err := lazy.Compute()
	r.NoError(err)
	r.Equal(42, v)
	r.Equal(int32(2), calls.Load())
}

func TestLazyFunc(t *testing.T) {
	r := require.New(t)

	calls := 0
	errBoom := errors.New("boom")
	get := LazyFunc(func() (string, error) {
		calls++
		if calls == 1 {
			return "", errBoom
		}
		return "ready", nil
	})

	_, err := get()
	r.ErrorIs(err, errBoom)

	v, err := get()
	r.NoError(err)
	r.Equal("ready", v)

	v, err = get()
	r.NoError(err)
	r.Equal("ready", v)
	r.Equal(2, calls)
}
