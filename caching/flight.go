package caching

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// flightGroup deduplicates concurrent computations per key of type K.
//
// singleflight only accepts string keys, and no string encoding of an
// arbitrary comparable K is injective. Each key in flight is therefore
// handed a unique id that lives until the last caller for that key returns.
type flightGroup[K comparable] struct {
	group singleflight.Group

	mu   sync.Mutex
	next uint64
	ids  map[K]*flightID
}

type flightID struct {
	id   string
	refs int
}

// do runs fn once for all concurrent callers passing the same key.
func (f *flightGroup[K]) do(key K, fn func() (any, error)) (any, error) {
	id := f.acquire(key)
	defer f.release(key)

	v, err, _ := f.group.Do(id, fn)
	return v, err
}

func (f *flightGroup[K]) acquire(key K) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ids == nil {
		f.ids = make(map[K]*flightID)
	}
	fid, ok := f.ids[key]
	if !ok {
		f.next++
		fid = &flightID{id: strconv.FormatUint(f.next, 10)}
		f.ids[key] = fid
	}
	fid.refs++
	return fid.id
}

func (f *flightGroup[K]) release(key K) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fid := f.ids[key]
	fid.refs--
	if fid.refs == 0 {
		delete(f.ids, key)
	}
}
