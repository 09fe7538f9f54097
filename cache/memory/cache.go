package cache_memory

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

type RistrettoCache[V any] struct {
	Cache *ristretto.Cache[uint64, V]
}

// New creates a cache holding around max entries. Keys are used as their own hash since they
// are expected to be hashes already.
func New[V any](max int64) *RistrettoCache[V] {
	cache, _ := ristretto.NewCache(&ristretto.Config[uint64, V]{
		NumCounters: max * 10,
		MaxCost:     max,
		BufferItems: 64,
		KeyToHash:   func(key uint64) (uint64, uint64) { return key, 0 },
	})
	return &RistrettoCache[V]{Cache: cache}
}

func (s RistrettoCache[V]) Get(k uint64) (v V, ok bool) { return s.Cache.Get(k) }
func (s RistrettoCache[V]) Delete(k uint64) { s.Cache.Del(k) }
func (s RistrettoCache[V]) Set(k uint64, v V) bool { return s.Cache.Set(k, v, 1) }

func (s RistrettoCache[V]) SetWithTTL(k uint64, v V, d time.Duration) bool {
	return s.Cache.SetWithTTL(k, v, 1, d)
}

// Wait blocks until pending writes are visible to Get.
func (s RistrettoCache[V]) Wait() { s.Cache.Wait() }
