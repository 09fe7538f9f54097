package cache

import "time"

// Cache64 is a cache keyed by 64-bit hashes, such as the xxhash of an encoded filter.
// Implementations may drop entries at any time, so a miss is never an error.
type Cache64[V any] interface {
	Get(k uint64) (v V, ok bool)
	Delete(k uint64)
	Set(k uint64, v V) bool
	SetWithTTL(k uint64, v V, d time.Duration) bool
}
