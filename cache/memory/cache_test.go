package cache_memory

import (
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"

	"fiatjaf.com/reqfilter/cache"
)

var _ cache.Cache64[[]string] = (*RistrettoCache[[]string])(nil)

func TestSetGetDelete(t *testing.T) {
	c := New[[]string](100)
	key := xxhash.Sum64String(`{"authors":["a","b"],"kinds":[1]}`)

	c.Set(key, []string{`{"authors":"a","kinds":1}`, `{"authors":"b","kinds":1}`})
	c.Wait()

	flats, ok := c.Get(key)
	require.True(t, ok)
	require.Len(t, flats, 2)

	_, ok = c.Get(key + 1)
	require.False(t, ok)

	c.Delete(key)
	c.Wait()
	_, ok = c.Get(key)
	require.False(t, ok)
}

func TestTTL(t *testing.T) {
	c := New[string](100)
	key := xxhash.Sum64String(`{"ids":["x"]}`)

	c.SetWithTTL(key, `{"ids":"x"}`, 100*time.Millisecond)
	c.Wait()
	val, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, `{"ids":"x"}`, val)

	require.Eventually(t, func() bool {
		_, ok := c.Get(key)
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestEviction(t *testing.T) {
	max := int64(100)
	c := New[int](max)

	for i := 0; i < 200; i++ {
		c.Set(uint64(i), i)
	}
	c.Wait()

	count := 0
	for i := 0; i < 200; i++ {
		if _, ok := c.Get(uint64(i)); ok {
			count++
		}
	}
	require.NotZero(t, count)
	require.LessOrEqual(t, count, int(max)+10)
}
