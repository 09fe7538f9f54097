package reqfilter

import (
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/mailru/easyjson"
	"github.com/stretchr/testify/require"

	cache_memory "fiatjaf.com/reqfilter/cache/memory"
)

type mapCache struct {
	entries map[uint64]CachedExpansion
	hits    int
}

func (m *mapCache) Get(k uint64) (CachedExpansion, bool) {
	v, ok := m.entries[k]
	if ok {
		m.hits++
	}
	return v, ok
}
func (m *mapCache) Delete(k uint64) { delete(m.entries, k) }
func (m *mapCache) Set(k uint64, v CachedExpansion) bool { m.entries[k] = v; return true }
func (m *mapCache) SetWithTTL(k uint64, v CachedExpansion, _ time.Duration) bool {
	return m.Set(k, v)
}

type countingOptimizer struct {
	QueryOptimizer
	expands, diffs, merges int
}

func (c *countingOptimizer) ExpandFilter(f Filter) []FlatFilter {
	c.expands++
	return c.QueryOptimizer.ExpandFilter(f)
}

func (c *countingOptimizer) GetDiff(prev, next []Filter) []FlatFilter {
	c.diffs++
	return c.QueryOptimizer.GetDiff(prev, next)
}

func (c *countingOptimizer) FlatMerge(all []FlatFilter) []Filter {
	c.merges++
	return c.QueryOptimizer.FlatMerge(all)
}

func TestDefaultOptimizer(t *testing.T) {
	f := Filter{Authors: []string{"a", "b"}, Kinds: []Kind{1}}
	require.Equal(t, Expand(f), DefaultOptimizer.ExpandFilter(f))
	require.Equal(t, FlatMerge(Expand(f)), DefaultOptimizer.FlatMerge(Expand(f)))
	require.Equal(t, Compress([]Filter{f, f}), DefaultOptimizer.Compress([]Filter{f, f}))
	require.Empty(t, DefaultOptimizer.GetDiff([]Filter{f}, []Filter{f}))
}

func TestCachingOptimizer(t *testing.T) {
	entries := &mapCache{entries: make(map[uint64]CachedExpansion)}
	opt := &CachingOptimizer{Expansions: entries}

	f := Filter{Authors: []string{"a", "b"}, Kinds: []Kind{1, 7}, Limit: Ptr[int32](3)}
	first := opt.ExpandFilter(f)
	require.Equal(t, Expand(f), first)
	require.Len(t, entries.entries, 1)
	require.Zero(t, entries.hits)

	// callers own what they get back
	*first[0].Author = "mutated"
	*first[0].Limit = 99

	second := opt.ExpandFilter(f)
	require.Equal(t, 1, entries.hits)
	require.Equal(t, Expand(f), second)

	diff := opt.GetDiff([]Filter{f}, []Filter{f, {Authors: []string{"c"}, Kinds: []Kind{1}}})
	require.Equal(t, []FlatFilter{{Author: Ptr("c"), Kind: Ptr[Kind](1)}}, diff)
	require.Len(t, entries.entries, 2)
}

func TestCachingOptimizerChecksKey(t *testing.T) {
	entries := &mapCache{entries: make(map[uint64]CachedExpansion)}
	opt := &CachingOptimizer{Expansions: entries}

	f := Filter{Kinds: []Kind{1}}
	key, _ := easyjson.Marshal(f)
	entries.Set(xxhash.Sum64(key), CachedExpansion{
		Key:   `{"kinds":[2]}`,
		Flats: []FlatFilter{{Kind: Ptr[Kind](2)}},
	})

	require.Equal(t, []FlatFilter{{Kind: Ptr[Kind](1)}}, opt.ExpandFilter(f))
	require.Equal(t, `{"kinds":[1]}`, entries.entries[xxhash.Sum64(key)].Key)
}

func TestCachingOptimizerWithRistretto(t *testing.T) {
	expansions := cache_memory.New[CachedExpansion](1000)
	opt := &CachingOptimizer{Expansions: expansions}

	prev := []Filter{{Authors: []string{"a", "b", "c"}, Kinds: []Kind{1, 6}}}
	next := []Filter{{Authors: []string{"a", "b", "c", "d"}, Kinds: []Kind{1, 6}}}

	require.Len(t, opt.GetDiff(prev, next), 2)
	expansions.Wait()
	require.Len(t, opt.GetDiff(prev, next), 2)

	merged := opt.FlatMerge(opt.ExpandFilter(next[0]))
	requireSameFilters(t, next, merged)
	requireSameFilters(t, next, opt.Compress(merged))

	var noCache CachingOptimizer
	require.Equal(t, Expand(next[0]), noCache.ExpandFilter(next[0]))
}

func TestCachingOptimizerBase(t *testing.T) {
	base := &countingOptimizer{QueryOptimizer: DefaultOptimizer}
	opt := &CachingOptimizer{Base: base, Expansions: &mapCache{entries: make(map[uint64]CachedExpansion)}}

	prev := []Filter{{Authors: []string{"a"}, Kinds: []Kind{1}}}
	next := []Filter{{Authors: []string{"a"}, Kinds: []Kind{1}}, {Authors: []string{"b"}, Kinds: []Kind{1}}}

	require.Len(t, opt.GetDiff(prev, next), 1)
	require.Equal(t, 2, base.expands)
	require.Zero(t, base.diffs)

	require.Len(t, opt.GetDiff(prev, next), 1)
	require.Equal(t, 2, base.expands)

	opt.FlatMerge(opt.ExpandFilter(next[1]))
	require.Equal(t, 2, base.expands)
	require.Equal(t, 1, base.merges)
}
