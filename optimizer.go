package reqfilter

import (
	"github.com/cespare/xxhash/v2"
	"github.com/mailru/easyjson"

	"fiatjaf.com/reqfilter/cache"
)

// QueryOptimizer is what a client uses to turn the filters its queries ask for into what gets sent
// to relays.
type QueryOptimizer interface {
	ExpandFilter(f Filter) []FlatFilter
	GetDiff(prev []Filter, next []Filter) []FlatFilter
	FlatMerge(all []FlatFilter) []Filter
	Compress(all []Filter) []Filter
}

// DefaultOptimizer calls the functions of this package directly.
var DefaultOptimizer QueryOptimizer = defaultOptimizer{}

type defaultOptimizer struct{}

func (defaultOptimizer) ExpandFilter(f Filter) []FlatFilter { return Expand(f) }
func (defaultOptimizer) GetDiff(prev, next []Filter) []FlatFilter { return GetDiff(prev, next) }
func (defaultOptimizer) FlatMerge(all []FlatFilter) []Filter { return FlatMerge(all) }
func (defaultOptimizer) Compress(all []Filter) []Filter { return Compress(all) }

var _ QueryOptimizer = (*CachingOptimizer)(nil)

// CachingOptimizer remembers expansions, which clients end up recomputing for the same filters every
// time a query changes. Base (DefaultOptimizer when nil) expands what isn't cached and does FlatMerge
// and Compress. GetDiff never calls Base.GetDiff: it runs Diff over the cached expansions.
//
// The cache is keyed by the exact encoding of the filter, so the same filter with its sets in a
// different order is a different entry.
type CachingOptimizer struct {
	Base       QueryOptimizer
	Expansions cache.Cache64[CachedExpansion]
}

type CachedExpansion struct {
	Key   string
	Flats []FlatFilter
}

func (co *CachingOptimizer) base() QueryOptimizer {
	if co.Base == nil {
		return DefaultOptimizer
	}
	return co.Base
}

func (co *CachingOptimizer) ExpandFilter(f Filter) []FlatFilter {
	if co.Expansions == nil {
		return co.base().ExpandFilter(f)
	}

	key, _ := easyjson.Marshal(f)
	h := xxhash.Sum64(key)
	if cached, ok := co.Expansions.Get(h); ok && cached.Key == string(key) {
		return cloneFlats(cached.Flats)
	}

	flats := co.base().ExpandFilter(f)
	co.Expansions.Set(h, CachedExpansion{Key: string(key), Flats: cloneFlats(flats)})
	return flats
}

func (co *CachingOptimizer) GetDiff(prev, next []Filter) []FlatFilter {
	return Diff(co.expandAll(prev), co.expandAll(next))
}

func (co *CachingOptimizer) FlatMerge(all []FlatFilter) []Filter { return co.base().FlatMerge(all) }
func (co *CachingOptimizer) Compress(all []Filter) []Filter { return co.base().Compress(all) }

func (co *CachingOptimizer) expandAll(filters []Filter) []FlatFilter {
	flats := make([]FlatFilter, 0, len(filters))
	for _, f := range filters {
		flats = append(flats, co.ExpandFilter(f)...)
	}
	return flats
}

func cloneFlats(flats []FlatFilter) []FlatFilter {
	clones := make([]FlatFilter, len(flats))
	for i, ff := range flats {
		clones[i] = ff.Clone()
	}
	return clones
}
