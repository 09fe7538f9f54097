package reqfilter

import "slices"

// above this many elements membership checks go through a map
const smallSet = 16

// Ptr returns a pointer to a copy of v, handy for filling optional fields.
func Ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sameValue[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func valueDistance[T comparable](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil || b == nil:
		return mismatchDistance
	case *a == *b:
		return 0
	default:
		return 1
	}
}

// sameSet compares two slices as sets, ignoring order and duplicates. nil and empty are the same.
func sameSet[T comparable](a, b []T) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return containsAll(a, b) && containsAll(b, a)
}

func setDistance[T comparable](a, b []T) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0 || len(b) == 0:
		return mismatchDistance
	case sameSet(a, b):
		return 0
	default:
		return 1
	}
}

func containsAll[T comparable](set []T, items []T) bool {
	if len(set) <= smallSet {
		for _, v := range items {
			if !slices.Contains(set, v) {
				return false
			}
		}
		return true
	}

	index := make(map[T]struct{}, len(set))
	for _, v := range set {
		index[v] = struct{}{}
	}
	for _, v := range items {
		if _, ok := index[v]; !ok {
			return false
		}
	}
	return true
}

// appendMissing appends each of values not already present in dst, keeping first-seen order.
func appendMissing[T comparable](dst []T, values ...T) []T {
	if len(dst)+len(values) <= smallSet {
		for _, v := range values {
			if !slices.Contains(dst, v) {
				dst = append(dst, v)
			}
		}
		return dst
	}

	index := make(map[T]struct{}, len(dst)+len(values))
	for _, v := range dst {
		index[v] = struct{}{}
	}
	for _, v := range values {
		if _, ok := index[v]; !ok {
			index[v] = struct{}{}
			dst = append(dst, v)
		}
	}
	return dst
}

// distinct returns a fresh copy of values without duplicates, or nil when there is nothing.
func distinct[T comparable](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	return appendMissing(make([]T, 0, len(values)), values...)
}
