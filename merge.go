package reqfilter

type mergeable[T any] interface {
	CanMerge(other T) bool
}

// FlatMerge collapses flat filters into as few filters as a greedy grouping finds, repeating the
// grouping over its own output until the number of filters stops shrinking.
//
// The result covers exactly the same flat filters as the input, but its shape depends on input order.
func FlatMerge(flats []FlatFilter) []Filter {
	return mergeToFixedPoint(mergeOnce(flats, UniteFlat))
}

// Compress is FlatMerge for filters that already carry sets.
func Compress(filters []Filter) []Filter {
	return mergeToFixedPoint(mergeOnce(filters, Unite))
}

func mergeToFixedPoint(merged []Filter) []Filter {
	for {
		last := len(merged)
		merged = mergeOnce(merged, Unite)
		if len(merged) == last {
			return merged
		}
	}
}

// mergeOnce puts each filter in the first group whose members can all merge with it, or in a new
// group of its own, then unites every group into one filter.
func mergeOnce[T mergeable[T]](all []T, unite func([]T) Filter) []Filter {
	if len(all) == 0 {
		return []Filter{}
	}

	groups := [][]T{{all[0]}}
next:
	for _, x := range all[1:] {
		for g, group := range groups {
			if canJoin(group, x) {
				groups[g] = append(group, x)
				continue next
			}
		}
		groups = append(groups, []T{x})
	}

	merged := make([]Filter, len(groups))
	for g, group := range groups {
		merged[g] = unite(group)
	}
	return merged
}

func canJoin[T mergeable[T]](group []T, x T) bool {
	for _, member := range group {
		if !member.CanMerge(x) {
			return false
		}
	}
	return true
}

// UniteFlat builds the filter whose sets are the union of the values in the group.
// All members must have the same passengers, it panics otherwise.
func UniteFlat(group []FlatFilter) Filter {
	if len(group) == 0 {
		panic("reqfilter: can't unite an empty group")
	}
	for i := 1; i < len(group); i++ {
		if !flatPassengersEqual(&group[0], &group[i]) {
			panic("reqfilter: uniting flat filters with different passengers: " +
				group[0].String() + " and " + group[i].String())
		}
	}

	united := Filter{}
	for i := range enumeratedFields {
		enumeratedFields[i].uniteFlat(&united, group)
	}
	for i := range passengerFields {
		passengerFields[i].fromFlat(&united, &group[0])
	}
	return united
}

// Unite is UniteFlat for filters that carry sets.
func Unite(group []Filter) Filter {
	if len(group) == 0 {
		panic("reqfilter: can't unite an empty group")
	}
	for i := 1; i < len(group); i++ {
		if !passengersEqual(&group[0], &group[i]) {
			panic("reqfilter: uniting filters with different passengers: " +
				group[0].String() + " and " + group[i].String())
		}
	}

	united := Filter{}
	for i := range enumeratedFields {
		enumeratedFields[i].unite(&united, group)
	}
	for i := range passengerFields {
		passengerFields[i].clone(&united, &group[0])
	}
	return united
}
