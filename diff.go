package reqfilter

// Diff returns the flat filters of next that are not present in prev, in the order they appear
// in next. Duplicates within next are kept.
func Diff(prev []FlatFilter, next []FlatFilter) []FlatFilter {
	index := make(map[uint64][]int, len(prev))
	for i := range prev {
		h := prev[i].hash()
		index[h] = append(index[h], i)
	}

	added := make([]FlatFilter, 0, len(next))
next:
	for i := range next {
		for _, p := range index[next[i].hash()] {
			if flatEqual(&prev[p], &next[i]) {
				continue next
			}
		}
		added = append(added, next[i].Clone())
	}

	return added
}

// GetDiff expands both filter lists and returns the flat filters needed by next that prev
// doesn't already cover.
func GetDiff(prev []Filter, next []Filter) []FlatFilter {
	return Diff(ExpandAll(prev), ExpandAll(next))
}
