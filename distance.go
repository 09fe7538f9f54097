package reqfilter

// Distance measures how similar two flat filters are for merging purposes.
//
// Every enumerated field adds 0 when both sides hold the same value or are both absent, 1 when both
// hold different values and 10 when only one side has it. So these two are at distance 1 and can
// become one filter:
//
//	{"kinds": 1, "authors": "a", "since": 99}
//	{"kinds": 1, "authors": "b", "since": 99}
//
// Passenger fields don't count, see CanMerge.
func (ff FlatFilter) Distance(other FlatFilter) int {
	dist := 0
	for i := range enumeratedFields {
		dist += enumeratedFields[i].distanceFlat(&ff, &other)
	}
	return dist
}

// CanMerge is true when both filters have the same passengers and differ in at most one enumerated field.
func (ff FlatFilter) CanMerge(other FlatFilter) bool {
	if !flatPassengersEqual(&ff, &other) {
		return false
	}
	return ff.Distance(other) <= 1
}

// Distance is like FlatFilter.Distance but over sets: two present sets contribute 0 when they hold
// the same members and 1 otherwise.
func (ef Filter) Distance(other Filter) int {
	dist := 0
	for i := range enumeratedFields {
		dist += enumeratedFields[i].distance(&ef, &other)
	}
	return dist
}

func (ef Filter) CanMerge(other Filter) bool {
	if !passengersEqual(&ef, &other) {
		return false
	}
	return ef.Distance(other) <= 1
}
