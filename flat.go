package reqfilter

import "github.com/cespare/xxhash/v2"

// FlatFilter is the normal form of a Filter whose enumerated fields each hold at most one value.
// It is the unit that diffing works on. nil means absent.
type FlatFilter struct {
	ID     *string
	Author *string
	Kind   *Kind
	Relay  *string
	ETag   *string
	PTag   *string
	DTag   *string
	TTag   *string
	RTag   *string
	ATag   *string
	GTag   *string
	KTag   *string
	ITag   *string

	Search *string
	Since  *Timestamp
	Until  *Timestamp
	Limit  *int32
}

// FlatFilters is a list of flat filters that encodes as a JSON array.
type FlatFilters []FlatFilter

func FlatFilterEqual(a FlatFilter, b FlatFilter) bool {
	return flatEqual(&a, &b)
}

func flatEqual(a, b *FlatFilter) bool {
	for i := range enumeratedFields {
		if !enumeratedFields[i].equalFlat(a, b) {
			return false
		}
	}
	return flatPassengersEqual(a, b)
}

func flatPassengersEqual(a, b *FlatFilter) bool {
	for i := range passengerFields {
		if !passengerFields[i].equalFlat(a, b) {
			return false
		}
	}
	return true
}

func (ff FlatFilter) Clone() FlatFilter {
	clone := FlatFilter{}
	for i := range enumeratedFields {
		enumeratedFields[i].cloneFlat(&clone, &ff)
	}
	for i := range passengerFields {
		passengerFields[i].cloneFlat(&clone, &ff)
	}
	return clone
}

// Hash is consistent with FlatFilterEqual: equal filters hash the same.
func (ff FlatFilter) Hash() uint64 {
	return ff.hash()
}

func (ff *FlatFilter) hash() uint64 {
	d := xxhash.New()
	for i := range enumeratedFields {
		enumeratedFields[i].hashFlat(d, ff)
	}
	d.Write([]byte{0xff})
	for i := range passengerFields {
		passengerFields[i].hashFlat(d, ff)
	}
	return d.Sum64()
}
