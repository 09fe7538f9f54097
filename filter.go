package reqfilter

// Filter is a REQ filter whose enumerated fields carry sets of admissible values.
//
// Each enumerated field is optional: a nil or empty slice means there is no constraint on it.
// The slices have set semantics, order and duplicates carry no meaning.
type Filter struct {
	IDs     []string
	Authors []string
	Kinds   []Kind
	Relays  []string
	ETags   []string
	PTags   []string
	DTags   []string
	TTags   []string
	RTags   []string
	ATags   []string
	GTags   []string
	KTags   []string
	ITags   []string

	Search *string
	Since  *Timestamp
	Until  *Timestamp
	Limit  *int32
}

// Filters is a list of filters that encodes as a JSON array.
type Filters []Filter

// FilterEqual compares two filters field by field, enumerated fields as sets.
func FilterEqual(a Filter, b Filter) bool {
	for i := range enumeratedFields {
		if !enumeratedFields[i].equal(&a, &b) {
			return false
		}
	}
	return passengersEqual(&a, &b)
}

func passengersEqual(a, b *Filter) bool {
	for i := range passengerFields {
		if !passengerFields[i].equal(a, b) {
			return false
		}
	}
	return true
}

func (ef Filter) Clone() Filter {
	clone := Filter{}
	for i := range enumeratedFields {
		enumeratedFields[i].clone(&clone, &ef)
	}
	for i := range passengerFields {
		passengerFields[i].clone(&clone, &ef)
	}
	return clone
}

// Normalize returns a copy with duplicate set members removed and empty sets turned into absent ones.
func (ef Filter) Normalize() Filter {
	norm := ef.Clone()
	for i := range enumeratedFields {
		enumeratedFields[i].normalize(&norm)
	}
	return norm
}

// IsUnconstrained is true when no enumerated field is present.
func (ef Filter) IsUnconstrained() bool {
	for i := range enumeratedFields {
		if enumeratedFields[i].present(&ef) {
			return false
		}
	}
	return true
}

// Cardinality is the number of flat filters this filter expands to.
func (ef Filter) Cardinality() int {
	norm := ef.Normalize()
	n := 1
	for i := range enumeratedFields {
		if field := &enumeratedFields[i]; field.present(&norm) {
			n *= field.size(&norm)
		}
	}
	return n
}
