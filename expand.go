package reqfilter

// Expand returns every flat filter a filter denotes: the cartesian product of its present
// enumerated fields, walked in canonical field order with the first field varying slowest.
// Each result carries its own copy of the passenger fields.
//
// A filter without enumerated fields expands to a single flat filter holding only the passengers.
func Expand(f Filter) []FlatFilter {
	norm := f.Normalize()

	dims := make([]*enumField, 0, len(enumeratedFields))
	total := 1
	for i := range enumeratedFields {
		field := &enumeratedFields[i]
		if field.present(&norm) {
			dims = append(dims, field)
			total *= field.size(&norm)
		}
	}

	flats := make([]FlatFilter, 0, total)
	pos := make([]int, len(dims))
	for {
		flat := FlatFilter{}
		for d, field := range dims {
			field.pick(&flat, &norm, pos[d])
		}
		for i := range passengerFields {
			passengerFields[i].toFlat(&flat, &norm)
		}
		flats = append(flats, flat)

		// advance the odometer, last dimension first
		d := len(dims) - 1
		for ; d >= 0; d-- {
			pos[d]++
			if pos[d] < dims[d].size(&norm) {
				break
			}
			pos[d] = 0
		}
		if d < 0 {
			return flats
		}
	}
}

// ExpandAll expands each filter in order and concatenates the results.
func ExpandAll(filters []Filter) []FlatFilter {
	flats := make([]FlatFilter, 0, len(filters))
	for _, f := range filters {
		flats = append(flats, Expand(f)...)
	}
	return flats
}
