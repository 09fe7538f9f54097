package reqfilter

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// Kind is an event kind.
type Kind int32

// Timestamp is a unix timestamp in seconds.
type Timestamp int32

type ValueKind uint8

const (
	StringValue ValueKind = iota
	IntegerValue
)

func (k ValueKind) String() string {
	if k == IntegerValue {
		return "integer"
	}
	return "string"
}

type Role uint8

const (
	// Enumerated fields hold an any-of set on a Filter and at most one value on a FlatFilter.
	Enumerated Role = iota

	// Passenger fields are copied through expansion and must be equal for two filters to merge.
	Passenger
)

func (r Role) String() string {
	if r == Passenger {
		return "passenger"
	}
	return "enumerated"
}

// FieldInfo describes one filter field as it appears on the wire.
type FieldInfo struct {
	Name     string // key on a Filter
	FlatName string // key on a FlatFilter
	Value    ValueKind
	Role     Role
}

// Fields returns every field a filter can carry: the enumerated ones in canonical expansion order,
// followed by the passengers.
func Fields() []FieldInfo {
	infos := make([]FieldInfo, 0, len(enumeratedFields)+len(passengerFields))
	for _, f := range enumeratedFields {
		infos = append(infos, f.FieldInfo)
	}
	for _, f := range passengerFields {
		infos = append(infos, f.FieldInfo)
	}
	return infos
}

// any presence mismatch alone must exceed the merge threshold
const mismatchDistance = 10

var enumeratedFields = [...]enumField{
	enumerated(FieldInfo{Name: "ids", FlatName: "ids"},
		func(f *Filter) *[]string { return &f.IDs }, func(f *FlatFilter) **string { return &f.ID }, stringCodec),
	enumerated(FieldInfo{Name: "authors", FlatName: "authors"},
		func(f *Filter) *[]string { return &f.Authors }, func(f *FlatFilter) **string { return &f.Author }, stringCodec),
	enumerated(FieldInfo{Name: "kinds", FlatName: "kinds", Value: IntegerValue},
		func(f *Filter) *[]Kind { return &f.Kinds }, func(f *FlatFilter) **Kind { return &f.Kind }, intCodec[Kind]()),
	enumerated(FieldInfo{Name: "relays", FlatName: "relay"},
		func(f *Filter) *[]string { return &f.Relays }, func(f *FlatFilter) **string { return &f.Relay }, stringCodec),
	enumerated(FieldInfo{Name: "#e", FlatName: "#e"},
		func(f *Filter) *[]string { return &f.ETags }, func(f *FlatFilter) **string { return &f.ETag }, stringCodec),
	enumerated(FieldInfo{Name: "#p", FlatName: "#p"},
		func(f *Filter) *[]string { return &f.PTags }, func(f *FlatFilter) **string { return &f.PTag }, stringCodec),
	enumerated(FieldInfo{Name: "#d", FlatName: "#d"},
		func(f *Filter) *[]string { return &f.DTags }, func(f *FlatFilter) **string { return &f.DTag }, stringCodec),
	enumerated(FieldInfo{Name: "#t", FlatName: "#t"},
		func(f *Filter) *[]string { return &f.TTags }, func(f *FlatFilter) **string { return &f.TTag }, stringCodec),
	enumerated(FieldInfo{Name: "#r", FlatName: "#r"},
		func(f *Filter) *[]string { return &f.RTags }, func(f *FlatFilter) **string { return &f.RTag }, stringCodec),
	enumerated(FieldInfo{Name: "#a", FlatName: "#a"},
		func(f *Filter) *[]string { return &f.ATags }, func(f *FlatFilter) **string { return &f.ATag }, stringCodec),
	enumerated(FieldInfo{Name: "#g", FlatName: "#g"},
		func(f *Filter) *[]string { return &f.GTags }, func(f *FlatFilter) **string { return &f.GTag }, stringCodec),
	enumerated(FieldInfo{Name: "#k", FlatName: "#k"},
		func(f *Filter) *[]string { return &f.KTags }, func(f *FlatFilter) **string { return &f.KTag }, stringCodec),
	enumerated(FieldInfo{Name: "#i", FlatName: "#i"},
		func(f *Filter) *[]string { return &f.ITags }, func(f *FlatFilter) **string { return &f.ITag }, stringCodec),
}

var passengerFields = [...]passengerField{
	passenger(FieldInfo{Name: "search", FlatName: "search"},
		func(f *Filter) **string { return &f.Search }, func(f *FlatFilter) **string { return &f.Search }, stringCodec),
	passenger(FieldInfo{Name: "since", FlatName: "since", Value: IntegerValue},
		func(f *Filter) **Timestamp { return &f.Since }, func(f *FlatFilter) **Timestamp { return &f.Since }, intCodec[Timestamp]()),
	passenger(FieldInfo{Name: "until", FlatName: "until", Value: IntegerValue},
		func(f *Filter) **Timestamp { return &f.Until }, func(f *FlatFilter) **Timestamp { return &f.Until }, intCodec[Timestamp]()),
	passenger(FieldInfo{Name: "limit", FlatName: "limit", Value: IntegerValue},
		func(f *Filter) **int32 { return &f.Limit }, func(f *FlatFilter) **int32 { return &f.Limit }, intCodec[int32]()),
}

var (
	filterDecoders     = make(map[string]func(*jlexer.Lexer, *Filter), len(enumeratedFields)+len(passengerFields))
	flatFilterDecoders = make(map[string]func(*jlexer.Lexer, *FlatFilter), len(enumeratedFields)+len(passengerFields))
)

func init() {
	for i := range enumeratedFields {
		field := &enumeratedFields[i]
		filterDecoders[field.Name] = field.decode
		flatFilterDecoders[field.FlatName] = field.decodeFlat
	}
	for i := range passengerFields {
		field := &passengerFields[i]
		filterDecoders[field.Name] = field.decode
		flatFilterDecoders[field.FlatName] = field.decodeFlat
	}
}

// enumField binds the set on a Filter to its scalar on a FlatFilter for one enumerated field.
type enumField struct {
	FieldInfo

	present      func(f *Filter) bool
	presentFlat  func(f *FlatFilter) bool
	size         func(f *Filter) int
	pick         func(dst *FlatFilter, src *Filter, i int)
	distance     func(a, b *Filter) int
	distanceFlat func(a, b *FlatFilter) int
	equal        func(a, b *Filter) bool
	equalFlat    func(a, b *FlatFilter) bool
	unite        func(dst *Filter, group []Filter)
	uniteFlat    func(dst *Filter, group []FlatFilter)
	normalize    func(f *Filter)
	clone        func(dst, src *Filter)
	cloneFlat    func(dst, src *FlatFilter)
	decode       func(in *jlexer.Lexer, f *Filter)
	decodeFlat   func(in *jlexer.Lexer, f *FlatFilter)
	encode       func(out *jwriter.Writer, f *Filter)
	encodeFlat   func(out *jwriter.Writer, f *FlatFilter)
	hashFlat     func(d *xxhash.Digest, f *FlatFilter)
}

// passengerField binds one scalar field that both shapes carry unchanged.
type passengerField struct {
	FieldInfo

	present     func(f *Filter) bool
	presentFlat func(f *FlatFilter) bool
	equal       func(a, b *Filter) bool
	equalFlat   func(a, b *FlatFilter) bool
	toFlat      func(dst *FlatFilter, src *Filter)
	fromFlat    func(dst *Filter, src *FlatFilter)
	clone       func(dst, src *Filter)
	cloneFlat   func(dst, src *FlatFilter)
	decode      func(in *jlexer.Lexer, f *Filter)
	decodeFlat  func(in *jlexer.Lexer, f *FlatFilter)
	encode      func(out *jwriter.Writer, f *Filter)
	encodeFlat  func(out *jwriter.Writer, f *FlatFilter)
	hashFlat    func(d *xxhash.Digest, f *FlatFilter)
}

type valueCodec[T comparable] struct {
	read  func(in *jlexer.Lexer) T
	write func(out *jwriter.Writer, v T)
	hash  func(d *xxhash.Digest, v T)
}

var stringCodec = valueCodec[string]{
	read:  func(in *jlexer.Lexer) string { return in.String() },
	write: func(out *jwriter.Writer, v string) { out.String(v) },
	hash:  func(d *xxhash.Digest, v string) { d.WriteString(v) },
}

func intCodec[T ~int32]() valueCodec[T] {
	return valueCodec[T]{
		read:  func(in *jlexer.Lexer) T { return T(in.Int32()) },
		write: func(out *jwriter.Writer, v T) { out.Int32(int32(v)) },
		hash: func(d *xxhash.Digest, v T) {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], uint32(v))
			d.Write(b[:])
		},
	}
}

func enumerated[T comparable](
	info FieldInfo,
	set func(*Filter) *[]T,
	flat func(*FlatFilter) **T,
	c valueCodec[T],
) enumField {
	info.Role = Enumerated
	return enumField{
		FieldInfo:   info,
		present:     func(f *Filter) bool { return len(*set(f)) > 0 },
		presentFlat: func(f *FlatFilter) bool { return *flat(f) != nil },
		size:        func(f *Filter) int { return len(*set(f)) },
		pick: func(dst *FlatFilter, src *Filter, i int) {
			v := (*set(src))[i]
			*flat(dst) = &v
		},
		distance:     func(a, b *Filter) int { return setDistance(*set(a), *set(b)) },
		distanceFlat: func(a, b *FlatFilter) int { return valueDistance(*flat(a), *flat(b)) },
		equal:        func(a, b *Filter) bool { return sameSet(*set(a), *set(b)) },
		equalFlat:    func(a, b *FlatFilter) bool { return sameValue(*flat(a), *flat(b)) },
		unite: func(dst *Filter, group []Filter) {
			var values []T
			for i := range group {
				values = append(values, *set(&group[i])...)
			}
			*set(dst) = distinct(values)
		},
		uniteFlat: func(dst *Filter, group []FlatFilter) {
			var values []T
			for i := range group {
				if v := *flat(&group[i]); v != nil {
					values = append(values, *v)
				}
			}
			*set(dst) = distinct(values)
		},
		normalize: func(f *Filter) { *set(f) = distinct(*set(f)) },
		clone: func(dst, src *Filter) {
			if values := *set(src); values != nil {
				*set(dst) = slices.Clone(values)
			}
		},
		cloneFlat: func(dst, src *FlatFilter) { *flat(dst) = clonePtr(*flat(src)) },
		decode: func(in *jlexer.Lexer, f *Filter) {
			var values []T
			in.Delim('[')
			for !in.IsDelim(']') {
				values = append(values, c.read(in))
				in.WantComma()
			}
			in.Delim(']')
			*set(f) = distinct(values)
		},
		decodeFlat: func(in *jlexer.Lexer, f *FlatFilter) {
			v := c.read(in)
			*flat(f) = &v
		},
		encode: func(out *jwriter.Writer, f *Filter) {
			out.RawByte('[')
			for i, v := range *set(f) {
				if i > 0 {
					out.RawByte(',')
				}
				c.write(out, v)
			}
			out.RawByte(']')
		},
		encodeFlat: func(out *jwriter.Writer, f *FlatFilter) { c.write(out, **flat(f)) },
		hashFlat: func(d *xxhash.Digest, f *FlatFilter) {
			if v := *flat(f); v != nil {
				d.WriteString(info.FlatName)
				c.hash(d, *v)
				d.Write([]byte{0})
			}
		},
	}
}

func passenger[T comparable](
	info FieldInfo,
	multi func(*Filter) **T,
	flat func(*FlatFilter) **T,
	c valueCodec[T],
) passengerField {
	info.Role = Passenger
	return passengerField{
		FieldInfo:   info,
		present:     func(f *Filter) bool { return *multi(f) != nil },
		presentFlat: func(f *FlatFilter) bool { return *flat(f) != nil },
		equal:       func(a, b *Filter) bool { return sameValue(*multi(a), *multi(b)) },
		equalFlat:   func(a, b *FlatFilter) bool { return sameValue(*flat(a), *flat(b)) },
		toFlat:      func(dst *FlatFilter, src *Filter) { *flat(dst) = clonePtr(*multi(src)) },
		fromFlat:    func(dst *Filter, src *FlatFilter) { *multi(dst) = clonePtr(*flat(src)) },
		clone:       func(dst, src *Filter) { *multi(dst) = clonePtr(*multi(src)) },
		cloneFlat:   func(dst, src *FlatFilter) { *flat(dst) = clonePtr(*flat(src)) },
		decode: func(in *jlexer.Lexer, f *Filter) {
			v := c.read(in)
			*multi(f) = &v
		},
		decodeFlat: func(in *jlexer.Lexer, f *FlatFilter) {
			v := c.read(in)
			*flat(f) = &v
		},
		encode:     func(out *jwriter.Writer, f *Filter) { c.write(out, **multi(f)) },
		encodeFlat: func(out *jwriter.Writer, f *FlatFilter) { c.write(out, **flat(f)) },
		hashFlat: func(d *xxhash.Digest, f *FlatFilter) {
			if v := *flat(f); v != nil {
				d.WriteString(info.FlatName)
				c.hash(d, *v)
				d.Write([]byte{0})
			}
		},
	}
}
