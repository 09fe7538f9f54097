package reqfilter

import (
	"errors"
	"fmt"

	"github.com/mailru/easyjson"
	jlexer "github.com/mailru/easyjson/jlexer"
	jwriter "github.com/mailru/easyjson/jwriter"
)

// ErrUnsupportedTag is returned when decoding a tag key this package can't represent.
var ErrUnsupportedTag = errors.New("unsupported tag filter")

func easyjsonDecodeFilter(in *jlexer.Lexer, out *Filter) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		if decode, ok := filterDecoders[key]; ok {
			decode(in, out)
		} else if len(key) > 1 && key[0] == '#' {
			in.AddError(fmt.Errorf("%w '%s'", ErrUnsupportedTag, key))
		} else {
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func easyjsonDecodeFlatFilter(in *jlexer.Lexer, out *FlatFilter) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		if decode, ok := flatFilterDecoders[key]; ok {
			decode(in, out)
		} else if len(key) > 1 && key[0] == '#' {
			in.AddError(fmt.Errorf("%w '%s'", ErrUnsupportedTag, key))
		} else {
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func writeKey(out *jwriter.Writer, key string, first *bool) {
	if !*first {
		out.RawByte(',')
	}
	*first = false
	out.RawByte('"')
	out.RawString(key)
	out.RawString("\":")
}

func easyjsonEncodeFilter(out *jwriter.Writer, in *Filter) {
	out.RawByte('{')
	first := true
	for i := range enumeratedFields {
		field := &enumeratedFields[i]
		if field.present(in) {
			writeKey(out, field.Name, &first)
			field.encode(out, in)
		}
	}
	for i := range passengerFields {
		field := &passengerFields[i]
		if field.present(in) {
			writeKey(out, field.Name, &first)
			field.encode(out, in)
		}
	}
	out.RawByte('}')
}

func easyjsonEncodeFlatFilter(out *jwriter.Writer, in *FlatFilter) {
	out.RawByte('{')
	first := true
	for i := range enumeratedFields {
		field := &enumeratedFields[i]
		if field.presentFlat(in) {
			writeKey(out, field.FlatName, &first)
			field.encodeFlat(out, in)
		}
	}
	for i := range passengerFields {
		field := &passengerFields[i]
		if field.presentFlat(in) {
			writeKey(out, field.FlatName, &first)
			field.encodeFlat(out, in)
		}
	}
	out.RawByte('}')
}

// MarshalJSON supports json.Marshaler interface
func (v Filter) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	easyjsonEncodeFilter(&w, &v)
	return w.Buffer.BuildBytes(), w.Error
}

// MarshalEasyJSON supports easyjson.Marshaler interface
func (v Filter) MarshalEasyJSON(w *jwriter.Writer) {
	w.NoEscapeHTML = true
	easyjsonEncodeFilter(w, &v)
}

// UnmarshalJSON supports json.Unmarshaler interface
func (v *Filter) UnmarshalJSON(data []byte) error {
	r := jlexer.Lexer{Data: data}
	easyjsonDecodeFilter(&r, v)
	return r.Error()
}

// UnmarshalEasyJSON supports easyjson.Unmarshaler interface
func (v *Filter) UnmarshalEasyJSON(l *jlexer.Lexer) {
	easyjsonDecodeFilter(l, v)
}

// MarshalJSON supports json.Marshaler interface
func (v FlatFilter) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	easyjsonEncodeFlatFilter(&w, &v)
	return w.Buffer.BuildBytes(), w.Error
}

// MarshalEasyJSON supports easyjson.Marshaler interface
func (v FlatFilter) MarshalEasyJSON(w *jwriter.Writer) {
	w.NoEscapeHTML = true
	easyjsonEncodeFlatFilter(w, &v)
}

// UnmarshalJSON supports json.Unmarshaler interface
func (v *FlatFilter) UnmarshalJSON(data []byte) error {
	r := jlexer.Lexer{Data: data}
	easyjsonDecodeFlatFilter(&r, v)
	return r.Error()
}

// UnmarshalEasyJSON supports easyjson.Unmarshaler interface
func (v *FlatFilter) UnmarshalEasyJSON(l *jlexer.Lexer) {
	easyjsonDecodeFlatFilter(l, v)
}

func (v Filters) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	v.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

func (v Filters) MarshalEasyJSON(w *jwriter.Writer) {
	w.NoEscapeHTML = true
	w.RawByte('[')
	for i := range v {
		if i > 0 {
			w.RawByte(',')
		}
		easyjsonEncodeFilter(w, &v[i])
	}
	w.RawByte(']')
}

func (v *Filters) UnmarshalJSON(data []byte) error {
	r := jlexer.Lexer{Data: data}
	v.UnmarshalEasyJSON(&r)
	return r.Error()
}

func (v *Filters) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		in.Skip()
		*v = nil
	} else {
		in.Delim('[')
		*v = (*v)[:0]
		for !in.IsDelim(']') {
			var f Filter
			easyjsonDecodeFilter(in, &f)
			*v = append(*v, f)
			in.WantComma()
		}
		in.Delim(']')
	}
	if isTopLevel {
		in.Consumed()
	}
}

func (v FlatFilters) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	v.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

func (v FlatFilters) MarshalEasyJSON(w *jwriter.Writer) {
	w.NoEscapeHTML = true
	w.RawByte('[')
	for i := range v {
		if i > 0 {
			w.RawByte(',')
		}
		easyjsonEncodeFlatFilter(w, &v[i])
	}
	w.RawByte(']')
}

func (v *FlatFilters) UnmarshalJSON(data []byte) error {
	r := jlexer.Lexer{Data: data}
	v.UnmarshalEasyJSON(&r)
	return r.Error()
}

func (v *FlatFilters) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		in.Skip()
		*v = nil
	} else {
		in.Delim('[')
		*v = (*v)[:0]
		for !in.IsDelim(']') {
			var f FlatFilter
			easyjsonDecodeFlatFilter(in, &f)
			*v = append(*v, f)
			in.WantComma()
		}
		in.Delim(']')
	}
	if isTopLevel {
		in.Consumed()
	}
}

// ParseFilter decodes a single filter object.
func ParseFilter(data []byte) (Filter, error) {
	var f Filter
	if err := easyjson.Unmarshal(data, &f); err != nil {
		return Filter{}, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}

// ParseFlatFilter decodes a single flat filter object.
func ParseFlatFilter(data []byte) (FlatFilter, error) {
	var f FlatFilter
	if err := easyjson.Unmarshal(data, &f); err != nil {
		return FlatFilter{}, fmt.Errorf("invalid flat filter: %w", err)
	}
	return f, nil
}

// ParseFilters decodes a JSON array of filters.
func ParseFilters(data []byte) (Filters, error) {
	var fs Filters
	if err := easyjson.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("invalid filter list: %w", err)
	}
	return fs, nil
}

// ParseFlatFilters decodes a JSON array of flat filters.
func ParseFlatFilters(data []byte) (FlatFilters, error) {
	var fs FlatFilters
	if err := easyjson.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("invalid flat filter list: %w", err)
	}
	return fs, nil
}
