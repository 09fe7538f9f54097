package reqfilter

import (
	"errors"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/mailru/easyjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestFilterUnmarshal(t *testing.T) {
	raw := `{"ids": ["abc"],"#e":["zzz"],"#something":["nothing","bab"],"since":1644254609,"search":"test","relays":["wss://x"]}`
	_, err := ParseFilter([]byte(raw))
	require.ErrorIs(t, err, ErrUnsupportedTag)

	raw = `{"ids": ["abc"],"#e":["zzz"],"#g":["u4pruyd"],"since":1644254609,"search":"test","relays":["wss://x"],"other":{"x":[1]}}`
	var f Filter
	require.NoError(t, json.Unmarshal([]byte(raw), &f))

	assert.Equal(t, []string{"abc"}, f.IDs)
	assert.Equal(t, []string{"zzz"}, f.ETags)
	assert.Equal(t, []string{"u4pruyd"}, f.GTags)
	assert.Equal(t, []string{"wss://x"}, f.Relays)
	assert.Equal(t, Timestamp(1644254609), *f.Since)
	assert.Equal(t, "test", *f.Search)
	assert.Nil(t, f.Until)
	assert.Nil(t, f.Limit)
	assert.Nil(t, f.Kinds)
}

func TestFilterMarshal(t *testing.T) {
	f := Filter{
		Kinds:  []Kind{1, 2, 4},
		IDs:    []string{"x"},
		PTags:  []string{"a"},
		Relays: []string{"wss://r"},
		Until:  Ptr[Timestamp](12345678),
		Limit:  Ptr[int32](10),
	}

	b, err := json.Marshal(f)
	require.NoError(t, err)
	require.Equal(t,
		`{"ids":["x"],"kinds":[1,2,4],"relays":["wss://r"],"#p":["a"],"until":12345678,"limit":10}`,
		string(b))
	require.Equal(t, string(b), f.String())
}

func TestFlatFilterMarshal(t *testing.T) {
	ff := FlatFilter{
		Author: Ptr("a"),
		Kind:   Ptr[Kind](0),
		Relay:  Ptr("wss://r"),
		TTag:   Ptr("nostr"),
		Since:  Ptr[Timestamp](0),
	}

	b, err := json.Marshal(ff)
	require.NoError(t, err)
	require.Equal(t, `{"authors":"a","kinds":0,"relay":"wss://r","#t":"nostr","since":0}`, string(b))

	back, err := ParseFlatFilter(b)
	require.NoError(t, err)
	require.True(t, FlatFilterEqual(ff, back))
}

func TestFilterRoundTrip(t *testing.T) {
	f := Filter{
		IDs:     []string{"i"},
		Authors: []string{"a", "b"},
		Kinds:   []Kind{1, 30023},
		Relays:  []string{"wss://r"},
		ETags:   []string{"e"},
		PTags:   []string{"p"},
		DTags:   []string{"d"},
		TTags:   []string{"t"},
		RTags:   []string{"https://r"},
		ATags:   []string{"30023:a:d"},
		GTags:   []string{"g"},
		KTags:   []string{"1"},
		ITags:   []string{"isbn:1"},
		Search:  Ptr("s"),
		Since:   Ptr[Timestamp](1),
		Until:   Ptr[Timestamp](2),
		Limit:   Ptr[int32](3),
	}

	b, err := easyjson.Marshal(f)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(b, &generic))
	require.Len(t, generic, len(Fields()))
	for _, info := range Fields() {
		require.Contains(t, generic, info.Name)
	}

	back, err := ParseFilter(b)
	require.NoError(t, err)
	require.True(t, FilterEqual(f, back), "%s != %s", f, back)
}

func TestFilterDecodingEdgeCases(t *testing.T) {
	t.Run("null and empty are absent", func(t *testing.T) {
		f, err := ParseFilter([]byte(`{"authors":null,"kinds":[],"#p":null,"limit":null}`))
		require.NoError(t, err)
		require.True(t, f.IsUnconstrained())
		require.Nil(t, f.Limit)
		require.Equal(t, `{}`, f.String())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		f, err := ParseFilter([]byte(`{"kinds":[1,1,7,1]}`))
		require.NoError(t, err)
		require.Equal(t, []Kind{1, 7}, f.Kinds)
	})

	t.Run("wrong value type", func(t *testing.T) {
		_, err := ParseFilter([]byte(`{"kinds":["1"]}`))
		require.Error(t, err)

		_, err = ParseFilter([]byte(`{"authors":"a"}`))
		require.Error(t, err)

		_, err = ParseFilter([]byte(`{"since":"yesterday"}`))
		require.Error(t, err)
	})

	t.Run("flat filter wants scalars", func(t *testing.T) {
		_, err := ParseFlatFilter([]byte(`{"authors":["a"]}`))
		require.Error(t, err)

		ff, err := ParseFlatFilter([]byte(`{"authors":"a","#z":null}`))
		require.NoError(t, err)
		require.Equal(t, "a", *ff.Author)
	})

	t.Run("unsupported tag on flat filter", func(t *testing.T) {
		_, err := ParseFlatFilter([]byte(`{"#z":"x"}`))
		require.True(t, errors.Is(err, ErrUnsupportedTag))
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := ParseFilter([]byte(`[1,2]`))
		require.Error(t, err)
	})
}

func TestFiltersList(t *testing.T) {
	fs, err := ParseFilters([]byte(`[{"kinds":[1]},{"authors":["a"],"limit":5}]`))
	require.NoError(t, err)
	require.Len(t, fs, 2)
	require.Equal(t, []Kind{1}, fs[0].Kinds)
	require.Equal(t, int32(5), *fs[1].Limit)

	b, err := easyjson.Marshal(Filters(nil))
	require.NoError(t, err)
	require.Equal(t, `[]`, string(b))

	flats := FlatFilters(Expand(Filter{Authors: []string{"a", "b"}, Kinds: []Kind{1}}))
	b, err = json.Marshal(flats)
	require.NoError(t, err)
	require.Equal(t, `[{"authors":"a","kinds":1},{"authors":"b","kinds":1}]`, string(b))

	back, err := ParseFlatFilters(b)
	require.NoError(t, err)
	require.Equal(t, flats, back)

	_, err = ParseFilters([]byte(`[{"#x":["1"]}]`))
	require.ErrorIs(t, err, ErrUnsupportedTag)
}

func TestFields(t *testing.T) {
	fields := Fields()
	require.Len(t, fields, 17)
	require.Equal(t, FieldInfo{Name: "ids", FlatName: "ids", Value: StringValue, Role: Enumerated}, fields[0])
	require.Equal(t, FieldInfo{Name: "relays", FlatName: "relay", Value: StringValue, Role: Enumerated}, fields[3])
	require.Equal(t, FieldInfo{Name: "limit", FlatName: "limit", Value: IntegerValue, Role: Passenger}, fields[16])
	require.Equal(t, "passenger", fields[16].Role.String())
	require.Equal(t, "integer", fields[2].Value.String())
}
