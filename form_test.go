package jagged

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormJSON(t *testing.T) {
	f := jaggedFloats().Form()
	assert.Equal(t, `{"class":"ListOffsetArray64","offsets":"i64","content":"float64"}`, f.ToJSON(false, false))

	parsed, err := FormFromString(f.ToJSON(true, false))
	require.NoError(t, err)
	assert.True(t, SameLayout(f, parsed))
	if diff := cmp.Diff(f.ToJSON(false, true), parsed.ToJSON(false, true)); diff != "" {
		t.Errorf("verbose form mismatch (-want +got):\n%s", diff)
	}

	rec := records().Form()
	assert.Equal(t,
		`{"class":"RecordArray","contents":{"x":"int64","y":{"class":"ListOffsetArray64","offsets":"i64","content":"float64"}}}`,
		rec.ToJSON(false, false))
	assert.Equal(t, []string{"x", "y"}, rec.Keys())
	i, err := rec.FieldIndex("y")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestFormFromJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		class string
	}{
		{"primitive", `"int32"`, "NumpyArray"},
		{"numpy", `{"class":"NumpyArray","inner_shape":[3],"itemsize":8,"format":"d","primitive":"float64"}`, "NumpyArray"},
		{"empty", `{"class":"EmptyArray"}`, "EmptyArray"},
		{"regular", `{"class":"RegularArray","size":3,"content":"float64"}`, "RegularArray"},
		{"list", `{"class":"ListArray32","starts":"i32","stops":"i32","content":"uint8"}`, "ListArray32"},
		{"indexed option", `{"class":"IndexedOptionArray64","index":"i64","content":"bool"}`, "IndexedOptionArray64"},
		{"bytemasked", `{"class":"ByteMaskedArray","mask":"i8","valid_when":true,"content":"int64"}`, "ByteMaskedArray"},
		{"tuple", `{"class":"RecordArray","contents":["int64","float64"]}`, "RecordArray"},
		{"union", `{"class":"UnionArray8_64","tags":"i8","index":"i64","contents":["int64","float64"]}`, "UnionArray8_64"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := FormFromString(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.class, f.ClassName())

			again, err := FormFromString(f.ToJSON(false, true))
			require.NoError(t, err)
			assert.True(t, SameLayout(f, again))
		})
	}
}

func TestFormFromJSONErrors(t *testing.T) {
	for _, input := range []string{
		`"float128"`,
		`{"class":"Nonsense"}`,
		`{"class":"RegularArray","content":"float64"}`,
		`{"class":"ListOffsetArray","content":"float64"}`,
		`{not json`,
	} {
		_, err := FormFromString(input)
		assert.Error(t, err, input)
		assert.Equal(t, KindValidation, KindOf(err), input)
	}
	assert.Panics(t, func() { MustForm(`{"class":"Nonsense"}`) })
}

func TestFormDepths(t *testing.T) {
	assert.Equal(t, 2, jaggedFloats().Form().PurelistDepth())
	assert.False(t, jaggedFloats().Form().PurelistIsRegular())

	reg := NewRegularArray(NumpyOf[int64](0, 1, 2, 3), 2)
	assert.True(t, PurelistIsRegular(reg))
	assert.Equal(t, 2, PurelistDepth(reg))

	rec := records()
	min, max := MinMaxDepth(rec)
	assert.Equal(t, 1, min)
	assert.Equal(t, 2, max)
	branch, depth := BranchDepth(rec)
	assert.True(t, branch)
	assert.Equal(t, 1, depth)

	branch, depth = BranchDepth(jaggedFloats())
	assert.False(t, branch)
	assert.Equal(t, 2, depth)
}

func TestParameters(t *testing.T) {
	c := WithParameter(NewListOffsetArray(NewIndex64([]int64{0, 1, 3}), NumpyOf[uint8]('a', 'b', 'c')), "__array__", `"string"`)
	assert.True(t, ParameterEquals(c, "__array__", `"string"`))
	assert.Equal(t, "string", c.Parameters().AsString("__array__"))
	assert.Equal(t, `["a","bc"]`, mustJSON(t, c))
	assert.Equal(t, `"string"`, PurelistParameter(c, "__array__"))

	p := Parameters{"b": `{"y":1,"x":2}`}
	assert.True(t, p.Equal(Parameters{"b": `{"x":2, "y":1}`, "c": "null"}))
	assert.Nil(t, p.With("b", "null"))
	assert.True(t, ParametersEqual(WithParameters(c, p), p))
}

func TestToJSONFloats(t *testing.T) {
	n := NumpyOf(1.0, 3.14159, -2.5)
	out, err := ToJSON(n, false, -1)
	require.NoError(t, err)
	assert.Equal(t, "[1.0,3.14159,-2.5]", out)

	out, err = ToJSON(n, false, 2)
	require.NoError(t, err)
	assert.Equal(t, "[1.0,3.14,-2.5]", out)
}

const allVariantsForm = `{
	"class": "RecordArray",
	"contents": {
		"tracks": {
			"class": "ListOffsetArray32",
			"offsets": "i32",
			"content": {
				"class": "RecordArray",
				"contents": ["float64", {"class": "NumpyArray", "inner_shape": [3], "itemsize": 4, "format": "f", "primitive": "float32"}]
			},
			"has_identities": true
		},
		"hits": {"class": "ListArrayU32", "starts": "u32", "stops": "u32", "content": {"class": "RegularArray", "size": 2, "content": "int16"}},
		"opt": {"class": "IndexedOptionArray64", "index": "i64", "content": {"class": "ByteMaskedArray", "mask": "i8", "valid_when": false, "content": "uint8"}},
		"idx": {
			"class": "IndexedArrayU32",
			"index": "u32",
			"content": {"class": "BitMaskedArray", "mask": "u8", "valid_when": true, "lsb_order": false, "content": {"class": "UnmaskedArray", "content": "bool"}}
		},
		"mixed": {"class": "UnionArray8_64", "tags": "i8", "index": "i64", "contents": [{"class": "EmptyArray"}, "uint64"]},
		"lazy": {"class": "VirtualArray", "form": "int32", "has_length": true},
		"text": {
			"class": "ListOffsetArray64",
			"offsets": "i64",
			"content": {"class": "NumpyArray", "itemsize": 1, "format": "B", "primitive": "uint8", "parameters": {"__array__": "char"}},
			"parameters": {"__array__": "string"}
		}
	},
	"parameters": {"__record__": "Event"},
	"form_key": "node0"
}`

func TestFormRoundTripAllVariants(t *testing.T) {
	f, err := FormFromString(allVariantsForm)
	require.NoError(t, err)
	assert.Equal(t, []string{"tracks", "hits", "opt", "idx", "mixed", "lazy", "text"}, f.Keys())
	assert.Equal(t, `"Event"`, f.Parameter("__record__"))
	assert.Equal(t, "node0", f.FormKey())

	canonical := f.ToJSON(false, true)
	for _, pretty := range []bool{false, true} {
		for _, verbose := range []bool{false, true} {
			text := f.ToJSON(pretty, verbose)
			again, err := FormFromString(text)
			require.NoError(t, err, "pretty=%v verbose=%v", pretty, verbose)
			assert.True(t, SameLayout(f, again))
			assert.Equal(t, text, again.ToJSON(pretty, verbose), "pretty=%v verbose=%v", pretty, verbose)
			if diff := cmp.Diff(canonical, again.ToJSON(false, true)); diff != "" {
				t.Errorf("pretty=%v verbose=%v mismatch (-want +got):\n%s", pretty, verbose, diff)
			}
		}
	}

	compact := f.ToJSON(false, false)
	assert.Contains(t, compact, `"has_identities":true`)
	assert.Contains(t, compact, `"class":"VirtualArray","form":"int32","has_length":true`)
	assert.NotContains(t, compact, `"has_identities":false`)
	assert.Contains(t, canonical, `"has_identities":false`)
}
