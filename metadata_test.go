package jagged

import (
	"os"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arrayMetaExample = `{
	"jagged_format": 1,
	"form": {
		"class": "RecordArray",
		"contents": {
			"x": {"class": "NumpyArray", "itemsize": 8, "format": "q", "primitive": "int64", "form_key": "node1"},
			"y": {
				"class": "ListOffsetArray64",
				"offsets": "i64",
				"content": {"class": "NumpyArray", "itemsize": 8, "format": "d", "primitive": "float64", "form_key": "node3"},
				"form_key": "node2"
			}
		},
		"form_key": "node0"
	},
	"length": 10,
	"partitions": [4, 4, 2],
	"compressor": {"id": "zst"}
}`

func TestMetadataSerialization(t *testing.T) {
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	m := &ArrayMeta{}
	require.NoError(t, json.Unmarshal([]byte(arrayMetaExample), m))
	assert.Equal(t, 1, m.FormatVersion)
	assert.Equal(t, 10, m.Length())
	assert.Equal(t, []string{"x", "y"}, m.Form.Keys())
	assert.Equal(t, "node2", m.Form.(*RecordForm).Contents[1].FormKey())
	require.NotNil(t, m.Compressor)
	assert.Equal(t, "zst", m.Compressor.ID)
	assert.Equal(t, MTArray, m.MetaType())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	again := &ArrayMeta{}
	require.NoError(t, json.Unmarshal(data, again))
	assert.True(t, SameLayout(m.Form, again.Form))
	assert.Equal(t, m.Partitions, again.Partitions)
	assert.Equal(t, m.Form.ToJSON(false, true), again.Form.ToJSON(false, true))
}

func TestMetadataErrors(t *testing.T) {
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	for _, doc := range []string{
		`{"jagged_format": 1, "length": 0, "partitions": []}`,
		`{"jagged_format": 1, "form": "int64", "length": 3, "partitions": [1, 1]}`,
		`{"jagged_format": 1, "form": {"class": "Nonsense"}, "length": 0}`,
	} {
		assert.Error(t, json.Unmarshal([]byte(doc), &ArrayMeta{}), doc)
	}

	_, err := json.Marshal(ArrayMeta{})
	assert.Error(t, err)
}

func TestKeyMetaType(t *testing.T) {
	cases := []struct {
		key string
		mt  MetaType
		ok  bool
	}{
		{".jarray", MTArray, true},
		{"a/b/.jgroup", MTGroup, true},
		{"a/.jattrs", MTAttributes, true},
		{"a/part0-node0-data", "", false},
		{"short", "", false},
	}
	for _, c := range cases {
		mt, ok := KeyMetaType(c.key)
		assert.Equal(t, c.ok, ok, c.key)
		if c.ok {
			assert.Equal(t, c.mt, mt, c.key)
		}
	}
}

func TestConsolidatedMetadata(t *testing.T) {
	cm := &ConsolidatedMetadata{}
	f, err := os.Open("./testdata/events.jmetadata")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(f).Decode(cm))
	assert.Equal(t, 1, cm.ConsolidatedFormat)
	assert.Equal(t, []string{"events/hits", "events/run"}, cm.Arrays())

	hits, ok := cm.Metadata["events/hits/.jarray"].(*ArrayMeta)
	require.True(t, ok)
	assert.Equal(t, 5, hits.Length())
	assert.Equal(t, "gzip", hits.Compressor.ID)

	attrs, ok := cm.Metadata["events/hits/.jattrs"].(Attributes)
	require.True(t, ok)
	assert.Equal(t, "GeV", attrs["units"])

	run := cm.Metadata["events/run/.jarray"].(*ArrayMeta)
	assert.Nil(t, run.Compressor)
	assert.Equal(t, "NumpyArray", run.Form.ClassName())

	err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(`{"metadata": {"x/.zarray": {}}}`), cm)
	assert.Error(t, err)
}
