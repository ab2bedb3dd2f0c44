package jagged

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferFixtures() map[string]Content {
	return map[string]Content{
		"numpy":      NumpyOf(1.5, 2.5, 3.5),
		"empty":      NewEmptyArray(),
		"regular":    NewRegularArray(NumpyOf[int64](0, 1, 2, 3, 4, 5), 3),
		"list":       NewListArray(NewIndex64([]int64{3, 0, 3}), NewIndex64([]int64{5, 3, 3}), NumpyOf(1.1, 2.2, 3.3, 4.4, 5.5)),
		"listoffset": jaggedFloats(),
		"indexed":    NewIndexedArray(NewIndex32([]int32{2, 0}), jaggedInts()),
		"option":     NewIndexedOptionArray(NewIndex64([]int64{2, -1, 0}), NumpyOf[int64](1, 2, 3)),
		"bytemasked": NewByteMaskedArray(NewIndex8([]int8{0, 1, 0}), NumpyOf[int64](1, 2, 3), false),
		"bitmasked":  NewBitMaskedArray(NewIndexU8([]uint8{0x05}), NumpyOf[int64](1, 2, 3), true, 3, true),
		"unmasked":   NewUnmaskedArray(NumpyOf[int32](4, 5)),
		"records":    records(),
		"union":      NewUnionArray(NewIndex8([]int8{0, 1, 0}), NewIndex64([]int64{0, 0, 1}), []Content{NumpyOf(1.1, 2.2), jaggedInts()}),
		"string":     WithParameter(NewListOffsetArray(NewIndex64([]int64{0, 2, 5}), NumpyOf[uint8]('h', 'i', 't', 'h', 'o')), "__array__", `"string"`),
	}
}

func TestBuffersRoundTrip(t *testing.T) {
	for name, c := range bufferFixtures() {
		t.Run(name, func(t *testing.T) {
			want := mustJSON(t, c)
			for _, opts := range [][]BuffersOption{
				nil,
				{WithCompression(CompressionMeta{ID: "gzip"})},
				{WithPartition(3), WithCompression(CompressionMeta{ID: "zst"})},
			} {
				store := NewMemoryStore()
				form, length, err := ToBuffers(c, store, opts...)
				require.NoError(t, err)
				assert.Equal(t, c.Length(), length)
				assert.Equal(t, "node0", form.FormKey())
				assert.True(t, SameLayout(c.Form(), form))

				// forms survive their JSON encoding
				form, err = FormFromString(form.ToJSON(false, false))
				require.NoError(t, err)

				out, err := FromBuffers(form, length, store, opts...)
				require.NoError(t, err)
				require.NoError(t, Validate(out))
				assert.Equal(t, want, mustJSON(t, out))
			}
		})
	}
}

func TestBuffersKeys(t *testing.T) {
	store := NewMemoryStore()
	_, _, err := ToBuffers(jaggedFloats(), store, WithPartition(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"part2-node0-offsets", "part2-node1-data"}, store.Keys())
	assert.Equal(t, 4*8+5*8, store.Size())

	store = NewMemoryStore()
	prefixed := func(partition int, formKey, role string) string {
		return "arr/" + DefaultKeyFormat(partition, formKey, role)
	}
	form, length, err := ToBuffers(records(), store, WithKeyFormat(prefixed))
	require.NoError(t, err)
	assert.Equal(t, []string{"arr/part0-node1-data", "arr/part0-node2-offsets", "arr/part0-node3-data"}, store.Keys())

	_, err = FromBuffers(form, length, store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	out, err := FromBuffers(form, length, store, WithKeyFormat(prefixed))
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, records()), mustJSON(t, out))
}

func TestBuffersTrimsRecordFields(t *testing.T) {
	rec := NewRecordArrayLength([]Content{NumpyOf[int64](1, 2, 3, 4)}, []string{"a"}, 2)
	store := NewMemoryStore()
	form, length, err := ToBuffers(rec, store)
	require.NoError(t, err)
	assert.Equal(t, 2, length)
	assert.Equal(t, 2*8, store.Size())
	out, err := FromBuffers(form, length, store)
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1},{"a":2}]`, mustJSON(t, out))
}

func TestBuffersLazy(t *testing.T) {
	cache, err := NewLRUCache(16)
	require.NoError(t, err)
	store := NewMemoryStore()
	form, length, err := ToBuffers(records(), store)
	require.NoError(t, err)

	out, err := FromBuffers(form, length, store, WithLazy(cache))
	require.NoError(t, err)
	v, ok := out.(*VirtualArray)
	require.True(t, ok)
	assert.Equal(t, 3, v.Length())
	assert.Equal(t, 0, cache.Len())

	x := mustSelect(t, v, SliceField{"x"})
	assert.Equal(t, "[1,2,3]", mustJSON(t, x))
	assert.Equal(t, mustJSON(t, records()), mustJSON(t, v))
	assert.Greater(t, cache.Len(), 1)

	// materialized arrays can be written back out
	again := NewMemoryStore()
	_, _, err = ToBuffers(v, again)
	require.NoError(t, err)
	assert.Equal(t, store.Keys(), again.Keys())
}

func TestBuffersErrors(t *testing.T) {
	scalar, err := NumpyOf[int64](1).GetItemAt(0)
	require.NoError(t, err)
	_, _, err = ToBuffers(scalar, NewMemoryStore())
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = FromBuffers(NewPrimitiveForm(Int64), 1, NewMemoryStore())
	assert.Equal(t, KindValidation, KindOf(err))

	store := NewMemoryStore()
	form, _, err := ToBuffers(NumpyOf[int64](1, 2), store)
	require.NoError(t, err)
	_, err = FromBuffers(form, 3, store)
	assert.Error(t, err)
}
