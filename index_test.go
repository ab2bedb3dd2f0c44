package jagged

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBytes(t *testing.T) {
	cases := []Index{
		NewIndex8([]int8{-1, 0, 127}),
		NewIndexU8([]uint8{0, 200, 255}),
		NewIndex32([]int32{-5, 1 << 20, 3}),
		NewIndexU32([]uint32{0, 1 << 31, 7}),
		NewIndex64([]int64{-1 << 40, 0, 1 << 40}),
	}
	for _, idx := range cases {
		t.Run(idx.Form().String(), func(t *testing.T) {
			data := idx.Bytes()
			assert.Len(t, data, idx.Len()*idx.Form().ItemSize())
			got, err := IndexFromBytes(idx.Form(), data)
			require.NoError(t, err)
			if diff := cmp.Diff(idx.Int64s(), got.Int64s()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := IndexFromBytes(IndexI32, []byte{1, 2, 3})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestIndexGetItem(t *testing.T) {
	idx := NewIndex64([]int64{10, 20, 30, 40})
	v, err := idx.GetItem(-1)
	require.NoError(t, err)
	assert.Equal(t, int64(40), v)
	_, err = idx.GetItem(4)
	assert.Error(t, err)

	sub := idx.GetItemRange(1, 100)
	assert.Equal(t, []int64{20, 30, 40}, sub.Int64s())
	assert.Equal(t, 1, sub.Offset())
	assert.Equal(t, []int64{30}, sub.GetItemRangeNowrap(1, 2).Int64s())
}

func TestNBytes(t *testing.T) {
	c := jaggedInts()
	assert.Equal(t, 4*8+5*8, NBytes(c))

	// views count the whole buffer once
	sub, err := c.GetItemRange(1, 3)
	require.NoError(t, err)
	assert.Equal(t, NBytes(c), NBytes(sub))
	x := NewIndexedArray(NewIndex64([]int64{0, 0}), c)
	assert.Equal(t, NBytes(c)+2*8, NBytes(x))
}

func TestParseIndexForm(t *testing.T) {
	for _, name := range []string{"i8", "u8", "i32", "u32", "i64"} {
		f, err := ParseIndexForm(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.String())
	}
	_, err := ParseIndexForm("i16")
	assert.Error(t, err)
}

func TestIdentities(t *testing.T) {
	root := NewRootIdentities(3)
	assert.Equal(t, 1, root.Width())
	assert.Equal(t, "[1]", root.Identity(1))

	_, err := NewIdentities(uuid.New(), 2, 3, []int64{0, 1})
	assert.Error(t, err)

	c, err := WithIdentities(jaggedInts(), root)
	require.NoError(t, err)
	require.NotNil(t, c.Identities())
	assert.True(t, c.Form().HasIdentities())

	inner, err := c.GetItemRange(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "[1]", inner.Identities().Identity(0))

	_, err = WithIdentities(jaggedInts(), NewRootIdentities(2))
	assert.Equal(t, KindValidation, KindOf(err))
}
