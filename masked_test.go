package jagged

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteMaskedArray(t *testing.T) {
	b := NewByteMaskedArray(NewIndex8([]int8{0, 1, 0}), NumpyOf[int64](1, 2, 3), false)
	assert.Equal(t, "[1,null,3]", mustJSON(t, b))
	require.NoError(t, Validate(b))

	projected, err := b.Project()
	require.NoError(t, err)
	assert.Equal(t, "[1,3]", mustJSON(t, projected))

	opt, err := b.ToIndexedOptionArray64()
	require.NoError(t, err)
	if diff := cmp.Diff([]int64{0, -1, 2}, opt.Index().Int64s()); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}

	v, err := b.GetItemAt(1)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, "[null,3]", mustJSON(t, mustSelect(t, b, RangeFrom(1))))
}

func TestBitMaskedArray(t *testing.T) {
	lsb := NewBitMaskedArray(NewIndexU8([]uint8{0x05}), NumpyOf[int64](1, 2, 3), true, 3, true)
	msb := NewBitMaskedArray(NewIndexU8([]uint8{0xa0}), NumpyOf[int64](1, 2, 3), true, 3, false)
	for _, b := range []*BitMaskedArray{lsb, msb} {
		assert.Equal(t, "[1,null,3]", mustJSON(t, b))
		require.NoError(t, Validate(b))
		mask, err := b.ByteMask()
		require.NoError(t, err)
		if diff := cmp.Diff([]int64{0, 1, 0}, mask.Int64s()); diff != "" {
			t.Errorf("bytemask mismatch (-want +got):\n%s", diff)
		}
	}

	packed, err := FromByteMask(NewIndex8([]int8{0, 1, 0}), NumpyOf[int64](1, 2, 3), true, true)
	require.NoError(t, err)
	assert.Equal(t, "[1,null,3]", mustJSON(t, packed))
	if diff := cmp.Diff([]int64{0x05}, packed.Mask().Int64s()); diff != "" {
		t.Errorf("packed mask mismatch (-want +got):\n%s", diff)
	}

	bm, err := lsb.ToByteMaskedArray()
	require.NoError(t, err)
	assert.Equal(t, "[1,null,3]", mustJSON(t, bm))
}

func TestUnmaskedArray(t *testing.T) {
	u := NewUnmaskedArray(NumpyOf[int64](1, 2, 3))
	assert.Equal(t, "[1,2,3]", mustJSON(t, u))
	mask, err := u.ByteMask()
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 0}, mask.Int64s())
	assert.Equal(t, "[1,2,3]", mustJSON(t, u.ToIndexedOptionArray64()))
}

func TestIndexedArray(t *testing.T) {
	x := NewIndexedArray(NewIndex64([]int64{2, 2, 0}), jaggedInts())
	assert.Equal(t, "[[4,5],[4,5],[1,2,3]]", mustJSON(t, x))

	projected, err := x.Project()
	require.NoError(t, err)
	assert.Equal(t, 3, projected.Length())
	assert.Equal(t, "[[4,5],[4,5],[1,2,3]]", mustJSON(t, projected))

	bad := NewIndexedArray(NewIndex64([]int64{0, 3}), NumpyOf[int64](1, 2))
	assert.Error(t, Validate(bad))
}

func TestIndexedSimplify(t *testing.T) {
	inner := NewIndexedOptionArray(NewIndex64([]int64{1, -1, 0}), NumpyOf[int64](10, 20))
	outer := NewIndexedArray(NewIndex64([]int64{2, 1, 0}), inner)
	simple, err := outer.Simplify()
	require.NoError(t, err)
	opt, ok := simple.(*IndexedOptionArray)
	require.True(t, ok)
	if diff := cmp.Diff([]int64{0, -1, 1}, opt.Index().Int64s()); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, mustJSON(t, outer), mustJSON(t, simple))
	assert.Equal(t, 1, opt.NumNull())

	nested := NewIndexedOptionArray(NewIndex64([]int64{0, 1, 2}), inner)
	simple, err = nested.Simplify()
	require.NoError(t, err)
	assert.Equal(t, "[20,null,10]", mustJSON(t, simple))
	_, nestedOption := simple.(*IndexedOptionArray).Content().(*IndexedOptionArray)
	assert.False(t, nestedOption)
}

func TestUnionProjectSimplify(t *testing.T) {
	u := NewUnionArray(NewIndex8([]int8{0, 1, 0}), NewIndex64([]int64{0, 0, 1}), []Content{NumpyOf(1.1, 2.2), NumpyOf[int64](5)})
	p, err := u.Project(0)
	require.NoError(t, err)
	assert.Equal(t, "[1.1,2.2]", mustJSON(t, p))
	_, err = u.Project(2)
	assert.Equal(t, KindValidation, KindOf(err))

	inner := NewUnionArray(NewIndex8([]int8{1, 0}), NewIndex64([]int64{0, 0}), []Content{NumpyOf[int64](7), NumpyOf(9.5)})
	outer := NewUnionArray(NewIndex8([]int8{1, 0, 1}), NewIndex64([]int64{0, 0, 1}), []Content{NumpyOf(0.5), inner})
	simple, err := outer.Simplify()
	require.NoError(t, err)
	flat, ok := simple.(*UnionArray)
	require.True(t, ok)
	assert.Equal(t, 3, flat.NumContents())
	assert.Equal(t, "[9.5,0.5,7]", mustJSON(t, flat))

	single := NewUnionArray(NewIndex8([]int8{0, 0}), NewIndex64([]int64{1, 0}), []Content{NumpyOf[int64](3, 4)})
	collapsed, err := single.Simplify()
	require.NoError(t, err)
	assert.Equal(t, "[4,3]", mustJSON(t, collapsed))
}
