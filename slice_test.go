package jagged

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceString(t *testing.T) {
	s, err := NewSlice(SliceAt{-1}, RangeStep(1, 5, 2), RangeFrom(3), SliceEllipsis{}, SliceNewAxis{}, SliceField{"x"}, SliceFields{[]string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, `[-1, 1:5:2, 3:, ..., newaxis, "x", ["a", "b"]]`, s.String())
	assert.Equal(t, 7, s.Length())
	assert.Equal(t, 3, s.DimLength())
	assert.Equal(t, SliceAt{-1}, s.Head())
	assert.Equal(t, 6, s.Tail().Length())
}

func TestSliceBroadcast(t *testing.T) {
	col := SliceArray{Values: []int64{0, 1}, Shape: []int{2, 1}}
	row := SliceArray{Values: []int64{5, 6, 7}, Shape: []int{1, 3}}
	s, err := NewSlice(col, row, SliceAt{4})
	require.NoError(t, err)

	items := s.Items()
	want := []SliceItem{
		SliceArray{Values: []int64{0, 0, 0, 1, 1, 1}, Shape: []int{2, 3}},
		SliceArray{Values: []int64{5, 6, 7, 5, 6, 7}, Shape: []int{2, 3}},
		SliceArray{Values: []int64{4, 4, 4, 4, 4, 4}, Shape: []int{2, 3}},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("broadcast mismatch (-want +got):\n%s", diff)
	}

	_, err = NewSlice(Array(1, 2), Array(1, 2, 3))
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = NewSlice(SliceArray{Values: []int64{1}, Shape: []int{2}})
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = NewSlice(RangeStep(0, 1, 0))
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSliceHelpers(t *testing.T) {
	m := Missing([]int64{3, 9, 1}, []bool{true, false, true})
	assert.Equal(t, []int64{0, -1, 1}, m.Index.Int64s())
	assert.Equal(t, Array(3, 1), m.Content)
	assert.Equal(t, 3, m.Len())

	j := Jagged([]int64{1, 2}, nil, []int64{0})
	assert.Equal(t, 3, j.Len())
	assert.Equal(t, []int64{0, 2, 2, 3}, j.Offsets.Int64s())
	assert.Equal(t, []int64{0, 2, 2}, j.starts().Int64s())
	assert.Equal(t, []int64{2, 2, 3}, j.stops().Int64s())
}
