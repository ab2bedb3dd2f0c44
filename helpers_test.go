package jagged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, c Content) string {
	t.Helper()
	out, err := ToJSON(c, false, -1)
	require.NoError(t, err)
	return out
}

func mustSelect(t *testing.T, c Content, items ...SliceItem) Content {
	t.Helper()
	out, err := Select(c, items...)
	require.NoError(t, err)
	return out
}

// [[1.1, 2.2, 3.3], [], [4.4, 5.5]]
func jaggedFloats() *ListOffsetArray {
	return NewListOffsetArray(NewIndex64([]int64{0, 3, 3, 5}), NumpyOf(1.1, 2.2, 3.3, 4.4, 5.5))
}

// [[1, 2, 3], [], [4, 5]]
func jaggedInts() *ListOffsetArray {
	return NewListOffsetArray(NewIndex64([]int64{0, 3, 3, 5}), NumpyOf[int64](1, 2, 3, 4, 5))
}

// [{"x": 1, "y": [1.1]}, {"x": 2, "y": []}, {"x": 3, "y": [2.2, 3.3]}]
func records() *RecordArray {
	y := NewListOffsetArray(NewIndex64([]int64{0, 1, 1, 3}), NumpyOf(1.1, 2.2, 3.3))
	return NewRecordArray([]Content{NumpyOf[int64](1, 2, 3), y}, []string{"x", "y"})
}

// [[[0, 1, 2], [3, 4]], [[5, 6, 7, 8, 9, 10]]]
func nestedInts() *ListOffsetArray {
	inner := NewListOffsetArray(NewIndex64([]int64{0, 3, 5, 11}), NumpyOf[int64](0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	return NewListOffsetArray(NewIndex64([]int64{0, 2, 3}), inner)
}
