package jagged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAsUnion(t *testing.T) {
	u, err := MergeAsUnion(NumpyOf(1.1, 2.2), NumpyOf[int64](5))
	require.NoError(t, err)
	assert.Equal(t, 2, u.NumContents())
	assert.Equal(t, "[1.1,2.2,5]", mustJSON(t, u))
	require.NoError(t, Validate(u))

	// unions contribute their branches rather than nesting
	v, err := MergeAsUnion(u, jaggedInts())
	require.NoError(t, err)
	assert.Equal(t, 3, v.NumContents())
	assert.Equal(t, 6, v.Length())
	assert.Equal(t, "[1.1,2.2,5,[1,2,3],[],[4,5]]", mustJSON(t, v))
}

func TestRpad(t *testing.T) {
	n := NumpyOf[int64](1, 2)
	out, err := RpadAxis0(n, 4, false)
	require.NoError(t, err)
	assert.Equal(t, "[1,2,null,null]", mustJSON(t, out))

	out, err = RpadAxis0(n, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", mustJSON(t, out))

	out, err = RpadAxis0(n, 1, true)
	require.NoError(t, err)
	assert.Equal(t, "[1]", mustJSON(t, out))

	out, err = Rpad(jaggedInts(), 2, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "[[1,2,3],[null,null],[4,5]]", mustJSON(t, out))

	out, err = Rpad(jaggedInts(), 2, 1, true)
	require.NoError(t, err)
	assert.Equal(t, "RegularArray", out.ClassName())
	assert.Equal(t, "[[1,2],[null,null],[4,5]]", mustJSON(t, out))

	_, err = Rpad(jaggedInts(), 2, -1, false)
	assert.Equal(t, KindUnhandled, KindOf(err))

	_, err = Rpad(NumpyOf[int64](1), 2, 1, false)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestLocalIndex(t *testing.T) {
	out, err := LocalIndex(jaggedInts(), 0)
	require.NoError(t, err)
	assert.Equal(t, "[0,1,2]", mustJSON(t, out))

	out, err = LocalIndex(jaggedInts(), 1)
	require.NoError(t, err)
	assert.Equal(t, "[[0,1,2],[],[0,1]]", mustJSON(t, out))

	out, err = LocalIndex(records(), 0)
	require.NoError(t, err)
	assert.Equal(t, "[0,1,2]", mustJSON(t, out))
}

func TestCombinations(t *testing.T) {
	out, err := CombinationsAxis0(NumpyOf[int64](0, 1, 2, 3, 4, 5), 2, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, out.Length())

	out, err = CombinationsAxis0(NumpyOf[int64](7, 8), 2, true, nil)
	require.NoError(t, err)
	assert.Equal(t, `[{"0":7,"1":7},{"0":7,"1":8},{"0":8,"1":8}]`, mustJSON(t, out))

	out, err = Combinations(jaggedInts(), 2, false, []string{"a", "b"}, 1)
	require.NoError(t, err)
	assert.Equal(t,
		`[[{"a":1,"b":2},{"a":1,"b":3},{"a":2,"b":3}],[],[{"a":4,"b":5}]]`,
		mustJSON(t, out))
	require.NoError(t, Validate(out))

	_, err = Combinations(jaggedInts(), 0, false, nil, 1)
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = Combinations(jaggedInts(), 2, false, []string{"a"}, 1)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestMergeAsUnionTags(t *testing.T) {
	u, err := MergeAsUnion(NumpyOf(0.5, 1.5, 2.5), NumpyOf[int64](10, 11, 12, 13))
	require.NoError(t, err)
	assert.Equal(t, 7, u.Length())
	assert.Equal(t, []int64{0, 0, 0, 1, 1, 1, 1}, u.Tags().Int64s())
	assert.Equal(t, []int64{0, 1, 2, 0, 1, 2, 3}, u.Index().Int64s())
	assert.Equal(t, "[0.5,1.5,2.5,10,11,12,13]", mustJSON(t, u))
}

func TestRpadAxis0Target(t *testing.T) {
	out, err := RpadAxis0(NumpyOf[int64](1, 2, 3, 4), 6, false)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Length())
	assert.Equal(t, "IndexedOptionArray64", out.ClassName())
	assert.Equal(t, "[1,2,3,4,null,null]", mustJSON(t, out))

	out, err = RpadAxis0(NumpyOf[int64](0, 1, 2, 3, 4, 5, 6, 7), 6, true)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Length())
	assert.Equal(t, "[0,1,2,3,4,5]", mustJSON(t, out))
}

func TestCombinationsCount(t *testing.T) {
	cases := []struct {
		replacement bool
		want        int
	}{
		{false, 10},
		{true, 15},
	}
	for _, tc := range cases {
		out, err := CombinationsAxis0(NumpyOf[int64](0, 1, 2, 3, 4), 2, tc.replacement, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, out.Length(), "replacement=%v", tc.replacement)
		require.NoError(t, Validate(out))
	}
}
