package jagged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceInnermost(t *testing.T) {
	cases := []struct {
		reducer Reducer
		mask    bool
		want    string
	}{
		{Sum, false, "[6,0,9]"},
		{Prod, false, "[6,1,20]"},
		{Count, false, "[3,0,2]"},
		{CountNonzero, false, "[3,0,2]"},
		{Any, false, "[true,false,true]"},
		{All, false, "[true,true,true]"},
		{ArgMin, false, "[0,-1,0]"},
		{ArgMax, false, "[2,-1,1]"},
		{Min, true, "[1,null,4]"},
		{Max, true, "[3,null,5]"},
	}
	for _, tc := range cases {
		t.Run(tc.reducer.Name(), func(t *testing.T) {
			out, err := Reduce(jaggedInts(), tc.reducer, -1, tc.mask, false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, mustJSON(t, out))
		})
	}
}

func TestReduceOuter(t *testing.T) {
	out, err := Reduce(jaggedInts(), Sum, 0, false, false)
	require.NoError(t, err)
	assert.Equal(t, "[5,7,3]", mustJSON(t, out))

	out, err = Reduce(jaggedInts(), Count, 0, false, false)
	require.NoError(t, err)
	assert.Equal(t, "[2,2,1]", mustJSON(t, out))
}

func TestReduceKeepdims(t *testing.T) {
	out, err := Reduce(jaggedInts(), Sum, -1, false, true)
	require.NoError(t, err)
	assert.Equal(t, "[[6],[0],[9]]", mustJSON(t, out))
}

func TestReduceFlat(t *testing.T) {
	out, err := Reduce(NumpyOf[int64](1, 2, 3), Sum, 0, false, false)
	require.NoError(t, err)
	assert.True(t, out.IsScalar())
	assert.Equal(t, "6", mustJSON(t, out))

	out, err = Reduce(NumpyOf(1.5, 2.5), Max, -1, false, false)
	require.NoError(t, err)
	assert.Equal(t, "2.5", mustJSON(t, out))
}

func TestReducePrimitive(t *testing.T) {
	assert.Equal(t, Int64, Sum.Primitive(Int8))
	assert.Equal(t, Uint64, Sum.Primitive(Uint16))
	assert.Equal(t, Float32, Sum.Primitive(Float32))
	assert.Equal(t, Bool, Any.Primitive(Float64))
	assert.Equal(t, Int32, Min.Primitive(Int32))
	for name, r := range Reducers {
		assert.Equal(t, name, r.Name())
	}
}

func TestReduceErrors(t *testing.T) {
	_, err := Reduce(jaggedInts(), Sum, 2, false, false)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	scalar, err := NumpyOf[int64](1).GetItemAt(0)
	require.NoError(t, err)
	_, err = Reduce(scalar, Sum, 0, false, false)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestReduceAxisNormalization(t *testing.T) {
	reduce := func(c Content, axis int) string {
		t.Helper()
		out, err := Reduce(c, Sum, axis, false, false)
		require.NoError(t, err)
		return mustJSON(t, out)
	}

	assert.Equal(t, reduce(jaggedInts(), 1), reduce(jaggedInts(), -1))
	assert.Equal(t, reduce(jaggedInts(), 0), reduce(jaggedInts(), -2))

	nested := nestedInts()
	assert.Equal(t, "[[3,7],[45]]", reduce(nested, -1))
	assert.Equal(t, reduce(nested, 2), reduce(nested, -1))
	assert.Equal(t, reduce(nested, 1), reduce(nested, -2))
	assert.Equal(t, reduce(nested, 0), reduce(nested, -3))

	cases := []struct {
		c    Content
		axis int
	}{
		{jaggedInts(), 2},
		{jaggedInts(), -3},
		{nested, 3},
		{nested, -4},
		{NumpyOf[int64](1, 2), 1},
		{NumpyOf[int64](1, 2), -2},
	}
	for _, tc := range cases {
		_, err := Reduce(tc.c, Sum, tc.axis, false, false)
		assert.Equal(t, KindValidation, KindOf(err), "%s axis=%d", tc.c.ClassName(), tc.axis)
	}
}

func TestReduceBranchingAxis(t *testing.T) {
	// branches of depth 2 and 3
	u := NewUnionArray(NewIndex8([]int8{0, 1}), NewIndex64([]int64{0, 0}), []Content{jaggedInts(), nestedInts()})
	branch, depth := BranchDepth(u)
	require.True(t, branch)
	require.Equal(t, 2, depth)

	for _, axis := range []int{0, 1, 2, -3} {
		_, err := Reduce(u, Sum, axis, false, false)
		assert.Equal(t, KindValidation, KindOf(err), "axis=%d", axis)
	}
	for _, axis := range []int{-1, -2} {
		_, err := Reduce(u, Sum, axis, false, false)
		assert.Equal(t, KindUnhandled, KindOf(err), "axis=%d", axis)
	}
}
