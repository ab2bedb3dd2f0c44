package jagged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumpyShaped(t *testing.T) {
	n, err := NumpyShaped([]int32{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, n.Shape())
	assert.Equal(t, Int32, n.Primitive())
	assert.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0}, n.Bytes()[:8])
	assert.Equal(t, "[[1,2,3],[4,5,6]]", mustJSON(t, n))

	_, err = NumpyShaped([]int32{1, 2, 3}, 2, 2)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestNumpyOf(t *testing.T) {
	b := NumpyOf(true, false, true)
	assert.Equal(t, []byte{1, 0, 1}, b.Bytes())
	assert.Equal(t, "[true,false,true]", mustJSON(t, b))

	empty := NumpyOf[float64]()
	assert.Equal(t, 0, empty.Length())
	assert.Empty(t, empty.Bytes())
	assert.Equal(t, "[]", mustJSON(t, empty))

	vals, err := NumpyValues[int16](NumpyOf[int16](-1, 300))
	require.NoError(t, err)
	assert.Equal(t, []int16{-1, 300}, vals)
}
