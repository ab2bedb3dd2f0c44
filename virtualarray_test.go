package jagged

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingGenerator(c Content, form Form, length int) (*FuncGenerator, *int) {
	calls := 0
	return NewFuncGenerator(func() (Content, error) {
		calls++
		return c, nil
	}, form, length), &calls
}

func TestVirtualArrayCaching(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache, err := NewLRUCache(4, WithCacheRegisterer(reg))
	require.NoError(t, err)

	g, calls := countingGenerator(jaggedFloats(), jaggedFloats().Form(), 3)
	v := NewVirtualArray(g, cache)
	assert.Equal(t, 3, v.Length())
	assert.Equal(t, 0, *calls)

	_, ok := v.Peek()
	assert.False(t, ok)
	assert.Equal(t, "[[1.1,2.2,3.3],[],[4.4,5.5]]", mustJSON(t, v))
	assert.Equal(t, "[4.4,5.5]", mustJSON(t, mustSelect(t, v, SliceAt{2})))
	assert.Equal(t, 1, *calls)
	assert.Equal(t, 1, cache.Len())

	assert.Equal(t, 1.0, testutil.ToFloat64(cache.puts))
	assert.Equal(t, 2.0, testutil.ToFloat64(cache.misses))
	assert.GreaterOrEqual(t, testutil.ToFloat64(cache.hits), 1.0)

	cache.Purge()
	_, err = v.Array()
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestVirtualArrayWithoutCache(t *testing.T) {
	g, calls := countingGenerator(NumpyOf[int64](1, 2, 3), nil, -1)
	v := NewVirtualArray(g, nil)
	assert.Equal(t, 3, v.Length())
	assert.Equal(t, "[1,2,3]", mustJSON(t, v))
	assert.Equal(t, 2, *calls)
	assert.Equal(t, "VirtualArray", v.Form().ClassName())
}

func TestVirtualArraySlicing(t *testing.T) {
	cache, err := NewLRUCache(4)
	require.NoError(t, err)
	g, calls := countingGenerator(NumpyOf[int64](1, 2, 3, 4), nil, 4)
	v := NewVirtualArray(g, cache)

	sub, err := v.GetItemRange(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "VirtualArray", sub.ClassName())
	assert.Equal(t, 2, sub.Length())
	assert.Equal(t, 0, *calls)

	assert.Equal(t, "[2,3]", mustJSON(t, sub))
	assert.Equal(t, 1, *calls)

	// once the parent is cached, ranges are taken directly
	sub, err = v.GetItemRange(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "NumpyArray", sub.ClassName())
}

func TestVirtualArrayChecks(t *testing.T) {
	g, _ := countingGenerator(NumpyOf[int64](1, 2), jaggedFloats().Form(), -1)
	_, err := NewVirtualArray(g, nil).Array()
	assert.Equal(t, KindValidation, KindOf(err))

	g, _ = countingGenerator(NumpyOf[int64](1, 2), nil, 5)
	_, err = NewVirtualArray(g, nil).Array()
	assert.Equal(t, KindValidation, KindOf(err))

	failing := NewFuncGenerator(func() (Content, error) { return nil, fmt.Errorf("boom") }, nil, -1)
	v := NewVirtualArray(failing, nil)
	_, err = v.Array()
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 0, v.Length())
}

func TestLRUCacheEviction(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache, err := NewLRUCache(2, WithCacheRegisterer(reg))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		cache.Put(fmt.Sprintf("a%d", i), NumpyOf[int64](int64(i)))
	}
	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("a0")
	assert.False(t, ok)
	got, ok := cache.Get("a2")
	require.True(t, ok)
	assert.Equal(t, "[2]", mustJSON(t, got))

	assert.Equal(t, 1.0, testutil.ToFloat64(cache.evictions))
	n, err := testutil.GatherAndCount(reg, "jagged_array_cache_puts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = NewLRUCache(0)
	assert.Error(t, err)
}
