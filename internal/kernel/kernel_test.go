package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegularizeRangeSlice(t *testing.T) {
	tests := []struct {
		name              string
		start, stop       int64
		hasstart, hasstop bool
		wantStart         int64
		wantStop          int64
	}{
		{"full", 0, 0, false, false, 0, 5},
		{"negative start", -2, 0, true, false, 3, 5},
		{"negative stop", 0, -1, false, true, 0, 4},
		{"clamped", -10, 10, true, true, 0, 5},
		{"inverted", 4, 2, true, true, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, stop := RegularizeRangeSlice(tt.start, tt.stop, true, tt.hasstart, tt.hasstop, 5)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantStop, stop)
		})
	}
}

func TestRangeLength(t *testing.T) {
	assert.Equal(t, int64(5), RangeLength(0, 5, 1))
	assert.Equal(t, int64(3), RangeLength(0, 5, 2))
	assert.Equal(t, int64(2), RangeLength(4, 0, -3))
	assert.Equal(t, int64(0), RangeLength(3, 3, 1))
}

func TestListGetitemNextAt(t *testing.T) {
	starts, stops := Int64s{0, 3, 3}, Int64s{3, 3, 5}
	tocarry := make([]int64, 3)

	err := ListGetitemNextAt(tocarry, Int64s{0, 3}, Int64s{3, 5}, -1)
	require.True(t, err.Ok())
	assert.Equal(t, []int64{2, 4}, tocarry[:2])

	err = ListGetitemNextAt(tocarry, starts, stops, 0)
	require.False(t, err.Ok())
	assert.Equal(t, "ListGetitemNextAt", err.Kernel)
	assert.Equal(t, int64(1), err.Identity)
}

func TestListCompactOffsets(t *testing.T) {
	offsets := make([]int64, 4)
	require.True(t, ListCompactOffsets(offsets, Int64s{5, 0, 2}, Int64s{7, 0, 5}).Ok())
	assert.Equal(t, []int64{0, 2, 2, 5}, offsets)

	carry := make([]int64, 5)
	require.True(t, ListBroadcastCarry(carry, Int64s{5, 0, 2}, Int64s{7, 0, 5}).Ok())
	assert.Equal(t, []int64{5, 6, 2, 3, 4}, carry)

	err := ListCompactOffsets(offsets, Int64s{3}, Int64s{1})
	assert.Equal(t, "stops[i] < starts[i]", err.Str)
}

func TestListValidity(t *testing.T) {
	assert.True(t, ListValidity(Int64s{0, 2}, Int64s{2, 4}, 4).Ok())
	assert.True(t, ListValidity(Int64s{9}, Int64s{9}, 4).Ok(), "empty lists may point anywhere")
	assert.False(t, ListValidity(Int64s{0, 2}, Int64s{2, 5}, 4).Ok())
	assert.False(t, ListValidity(Int64s{0, 2}, Int64s{2}, 4).Ok())
}

func TestIndexedKernels(t *testing.T) {
	index := Int64s{2, -1, 0, -1}
	assert.Equal(t, int64(2), IndexedNumNull(index))

	tocarry := make([]int64, 2)
	outindex := make([]int64, 4)
	require.True(t, IndexedGetitemNextCarryOutIndex(tocarry, outindex, index, 3).Ok())
	assert.Equal(t, []int64{2, 0}, tocarry)
	assert.Equal(t, []int64{0, -1, 1, -1}, outindex)

	mask := make([]int8, 4)
	require.True(t, IndexedByteMask(mask, index).Ok())
	assert.Equal(t, []int8{0, 1, 0, 1}, mask)

	assert.False(t, IndexedValidity(index, 2, true).Ok())
	assert.False(t, IndexedValidity(index, 3, false).Ok())
	assert.True(t, IndexedValidity(index, 3, true).Ok())
}

func TestIndexedSimplify(t *testing.T) {
	toindex := make([]int64, 4)
	require.True(t, IndexedSimplify(toindex, Int64s{1, -1, 0, 2}, Int64s{5, 6, -1}).Ok())
	assert.Equal(t, []int64{6, -1, 5, -1}, toindex)
}

func TestByteMaskedKernels(t *testing.T) {
	mask := Int64s{1, 0, 1}

	toindex := make([]int64, 3)
	require.True(t, ByteMaskedToIndex(toindex, mask, true).Ok())
	assert.Equal(t, []int64{0, -1, 2}, toindex)

	tomask := make([]int8, 3)
	require.True(t, ByteMaskedByteMask(tomask, mask, false).Ok())
	assert.Equal(t, []int8{1, 0, 1}, tomask)

	carried := make([]int8, 2)
	require.True(t, ByteMaskedGetitemCarry(carried, mask, Int64s{1, 0}).Ok())
	assert.Equal(t, []int8{0, 1}, carried)
	assert.False(t, ByteMaskedGetitemCarry(carried, mask, Int64s{3, 0}).Ok())
}

func TestBitMaskRoundTrip(t *testing.T) {
	bytemask := Int64s{0, 1, 1, 0, 0, 0, 0, 0, 1, 0}
	for _, lsb := range []bool{true, false} {
		for _, validWhen := range []bool{true, false} {
			bits := make([]uint8, 2)
			require.True(t, BitMaskedFromByteMask(bits, bytemask, validWhen, lsb).Ok())
			ints := make(Int64s, len(bits))
			for i, b := range bits {
				ints[i] = int64(b)
			}
			back := make([]int8, len(bytemask))
			require.True(t, BitMaskedToByteMask(back, ints, validWhen, lsb).Ok())
			for i := range bytemask {
				assert.Equal(t, int8(bytemask[i]), back[i], "lsb=%v validWhen=%v at %d", lsb, validWhen, i)
			}
		}
	}

	lsbBits := make([]uint8, 1)
	require.True(t, BitMaskedFromByteMask(lsbBits, Int64s{1, 0, 0, 0, 0, 0, 0, 0}, false, true).Ok())
	assert.Equal(t, uint8(0x01), lsbBits[0])
	msbBits := make([]uint8, 1)
	require.True(t, BitMaskedFromByteMask(msbBits, Int64s{1, 0, 0, 0, 0, 0, 0, 0}, false, false).Ok())
	assert.Equal(t, uint8(0x80), msbBits[0])

	assert.False(t, BitMaskedToByteMask(make([]int8, 9), Int64s{0}, true, true).Ok())
}

func TestCombinations(t *testing.T) {
	tests := []struct {
		n, size     int64
		replacement bool
		want        int64
	}{
		{2, 6, false, 15},
		{3, 5, false, 10},
		{2, 3, true, 6},
		{4, 3, false, 0},
		{3, 3, false, 1},
		{1, 0, false, 0},
	}
	for _, tt := range tests {
		count := CombinationsCount(tt.n, tt.replacement, tt.size)
		assert.Equal(t, tt.want, count, "n=%d size=%d replacement=%v", tt.n, tt.size, tt.replacement)

		tocarry := make([][]int64, tt.n)
		for i := range tocarry {
			tocarry[i] = make([]int64, count)
		}
		require.True(t, Combinations(tocarry, tt.replacement, tt.size).Ok())
	}

	tocarry := [][]int64{make([]int64, 6), make([]int64, 6)}
	require.True(t, Combinations(tocarry, true, 3).Ok())
	assert.Equal(t, []int64{0, 0, 0, 1, 1, 2}, tocarry[0])
	assert.Equal(t, []int64{0, 1, 2, 1, 2, 2}, tocarry[1])

	short := [][]int64{make([]int64, 2), make([]int64, 2)}
	assert.False(t, Combinations(short, false, 3).Ok())
}

func TestRpad(t *testing.T) {
	toindex := make([]int64, 5)
	require.True(t, RpadAndClipAxis0(toindex, 3).Ok())
	assert.Equal(t, []int64{0, 1, 2, -1, -1}, toindex)

	starts, stops := Int64s{0, 3, 3}, Int64s{3, 3, 4}
	n := RpadAxis1Length(starts, stops, 2, false)
	assert.Equal(t, int64(7), n)
	offsets := make([]int64, 4)
	index := make([]int64, n)
	require.True(t, RpadAxis1(offsets, index, starts, stops, 2, false).Ok())
	assert.Equal(t, []int64{0, 3, 5, 7}, offsets)
	assert.Equal(t, []int64{0, 1, 2, -1, -1, 3, -1}, index)

	n = RpadAxis1Length(starts, stops, 2, true)
	assert.Equal(t, int64(6), n)
	index = make([]int64, n)
	require.True(t, RpadAxis1(offsets, index, starts, stops, 2, true).Ok())
	assert.Equal(t, []int64{0, 2, 4, 6}, offsets)
	assert.Equal(t, []int64{0, 1, -1, -1, 3, -1}, index)
}

func TestLocalIndexAxis1(t *testing.T) {
	toindex := make([]int64, 4)
	require.True(t, LocalIndexAxis1(toindex, Int64s{2, 5, 5, 6}).Ok())
	assert.Equal(t, []int64{0, 1, 2, 0}, toindex)
}

func TestUnionKernels(t *testing.T) {
	tags := Int64s{0, 1, 0, 1, 1}

	index := make([]int64, 5)
	require.True(t, UnionRegularIndex(index, tags, 2).Ok())
	assert.Equal(t, []int64{0, 0, 1, 1, 2}, index)
	assert.False(t, UnionRegularIndex(index, Int64s{2}, 2).Ok())

	assert.Equal(t, int64(3), UnionCountTag(tags, 1))

	tocarry := make([]int64, 3)
	positions := make([]int64, 3)
	require.True(t, UnionProject(tocarry, positions, tags, Int64s(index), 1).Ok())
	assert.Equal(t, []int64{0, 1, 2}, tocarry)
	assert.Equal(t, []int64{1, 3, 4}, positions)

	assert.True(t, UnionValidity(tags, Int64s(index), []int64{2, 3}).Ok())
	err := UnionValidity(tags, Int64s(index), []int64{2, 2})
	assert.Equal(t, "index[i] >= len(content[tags[i]])", err.Str)
	assert.Equal(t, int64(4), err.Identity)
}

func TestReduceLocal(t *testing.T) {
	nextparents := make([]int64, 5)
	require.True(t, ReduceLocalNextParents(nextparents, Int64s{0, 3, 3, 5}).Ok())
	assert.Equal(t, []int64{0, 0, 0, 2, 2}, nextparents)

	outoffsets := make([]int64, 3)
	require.True(t, ReduceLocalOutOffsets(outoffsets, Int64s{0, 0, 1}).Ok())
	assert.Equal(t, []int64{0, 2, 3}, outoffsets)

	mask := make([]int8, 3)
	require.True(t, ReduceMask(mask, Int64s{0, 0, 2}).Ok())
	assert.Equal(t, []int8{0, 1, 0}, mask)
}

func TestReducers(t *testing.T) {
	data := []int64{1, 2, 3, 4, 0}
	parents := Int64s{0, 0, 0, 2, 2}

	count := make([]int64, 3)
	require.True(t, ReduceCount(count, parents).Ok())
	assert.Equal(t, []int64{3, 0, 2}, count)

	nonzero := make([]int64, 3)
	require.True(t, ReduceCountNonzero(nonzero, data, parents).Ok())
	assert.Equal(t, []int64{3, 0, 1}, nonzero)

	sum := make([]int64, 3)
	require.True(t, ReduceSum(sum, data, parents).Ok())
	assert.Equal(t, []int64{6, 0, 4}, sum)

	prod := []int64{1, 1, 1}
	require.True(t, ReduceProd(prod, data, parents).Ok())
	assert.Equal(t, []int64{6, 1, 0}, prod)

	anyOut := make([]bool, 3)
	require.True(t, ReduceAny(anyOut, data, parents).Ok())
	assert.Equal(t, []bool{true, false, true}, anyOut)

	allOut := []bool{true, true, true}
	require.True(t, ReduceAll(allOut, data, parents).Ok())
	assert.Equal(t, []bool{true, true, false}, allOut)

	argmax := make([]int64, 3)
	require.True(t, ReduceArgMax(argmax, data, Int64s{0, 3, 3}, parents).Ok())
	assert.Equal(t, []int64{2, -1, 0}, argmax)

	argmin := make([]int64, 3)
	require.True(t, ReduceArgMin(argmin, data, Int64s{0, 3, 3}, parents).Ok())
	assert.Equal(t, []int64{0, -1, 1}, argmin)

	err := ReduceSum(make([]int64, 2), data, parents)
	assert.Equal(t, "ReduceSum", err.Kernel)
	assert.Equal(t, int64(3), err.Identity)
}

func TestReduceNonlocal(t *testing.T) {
	// [[1, 2, 3], [], [4, 5]] all in parent 0: element j of each list goes
	// to slot j.
	out, err := ReduceNonlocal(Int64s{0, 3, 3, 5}, Int64s{0, 0, 0}, 1)
	require.True(t, err.Ok())
	assert.Equal(t, int64(3), out.MaxCount)
	assert.Equal(t, []int64{0, 3, 1, 4, 2}, out.NextCarry)
	assert.Equal(t, []int64{0, 0, 1, 1, 2}, out.NextParents)
}
