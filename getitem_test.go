package jagged

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBasic(t *testing.T) {
	c := jaggedFloats()
	cases := []struct {
		name  string
		items []SliceItem
		want  string
	}{
		{"at", []SliceItem{SliceAt{2}}, "[4.4,5.5]"},
		{"negative at", []SliceItem{SliceAt{-3}}, "[1.1,2.2,3.3]"},
		{"range", []SliceItem{Range(0, 2)}, "[[1.1,2.2,3.3],[]]"},
		{"range from", []SliceItem{RangeFrom(1)}, "[[],[4.4,5.5]]"},
		{"step", []SliceItem{RangeStep(0, 3, 2)}, "[[1.1,2.2,3.3],[4.4,5.5]]"},
		{"inner range", []SliceItem{RangeAll(), RangeTo(1)}, "[[1.1],[],[4.4]]"},
		{"at then at", []SliceItem{SliceAt{2}, SliceAt{1}}, "5.5"},
		{"array", []SliceItem{Array(2, 0)}, "[[4.4,5.5],[1.1,2.2,3.3]]"},
		{"newaxis", []SliceItem{SliceNewAxis{}, SliceAt{1}}, "[[]]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mustJSON(t, mustSelect(t, c, tc.items...)))
		})
	}
}

func TestSelectRegular(t *testing.T) {
	reg := NewRegularArray(NumpyOf[int64](0, 1, 2, 3, 4, 5), 3)
	assert.Equal(t, "[[0,1,2],[3,4,5]]", mustJSON(t, reg))
	assert.Equal(t, "[[2,0],[5,3]]", mustJSON(t, mustSelect(t, reg, RangeAll(), Array(2, 0))))
	assert.Equal(t, "[1,4]", mustJSON(t, mustSelect(t, reg, SliceEllipsis{}, SliceAt{1})))
	assert.Equal(t, "[[3,4,5]]", mustJSON(t, mustSelect(t, reg, RangeFrom(-1))))

	n := NumpyOf[int64](1, 2, 3)
	assert.Equal(t, "[[1,2,3]]", mustJSON(t, mustSelect(t, n, SliceNewAxis{})))
}

func TestSelectJagged(t *testing.T) {
	out := mustSelect(t, jaggedFloats(), Jagged([]int64{2, 0}, []int64{}, []int64{1}))
	assert.Equal(t, "[[3.3,1.1],[],[5.5]]", mustJSON(t, out))

	_, err := Select(jaggedFloats(), Jagged([]int64{0}, []int64{}))
	require.Error(t, err)
}

func TestSelectMissing(t *testing.T) {
	out := mustSelect(t, jaggedFloats(), Missing([]int64{2, 0, 0}, []bool{true, false, true}))
	assert.Equal(t, "[[4.4,5.5],null,[1.1,2.2,3.3]]", mustJSON(t, out))
}

func TestSelectFields(t *testing.T) {
	rec := records()
	assert.Equal(t, `[{"x":1,"y":[1.1]},{"x":2,"y":[]},{"x":3,"y":[2.2,3.3]}]`, mustJSON(t, rec))
	assert.Equal(t, "[1,2,3]", mustJSON(t, mustSelect(t, rec, SliceField{"x"})))
	assert.Equal(t, `{"x":2,"y":[]}`, mustJSON(t, mustSelect(t, rec, SliceAt{1})))
	assert.Equal(t, "[2.2,3.3]", mustJSON(t, mustSelect(t, rec, SliceField{"y"}, SliceAt{2})))
	assert.Equal(t, `[{"y":[1.1],"x":1},{"y":[],"x":2},{"y":[2.2,3.3],"x":3}]`,
		mustJSON(t, mustSelect(t, rec, SliceFields{[]string{"y", "x"}})))

	_, err := Select(rec, SliceField{"z"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldNotFound))
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSelectOptionAndUnion(t *testing.T) {
	opt := NewIndexedOptionArray(NewIndex64([]int64{2, -1, 0}), NumpyOf[int64](1, 2, 3))
	assert.Equal(t, "[3,null,1]", mustJSON(t, opt))
	assert.Equal(t, "[null,1]", mustJSON(t, mustSelect(t, opt, RangeFrom(1))))

	u := NewUnionArray(NewIndex8([]int8{0, 1, 0}), NewIndex64([]int64{0, 0, 1}), []Content{NumpyOf(1.1, 2.2), NumpyOf[int64](5)})
	assert.Equal(t, "[1.1,5,2.2]", mustJSON(t, u))
	assert.Equal(t, "5", mustJSON(t, mustSelect(t, u, SliceAt{1})))
	require.NoError(t, Validate(u))
}

func TestSelectErrors(t *testing.T) {
	_, err := Select(jaggedFloats(), SliceAt{5})
	require.Error(t, err)
	assert.Equal(t, KindKernel, KindOf(err))

	_, err = Select(jaggedFloats(), SliceEllipsis{}, SliceEllipsis{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	scalar, err := jaggedFloats().GetItemAt(0)
	require.NoError(t, err)
	inner, err := scalar.GetItemAt(0)
	require.NoError(t, err)
	_, err = Select(inner, SliceAt{0})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestGetItemRangeClamp(t *testing.T) {
	clamp := func(start, stop, length int) (int, int) {
		if start < 0 {
			start = max(0, length+start)
		}
		return start, min(stop, length)
	}
	arrays := []Content{NumpyOf[int64](0, 1, 2, 3, 4), jaggedFloats(), records()}
	bounds := [][2]int{{1, 100}, {-2, 5}, {-100, 2}, {-3, 100}, {0, 3}, {4, 2}}
	for _, c := range arrays {
		for _, b := range bounds {
			got, err := c.GetItemRange(b[0], b[1])
			require.NoError(t, err)
			start, stop := clamp(b[0], b[1], c.Length())
			if start > stop {
				stop = start
			}
			want, err := c.GetItemRange(start, stop)
			require.NoError(t, err)
			assert.Equal(t, mustJSON(t, want), mustJSON(t, got), "%s[%d:%d]", c.ClassName(), b[0], b[1])
			assert.Equal(t, mustJSON(t, got), mustJSON(t, mustSelect(t, c, Range(int64(b[0]), int64(b[1])))))
		}
	}

	got, err := NumpyOf[int64](0, 1, 2, 3, 4).GetItemRange(-2, 100)
	require.NoError(t, err)
	assert.Equal(t, "[3,4]", mustJSON(t, got))
}

func TestGetItemEmptySlice(t *testing.T) {
	empty, err := NewSlice()
	require.NoError(t, err)
	for _, c := range []Content{jaggedFloats(), records(), NumpyOf(1.5, 2.5), NewEmptyArray()} {
		t.Run(c.ClassName(), func(t *testing.T) {
			out, err := GetItem(c, empty)
			require.NoError(t, err)
			assert.Equal(t, c.ClassName(), out.ClassName())
			assert.Equal(t, c.Length(), out.Length())
			assert.Equal(t, mustJSON(t, c), mustJSON(t, out))
			assert.True(t, SameLayout(c.Form(), out.Form()))
		})
	}
}

func TestGetItemEllipsis(t *testing.T) {
	c := nestedInts()
	want := mustJSON(t, mustSelect(t, c, RangeAll(), RangeAll(), SliceAt{1}))
	assert.Equal(t, "[[1,4],[6]]", want)
	assert.Equal(t, want, mustJSON(t, mustSelect(t, c, SliceEllipsis{}, SliceAt{1})))
	assert.Equal(t, "[[1,2],[4]]", mustJSON(t, mustSelect(t, c, SliceAt{0}, SliceEllipsis{}, RangeFrom(1))))
}

func TestSelectNestedJagged(t *testing.T) {
	where := SliceJagged{
		Offsets: NewIndex64([]int64{0, 2, 3}),
		Content: Jagged([]int64{1}, []int64{}, []int64{5, 3}),
	}
	out := mustSelect(t, nestedInts(), where)
	assert.Equal(t, "[[[1],[]],[[10,8]]]", mustJSON(t, out))

	_, err := Select(nestedInts(), SliceJagged{
		Offsets: NewIndex64([]int64{0, 1, 2}),
		Content: Jagged([]int64{1}, []int64{0}),
	})
	assert.Error(t, err)
}

func TestSelectJaggedMissing(t *testing.T) {
	where := SliceJagged{
		Offsets: NewIndex64([]int64{0, 3, 3, 4}),
		Content: Missing([]int64{2, 0, 0, 1}, []bool{true, false, true, true}),
	}
	out := mustSelect(t, jaggedFloats(), where)
	assert.Equal(t, "[[3.3,null,1.1],[],[5.5]]", mustJSON(t, out))
}

func TestSelectMissingJaggedOption(t *testing.T) {
	// [[1.1, 2.2, 3.3], None, [4.4, 5.5]] sliced by [[2], None, [1]]
	opt := NewIndexedOptionArray(NewIndex64([]int64{0, -1, 2}), jaggedFloats())
	where := SliceMissing{
		Index:   NewIndex64([]int64{0, -1, 1}),
		Content: Jagged([]int64{2}, []int64{1}),
	}
	out := mustSelect(t, opt, where)
	assert.Equal(t, "[[3.3],null,[5.5]]", mustJSON(t, out))
}
