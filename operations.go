package jagged

import (
	"github.com/qri-io/jagged/internal/kernel"
)

// MergeAsUnion joins a and b end to end as the branches of a UnionArray.
// Unions among the inputs contribute their branches directly.
func MergeAsUnion(a, b Content) (*UnionArray, error) {
	total := a.Length() + b.Length()
	tags := make([]int8, total)
	index := make([]int64, total)
	var contents []Content
	offset := 0
	for _, c := range []Content{a, b} {
		n := c.Length()
		if u, ok := c.(*UnionArray); ok {
			base := int64(len(contents))
			if base+int64(len(u.contents)) > 127 {
				return nil, unhandledErr("UnionArray", "merged union would have more than 127 branches")
			}
			for i := 0; i < n; i++ {
				tags[offset+i] = int8(base + u.tags.Get(i))
				index[offset+i] = u.index.Get(i)
			}
			contents = append(contents, u.contents...)
		} else {
			tag := int8(len(contents))
			if err := handleError(kernel.UnionFillTagsConst(tags, int64(offset), int64(n), tag), "UnionArray", nil); err != nil {
				return nil, err
			}
			if err := handleError(kernel.UnionFillIndexCount(index, int64(offset), int64(n)), "UnionArray", nil); err != nil {
				return nil, err
			}
			contents = append(contents, c)
		}
		offset += n
	}
	return NewUnionArray(NewIndex8(tags), NewIndex64(index), contents), nil
}

// AxisWrapIfNegative resolves axis against c. Negative axes are not
// supported by the axis-general operations.
func AxisWrapIfNegative(c Content, axis int) (int, error) {
	if axis < 0 {
		return 0, unhandledErr(c.ClassName(), "negative axis (%d) is not supported", axis)
	}
	return axis, nil
}

// RpadAxis0 pads c with missing values to target elements; with clip,
// longer arrays are also cut to target.
func RpadAxis0(c Content, target int, clip bool) (Content, error) {
	if !clip && target < c.Length() {
		return c.ShallowCopy(), nil
	}
	index, data := int64Index(target)
	if err := handleError(kernel.RpadAndClipAxis0(data, int64(c.Length())), c.ClassName(), c.Identities()); err != nil {
		return nil, err
	}
	return NewIndexedOptionArray(index, c).Simplify()
}

// Rpad pads the lists at depth axis to target elements. With clip every
// list ends up exactly target long and the dimension becomes regular.
func Rpad(c Content, target, axis int, clip bool) (Content, error) {
	axis, err := AxisWrapIfNegative(c, axis)
	if err != nil {
		return nil, err
	}
	op := axisOp{
		name: "rpad",
		axis0: func(c Content) (Content, error) {
			return RpadAxis0(c, target, clip)
		},
		list: func(l *ListArray) (Content, error) {
			n := l.Length()
			length := kernel.RpadAxis1Length(l.starts, l.stops, int64(target), clip)
			offsets, odata := int64Index(n + 1)
			index, idata := int64Index(int(length))
			if err := handleError(kernel.RpadAxis1(odata, idata, l.starts, l.stops, int64(target), clip), l.ClassName(), l.id); err != nil {
				return nil, err
			}
			next, err := NewIndexedOptionArray(index, l.content).Simplify()
			if err != nil {
				return nil, err
			}
			if clip {
				return newRegularArray(next, target, n), nil
			}
			out := NewListOffsetArray(offsets, next)
			out.params = l.params
			return out, nil
		},
	}
	return op.apply(c, axis, 0)
}

// LocalIndexAxis0 numbers the elements of c from zero.
func LocalIndexAxis0(c Content) *NumpyArray {
	_, data := int64Index(c.Length())
	kernel.LocalIndex(data)
	return NumpyOf(data...)
}

// LocalIndex numbers the elements of every list at depth axis from zero,
// keeping the structure above it.
func LocalIndex(c Content, axis int) (Content, error) {
	axis, err := AxisWrapIfNegative(c, axis)
	if err != nil {
		return nil, err
	}
	op := axisOp{
		name: "local_index",
		axis0: func(c Content) (Content, error) {
			return LocalIndexAxis0(c), nil
		},
		list: func(l *ListArray) (Content, error) {
			compact, err := l.Compact()
			if err != nil {
				return nil, err
			}
			offsets := compact.offsets
			n := compact.Length()
			_, data := int64Index(int(offsets.Get(n) - offsets.Get(0)))
			if err := handleError(kernel.LocalIndexAxis1(data, offsets), l.ClassName(), l.id); err != nil {
				return nil, err
			}
			return NewListOffsetArray(offsets, NumpyOf(data...)), nil
		},
	}
	return op.apply(c, axis, 0)
}

// CombinationsAxis0 is every n-combination of c's elements, in
// lexicographic order, as a record of n IndexedArrays over c. recordlookup
// names the fields; nil makes a tuple.
func CombinationsAxis0(c Content, n int, replacement bool, recordlookup []string) (Content, error) {
	if n < 1 {
		return nil, validationErr(c.ClassName(), "in combinations, 'n' must be at least 1")
	}
	if recordlookup != nil && len(recordlookup) != n {
		return nil, validationErr(c.ClassName(), "if provided, the length of 'keys' must be 'n'")
	}
	count := kernel.CombinationsCount(int64(n), replacement, int64(c.Length()))
	tocarry := make([][]int64, n)
	for i := range tocarry {
		tocarry[i] = make([]int64, count)
	}
	if err := handleError(kernel.Combinations(tocarry, replacement, int64(c.Length())), c.ClassName(), c.Identities()); err != nil {
		return nil, err
	}
	contents := make([]Content, n)
	for i := range contents {
		contents[i] = NewIndexedArray(NewIndex64(tocarry[i]), c)
	}
	return newRecordArray(contents, recordlookup, int(count)), nil
}

// Combinations is CombinationsAxis0 applied within every list at depth axis.
func Combinations(c Content, n int, replacement bool, recordlookup []string, axis int) (Content, error) {
	if n < 1 {
		return nil, validationErr(c.ClassName(), "in combinations, 'n' must be at least 1")
	}
	if recordlookup != nil && len(recordlookup) != n {
		return nil, validationErr(c.ClassName(), "if provided, the length of 'keys' must be 'n'")
	}
	axis, err := AxisWrapIfNegative(c, axis)
	if err != nil {
		return nil, err
	}
	op := axisOp{
		name: "combinations",
		axis0: func(c Content) (Content, error) {
			return CombinationsAxis0(c, n, replacement, recordlookup)
		},
		list: func(l *ListArray) (Content, error) {
			length := l.Length()
			offsets := make([]int64, length+1)
			carries := make([][]int64, n)
			for i := 0; i < length; i++ {
				start, stop := l.starts.Get(i), l.stops.Get(i)
				size := stop - start
				if size < 0 {
					return nil, handleError(kernel.Error{Str: "stops[i] < starts[i]", Kernel: "ListCombinations", Identity: int64(i), Attempt: kernel.None}, l.ClassName(), l.id)
				}
				count := kernel.CombinationsCount(int64(n), replacement, size)
				local := make([][]int64, n)
				for j := range local {
					local[j] = make([]int64, count)
				}
				if err := handleError(kernel.Combinations(local, replacement, size), l.ClassName(), l.id); err != nil {
					return nil, err
				}
				for j := range local {
					for _, v := range local[j] {
						carries[j] = append(carries[j], start+v)
					}
				}
				offsets[i+1] = offsets[i] + count
			}
			contents := make([]Content, n)
			for j := range contents {
				contents[j] = NewIndexedArray(NewIndex64(carries[j]), l.content)
			}
			total := int(offsets[length])
			return NewListOffsetArray(NewIndex64(offsets), newRecordArray(contents, recordlookup, total)), nil
		},
	}
	return op.apply(c, axis, 0)
}

// axisOp is an operation that acts on one depth of a tree and rebuilds the
// layers above it unchanged. axis0 handles posaxis == depth on any node;
// list handles posaxis == depth+1 on a list-type node.
type axisOp struct {
	name  string
	axis0 func(c Content) (Content, error)
	list  func(l *ListArray) (Content, error)
}

func (op axisOp) apply(c Content, posaxis, depth int) (Content, error) {
	if posaxis == depth {
		return op.axis0(c)
	}
	switch x := c.(type) {
	case *NumpyArray:
		if x.NDim() > 1 {
			return op.apply(x.ToRegularArray(), posaxis, depth)
		}
		return nil, validationErr(c.ClassName(), "axis=%d exceeds the depth of this array in %s", posaxis, op.name)

	case *EmptyArray:
		return op.apply(x.ToNumpyArray(), posaxis, depth)

	case *RegularArray, *ListArray, *ListOffsetArray:
		if posaxis == depth+1 {
			l, _ := asListArray(c)
			return op.list(l)
		}
		return op.rebuildList(c, posaxis, depth)

	case *IndexedArray:
		projected, err := x.Project()
		if err != nil {
			return nil, err
		}
		return op.apply(projected, posaxis, depth)

	case *IndexedOptionArray, *ByteMaskedArray, *BitMaskedArray, *UnmaskedArray:
		opt, err := toIndexedOption(c)
		if err != nil {
			return nil, err
		}
		nextcarry, outindex, err := opt.nextcarry()
		if err != nil {
			return nil, err
		}
		projected, err := opt.content.Carry(nextcarry, false)
		if err != nil {
			return nil, err
		}
		next, err := op.apply(projected, posaxis, depth)
		if err != nil {
			return nil, err
		}
		out := NewIndexedOptionArray(outindex, next)
		out.params = opt.params
		return out.Simplify()

	case *RecordArray:
		contents := make([]Content, x.NumFields())
		for i := range contents {
			field, err := x.Field(i)
			if err != nil {
				return nil, err
			}
			if contents[i], err = op.apply(field, posaxis, depth); err != nil {
				return nil, err
			}
		}
		out := newRecordArray(contents, x.recordlookup, x.length)
		out.params = x.params
		return out, nil

	case *UnionArray:
		contents := make([]Content, len(x.contents))
		for i, content := range x.contents {
			next, err := op.apply(content, posaxis, depth)
			if err != nil {
				return nil, err
			}
			contents[i] = next
		}
		out := NewUnionArray(x.tags, x.index, contents)
		out.params = x.params
		return out, nil

	case *VirtualArray:
		array, err := x.Array()
		if err != nil {
			return nil, err
		}
		return op.apply(array, posaxis, depth)
	}
	return nil, unhandledErr(c.ClassName(), "%s is not supported on %s", op.name, c.ClassName())
}

// rebuildList applies op one level further down and keeps this list level.
func (op axisOp) rebuildList(c Content, posaxis, depth int) (Content, error) {
	switch x := c.(type) {
	case *RegularArray:
		next, err := op.apply(x.content, posaxis, depth+1)
		if err != nil {
			return nil, err
		}
		out := newRegularArray(next, x.size, x.length)
		out.params = x.params
		return out, nil
	case *ListOffsetArray:
		next, err := op.apply(x.content, posaxis, depth+1)
		if err != nil {
			return nil, err
		}
		out := NewListOffsetArray(x.offsets, next)
		out.params = x.params
		return out, nil
	}
	l, _ := asListArray(c)
	next, err := op.apply(l.content, posaxis, depth+1)
	if err != nil {
		return nil, err
	}
	out := NewListArray(l.starts, l.stops, next)
	out.params = l.params
	return out, nil
}
