package jagged

import (
	"fmt"
	"strconv"
	"strings"
)

// SliceItem is one entry of a Slice. The set of items is closed: SliceAt,
// SliceRange, SliceEllipsis, SliceNewAxis, SliceArray, SliceField,
// SliceFields, SliceMissing and SliceJagged.
type SliceItem interface {
	String() string
	// preservesType reports whether applying the item keeps a record's
	// parameters.
	preservesType(advanced Index) bool
	sliceItem()
}

// SliceAt selects one element, removing a dimension.
type SliceAt struct {
	At int64
}

func (s SliceAt) String() string           { return strconv.FormatInt(s.At, 10) }
func (s SliceAt) preservesType(Index) bool { return false }
func (s SliceAt) sliceItem()               {}

// SliceRange selects start:stop:step. Missing bounds take the defaults for
// the step's direction; out-of-range bounds are clamped.
type SliceRange struct {
	Start, Stop, Step int64
	HasStart, HasStop bool
}

// Range is start:stop.
func Range(start, stop int64) SliceRange {
	return SliceRange{Start: start, Stop: stop, Step: 1, HasStart: true, HasStop: true}
}

// RangeStep is start:stop:step.
func RangeStep(start, stop, step int64) SliceRange {
	return SliceRange{Start: start, Stop: stop, Step: step, HasStart: true, HasStop: true}
}

// RangeAll is ":".
func RangeAll() SliceRange {
	return SliceRange{Step: 1}
}

// RangeFrom is "start:".
func RangeFrom(start int64) SliceRange {
	return SliceRange{Start: start, Step: 1, HasStart: true}
}

// RangeTo is ":stop".
func RangeTo(stop int64) SliceRange {
	return SliceRange{Stop: stop, Step: 1, HasStop: true}
}

func (s SliceRange) String() string {
	var b strings.Builder
	if s.HasStart {
		b.WriteString(strconv.FormatInt(s.Start, 10))
	}
	b.WriteString(":")
	if s.HasStop {
		b.WriteString(strconv.FormatInt(s.Stop, 10))
	}
	if s.Step != 1 {
		b.WriteString(":")
		b.WriteString(strconv.FormatInt(s.Step, 10))
	}
	return b.String()
}

func (s SliceRange) preservesType(Index) bool { return true }
func (s SliceRange) sliceItem()               {}

// SliceEllipsis stands for as many full ranges as the remaining items need.
type SliceEllipsis struct{}

func (SliceEllipsis) String() string           { return "..." }
func (SliceEllipsis) preservesType(Index) bool { return true }
func (SliceEllipsis) sliceItem()               {}

// SliceNewAxis inserts a length-1 regular dimension.
type SliceNewAxis struct{}

func (SliceNewAxis) String() string           { return "newaxis" }
func (SliceNewAxis) preservesType(Index) bool { return false }
func (SliceNewAxis) sliceItem()               {}

// SliceArray is an integer array (NumPy advanced index) in C order with the
// given shape.
type SliceArray struct {
	Values []int64
	Shape  []int
}

// Array is a one-dimensional advanced index.
func Array(values ...int64) SliceArray {
	return SliceArray{Values: values, Shape: []int{len(values)}}
}

func (s SliceArray) String() string {
	return fmt.Sprint(s.Values)
}

func (s SliceArray) preservesType(advanced Index) bool { return advanced.Len() == 0 }
func (s SliceArray) sliceItem()                        {}

func (s SliceArray) ndim() int { return len(s.Shape) }

// ravel is the flattened index as an Index64.
func (s SliceArray) ravel() Index { return NewIndex64(s.Values) }

// SliceField selects one record field.
type SliceField struct {
	Key string
}

func (s SliceField) String() string           { return strconv.Quote(s.Key) }
func (s SliceField) preservesType(Index) bool { return false }
func (s SliceField) sliceItem()               {}

// SliceFields selects several record fields, keeping the record.
type SliceFields struct {
	Keys []string
}

func (s SliceFields) String() string {
	quoted := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		quoted[i] = strconv.Quote(k)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (s SliceFields) preservesType(Index) bool { return false }
func (s SliceFields) sliceItem()               {}

// SliceMissing is a selection with missing values. Index holds -1 for a
// missing position and otherwise the position of the value in Content.
type SliceMissing struct {
	Index   Index
	Content SliceItem
}

// Missing builds an option-type selection from values and a validity mask.
func Missing(values []int64, valid []bool) SliceMissing {
	index := make([]int64, len(values))
	var kept []int64
	for i, v := range values {
		if i < len(valid) && !valid[i] {
			index[i] = -1
			continue
		}
		index[i] = int64(len(kept))
		kept = append(kept, v)
	}
	return SliceMissing{Index: NewIndex64(index), Content: Array(kept...)}
}

func (s SliceMissing) String() string {
	var b strings.Builder
	b.WriteString("missing(")
	b.WriteString(s.Index.String())
	b.WriteString(", ")
	b.WriteString(s.Content.String())
	b.WriteString(")")
	return b.String()
}

func (s SliceMissing) preservesType(Index) bool { return true }
func (s SliceMissing) sliceItem()               {}

// Len is the number of positions, missing ones included.
func (s SliceMissing) Len() int { return s.Index.Len() }

// SliceJagged is a variable-length-per-row selection: row i is
// Content[Offsets[i]:Offsets[i+1]].
type SliceJagged struct {
	Offsets Index
	Content SliceItem
}

// Jagged builds a jagged integer selection from rows.
func Jagged(rows ...[]int64) SliceJagged {
	offsets := make([]int64, len(rows)+1)
	var values []int64
	for i, row := range rows {
		values = append(values, row...)
		offsets[i+1] = int64(len(values))
	}
	return SliceJagged{Offsets: NewIndex64(offsets), Content: Array(values...)}
}

func (s SliceJagged) String() string {
	return "jagged(" + s.Offsets.String() + ", " + s.Content.String() + ")"
}

func (s SliceJagged) preservesType(Index) bool { return true }
func (s SliceJagged) sliceItem()               {}

// Len is the number of rows.
func (s SliceJagged) Len() int {
	if s.Offsets.Len() == 0 {
		return 0
	}
	return s.Offsets.Len() - 1
}

func (s SliceJagged) starts() Index { return s.Offsets.GetItemRangeNowrap(0, s.Len()) }
func (s SliceJagged) stops() Index  { return s.Offsets.GetItemRangeNowrap(1, s.Len()+1) }

// Slice is an ordered list of slice items. Build one with NewSlice; it is
// sealed (advanced indexes broadcast) before use.
type Slice struct {
	items  []SliceItem
	sealed bool
}

// NewSlice builds and seals a Slice.
func NewSlice(items ...SliceItem) (Slice, error) {
	s := Slice{items: append([]SliceItem(nil), items...)}
	if err := s.seal(); err != nil {
		return Slice{}, err
	}
	return s, nil
}

// Items returns a copy of the slice's items.
func (s Slice) Items() []SliceItem { return append([]SliceItem(nil), s.items...) }

// Length is the number of items.
func (s Slice) Length() int { return len(s.items) }

// DimLength counts the items that consume a dimension.
func (s Slice) DimLength() int {
	n := 0
	for _, item := range s.items {
		switch item.(type) {
		case SliceAt, SliceRange, SliceArray, SliceMissing, SliceJagged:
			n++
		}
	}
	return n
}

// Head is the first item, or nil when the slice is empty.
func (s Slice) Head() SliceItem {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[0]
}

// Tail is everything after Head.
func (s Slice) Tail() Slice {
	if len(s.items) == 0 {
		return Slice{sealed: true}
	}
	return Slice{items: s.items[1:], sealed: true}
}

func (s Slice) String() string {
	parts := make([]string, len(s.items))
	for i, item := range s.items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// withHead prepends item.
func (s Slice) withHead(item SliceItem) Slice {
	items := make([]SliceItem, 0, len(s.items)+1)
	items = append(items, item)
	items = append(items, s.items...)
	return Slice{items: items, sealed: true}
}

// seal broadcasts SliceArrays against each other, turns SliceAt into
// broadcast arrays when any SliceArray is present, and rejects a second
// ellipsis.
func (s *Slice) seal() error {
	if s.sealed {
		return nil
	}
	ellipses := 0
	var shape []int
	for _, item := range s.items {
		switch v := item.(type) {
		case SliceEllipsis:
			ellipses++
		case SliceRange:
			if v.Step == 0 {
				return validationErr("Slice", "slice step must not be 0")
			}
		case SliceArray:
			if len(v.Values) != product(v.Shape) {
				return validationErr("Slice", "array of %d values does not fill shape %v", len(v.Values), v.Shape)
			}
			if shape == nil {
				shape = append([]int(nil), v.Shape...)
				continue
			}
			if len(shape) != len(v.Shape) {
				return validationErr("Slice", "cannot broadcast arrays in slice")
			}
			for j := range shape {
				switch {
				case shape[j] == v.Shape[j], v.Shape[j] == 1:
				case shape[j] == 1:
					shape[j] = v.Shape[j]
				default:
					return validationErr("Slice", "cannot broadcast arrays in slice")
				}
			}
		}
	}
	if ellipses > 1 {
		return validationErr("Slice", "a slice can have no more than one ellipsis (...)")
	}
	if shape != nil {
		for i, item := range s.items {
			switch v := item.(type) {
			case SliceAt:
				s.items[i] = broadcastArray(SliceArray{Values: []int64{v.At}, Shape: ones(len(shape))}, shape)
			case SliceArray:
				s.items[i] = broadcastArray(v, shape)
			}
		}
	}
	s.sealed = true
	return nil
}

func product(shape []int) int {
	out := 1
	for _, d := range shape {
		out *= d
	}
	return out
}

func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// broadcastArray repeats a along its length-1 dimensions to fill shape.
func broadcastArray(a SliceArray, shape []int) SliceArray {
	same := true
	for j := range shape {
		if a.Shape[j] != shape[j] {
			same = false
		}
	}
	if same {
		return a
	}
	strides := make([]int, len(a.Shape))
	stride := 1
	for j := len(a.Shape) - 1; j >= 0; j-- {
		if a.Shape[j] == 1 {
			strides[j] = 0
		} else {
			strides[j] = stride
		}
		stride *= a.Shape[j]
	}
	out := make([]int64, product(shape))
	pos := make([]int, len(shape))
	for k := range out {
		src := 0
		for j := range pos {
			src += pos[j] * strides[j]
		}
		out[k] = a.Values[src]
		for j := len(pos) - 1; j >= 0; j-- {
			pos[j]++
			if pos[j] < shape[j] {
				break
			}
			pos[j] = 0
		}
	}
	return SliceArray{Values: out, Shape: append([]int(nil), shape...)}
}

// takeSliceItem gathers the entries of a nested jagged-slice content at
// positions, in order.
func takeSliceItem(item SliceItem, positions []int64) (SliceItem, error) {
	switch v := item.(type) {
	case SliceArray:
		out := make([]int64, len(positions))
		for i, p := range positions {
			if p < 0 || p >= int64(len(v.Values)) {
				return nil, validationErr("Slice", "jagged slice position %d out of range", p)
			}
			out[i] = v.Values[p]
		}
		return Array(out...), nil
	case SliceMissing:
		out := make([]int64, len(positions))
		for i, p := range positions {
			if p < 0 || p >= int64(v.Index.Len()) {
				return nil, validationErr("Slice", "jagged slice position %d out of range", p)
			}
			out[i] = v.Index.Get(int(p))
		}
		return SliceMissing{Index: NewIndex64(out), Content: v.Content}, nil
	case SliceJagged:
		offsets := make([]int64, len(positions)+1)
		var inner []int64
		for i, p := range positions {
			if p < 0 || int(p) >= v.Len() {
				return nil, validationErr("Slice", "jagged slice position %d out of range", p)
			}
			for j := v.Offsets.Get(int(p)); j < v.Offsets.Get(int(p)+1); j++ {
				inner = append(inner, j)
			}
			offsets[i+1] = int64(len(inner))
		}
		content, err := takeSliceItem(v.Content, inner)
		if err != nil {
			return nil, err
		}
		return SliceJagged{Offsets: NewIndex64(offsets), Content: content}, nil
	}
	return nil, unhandledErr("Slice", "unexpected slice type for jagged content: %T", item)
}
