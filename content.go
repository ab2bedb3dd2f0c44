package jagged

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// Content is one node of an array layout tree. Every node is an immutable
// view: operations return new nodes that share the buffers they did not
// have to change.
//
// The set of implementations is closed: NumpyArray, EmptyArray,
// RegularArray, ListArray, ListOffsetArray, IndexedArray,
// IndexedOptionArray, ByteMaskedArray, BitMaskedArray, UnmaskedArray,
// RecordArray (and its scalar Record), UnionArray and VirtualArray.
type Content interface {
	// ClassName is the layout class, with index-width suffix where the class
	// has one.
	ClassName() string
	// Length is the number of elements, or -1 for a scalar.
	Length() int
	IsScalar() bool
	Identities() *Identities
	Parameters() Parameters
	Parameter(key string) string
	// Form is the layout's schema.
	Form() Form

	ShallowCopy() Content
	// GetItemAt returns element at, counting from the end when negative. A
	// missing element of an option type is returned as a nil Content.
	GetItemAt(at int) (Content, error)
	GetItemAtNowrap(at int) (Content, error)
	// GetItemRange returns a clamped subrange; it never copies buffers.
	GetItemRange(start, stop int) (Content, error)
	GetItemRangeNowrap(start, stop int) (Content, error)
	GetItemField(key string) (Content, error)
	GetItemFields(keys []string) (Content, error)
	// Carry gathers elements by position. With allowLazy, layouts that are
	// costly to gather may return an IndexedArray over themselves instead.
	Carry(carry Index, allowLazy bool) (Content, error)

	getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error)
	getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error)
	getitemNothing() (Content, error)
	reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error)
	withParameters(p Parameters) Content
	withIdentities(id *Identities) Content
	nbytesPart(largest map[uintptr]int)
	validityError(path string) error
	writeJSON(s *jsoniter.Stream, maxdecimals int) error
}

// base holds the attributes every node carries.
type base struct {
	id     *Identities
	params Parameters
}

func (b base) Identities() *Identities     { return b.id }
func (b base) Parameters() Parameters      { return b.params }
func (b base) Parameter(key string) string { return b.params.Get(key) }
func (b base) IsScalar() bool              { return false }

func (b base) info(key string) FormInfo {
	return FormInfo{Identities: b.id != nil, Params: b.params, Key: key}
}

func (b base) identitiesRange(start, stop int) *Identities {
	return b.id.getitemRangeNowrap(start, stop)
}

func emptyAdvanced() Index { return NewIndex64(nil) }

// GetItem applies a slice to c. The root is wrapped in a one-row regular
// dimension so that axis 0 is handled like every other axis.
func GetItem(c Content, where Slice) (Content, error) {
	if c.IsScalar() {
		return nil, validationErr(c.ClassName(), "cannot slice a scalar")
	}
	if err := where.seal(); err != nil {
		return nil, err
	}
	next := newRegularArray(c.ShallowCopy(), c.Length(), 1)
	out, err := next.getitemNext(where.Head(), where.Tail(), emptyAdvanced())
	if err != nil {
		return nil, err
	}
	if out.Length() == 0 {
		return out.getitemNothing()
	}
	return out.GetItemAtNowrap(0)
}

// Select is GetItem with the items given inline.
func Select(c Content, items ...SliceItem) (Content, error) {
	where, err := NewSlice(items...)
	if err != nil {
		return nil, err
	}
	return GetItem(c, where)
}

// getitemNextCommon handles the slice items whose meaning does not depend
// on the node's layout.
func getitemNextCommon(c Content, head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch h := head.(type) {
	case nil:
		return c.ShallowCopy(), nil

	case SliceEllipsis:
		return getitemNextEllipsis(c, tail, advanced)

	case SliceNewAxis:
		next, err := c.getitemNext(tail.Head(), tail.Tail(), advanced)
		if err != nil {
			return nil, err
		}
		return NewRegularArray(next, 1), nil

	case SliceField:
		next, err := c.GetItemField(h.Key)
		if err != nil {
			return nil, err
		}
		return next.getitemNext(tail.Head(), tail.Tail(), advanced)

	case SliceFields:
		next, err := c.GetItemFields(h.Keys)
		if err != nil {
			return nil, err
		}
		return next.getitemNext(tail.Head(), tail.Tail(), advanced)

	case SliceMissing:
		return getitemNextMissing(c, h, tail, advanced)
	}
	return nil, unhandledErr(c.ClassName(), "unrecognized slice type %T", head)
}

func getitemNextEllipsis(c Content, tail Slice, advanced Index) (Content, error) {
	mindepth, maxdepth := c.Form().MinMaxDepth()
	dimlength := tail.DimLength()
	if tail.Length() == 0 || (mindepth-1 == dimlength && maxdepth-1 == dimlength) {
		return c.getitemNext(tail.Head(), tail.Tail(), advanced)
	}
	if mindepth-1 == dimlength || maxdepth-1 == dimlength {
		return nil, validationErr(c.ClassName(), "ellipsis (...) can't be used on a data structure of different depths")
	}
	return c.getitemNext(RangeAll(), tail.withHead(SliceEllipsis{}), advanced)
}

// optionType is implemented by the layouts that can hold missing values.
type optionType interface {
	Content
	// Project keeps only the valid elements.
	Project() (Content, error)
	// ByteMask marks missing elements with 1.
	ByteMask() (Index, error)
}

func getitemNextMissing(c Content, missing SliceMissing, tail Slice, advanced Index) (Content, error) {
	if advanced.Len() != 0 {
		return nil, validationErr(c.ClassName(), "cannot mix missing values in slice with NumPy-style advanced indexing")
	}
	tmp, err := checkMissingJagged(c.ShallowCopy(), missing)
	if err != nil {
		return nil, err
	}
	next, err := tmp.getitemNext(missing.Content, tail, advanced)
	if err != nil {
		return nil, err
	}

	switch raw := next.(type) {
	case *RegularArray:
		return regularMissing(missing, raw, c.Length(), c.ClassName())

	case *RecordArray:
		if raw.NumFields() == 0 {
			return next, nil
		}
		contents := make([]Content, len(raw.contents))
		for i, field := range raw.contents {
			rf, ok := field.(*RegularArray)
			if !ok {
				return nil, unhandledErr(c.ClassName(), "unhandled case of SliceMissing with RecordArray containing %s", field.ClassName())
			}
			if contents[i], err = regularMissing(missing, rf, c.Length(), c.ClassName()); err != nil {
				return nil, err
			}
		}
		return newRecordArray(contents, raw.recordlookup, c.Length()), nil
	}
	return nil, unhandledErr(c.ClassName(), "unhandled case of SliceMissing with %s", next.ClassName())
}

// regularMissing spreads the slice's missing positions over every row of
// raw, which holds only the selected (valid) positions.
func regularMissing(missing SliceMissing, raw *RegularArray, length int, class string) (Content, error) {
	index := missing.Index
	outindex, data := int64Index(index.Len() * length)
	if err := handleError(kernel.MissingRepeat(data, index, int64(length), int64(raw.size)), class, nil); err != nil {
		return nil, err
	}
	out, err := NewIndexedOptionArray(outindex, raw.content).Simplify()
	if err != nil {
		return nil, err
	}
	return newRegularArray(out, index.Len(), length), nil
}

// checkMissingJagged covers one narrow case: a single-row array whose row is
// an option type, sliced by a jagged selection with the same missing
// positions. It replaces the row by its valid elements; every other input is
// returned unchanged.
func checkMissingJagged(that Content, missing SliceMissing) (Content, error) {
	if _, ok := missing.Content.(SliceJagged); !ok || that.Length() != 1 {
		return that, nil
	}
	tmp1, err := that.GetItemAtNowrap(0)
	if err != nil {
		return nil, err
	}
	opt, ok := tmp1.(optionType)
	if !ok {
		return that, nil
	}
	tmp2, err := opt.Project()
	if err != nil {
		return nil, err
	}
	bytemask, err := opt.ByteMask()
	if err != nil {
		return nil, err
	}
	if bytemask.Len() != missing.Len() {
		return that, nil
	}
	same, kerr := kernel.SliceMissingCheckSame(bytemask, missing.Index)
	if err := handleError(kerr, that.ClassName(), that.Identities()); err != nil {
		return nil, err
	}
	if !same {
		return that, nil
	}
	out := newRegularArray(tmp2, tmp2.Length(), 1)
	out.params = that.Parameters()
	return out, nil
}

// arrayWrap nests out in one RegularArray per dimension of an advanced
// index's shape, so that length rows each hold an array of that shape.
func arrayWrap(out Content, shape []int, length int) Content {
	for i := len(shape) - 1; i >= 0; i-- {
		out = newRegularArray(out, shape[i], length*product(shape[:i]))
	}
	return out
}

// getItemAt wraps at and bounds-checks it for any node.
func getItemAt(c Content, at int) (Content, error) {
	length := c.Length()
	regular := at
	if regular < 0 {
		regular += length
	}
	if regular < 0 || regular >= length {
		return nil, &Error{Kind: KindValidation, Class: c.ClassName(), Attempt: int64(at), Kernel: "getitem_at", Msg: "index out of range"}
	}
	return c.GetItemAtNowrap(regular)
}

// getItemRange clamps start and stop for any node.
func getItemRange(c Content, start, stop int) (Content, error) {
	start, stop = regularizeRange(start, stop, c.Length())
	return c.GetItemRangeNowrap(start, stop)
}

func regularizeRange(start, stop, length int) (int, int) {
	s, e := kernel.RegularizeRangeSlice(int64(start), int64(stop), true, true, true, int64(length))
	return int(s), int(e)
}

// Reduce folds c along axis. A non-negative axis counts from the root and a
// negative one from the leaves; trees whose branches reach different depths
// accept only negative axes. With mask, empty groups are missing instead of
// holding the reducer's identity; with keepdims the reduced dimension stays
// as length 1.
func Reduce(c Content, r Reducer, axis int, mask, keepdims bool) (Content, error) {
	if c.IsScalar() {
		return nil, validationErr(c.ClassName(), "cannot reduce a scalar")
	}
	negaxis := -axis
	branch, depth := c.Form().BranchDepth()
	if branch {
		if negaxis <= 0 {
			return nil, validationErr(c.ClassName(), "cannot use non-negative axis on a nested list structure of variable depth (negative axis counts from the leaves of the tree; non-negative from the root)")
		}
		if negaxis > depth {
			return nil, validationErr(c.ClassName(), "cannot use axis=%d on a nested list structure that splits into different depths, the minimum of which is depth=%d from the leaves", axis, depth)
		}
	} else {
		if negaxis <= 0 {
			negaxis += depth
		}
		if !(0 < negaxis && negaxis <= depth) {
			return nil, validationErr(c.ClassName(), "axis=%d exceeds the depth of the nested list structure (which is %d)", axis, depth)
		}
	}

	starts := NewIndex64([]int64{0})
	parents, data := int64Index(c.Length())
	if err := handleError(kernel.ZeroParents(data), c.ClassName(), c.Identities()); err != nil {
		return nil, err
	}
	next, err := c.reduceNext(r, negaxis, starts, parents, 1, mask, keepdims)
	if err != nil {
		return nil, err
	}
	return next.GetItemAtNowrap(0)
}

// PurelistDepth is the number of list dimensions before the first record or
// union of mixed depth.
func PurelistDepth(c Content) int { return c.Form().PurelistDepth() }

// MinMaxDepth is the shallowest and deepest leaf depth.
func MinMaxDepth(c Content) (int, int) { return c.Form().MinMaxDepth() }

// BranchDepth reports whether branches reach leaves at different depths,
// and the minimum leaf depth.
func BranchDepth(c Content) (bool, int) { return c.Form().BranchDepth() }

// PurelistIsRegular reports whether every list dimension is regular.
func PurelistIsRegular(c Content) bool { return c.Form().PurelistIsRegular() }

// PurelistParameter is the first value of key found from the root down
// through list dimensions.
func PurelistParameter(c Content, key string) string { return c.Form().PurelistParameter(key) }

// NBytes counts the bytes of every distinct backing buffer in the tree once.
func NBytes(c Content) int {
	largest := map[uintptr]int{}
	c.nbytesPart(largest)
	total := 0
	for _, n := range largest {
		total += n
	}
	return total
}

// Validate checks every node's structural invariants (index ranges, list
// bounds, mask lengths, record field lengths, union tags).
func Validate(c Content) error {
	return c.validityError("layout")
}

// WithParameters returns a copy of c holding p.
func WithParameters(c Content, p Parameters) Content {
	return c.withParameters(p.normalized())
}

// WithParameter returns a copy of c with key set to the JSON text value;
// "null" removes the key.
func WithParameter(c Content, key, value string) Content {
	return c.withParameters(c.Parameters().With(key, value))
}

// ParametersEqual compares c's parameters to other by JSON value.
func ParametersEqual(c Content, other Parameters) bool {
	return c.Parameters().Equal(other)
}

// ParameterEquals reports whether c's parameter key holds the JSON value.
func ParameterEquals(c Content, key, value string) bool {
	return c.Parameters().Equals(key, value)
}

// WithIdentities returns a copy of c carrying id, which must have a row per
// element.
func WithIdentities(c Content, id *Identities) (Content, error) {
	if c.IsScalar() {
		return nil, validationErr(c.ClassName(), "cannot set identities on a scalar")
	}
	if id != nil && id.Length() < c.Length() {
		return nil, validationErr(c.ClassName(), "content and its identities must have the same length")
	}
	return c.withIdentities(id), nil
}

// WithRootIdentities numbers c's elements under a fresh reference.
func WithRootIdentities(c Content) Content {
	return c.withIdentities(NewRootIdentities(c.Length()))
}

// Conforms reports whether c's layout matches f, ignoring identities and
// form keys.
func Conforms(c Content, f Form) bool {
	return SameLayout(c.Form(), f)
}

// SameLayout compares two Forms by layout and parameters, ignoring
// has_identities and form_key.
func SameLayout(a, b Form) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ClassName() != b.ClassName() || !a.Parameters().Equal(b.Parameters()) {
		return false
	}
	switch x := a.(type) {
	case *NumpyForm:
		y := b.(*NumpyForm)
		if x.ItemSize != y.ItemSize || PrimitiveOf(x.Format, x.ItemSize) != PrimitiveOf(y.Format, y.ItemSize) || len(x.InnerShape) != len(y.InnerShape) {
			return false
		}
		for i := range x.InnerShape {
			if x.InnerShape[i] != y.InnerShape[i] {
				return false
			}
		}
		return true
	case *EmptyForm:
		return true
	case *RegularForm:
		y := b.(*RegularForm)
		return x.Size == y.Size && SameLayout(x.Content, y.Content)
	case *ListForm:
		y := b.(*ListForm)
		return x.Stops == y.Stops && SameLayout(x.Content, y.Content)
	case *ListOffsetForm:
		return SameLayout(x.Content, b.(*ListOffsetForm).Content)
	case *IndexedForm:
		return SameLayout(x.Content, b.(*IndexedForm).Content)
	case *IndexedOptionForm:
		return SameLayout(x.Content, b.(*IndexedOptionForm).Content)
	case *ByteMaskedForm:
		y := b.(*ByteMaskedForm)
		return x.Mask == y.Mask && x.ValidWhen == y.ValidWhen && SameLayout(x.Content, y.Content)
	case *BitMaskedForm:
		y := b.(*BitMaskedForm)
		return x.ValidWhen == y.ValidWhen && x.LSBOrder == y.LSBOrder && SameLayout(x.Content, y.Content)
	case *UnmaskedForm:
		return SameLayout(x.Content, b.(*UnmaskedForm).Content)
	case *RecordForm:
		y := b.(*RecordForm)
		if (x.RecordLookup == nil) != (y.RecordLookup == nil) || len(x.Contents) != len(y.Contents) {
			return false
		}
		for i := range x.RecordLookup {
			if x.RecordLookup[i] != y.RecordLookup[i] {
				return false
			}
		}
		for i := range x.Contents {
			if !SameLayout(x.Contents[i], y.Contents[i]) {
				return false
			}
		}
		return true
	case *UnionForm:
		y := b.(*UnionForm)
		if len(x.Contents) != len(y.Contents) {
			return false
		}
		for i := range x.Contents {
			if !SameLayout(x.Contents[i], y.Contents[i]) {
				return false
			}
		}
		return true
	case *VirtualForm:
		y := b.(*VirtualForm)
		return x.HasLength == y.HasLength && SameLayout(x.Form, y.Form)
	}
	return false
}

// carryContents carries every content of a record or union.
func carryContents(contents []Content, carry Index, allowLazy bool) ([]Content, error) {
	out := make([]Content, len(contents))
	for i, c := range contents {
		next, err := c.Carry(carry, allowLazy)
		if err != nil {
			return nil, err
		}
		out[i] = next
	}
	return out, nil
}

func formsOf(contents []Content) []Form {
	out := make([]Form, len(contents))
	for i, c := range contents {
		out[i] = c.Form()
	}
	return out
}

func validityErr(class, path, format string, args ...interface{}) error {
	err := validationErr(class, format, args...).(*Error)
	err.Msg = "at " + path + ": " + err.Msg
	return err
}

// kernelValidity reports a failing validity kernel against path.
func kernelValidity(kerr kernel.Error, c Content, path string) error {
	err := handleError(kerr, c.ClassName(), c.Identities())
	if err == nil {
		return nil
	}
	e := err.(*Error)
	e.Msg = "at " + path + ": " + e.Msg
	return e
}

func identitiesValidity(c Content, path string) error {
	if id := c.Identities(); id != nil && id.Length() < c.Length() {
		return validityErr(c.ClassName(), path, "len(identities) < len(array)")
	}
	return nil
}
