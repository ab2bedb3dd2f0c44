package jagged

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// IndexedArray is a lazy gather: element i is content[index[i]].
type IndexedArray struct {
	base
	index   Index
	content Content
}

// NewIndexedArray wraps index and content without copying.
func NewIndexedArray(index Index, content Content) *IndexedArray {
	return &IndexedArray{index: index, content: content}
}

func (x *IndexedArray) ClassName() string { return "IndexedArray" + indexSuffix(x.index.Form()) }
func (x *IndexedArray) Length() int       { return x.index.Len() }
func (x *IndexedArray) Index() Index      { return x.index }
func (x *IndexedArray) Content() Content  { return x.content }

func (x *IndexedArray) Form() Form {
	return &IndexedForm{FormInfo: x.info(""), Index: x.index.Form(), Content: x.content.Form()}
}

func (x *IndexedArray) ShallowCopy() Content {
	out := *x
	return &out
}

func (x *IndexedArray) withParameters(p Parameters) Content {
	out := *x
	out.params = p
	return &out
}

func (x *IndexedArray) withIdentities(id *Identities) Content {
	out := *x
	out.id = id
	return &out
}

func (x *IndexedArray) GetItemAt(at int) (Content, error) { return getItemAt(x, at) }

func (x *IndexedArray) GetItemAtNowrap(at int) (Content, error) {
	j := x.index.Get(at)
	if j < 0 || j >= int64(x.content.Length()) {
		return nil, handleError(kernel.Error{Str: "index out of range", Kernel: "IndexedArrayGetitemAt", Identity: int64(at), Attempt: j}, x.ClassName(), x.id)
	}
	return x.content.GetItemAtNowrap(int(j))
}

func (x *IndexedArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(x, start, stop)
}

func (x *IndexedArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	out := NewIndexedArray(x.index.GetItemRangeNowrap(start, stop), x.content)
	out.id, out.params = x.identitiesRange(start, stop), x.params
	return out, nil
}

func (x *IndexedArray) GetItemField(key string) (Content, error) {
	content, err := x.content.GetItemField(key)
	if err != nil {
		return nil, err
	}
	return NewIndexedArray(x.index, content), nil
}

func (x *IndexedArray) GetItemFields(keys []string) (Content, error) {
	content, err := x.content.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return NewIndexedArray(x.index, content), nil
}

func (x *IndexedArray) Carry(carry Index, allowLazy bool) (Content, error) {
	nextindex, data := int64Index(carry.Len())
	if err := handleError(kernel.IndexedGetitemCarry(data, x.index, carry), x.ClassName(), x.id); err != nil {
		return nil, err
	}
	id, err := x.id.carry(carry)
	if err != nil {
		return nil, err
	}
	out := NewIndexedArray(nextindex, x.content)
	out.id, out.params = id, x.params
	return out, nil
}

// Project applies the index, materializing the gathered content.
func (x *IndexedArray) Project() (Content, error) {
	nextcarry, err := x.nextcarry()
	if err != nil {
		return nil, err
	}
	return x.content.Carry(nextcarry, false)
}

func (x *IndexedArray) nextcarry() (Index, error) {
	nextcarry, data := int64Index(x.index.Len())
	err := handleError(kernel.IndexedGetitemNextCarry(data, x.index, int64(x.content.Length())), x.ClassName(), x.id)
	return nextcarry, err
}

// Simplify composes this index with an index or mask directly beneath it.
// The result is an IndexedOptionArray when the inner layer is an option
// type.
func (x *IndexedArray) Simplify() (Content, error) {
	switch inner := x.content.(type) {
	case *IndexedArray:
		index, err := composeIndex(x.index, inner.index, x.ClassName(), x.id)
		if err != nil {
			return nil, err
		}
		out := NewIndexedArray(index, inner.content)
		out.id, out.params = x.id, x.params
		return out, nil
	case *IndexedOptionArray, *ByteMaskedArray, *BitMaskedArray, *UnmaskedArray:
		opt, err := toIndexedOption(inner)
		if err != nil {
			return nil, err
		}
		index, err := composeIndex(x.index, opt.index, x.ClassName(), x.id)
		if err != nil {
			return nil, err
		}
		out := NewIndexedOptionArray(index, opt.content)
		out.id, out.params = x.id, x.params
		return out, nil
	}
	return x, nil
}

func composeIndex(outer, inner Index, class string, id *Identities) (Index, error) {
	out, data := int64Index(outer.Len())
	err := handleError(kernel.IndexedSimplify(data, outer, inner), class, id)
	return out, err
}

func (x *IndexedArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch head.(type) {
	case SliceAt, SliceRange, SliceArray, SliceJagged:
		next, err := x.Project()
		if err != nil {
			return nil, err
		}
		return next.getitemNext(head, tail, advanced)
	}
	return getitemNextCommon(x, head, tail, advanced)
}

func (x *IndexedArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	if slicestarts.Len() != x.Length() {
		return nil, validationErr(x.ClassName(), "jagged slice length differs from array length")
	}
	next, err := x.Project()
	if err != nil {
		return nil, err
	}
	return next.getitemNextJagged(slicestarts, slicestops, slicecontent, tail)
}

func (x *IndexedArray) getitemNothing() (Content, error) {
	return x.content.GetItemRangeNowrap(0, 0)
}

func (x *IndexedArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	next, err := x.Project()
	if err != nil {
		return nil, err
	}
	return next.reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
}

func (x *IndexedArray) nbytesPart(largest map[uintptr]int) {
	x.index.nbytesPart(largest)
	x.content.nbytesPart(largest)
	x.id.nbytesPart(largest)
}

func (x *IndexedArray) validityError(path string) error {
	if err := kernelValidity(kernel.IndexedValidity(x.index, int64(x.content.Length()), false), x, path); err != nil {
		return err
	}
	if err := identitiesValidity(x, path); err != nil {
		return err
	}
	return x.content.validityError(path + ".content")
}

func (x *IndexedArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeElements(s, x, maxdecimals)
}

// IndexedOptionArray is a gather in which a negative index marks a missing
// element.
type IndexedOptionArray struct {
	base
	index   Index
	content Content
}

// NewIndexedOptionArray wraps index and content without copying.
func NewIndexedOptionArray(index Index, content Content) *IndexedOptionArray {
	return &IndexedOptionArray{index: index, content: content}
}

func (x *IndexedOptionArray) ClassName() string {
	return "IndexedOptionArray" + indexSuffix(x.index.Form())
}

func (x *IndexedOptionArray) Length() int      { return x.index.Len() }
func (x *IndexedOptionArray) Index() Index     { return x.index }
func (x *IndexedOptionArray) Content() Content { return x.content }

// NumNull counts the missing elements.
func (x *IndexedOptionArray) NumNull() int { return int(kernel.IndexedNumNull(x.index)) }

func (x *IndexedOptionArray) Form() Form {
	return &IndexedOptionForm{FormInfo: x.info(""), Index: x.index.Form(), Content: x.content.Form()}
}

func (x *IndexedOptionArray) ShallowCopy() Content {
	out := *x
	return &out
}

func (x *IndexedOptionArray) withParameters(p Parameters) Content {
	out := *x
	out.params = p
	return &out
}

func (x *IndexedOptionArray) withIdentities(id *Identities) Content {
	out := *x
	out.id = id
	return &out
}

func (x *IndexedOptionArray) GetItemAt(at int) (Content, error) { return getItemAt(x, at) }

func (x *IndexedOptionArray) GetItemAtNowrap(at int) (Content, error) {
	j := x.index.Get(at)
	if j < 0 {
		return nil, nil
	}
	if j >= int64(x.content.Length()) {
		return nil, handleError(kernel.Error{Str: "index out of range", Kernel: "IndexedOptionArrayGetitemAt", Identity: int64(at), Attempt: j}, x.ClassName(), x.id)
	}
	return x.content.GetItemAtNowrap(int(j))
}

func (x *IndexedOptionArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(x, start, stop)
}

func (x *IndexedOptionArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	out := NewIndexedOptionArray(x.index.GetItemRangeNowrap(start, stop), x.content)
	out.id, out.params = x.identitiesRange(start, stop), x.params
	return out, nil
}

func (x *IndexedOptionArray) GetItemField(key string) (Content, error) {
	content, err := x.content.GetItemField(key)
	if err != nil {
		return nil, err
	}
	return NewIndexedOptionArray(x.index, content), nil
}

func (x *IndexedOptionArray) GetItemFields(keys []string) (Content, error) {
	content, err := x.content.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return NewIndexedOptionArray(x.index, content), nil
}

func (x *IndexedOptionArray) Carry(carry Index, allowLazy bool) (Content, error) {
	nextindex, data := int64Index(carry.Len())
	if err := handleError(kernel.IndexedGetitemCarry(data, x.index, carry), x.ClassName(), x.id); err != nil {
		return nil, err
	}
	id, err := x.id.carry(carry)
	if err != nil {
		return nil, err
	}
	out := NewIndexedOptionArray(nextindex, x.content)
	out.id, out.params = id, x.params
	return out, nil
}

// nextcarry splits the index into a carry over the valid elements and an
// outindex that puts the missing ones back.
func (x *IndexedOptionArray) nextcarry() (nextcarry, outindex Index, err error) {
	numnull := int(kernel.IndexedNumNull(x.index))
	nextcarry, cdata := int64Index(x.index.Len() - numnull)
	outindex, odata := int64Index(x.index.Len())
	err = handleError(kernel.IndexedGetitemNextCarryOutIndex(cdata, odata, x.index, int64(x.content.Length())), x.ClassName(), x.id)
	return nextcarry, outindex, err
}

// Project keeps only the valid elements.
func (x *IndexedOptionArray) Project() (Content, error) {
	nextcarry, _, err := x.nextcarry()
	if err != nil {
		return nil, err
	}
	return x.content.Carry(nextcarry, false)
}

// ByteMask marks missing elements with 1.
func (x *IndexedOptionArray) ByteMask() (Index, error) {
	out, data := int8Index(x.index.Len())
	err := handleError(kernel.IndexedByteMask(data, x.index), x.ClassName(), x.id)
	return out, err
}

// Simplify composes this index with an index or mask directly beneath it,
// so that option types never nest.
func (x *IndexedOptionArray) Simplify() (Content, error) {
	var innerIndex Index
	var innerContent Content
	switch inner := x.content.(type) {
	case *IndexedArray:
		innerIndex, innerContent = inner.index, inner.content
	case *IndexedOptionArray, *ByteMaskedArray, *BitMaskedArray, *UnmaskedArray:
		opt, err := toIndexedOption(inner)
		if err != nil {
			return nil, err
		}
		innerIndex, innerContent = opt.index, opt.content
	default:
		return x, nil
	}
	index, err := composeIndex(x.index, innerIndex, x.ClassName(), x.id)
	if err != nil {
		return nil, err
	}
	out := NewIndexedOptionArray(index, innerContent)
	out.id, out.params = x.id, x.params
	return out, nil
}

func (x *IndexedOptionArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch head.(type) {
	case SliceAt, SliceRange, SliceArray, SliceJagged:
		nextcarry, outindex, err := x.nextcarry()
		if err != nil {
			return nil, err
		}
		next, err := x.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		nextadvanced := advanced
		if advanced.Len() != 0 {
			var adata []int64
			nextadvanced, adata = int64Index(nextcarry.Len())
			k := 0
			for i := 0; i < x.index.Len(); i++ {
				if x.index.Get(i) >= 0 {
					adata[k] = advanced.Get(i)
					k++
				}
			}
		}
		down, err := next.getitemNext(head, tail, nextadvanced)
		if err != nil {
			return nil, err
		}
		out := NewIndexedOptionArray(outindex, down)
		out.id, out.params = x.id, x.params
		return out.Simplify()
	}
	return getitemNextCommon(x, head, tail, advanced)
}

func (x *IndexedOptionArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	if slicestarts.Len() != x.Length() {
		return nil, validationErr(x.ClassName(), "jagged slice length differs from array length")
	}
	nextcarry, outindex, err := x.nextcarry()
	if err != nil {
		return nil, err
	}
	reducedstarts, sdata := int64Index(nextcarry.Len())
	reducedstops, tdata := int64Index(nextcarry.Len())
	if err := handleError(kernel.IndexedJaggedProject(sdata, tdata, x.index, slicestarts, slicestops), x.ClassName(), x.id); err != nil {
		return nil, err
	}
	next, err := x.content.Carry(nextcarry, true)
	if err != nil {
		return nil, err
	}
	down, err := next.getitemNextJagged(reducedstarts, reducedstops, slicecontent, tail)
	if err != nil {
		return nil, err
	}
	return NewIndexedOptionArray(outindex, down).Simplify()
}

func (x *IndexedOptionArray) getitemNothing() (Content, error) {
	return x.content.GetItemRangeNowrap(0, 0)
}

func (x *IndexedOptionArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	numnull := int(kernel.IndexedNumNull(x.index))
	nextcarry, cdata := int64Index(x.index.Len() - numnull)
	nextparents, pdata := int64Index(x.index.Len() - numnull)
	outindex, odata := int64Index(x.index.Len())
	if err := handleError(kernel.IndexedReduceNext(cdata, pdata, odata, x.index, parents), x.ClassName(), x.id); err != nil {
		return nil, err
	}
	next, err := x.content.Carry(nextcarry, false)
	if err != nil {
		return nil, err
	}
	out, err := next.reduceNext(r, negaxis, starts, nextparents, outlength, mask, keepdims)
	if err != nil {
		return nil, err
	}
	if branch, depth := x.Form().BranchDepth(); !branch && negaxis == depth {
		return out, nil
	}
	return reinsertMissing(out, outindex, parents, outlength, x.ClassName())
}

// reinsertMissing puts the lists dropped before an inner reduction back as
// missing values, so every list of the input still has a result.
func reinsertMissing(out Content, outindex, parents Index, outlength int, class string) (Content, error) {
	switch raw := out.(type) {
	case *RegularArray:
		return reinsertMissing(raw.ToListOffsetArray64(), outindex, parents, outlength, class)
	case *ListOffsetArray:
		outoffsets, data := int64Index(outlength + 1)
		if err := handleError(kernel.ReduceLocalOutOffsets(data, parents), class, nil); err != nil {
			return nil, err
		}
		self, err := raw.ToListOffsetArray64(true)
		if err != nil {
			return nil, err
		}
		content, err := NewIndexedOptionArray(outindex, self.content).Simplify()
		if err != nil {
			return nil, err
		}
		return NewListOffsetArray(outoffsets, content), nil
	case *RecordArray:
		contents := make([]Content, len(raw.contents))
		for i, c := range raw.contents {
			next, err := reinsertMissing(c, outindex, parents, outlength, class)
			if err != nil {
				return nil, err
			}
			contents[i] = next
		}
		return newRecordArray(contents, raw.recordlookup, outlength), nil
	}
	return nil, unhandledErr(class, "cannot reinsert missing values into a reduced %s", out.ClassName())
}

func (x *IndexedOptionArray) nbytesPart(largest map[uintptr]int) {
	x.index.nbytesPart(largest)
	x.content.nbytesPart(largest)
	x.id.nbytesPart(largest)
}

func (x *IndexedOptionArray) validityError(path string) error {
	if err := kernelValidity(kernel.IndexedValidity(x.index, int64(x.content.Length()), true), x, path); err != nil {
		return err
	}
	if err := identitiesValidity(x, path); err != nil {
		return err
	}
	return x.content.validityError(path + ".content")
}

func (x *IndexedOptionArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeElements(s, x, maxdecimals)
}

// toIndexedOption expresses any option type as an IndexedOptionArray with
// an i64 index.
func toIndexedOption(c Content) (*IndexedOptionArray, error) {
	switch x := c.(type) {
	case *IndexedOptionArray:
		if x.index.Form() == IndexI64 {
			return x, nil
		}
		out := NewIndexedOptionArray(x.index.ToInt64(), x.content)
		out.id, out.params = x.id, x.params
		return out, nil
	case *ByteMaskedArray:
		return x.ToIndexedOptionArray64()
	case *BitMaskedArray:
		return x.ToIndexedOptionArray64()
	case *UnmaskedArray:
		return x.ToIndexedOptionArray64(), nil
	}
	return nil, unhandledErr(c.ClassName(), "%s is not an option type", c.ClassName())
}
