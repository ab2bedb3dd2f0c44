package jagged

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// ListArray holds variable-length lists as independent starts and stops into
// its content. Lists may overlap, leave gaps or appear out of order.
type ListArray struct {
	base
	starts  Index
	stops   Index
	content Content
}

// NewListArray wraps starts, stops and content without copying. Validate
// checks that every list lies inside content.
func NewListArray(starts, stops Index, content Content) *ListArray {
	return &ListArray{starts: starts, stops: stops, content: content}
}

func (l *ListArray) ClassName() string { return "ListArray" + indexSuffix(l.starts.Form()) }
func (l *ListArray) Length() int       { return l.starts.Len() }
func (l *ListArray) Starts() Index     { return l.starts }
func (l *ListArray) Stops() Index      { return l.stops }
func (l *ListArray) Content() Content  { return l.content }

func (l *ListArray) Form() Form {
	return &ListForm{FormInfo: l.info(""), Starts: l.starts.Form(), Stops: l.stops.Form(), Content: l.content.Form()}
}

func (l *ListArray) ShallowCopy() Content {
	out := *l
	return &out
}

func (l *ListArray) withParameters(p Parameters) Content {
	out := *l
	out.params = p
	return &out
}

func (l *ListArray) withIdentities(id *Identities) Content {
	out := *l
	out.id = id
	return &out
}

func (l *ListArray) GetItemAt(at int) (Content, error) { return getItemAt(l, at) }

func (l *ListArray) GetItemAtNowrap(at int) (Content, error) {
	if at >= l.stops.Len() {
		return nil, handleError(kernel.Error{Str: "len(stops) < len(starts)", Kernel: "ListArrayGetitemAt", Identity: kernel.None, Attempt: int64(at)}, l.ClassName(), l.id)
	}
	start, stop := l.starts.Get(at), l.stops.Get(at)
	if start != stop && (start < 0 || start > stop || stop > int64(l.content.Length())) {
		return nil, handleError(kernel.Error{Str: "list lies outside its content", Kernel: "ListArrayGetitemAt", Identity: int64(at), Attempt: kernel.None}, l.ClassName(), l.id)
	}
	return l.content.GetItemRangeNowrap(int(start), int(stop))
}

func (l *ListArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(l, start, stop)
}

func (l *ListArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	out := NewListArray(l.starts.GetItemRangeNowrap(start, stop), l.stops.GetItemRangeNowrap(start, stop), l.content)
	out.id, out.params = l.identitiesRange(start, stop), l.params
	return out, nil
}

func (l *ListArray) GetItemField(key string) (Content, error) {
	content, err := l.content.GetItemField(key)
	if err != nil {
		return nil, err
	}
	return NewListArray(l.starts, l.stops, content), nil
}

func (l *ListArray) GetItemFields(keys []string) (Content, error) {
	content, err := l.content.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return NewListArray(l.starts, l.stops, content), nil
}

func (l *ListArray) Carry(carry Index, allowLazy bool) (Content, error) {
	if l.stops.Len() < l.starts.Len() {
		return nil, validationErr(l.ClassName(), "len(stops) < len(starts)")
	}
	nextstarts, sdata := int64Index(carry.Len())
	nextstops, tdata := int64Index(carry.Len())
	if err := handleError(kernel.ListGetitemCarry(sdata, tdata, l.starts, l.stops, carry), l.ClassName(), l.id); err != nil {
		return nil, err
	}
	id, err := l.id.carry(carry)
	if err != nil {
		return nil, err
	}
	out := NewListArray(nextstarts, nextstops, l.content)
	out.id, out.params = id, l.params
	return out, nil
}

// Compact rewrites the lists as offsets over a content holding exactly the
// listed elements, in order.
func (l *ListArray) Compact() (*ListOffsetArray, error) {
	if l.stops.Len() < l.starts.Len() {
		return nil, validationErr(l.ClassName(), "len(stops) < len(starts)")
	}
	offsets, odata := int64Index(l.Length() + 1)
	if err := handleError(kernel.ListCompactOffsets(odata, l.starts, l.stops), l.ClassName(), l.id); err != nil {
		return nil, err
	}
	nextcarry, cdata := int64Index(int(odata[l.Length()]))
	if err := handleError(kernel.ListBroadcastCarry(cdata, l.starts, l.stops), l.ClassName(), l.id); err != nil {
		return nil, err
	}
	content, err := l.content.Carry(nextcarry, false)
	if err != nil {
		return nil, err
	}
	out := NewListOffsetArray(offsets, content)
	out.id, out.params = l.id, l.params
	return out, nil
}

// ToListOffsetArray64 is Compact; the result always starts at offset 0.
func (l *ListArray) ToListOffsetArray64() (*ListOffsetArray, error) { return l.Compact() }

func (l *ListArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	lenstarts := l.starts.Len()
	switch head.(type) {
	case SliceAt, SliceRange, SliceArray, SliceJagged:
		if l.stops.Len() < lenstarts {
			return nil, validationErr(l.ClassName(), "len(stops) < len(starts)")
		}
	}

	switch h := head.(type) {
	case SliceAt:
		if advanced.Len() != 0 {
			return nil, validationErr(l.ClassName(), "cannot mix an integer position with NumPy-style advanced indexing here")
		}
		nextcarry, data := int64Index(lenstarts)
		if err := handleError(kernel.ListGetitemNextAt(data, l.starts, l.stops, h.At), l.ClassName(), l.id); err != nil {
			return nil, err
		}
		nextcontent, err := l.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		return nextcontent.getitemNext(tail.Head(), tail.Tail(), advanced)

	case SliceRange:
		carrylength, kerr := kernel.ListGetitemNextRangeCarryLength(l.starts, l.stops, h.Start, h.Stop, h.Step, h.HasStart, h.HasStop)
		if err := handleError(kerr, l.ClassName(), l.id); err != nil {
			return nil, err
		}
		nextoffsets, odata := int64Index(lenstarts + 1)
		nextcarry, cdata := int64Index(int(carrylength))
		if err := handleError(kernel.ListGetitemNextRange(odata, cdata, l.starts, l.stops, h.Start, h.Stop, h.Step, h.HasStart, h.HasStop), l.ClassName(), l.id); err != nil {
			return nil, err
		}
		nextcontent, err := l.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		nextadvanced := advanced
		if advanced.Len() != 0 {
			var adata []int64
			nextadvanced, adata = int64Index(int(carrylength))
			if err := handleError(kernel.ListGetitemNextRangeSpreadAdvanced(adata, advanced, odata), l.ClassName(), l.id); err != nil {
				return nil, err
			}
		}
		down, err := nextcontent.getitemNext(tail.Head(), tail.Tail(), nextadvanced)
		if err != nil {
			return nil, err
		}
		out := NewListOffsetArray(nextoffsets, down)
		out.id, out.params = l.id, l.params
		return out, nil

	case SliceArray:
		flathead := h.ravel().Int64s()
		lencontent := int64(l.content.Length())
		if advanced.Len() == 0 {
			nextcarry, cdata := int64Index(lenstarts * len(flathead))
			nextadvanced, adata := int64Index(lenstarts * len(flathead))
			if err := handleError(kernel.ListGetitemNextArray(cdata, adata, l.starts, l.stops, flathead, lencontent), l.ClassName(), l.id); err != nil {
				return nil, err
			}
			nextcontent, err := l.content.Carry(nextcarry, true)
			if err != nil {
				return nil, err
			}
			down, err := nextcontent.getitemNext(tail.Head(), tail.Tail(), nextadvanced)
			if err != nil {
				return nil, err
			}
			return arrayWrap(down, h.Shape, lenstarts), nil
		}
		nextcarry, cdata := int64Index(lenstarts)
		nextadvanced, adata := int64Index(lenstarts)
		if err := handleError(kernel.ListGetitemNextArrayAdvanced(cdata, adata, l.starts, l.stops, flathead, advanced, lencontent), l.ClassName(), l.id); err != nil {
			return nil, err
		}
		nextcontent, err := l.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		return nextcontent.getitemNext(tail.Head(), tail.Tail(), nextadvanced)

	case SliceJagged:
		if advanced.Len() != 0 {
			return nil, validationErr(l.ClassName(), "cannot mix jagged slice with NumPy-style advanced indexing")
		}
		size := h.Len()
		multistarts, sdata := int64Index(lenstarts * size)
		multistops, tdata := int64Index(lenstarts * size)
		nextcarry, cdata := int64Index(lenstarts * size)
		if err := handleError(kernel.ListGetitemJaggedExpand(sdata, tdata, h.Offsets, cdata, l.starts, l.stops, int64(size)), l.ClassName(), l.id); err != nil {
			return nil, err
		}
		carried, err := l.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		down, err := carried.getitemNextJagged(multistarts, multistops, h.Content, tail)
		if err != nil {
			return nil, err
		}
		return newRegularArray(down, size, lenstarts), nil
	}
	return getitemNextCommon(l, head, tail, advanced)
}

func (l *ListArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	if l.starts.Len() < slicestarts.Len() {
		return nil, validationErr(l.ClassName(), "jagged slice length differs from array length")
	}
	if l.stops.Len() < l.starts.Len() {
		return nil, validationErr(l.ClassName(), "len(stops) < len(starts)")
	}

	switch sc := slicecontent.(type) {
	case SliceArray:
		carrylen, kerr := kernel.ListGetitemJaggedCarryLen(slicestarts, slicestops)
		if err := handleError(kerr, l.ClassName(), l.id); err != nil {
			return nil, err
		}
		outoffsets, odata := int64Index(slicestarts.Len() + 1)
		nextcarry, cdata := int64Index(int(carrylen))
		kerr = kernel.ListGetitemJaggedApply(odata, cdata, slicestarts, slicestops, sc.ravel(), l.starts, l.stops, int64(l.content.Length()))
		if err := handleError(kerr, l.ClassName(), l.id); err != nil {
			return nil, err
		}
		nextcontent, err := l.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		down, err := nextcontent.getitemNext(tail.Head(), tail.Tail(), emptyAdvanced())
		if err != nil {
			return nil, err
		}
		return NewListOffsetArray(outoffsets, down), nil

	case SliceMissing:
		return l.getitemNextJaggedMissing(slicestarts, slicestops, sc, tail)

	case SliceJagged:
		n := slicestarts.Len()
		starts, stops := l.starts.GetItemRangeNowrap(0, n), l.stops.GetItemRangeNowrap(0, n)
		outoffsets, odata := int64Index(n + 1)
		if err := handleError(kernel.ListGetitemJaggedDescend(odata, slicestarts, slicestops, starts, stops), l.ClassName(), l.id); err != nil {
			return nil, err
		}
		total := int(odata[n])
		nextcarry, cdata := int64Index(total)
		if err := handleError(kernel.ListBroadcastCarry(cdata, starts, stops), l.ClassName(), l.id); err != nil {
			return nil, err
		}
		innerstarts, isdata := int64Index(total)
		innerstops, itdata := int64Index(total)
		k := 0
		for i := 0; i < n; i++ {
			for j := slicestarts.Get(i); j < slicestops.Get(i); j++ {
				if j < 0 || int(j) >= sc.Len() {
					return nil, validationErr(l.ClassName(), "jagged slice row %d out of range", j)
				}
				isdata[k], itdata[k] = sc.Offsets.Get(int(j)), sc.Offsets.Get(int(j)+1)
				k++
			}
		}
		nextcontent, err := l.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		down, err := nextcontent.getitemNextJagged(innerstarts, innerstops, sc.Content, tail)
		if err != nil {
			return nil, err
		}
		return NewListOffsetArray(outoffsets, down), nil
	}
	return nil, unhandledErr(l.ClassName(), "unexpected slice type for jagged slicing: %T", slicecontent)
}

// getitemNextJaggedMissing applies a jagged slice whose rows contain missing
// positions: the valid positions are applied as an ordinary jagged slice and
// the missing ones reinserted as None.
func (l *ListArray) getitemNextJaggedMissing(slicestarts, slicestops Index, missing SliceMissing, tail Slice) (Content, error) {
	numvalid, kerr := kernel.ListGetitemJaggedNumValid(slicestarts, slicestops, missing.Index)
	if err := handleError(kerr, l.ClassName(), l.id); err != nil {
		return nil, err
	}
	var total int64
	for i := 0; i < slicestarts.Len(); i++ {
		total += slicestops.Get(i) - slicestarts.Get(i)
	}
	outindex, idata := int64Index(int(total))
	smalloffsets, sdata := int64Index(slicestarts.Len() + 1)
	largeoffsets, ldata := int64Index(slicestarts.Len() + 1)
	if err := handleError(kernel.ListGetitemJaggedShrink(idata, sdata, ldata, slicestarts, slicestops, missing.Index), l.ClassName(), l.id); err != nil {
		return nil, err
	}

	positions := make([]int64, 0, numvalid)
	for i := 0; i < slicestarts.Len(); i++ {
		for j := slicestarts.Get(i); j < slicestops.Get(i); j++ {
			if m := missing.Index.Get(int(j)); m >= 0 {
				positions = append(positions, m)
			}
		}
	}
	valid, err := takeSliceItem(missing.Content, positions)
	if err != nil {
		return nil, err
	}

	n := slicestarts.Len()
	down, err := l.getitemNextJagged(smalloffsets.GetItemRangeNowrap(0, n), smalloffsets.GetItemRangeNowrap(1, n+1), valid, tail)
	if err != nil {
		return nil, err
	}
	raw, ok := down.(*ListOffsetArray)
	if !ok {
		return nil, unhandledErr(l.ClassName(), "jagged slice with missing values produced %s", down.ClassName())
	}
	content, err := NewIndexedOptionArray(outindex, raw.content).Simplify()
	if err != nil {
		return nil, err
	}
	return NewListOffsetArray(largeoffsets, content), nil
}

func (l *ListArray) getitemNothing() (Content, error) {
	return l.content.GetItemRangeNowrap(0, 0)
}

func (l *ListArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	compact, err := l.Compact()
	if err != nil {
		return nil, err
	}
	return compact.reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
}

func (l *ListArray) nbytesPart(largest map[uintptr]int) {
	l.starts.nbytesPart(largest)
	l.stops.nbytesPart(largest)
	l.content.nbytesPart(largest)
	l.id.nbytesPart(largest)
}

func (l *ListArray) validityError(path string) error {
	if f := l.starts.Form(); f == IndexI8 || f == IndexU8 {
		return validityErr(l.ClassName(), path, "ListArray cannot have %s starts", f)
	}
	if l.stops.Len() < l.starts.Len() {
		return validityErr(l.ClassName(), path, "len(stops) < len(starts)")
	}
	if err := kernelValidity(kernel.ListValidity(l.starts, l.stops, int64(l.content.Length())), l, path); err != nil {
		return err
	}
	if err := identitiesValidity(l, path); err != nil {
		return err
	}
	return l.content.validityError(path + ".content")
}

func (l *ListArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeList(s, l, maxdecimals)
}
