package jagged

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// ListOffsetArray holds variable-length lists as one offsets buffer: list i
// is content[offsets[i]:offsets[i+1]].
type ListOffsetArray struct {
	base
	offsets Index
	content Content
}

// NewListOffsetArray wraps offsets and content without copying. offsets must
// hold at least one element; Validate checks that it is monotonic and
// inside content.
func NewListOffsetArray(offsets Index, content Content) *ListOffsetArray {
	return &ListOffsetArray{offsets: offsets, content: content}
}

func (l *ListOffsetArray) ClassName() string { return "ListOffsetArray" + indexSuffix(l.offsets.Form()) }
func (l *ListOffsetArray) Offsets() Index    { return l.offsets }
func (l *ListOffsetArray) Content() Content  { return l.content }

func (l *ListOffsetArray) Length() int {
	if l.offsets.Len() == 0 {
		return 0
	}
	return l.offsets.Len() - 1
}

func (l *ListOffsetArray) Starts() Index { return l.offsets.GetItemRangeNowrap(0, l.Length()) }
func (l *ListOffsetArray) Stops() Index  { return l.offsets.GetItemRangeNowrap(1, l.Length()+1) }

func (l *ListOffsetArray) Form() Form {
	return &ListOffsetForm{FormInfo: l.info(""), Offsets: l.offsets.Form(), Content: l.content.Form()}
}

func (l *ListOffsetArray) ShallowCopy() Content {
	out := *l
	return &out
}

func (l *ListOffsetArray) withParameters(p Parameters) Content {
	out := *l
	out.params = p
	return &out
}

func (l *ListOffsetArray) withIdentities(id *Identities) Content {
	out := *l
	out.id = id
	return &out
}

// toListArray is the same lists as independent starts and stops.
func (l *ListOffsetArray) toListArray() *ListArray {
	out := NewListArray(l.Starts(), l.Stops(), l.content)
	out.id, out.params = l.id, l.params
	return out
}

// ToListOffsetArray64 converts the offsets to i64. With startAtZero the
// content is trimmed so that offsets[0] is 0.
func (l *ListOffsetArray) ToListOffsetArray64(startAtZero bool) (*ListOffsetArray, error) {
	if l.offsets.Len() == 0 {
		return nil, validationErr(l.ClassName(), "offsets must have at least one element")
	}
	off0 := l.offsets.Get(0)
	if !startAtZero || off0 == 0 {
		if l.offsets.Form() == IndexI64 {
			return l, nil
		}
		out := NewListOffsetArray(l.offsets.ToInt64(), l.content)
		out.id, out.params = l.id, l.params
		return out, nil
	}
	offsets, data := int64Index(l.offsets.Len())
	for i := range data {
		data[i] = l.offsets.Get(i) - off0
	}
	content, err := l.content.GetItemRangeNowrap(int(off0), int(l.offsets.Get(l.Length())))
	if err != nil {
		return nil, err
	}
	out := NewListOffsetArray(offsets, content)
	out.id, out.params = l.id, l.params
	return out, nil
}

func (l *ListOffsetArray) GetItemAt(at int) (Content, error) { return getItemAt(l, at) }

func (l *ListOffsetArray) GetItemAtNowrap(at int) (Content, error) {
	start, stop := l.offsets.Get(at), l.offsets.Get(at+1)
	if start != stop && (start < 0 || start > stop || stop > int64(l.content.Length())) {
		return nil, handleError(kernel.Error{Str: "list lies outside its content", Kernel: "ListOffsetArrayGetitemAt", Identity: int64(at), Attempt: kernel.None}, l.ClassName(), l.id)
	}
	return l.content.GetItemRangeNowrap(int(start), int(stop))
}

func (l *ListOffsetArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(l, start, stop)
}

func (l *ListOffsetArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	out := NewListOffsetArray(l.offsets.GetItemRangeNowrap(start, stop+1), l.content)
	out.id, out.params = l.identitiesRange(start, stop), l.params
	return out, nil
}

func (l *ListOffsetArray) GetItemField(key string) (Content, error) {
	content, err := l.content.GetItemField(key)
	if err != nil {
		return nil, err
	}
	return NewListOffsetArray(l.offsets, content), nil
}

func (l *ListOffsetArray) GetItemFields(keys []string) (Content, error) {
	content, err := l.content.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return NewListOffsetArray(l.offsets, content), nil
}

func (l *ListOffsetArray) Carry(carry Index, allowLazy bool) (Content, error) {
	return l.toListArray().Carry(carry, allowLazy)
}

func (l *ListOffsetArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch head.(type) {
	case SliceAt, SliceRange, SliceArray, SliceJagged:
		return l.toListArray().getitemNext(head, tail, advanced)
	}
	return getitemNextCommon(l, head, tail, advanced)
}

func (l *ListOffsetArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	return l.toListArray().getitemNextJagged(slicestarts, slicestops, slicecontent, tail)
}

func (l *ListOffsetArray) getitemNothing() (Content, error) {
	return l.content.GetItemRangeNowrap(0, 0)
}

func (l *ListOffsetArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	branch, depth := l.Form().BranchDepth()
	if !branch && negaxis == depth {
		return l.reduceNonlocal(r, negaxis, parents, outlength, mask, keepdims)
	}

	self, err := l.ToListOffsetArray64(true)
	if err != nil {
		return nil, err
	}
	length := self.Length()
	nextparents, pdata := int64Index(int(self.offsets.Get(length)))
	if err := handleError(kernel.ReduceLocalNextParents(pdata, self.offsets), l.ClassName(), l.id); err != nil {
		return nil, err
	}
	content, err := self.content.GetItemRangeNowrap(0, int(self.offsets.Get(length)))
	if err != nil {
		return nil, err
	}
	down, err := content.reduceNext(r, negaxis, self.Starts(), nextparents, length, mask, keepdims)
	if err != nil {
		return nil, err
	}
	outoffsets, odata := int64Index(outlength + 1)
	if err := handleError(kernel.ReduceLocalOutOffsets(odata, parents), l.ClassName(), l.id); err != nil {
		return nil, err
	}
	return NewListOffsetArray(outoffsets, down), nil
}

// reduceNonlocal reduces across this list dimension: element j of every list
// in a group is combined with element j of the others.
func (l *ListOffsetArray) reduceNonlocal(r Reducer, negaxis int, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	nl, kerr := kernel.ReduceNonlocal(l.offsets, parents, int64(outlength))
	if err := handleError(kerr, l.ClassName(), l.id); err != nil {
		return nil, err
	}
	nextcontent, err := l.content.Carry(NewIndex64(nl.NextCarry), false)
	if err != nil {
		return nil, err
	}
	down, err := nextcontent.reduceNext(r, negaxis-1, NewIndex64(nl.NextStarts), NewIndex64(nl.NextParents), outlength*int(nl.MaxCount), mask, false)
	if err != nil {
		return nil, err
	}
	var out Content = NewListArray(NewIndex64(nl.OutStarts), NewIndex64(nl.OutStops), down)
	if keepdims {
		out = newRegularArray(out, 1, outlength)
	}
	return out, nil
}

func (l *ListOffsetArray) nbytesPart(largest map[uintptr]int) {
	l.offsets.nbytesPart(largest)
	l.content.nbytesPart(largest)
	l.id.nbytesPart(largest)
}

func (l *ListOffsetArray) validityError(path string) error {
	if f := l.offsets.Form(); f == IndexI8 || f == IndexU8 {
		return validityErr(l.ClassName(), path, "ListOffsetArray cannot have %s offsets", f)
	}
	if l.offsets.Len() < 1 {
		return validityErr(l.ClassName(), path, "len(offsets) < 1")
	}
	if err := kernelValidity(kernel.ListValidity(l.Starts(), l.Stops(), int64(l.content.Length())), l, path); err != nil {
		return err
	}
	if err := identitiesValidity(l, path); err != nil {
		return err
	}
	return l.content.validityError(path + ".content")
}

func (l *ListOffsetArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeList(s, l, maxdecimals)
}
