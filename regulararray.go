package jagged

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// RegularArray splits its content into rows of a fixed size.
type RegularArray struct {
	base
	content Content
	size    int
	length  int
}

// NewRegularArray divides content into rows of size elements; a trailing
// partial row is dropped. A size of zero makes an empty array.
func NewRegularArray(content Content, size int) *RegularArray {
	length := 0
	if size > 0 {
		length = content.Length() / size
	}
	return newRegularArray(content, size, length)
}

func newRegularArray(content Content, size, length int) *RegularArray {
	return &RegularArray{content: content, size: size, length: length}
}

func (r *RegularArray) ClassName() string { return "RegularArray" }
func (r *RegularArray) Length() int       { return r.length }
func (r *RegularArray) Content() Content  { return r.content }
func (r *RegularArray) Size() int         { return r.size }

func (r *RegularArray) Form() Form {
	return &RegularForm{FormInfo: r.info(""), Content: r.content.Form(), Size: r.size}
}

func (r *RegularArray) ShallowCopy() Content {
	out := *r
	return &out
}

func (r *RegularArray) withParameters(p Parameters) Content {
	out := *r
	out.params = p
	return &out
}

func (r *RegularArray) withIdentities(id *Identities) Content {
	out := *r
	out.id = id
	return &out
}

func (r *RegularArray) GetItemAt(at int) (Content, error) { return getItemAt(r, at) }

func (r *RegularArray) GetItemAtNowrap(at int) (Content, error) {
	return r.content.GetItemRangeNowrap(at*r.size, (at+1)*r.size)
}

func (r *RegularArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(r, start, stop)
}

func (r *RegularArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	content, err := r.content.GetItemRangeNowrap(start*r.size, stop*r.size)
	if err != nil {
		return nil, err
	}
	out := newRegularArray(content, r.size, stop-start)
	out.id, out.params = r.identitiesRange(start, stop), r.params
	return out, nil
}

func (r *RegularArray) GetItemField(key string) (Content, error) {
	content, err := r.content.GetItemField(key)
	if err != nil {
		return nil, err
	}
	return newRegularArray(content, r.size, r.length), nil
}

func (r *RegularArray) GetItemFields(keys []string) (Content, error) {
	content, err := r.content.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return newRegularArray(content, r.size, r.length), nil
}

func (r *RegularArray) Carry(carry Index, allowLazy bool) (Content, error) {
	for i := 0; i < carry.Len(); i++ {
		if c := carry.Get(i); c < 0 || c >= int64(r.length) {
			return nil, handleError(kernel.Error{Str: "index out of range", Kernel: "RegularGetitemCarry", Identity: int64(i), Attempt: c}, r.ClassName(), r.id)
		}
	}
	nextcarry, data := int64Index(carry.Len() * r.size)
	if err := handleError(kernel.RegularGetitemCarry(data, carry, int64(r.size)), r.ClassName(), r.id); err != nil {
		return nil, err
	}
	content, err := r.content.Carry(nextcarry, allowLazy)
	if err != nil {
		return nil, err
	}
	id, err := r.id.carry(carry)
	if err != nil {
		return nil, err
	}
	out := newRegularArray(content, r.size, carry.Len())
	out.id, out.params = id, r.params
	return out, nil
}

// CompactOffsets64 are the offsets 0, size, 2*size, ... of every row.
func (r *RegularArray) CompactOffsets64() Index {
	offsets, data := int64Index(r.length + 1)
	kernel.RegularCompactOffsets(data, int64(r.size))
	return offsets
}

// ToListOffsetArray64 expresses the rows as offsets 0, size, 2*size, ...
func (r *RegularArray) ToListOffsetArray64() *ListOffsetArray {
	out := NewListOffsetArray(r.CompactOffsets64(), r.content)
	out.id, out.params = r.id, r.params
	return out
}

func (r *RegularArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch h := head.(type) {
	case SliceAt:
		if advanced.Len() != 0 {
			return nil, validationErr(r.ClassName(), "cannot mix an integer position with NumPy-style advanced indexing here")
		}
		nextcarry, data := int64Index(r.length)
		if err := handleError(kernel.RegularGetitemNextAt(data, h.At, int64(r.size)), r.ClassName(), r.id); err != nil {
			return nil, err
		}
		nextcontent, err := r.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		return nextcontent.getitemNext(tail.Head(), tail.Tail(), advanced)

	case SliceRange:
		start, stop := kernel.RegularizeRangeSlice(h.Start, h.Stop, h.Step > 0, h.HasStart, h.HasStop, int64(r.size))
		nextsize := kernel.RangeLength(start, stop, h.Step)
		nextcarry, data := int64Index(r.length * int(nextsize))
		if err := handleError(kernel.RegularGetitemNextRange(data, start, h.Step, int64(r.length), int64(r.size), nextsize), r.ClassName(), r.id); err != nil {
			return nil, err
		}
		nextcontent, err := r.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		nextadvanced := advanced
		if advanced.Len() != 0 {
			var adata []int64
			nextadvanced, adata = int64Index(r.length * int(nextsize))
			if err := handleError(kernel.RegularGetitemNextRangeSpreadAdvanced(adata, advanced, int64(r.length), nextsize), r.ClassName(), r.id); err != nil {
				return nil, err
			}
		}
		down, err := nextcontent.getitemNext(tail.Head(), tail.Tail(), nextadvanced)
		if err != nil {
			return nil, err
		}
		out := newRegularArray(down, int(nextsize), r.length)
		out.id, out.params = r.id, r.params
		return out, nil

	case SliceArray:
		flathead := h.ravel()
		regular := make([]int64, flathead.Len())
		if err := handleError(kernel.RegularGetitemNextArrayRegularize(regular, flathead, int64(r.size)), r.ClassName(), r.id); err != nil {
			return nil, err
		}
		if advanced.Len() == 0 {
			nextcarry, cdata := int64Index(r.length * len(regular))
			nextadvanced, adata := int64Index(r.length * len(regular))
			if err := handleError(kernel.RegularGetitemNextArray(cdata, adata, regular, int64(r.length), int64(r.size)), r.ClassName(), r.id); err != nil {
				return nil, err
			}
			nextcontent, err := r.content.Carry(nextcarry, true)
			if err != nil {
				return nil, err
			}
			down, err := nextcontent.getitemNext(tail.Head(), tail.Tail(), nextadvanced)
			if err != nil {
				return nil, err
			}
			return arrayWrap(down, h.Shape, r.length), nil
		}
		nextcarry, cdata := int64Index(r.length)
		nextadvanced, adata := int64Index(r.length)
		if err := handleError(kernel.RegularGetitemNextArrayAdvanced(cdata, adata, advanced, regular, int64(r.length), int64(r.size)), r.ClassName(), r.id); err != nil {
			return nil, err
		}
		nextcontent, err := r.content.Carry(nextcarry, true)
		if err != nil {
			return nil, err
		}
		return nextcontent.getitemNext(tail.Head(), tail.Tail(), nextadvanced)

	case SliceJagged:
		if advanced.Len() != 0 {
			return nil, validationErr(r.ClassName(), "cannot mix jagged slice with NumPy-style advanced indexing")
		}
		if h.Len() != r.size {
			return nil, validationErr(r.ClassName(), "cannot fit jagged slice with length %d into RegularArray of size %d", h.Len(), r.size)
		}
		multistarts, sdata := int64Index(r.length * r.size)
		multistops, tdata := int64Index(r.length * r.size)
		if err := handleError(kernel.RegularGetitemJaggedExpand(sdata, tdata, h.Offsets, int64(r.size), int64(r.length)), r.ClassName(), r.id); err != nil {
			return nil, err
		}
		down, err := r.content.getitemNextJagged(multistarts, multistops, h.Content, tail)
		if err != nil {
			return nil, err
		}
		return newRegularArray(down, h.Len(), r.length), nil
	}
	return getitemNextCommon(r, head, tail, advanced)
}

func (r *RegularArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	return r.ToListOffsetArray64().getitemNextJagged(slicestarts, slicestops, slicecontent, tail)
}

func (r *RegularArray) getitemNothing() (Content, error) {
	return r.content.GetItemRangeNowrap(0, 0)
}

func (r *RegularArray) reduceNext(red Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	return r.ToListOffsetArray64().reduceNext(red, negaxis, starts, parents, outlength, mask, keepdims)
}

func (r *RegularArray) nbytesPart(largest map[uintptr]int) {
	r.content.nbytesPart(largest)
	r.id.nbytesPart(largest)
}

func (r *RegularArray) validityError(path string) error {
	if r.size < 0 {
		return validityErr(r.ClassName(), path, "size < 0")
	}
	if r.content.Length() < r.size*r.length {
		return validityErr(r.ClassName(), path, "len(content) < size * length")
	}
	if err := identitiesValidity(r, path); err != nil {
		return err
	}
	return r.content.validityError(path + ".content")
}

func (r *RegularArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeList(s, r, maxdecimals)
}
