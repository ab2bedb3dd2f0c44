package jagged

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// ByteMaskedArray marks missing elements with one mask byte each. Element i
// is valid when (mask[i] != 0) == validWhen.
type ByteMaskedArray struct {
	base
	mask      Index
	content   Content
	validWhen bool
}

// NewByteMaskedArray wraps an i8 mask and content without copying.
func NewByteMaskedArray(mask Index, content Content, validWhen bool) *ByteMaskedArray {
	return &ByteMaskedArray{mask: mask, content: content, validWhen: validWhen}
}

func (b *ByteMaskedArray) ClassName() string { return "ByteMaskedArray" }
func (b *ByteMaskedArray) Length() int       { return b.mask.Len() }
func (b *ByteMaskedArray) Mask() Index       { return b.mask }
func (b *ByteMaskedArray) Content() Content  { return b.content }
func (b *ByteMaskedArray) ValidWhen() bool   { return b.validWhen }

func (b *ByteMaskedArray) Form() Form {
	return &ByteMaskedForm{FormInfo: b.info(""), Mask: b.mask.Form(), Content: b.content.Form(), ValidWhen: b.validWhen}
}

func (b *ByteMaskedArray) ShallowCopy() Content {
	out := *b
	return &out
}

func (b *ByteMaskedArray) withParameters(p Parameters) Content {
	out := *b
	out.params = p
	return &out
}

func (b *ByteMaskedArray) withIdentities(id *Identities) Content {
	out := *b
	out.id = id
	return &out
}

func (b *ByteMaskedArray) valid(at int) bool { return (b.mask.Get(at) != 0) == b.validWhen }

func (b *ByteMaskedArray) GetItemAt(at int) (Content, error) { return getItemAt(b, at) }

func (b *ByteMaskedArray) GetItemAtNowrap(at int) (Content, error) {
	if !b.valid(at) {
		return nil, nil
	}
	return b.content.GetItemAtNowrap(at)
}

func (b *ByteMaskedArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(b, start, stop)
}

func (b *ByteMaskedArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	content, err := b.content.GetItemRangeNowrap(start, stop)
	if err != nil {
		return nil, err
	}
	out := NewByteMaskedArray(b.mask.GetItemRangeNowrap(start, stop), content, b.validWhen)
	out.id, out.params = b.identitiesRange(start, stop), b.params
	return out, nil
}

func (b *ByteMaskedArray) GetItemField(key string) (Content, error) {
	content, err := b.content.GetItemField(key)
	if err != nil {
		return nil, err
	}
	return NewByteMaskedArray(b.mask, content, b.validWhen), nil
}

func (b *ByteMaskedArray) GetItemFields(keys []string) (Content, error) {
	content, err := b.content.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return NewByteMaskedArray(b.mask, content, b.validWhen), nil
}

func (b *ByteMaskedArray) Carry(carry Index, allowLazy bool) (Content, error) {
	nextmask, data := int8Index(carry.Len())
	if err := handleError(kernel.ByteMaskedGetitemCarry(data, b.mask, carry), b.ClassName(), b.id); err != nil {
		return nil, err
	}
	content, err := b.content.Carry(carry, allowLazy)
	if err != nil {
		return nil, err
	}
	id, err := b.id.carry(carry)
	if err != nil {
		return nil, err
	}
	out := NewByteMaskedArray(nextmask, content, b.validWhen)
	out.id, out.params = id, b.params
	return out, nil
}

// ByteMask marks missing elements with 1.
func (b *ByteMaskedArray) ByteMask() (Index, error) {
	out, data := int8Index(b.mask.Len())
	err := handleError(kernel.ByteMaskedByteMask(data, b.mask, b.validWhen), b.ClassName(), b.id)
	return out, err
}

// ToIndexedOptionArray64 expresses the mask as an option index.
func (b *ByteMaskedArray) ToIndexedOptionArray64() (*IndexedOptionArray, error) {
	index, data := int64Index(b.mask.Len())
	if err := handleError(kernel.ByteMaskedToIndex(data, b.mask, b.validWhen), b.ClassName(), b.id); err != nil {
		return nil, err
	}
	out := NewIndexedOptionArray(index, b.content)
	out.id, out.params = b.id, b.params
	return out, nil
}

// Project keeps only the valid elements.
func (b *ByteMaskedArray) Project() (Content, error) {
	opt, err := b.ToIndexedOptionArray64()
	if err != nil {
		return nil, err
	}
	return opt.Project()
}

func (b *ByteMaskedArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch head.(type) {
	case SliceAt, SliceRange, SliceArray, SliceJagged:
		opt, err := b.ToIndexedOptionArray64()
		if err != nil {
			return nil, err
		}
		return opt.getitemNext(head, tail, advanced)
	}
	return getitemNextCommon(b, head, tail, advanced)
}

func (b *ByteMaskedArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	opt, err := b.ToIndexedOptionArray64()
	if err != nil {
		return nil, err
	}
	return opt.getitemNextJagged(slicestarts, slicestops, slicecontent, tail)
}

func (b *ByteMaskedArray) getitemNothing() (Content, error) {
	return b.content.GetItemRangeNowrap(0, 0)
}

func (b *ByteMaskedArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	opt, err := b.ToIndexedOptionArray64()
	if err != nil {
		return nil, err
	}
	return opt.reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
}

func (b *ByteMaskedArray) nbytesPart(largest map[uintptr]int) {
	b.mask.nbytesPart(largest)
	b.content.nbytesPart(largest)
	b.id.nbytesPart(largest)
}

func (b *ByteMaskedArray) validityError(path string) error {
	if b.mask.Form() != IndexI8 {
		return validityErr(b.ClassName(), path, "mask must be i8, not %s", b.mask.Form())
	}
	if b.content.Length() < b.mask.Len() {
		return validityErr(b.ClassName(), path, "len(content) < len(mask)")
	}
	if err := identitiesValidity(b, path); err != nil {
		return err
	}
	return b.content.validityError(path + ".content")
}

func (b *ByteMaskedArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeElements(s, b, maxdecimals)
}
