package jagged

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// BitMaskedArray marks missing elements with one bit each, packed into a u8
// mask in LSB-first or MSB-first order. Element i is valid when its bit
// equals validWhen.
type BitMaskedArray struct {
	base
	mask      Index
	content   Content
	validWhen bool
	length    int
	lsbOrder  bool
}

// NewBitMaskedArray wraps a u8 mask and content without copying; length may
// be shorter than the mask's bit count.
func NewBitMaskedArray(mask Index, content Content, validWhen bool, length int, lsbOrder bool) *BitMaskedArray {
	return &BitMaskedArray{mask: mask, content: content, validWhen: validWhen, length: length, lsbOrder: lsbOrder}
}

func (b *BitMaskedArray) ClassName() string { return "BitMaskedArray" }
func (b *BitMaskedArray) Length() int       { return b.length }
func (b *BitMaskedArray) Mask() Index       { return b.mask }
func (b *BitMaskedArray) Content() Content  { return b.content }
func (b *BitMaskedArray) ValidWhen() bool   { return b.validWhen }
func (b *BitMaskedArray) LSBOrder() bool    { return b.lsbOrder }

func (b *BitMaskedArray) Form() Form {
	return &BitMaskedForm{FormInfo: b.info(""), Mask: b.mask.Form(), Content: b.content.Form(), ValidWhen: b.validWhen, LSBOrder: b.lsbOrder}
}

func (b *BitMaskedArray) ShallowCopy() Content {
	out := *b
	return &out
}

func (b *BitMaskedArray) withParameters(p Parameters) Content {
	out := *b
	out.params = p
	return &out
}

func (b *BitMaskedArray) withIdentities(id *Identities) Content {
	out := *b
	out.id = id
	return &out
}

func (b *BitMaskedArray) valid(at int) bool {
	bits := uint8(b.mask.Get(at / 8))
	var bit uint8
	if b.lsbOrder {
		bit = (bits >> uint(at%8)) & 1
	} else {
		bit = (bits >> uint(7-at%8)) & 1
	}
	return (bit != 0) == b.validWhen
}

func (b *BitMaskedArray) GetItemAt(at int) (Content, error) { return getItemAt(b, at) }

func (b *BitMaskedArray) GetItemAtNowrap(at int) (Content, error) {
	if !b.valid(at) {
		return nil, nil
	}
	return b.content.GetItemAtNowrap(at)
}

func (b *BitMaskedArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(b, start, stop)
}

// GetItemRangeNowrap stays bit-masked when start falls on a byte boundary;
// otherwise the range is taken from the byte-masked equivalent.
func (b *BitMaskedArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	if start%8 != 0 {
		bm, err := b.ToByteMaskedArray()
		if err != nil {
			return nil, err
		}
		return bm.GetItemRangeNowrap(start, stop)
	}
	content, err := b.content.GetItemRangeNowrap(start, stop)
	if err != nil {
		return nil, err
	}
	mask := b.mask.GetItemRangeNowrap(start/8, (stop+7)/8)
	out := NewBitMaskedArray(mask, content, b.validWhen, stop-start, b.lsbOrder)
	out.id, out.params = b.identitiesRange(start, stop), b.params
	return out, nil
}

func (b *BitMaskedArray) GetItemField(key string) (Content, error) {
	content, err := b.content.GetItemField(key)
	if err != nil {
		return nil, err
	}
	return NewBitMaskedArray(b.mask, content, b.validWhen, b.length, b.lsbOrder), nil
}

func (b *BitMaskedArray) GetItemFields(keys []string) (Content, error) {
	content, err := b.content.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return NewBitMaskedArray(b.mask, content, b.validWhen, b.length, b.lsbOrder), nil
}

func (b *BitMaskedArray) Carry(carry Index, allowLazy bool) (Content, error) {
	opt, err := b.ToIndexedOptionArray64()
	if err != nil {
		return nil, err
	}
	return opt.Carry(carry, allowLazy)
}

// ByteMask unpacks the bits into one byte per element, 1 for missing.
func (b *BitMaskedArray) ByteMask() (Index, error) {
	out, data := int8Index(b.length)
	err := handleError(kernel.BitMaskedToByteMask(data, b.mask, b.validWhen, b.lsbOrder), b.ClassName(), b.id)
	return out, err
}

// ToByteMaskedArray unpacks the mask; the result is valid when its mask
// byte is 0.
func (b *BitMaskedArray) ToByteMaskedArray() (*ByteMaskedArray, error) {
	bytemask, err := b.ByteMask()
	if err != nil {
		return nil, err
	}
	content, err := b.content.GetItemRangeNowrap(0, b.length)
	if err != nil {
		return nil, err
	}
	out := NewByteMaskedArray(bytemask, content, false)
	out.id, out.params = b.id, b.params
	return out, nil
}

// ToIndexedOptionArray64 expresses the mask as an option index.
func (b *BitMaskedArray) ToIndexedOptionArray64() (*IndexedOptionArray, error) {
	bytemask, err := b.ByteMask()
	if err != nil {
		return nil, err
	}
	index, data := int64Index(b.length)
	if err := handleError(kernel.ByteMaskedToIndex(data, bytemask, false), b.ClassName(), b.id); err != nil {
		return nil, err
	}
	out := NewIndexedOptionArray(index, b.content)
	out.id, out.params = b.id, b.params
	return out, nil
}

// FromByteMask packs a byte mask (1 for missing) into a BitMaskedArray over
// content.
func FromByteMask(bytemask Index, content Content, validWhen, lsbOrder bool) (*BitMaskedArray, error) {
	packed := make([]uint8, (bytemask.Len()+7)/8)
	if err := handleError(kernel.BitMaskedFromByteMask(packed, bytemask, validWhen, lsbOrder), "BitMaskedArray", nil); err != nil {
		return nil, err
	}
	return NewBitMaskedArray(NewIndexU8(packed), content, validWhen, bytemask.Len(), lsbOrder), nil
}

// Project keeps only the valid elements.
func (b *BitMaskedArray) Project() (Content, error) {
	opt, err := b.ToIndexedOptionArray64()
	if err != nil {
		return nil, err
	}
	return opt.Project()
}

func (b *BitMaskedArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
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

func (b *BitMaskedArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	opt, err := b.ToIndexedOptionArray64()
	if err != nil {
		return nil, err
	}
	return opt.getitemNextJagged(slicestarts, slicestops, slicecontent, tail)
}

func (b *BitMaskedArray) getitemNothing() (Content, error) {
	return b.content.GetItemRangeNowrap(0, 0)
}

func (b *BitMaskedArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	opt, err := b.ToIndexedOptionArray64()
	if err != nil {
		return nil, err
	}
	return opt.reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
}

func (b *BitMaskedArray) nbytesPart(largest map[uintptr]int) {
	b.mask.nbytesPart(largest)
	b.content.nbytesPart(largest)
	b.id.nbytesPart(largest)
}

func (b *BitMaskedArray) validityError(path string) error {
	if b.mask.Form() != IndexU8 {
		return validityErr(b.ClassName(), path, "mask must be u8, not %s", b.mask.Form())
	}
	if b.length < 0 {
		return validityErr(b.ClassName(), path, "length < 0")
	}
	if b.mask.Len()*8 < b.length {
		return validityErr(b.ClassName(), path, "len(mask) * 8 < length")
	}
	if b.content.Length() < b.length {
		return validityErr(b.ClassName(), path, "len(content) < length")
	}
	if err := identitiesValidity(b, path); err != nil {
		return err
	}
	return b.content.validityError(path + ".content")
}

func (b *BitMaskedArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeElements(s, b, maxdecimals)
}
