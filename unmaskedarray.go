package jagged

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// UnmaskedArray is an option type with no missing values.
type UnmaskedArray struct {
	base
	content Content
}

func NewUnmaskedArray(content Content) *UnmaskedArray {
	return &UnmaskedArray{content: content}
}

func (u *UnmaskedArray) ClassName() string { return "UnmaskedArray" }
func (u *UnmaskedArray) Length() int       { return u.content.Length() }
func (u *UnmaskedArray) Content() Content  { return u.content }

func (u *UnmaskedArray) Form() Form {
	return &UnmaskedForm{FormInfo: u.info(""), Content: u.content.Form()}
}

func (u *UnmaskedArray) ShallowCopy() Content {
	out := *u
	return &out
}

func (u *UnmaskedArray) withParameters(p Parameters) Content {
	out := *u
	out.params = p
	return &out
}

func (u *UnmaskedArray) withIdentities(id *Identities) Content {
	out := *u
	out.id = id
	return &out
}

func (u *UnmaskedArray) wrap(content Content) *UnmaskedArray {
	out := NewUnmaskedArray(content)
	out.params = u.params
	return out
}

func (u *UnmaskedArray) GetItemAt(at int) (Content, error) { return getItemAt(u, at) }

func (u *UnmaskedArray) GetItemAtNowrap(at int) (Content, error) {
	return u.content.GetItemAtNowrap(at)
}

func (u *UnmaskedArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(u, start, stop)
}

func (u *UnmaskedArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	content, err := u.content.GetItemRangeNowrap(start, stop)
	if err != nil {
		return nil, err
	}
	out := u.wrap(content)
	out.id = u.identitiesRange(start, stop)
	return out, nil
}

func (u *UnmaskedArray) GetItemField(key string) (Content, error) {
	content, err := u.content.GetItemField(key)
	if err != nil {
		return nil, err
	}
	return NewUnmaskedArray(content), nil
}

func (u *UnmaskedArray) GetItemFields(keys []string) (Content, error) {
	content, err := u.content.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return NewUnmaskedArray(content), nil
}

func (u *UnmaskedArray) Carry(carry Index, allowLazy bool) (Content, error) {
	content, err := u.content.Carry(carry, allowLazy)
	if err != nil {
		return nil, err
	}
	id, err := u.id.carry(carry)
	if err != nil {
		return nil, err
	}
	out := u.wrap(content)
	out.id = id
	return out, nil
}

// ByteMask is all zeros.
func (u *UnmaskedArray) ByteMask() (Index, error) {
	out, _ := int8Index(u.Length())
	return out, nil
}

// Project returns the content.
func (u *UnmaskedArray) Project() (Content, error) {
	return u.content, nil
}

// ToIndexedOptionArray64 is an option index of 0..length-1.
func (u *UnmaskedArray) ToIndexedOptionArray64() *IndexedOptionArray {
	index, data := int64Index(u.Length())
	kernel.LocalIndex(data)
	out := NewIndexedOptionArray(index, u.content)
	out.id, out.params = u.id, u.params
	return out
}

func (u *UnmaskedArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch head.(type) {
	case SliceAt, SliceRange, SliceArray, SliceJagged:
		down, err := u.content.getitemNext(head, tail, advanced)
		if err != nil {
			return nil, err
		}
		return u.wrap(down), nil
	}
	return getitemNextCommon(u, head, tail, advanced)
}

func (u *UnmaskedArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	down, err := u.content.getitemNextJagged(slicestarts, slicestops, slicecontent, tail)
	if err != nil {
		return nil, err
	}
	return u.wrap(down), nil
}

func (u *UnmaskedArray) getitemNothing() (Content, error) {
	return u.content.GetItemRangeNowrap(0, 0)
}

func (u *UnmaskedArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	return u.ToIndexedOptionArray64().reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
}

func (u *UnmaskedArray) nbytesPart(largest map[uintptr]int) {
	u.content.nbytesPart(largest)
	u.id.nbytesPart(largest)
}

func (u *UnmaskedArray) validityError(path string) error {
	if err := identitiesValidity(u, path); err != nil {
		return err
	}
	return u.content.validityError(path + ".content")
}

func (u *UnmaskedArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeElements(s, u, maxdecimals)
}
