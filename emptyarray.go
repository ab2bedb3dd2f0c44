package jagged

import (
	jsoniter "github.com/json-iterator/go"
)

// EmptyArray has length 0 and no known element type.
type EmptyArray struct {
	base
}

func NewEmptyArray() *EmptyArray { return &EmptyArray{} }

func (e *EmptyArray) ClassName() string { return "EmptyArray" }
func (e *EmptyArray) Length() int       { return 0 }

func (e *EmptyArray) Form() Form { return &EmptyForm{FormInfo: e.info("")} }

func (e *EmptyArray) ShallowCopy() Content {
	out := *e
	return &out
}

func (e *EmptyArray) withParameters(p Parameters) Content {
	out := *e
	out.params = p
	return &out
}

func (e *EmptyArray) withIdentities(id *Identities) Content {
	out := *e
	out.id = id
	return &out
}

// ToNumpyArray is a float64 leaf of length 0.
func (e *EmptyArray) ToNumpyArray() *NumpyArray {
	out := NumpyOf[float64]()
	out.id, out.params = e.id, e.params
	return out
}

func (e *EmptyArray) GetItemAt(at int) (Content, error) { return getItemAt(e, at) }

func (e *EmptyArray) GetItemAtNowrap(at int) (Content, error) {
	return nil, &Error{Kind: KindValidation, Class: e.ClassName(), Attempt: int64(at), Kernel: "getitem_at", Msg: "array is empty"}
}

func (e *EmptyArray) GetItemRange(start, stop int) (Content, error) {
	return e.ShallowCopy(), nil
}

func (e *EmptyArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	return e.ShallowCopy(), nil
}

func (e *EmptyArray) GetItemField(key string) (Content, error) {
	return nil, validationErr(e.ClassName(), "cannot extract field %q from an empty array", key)
}

func (e *EmptyArray) GetItemFields(keys []string) (Content, error) {
	return nil, validationErr(e.ClassName(), "cannot extract fields %q from an empty array", keys)
}

func (e *EmptyArray) Carry(carry Index, allowLazy bool) (Content, error) {
	if carry.Len() != 0 {
		return nil, &Error{Kind: KindKernel, Class: e.ClassName(), Attempt: carry.Get(0), Kernel: "EmptyArrayGetitemCarry", Msg: "index out of range"}
	}
	return e.ShallowCopy(), nil
}

func (e *EmptyArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch head.(type) {
	case SliceAt, SliceArray, SliceJagged:
		return nil, validationErr(e.ClassName(), "too many dimensions in slice")
	case SliceRange:
		return e.ShallowCopy(), nil
	}
	return getitemNextCommon(e, head, tail, advanced)
}

func (e *EmptyArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	if slicestarts.Len() != 0 {
		return nil, validationErr(e.ClassName(), "too many jagged slice dimensions for array")
	}
	return e.ShallowCopy(), nil
}

func (e *EmptyArray) getitemNothing() (Content, error) { return e.ShallowCopy(), nil }

func (e *EmptyArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	return e.ToNumpyArray().reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
}

func (e *EmptyArray) nbytesPart(largest map[uintptr]int) { e.id.nbytesPart(largest) }

func (e *EmptyArray) validityError(path string) error { return nil }

func (e *EmptyArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	s.WriteEmptyArray()
	return nil
}
