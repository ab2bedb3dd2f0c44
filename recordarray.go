package jagged

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// RecordArray is a struct of arrays: each field is its own Content and
// element i is the i-th entry of every field. A nil recordlookup makes it a
// tuple whose fields are named "0", "1", ...
type RecordArray struct {
	base
	contents     []Content
	recordlookup []string
	length       int
}

// NewRecordArray builds a record over contents; its length is that of the
// shortest field. A record with no fields has length 0; use
// NewRecordArrayLength to give it one.
func NewRecordArray(contents []Content, recordlookup []string) *RecordArray {
	return newRecordArray(contents, recordlookup, minLength(contents, 0))
}

// NewRecordArrayLength builds a record of an explicit length.
func NewRecordArrayLength(contents []Content, recordlookup []string, length int) *RecordArray {
	return newRecordArray(contents, recordlookup, length)
}

func newRecordArray(contents []Content, recordlookup []string, length int) *RecordArray {
	return &RecordArray{contents: contents, recordlookup: recordlookup, length: length}
}

func minLength(contents []Content, empty int) int {
	if len(contents) == 0 {
		return empty
	}
	out := contents[0].Length()
	for _, c := range contents[1:] {
		if n := c.Length(); n < out {
			out = n
		}
	}
	return out
}

func (r *RecordArray) ClassName() string      { return "RecordArray" }
func (r *RecordArray) Length() int            { return r.length }
func (r *RecordArray) IsTuple() bool          { return r.recordlookup == nil }
func (r *RecordArray) NumFields() int         { return len(r.contents) }
func (r *RecordArray) Keys() []string         { return recordKeys(r.recordlookup, len(r.contents)) }
func (r *RecordArray) RecordLookup() []string { return r.recordlookup }

// Contents are the fields as stored, which may be longer than the record.
func (r *RecordArray) Contents() []Content { return append([]Content(nil), r.contents...) }

func (r *RecordArray) FieldIndex(key string) (int, error) {
	return fieldIndex(r.ClassName(), r.recordlookup, len(r.contents), key)
}

// Field is field i trimmed to the record's length.
func (r *RecordArray) Field(i int) (Content, error) {
	if i < 0 || i >= len(r.contents) {
		return nil, validationErr(r.ClassName(), "field %d out of range for record with %d fields", i, len(r.contents))
	}
	return r.contents[i].GetItemRangeNowrap(0, r.length)
}

func (r *RecordArray) Form() Form {
	return &RecordForm{FormInfo: r.info(""), RecordLookup: r.recordlookup, Contents: formsOf(r.contents)}
}

func (r *RecordArray) ShallowCopy() Content {
	out := *r
	return &out
}

func (r *RecordArray) withParameters(p Parameters) Content {
	out := *r
	out.params = p
	return &out
}

func (r *RecordArray) withIdentities(id *Identities) Content {
	out := *r
	out.id = id
	return &out
}

func (r *RecordArray) GetItemAt(at int) (Content, error) { return getItemAt(r, at) }

func (r *RecordArray) GetItemAtNowrap(at int) (Content, error) {
	return &Record{array: r, at: at}, nil
}

func (r *RecordArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(r, start, stop)
}

func (r *RecordArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	contents := make([]Content, len(r.contents))
	for i, c := range r.contents {
		next, err := c.GetItemRangeNowrap(start, stop)
		if err != nil {
			return nil, err
		}
		contents[i] = next
	}
	out := newRecordArray(contents, r.recordlookup, stop-start)
	out.id, out.params = r.identitiesRange(start, stop), r.params
	return out, nil
}

func (r *RecordArray) GetItemField(key string) (Content, error) {
	i, err := r.FieldIndex(key)
	if err != nil {
		return nil, err
	}
	return r.Field(i)
}

// GetItemFields keeps the named fields, in the order given.
func (r *RecordArray) GetItemFields(keys []string) (Content, error) {
	contents := make([]Content, len(keys))
	for j, key := range keys {
		i, err := r.FieldIndex(key)
		if err != nil {
			return nil, err
		}
		contents[j] = r.contents[i]
	}
	var lookup []string
	if !r.IsTuple() {
		lookup = append([]string(nil), keys...)
	}
	out := newRecordArray(contents, lookup, r.length)
	out.id = r.id
	return out, nil
}

// Carry gathers every field, or with allowLazy puts an IndexedArray in
// front of the record instead.
func (r *RecordArray) Carry(carry Index, allowLazy bool) (Content, error) {
	for i := 0; i < carry.Len(); i++ {
		if v := carry.Get(i); v < 0 || v >= int64(r.length) {
			return nil, handleError(kernel.Error{Str: "index out of range", Kernel: "RecordArrayGetitemCarry", Identity: int64(i), Attempt: v}, r.ClassName(), r.id)
		}
	}
	id, err := r.id.carry(carry)
	if err != nil {
		return nil, err
	}
	if allowLazy {
		out := NewIndexedArray(carry.ToInt64(), r)
		out.id = id
		return out, nil
	}
	contents, err := carryContents(r.contents, carry, false)
	if err != nil {
		return nil, err
	}
	out := newRecordArray(contents, r.recordlookup, carry.Len())
	out.id, out.params = id, r.params
	return out, nil
}

func (r *RecordArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch head.(type) {
	case nil, SliceEllipsis, SliceNewAxis, SliceField, SliceFields, SliceMissing:
		return getitemNextCommon(r, head, tail, advanced)
	}
	emptytail := Slice{sealed: true}
	contents := make([]Content, len(r.contents))
	for i := range r.contents {
		field, err := r.Field(i)
		if err != nil {
			return nil, err
		}
		if contents[i], err = field.getitemNext(head, emptytail, advanced); err != nil {
			return nil, err
		}
	}
	out := newRecordArray(contents, r.recordlookup, minLength(contents, r.length))
	if head.preservesType(advanced) {
		out.params = r.params
	}
	return out.getitemNext(tail.Head(), tail.Tail(), advanced)
}

func (r *RecordArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	contents := make([]Content, len(r.contents))
	for i := range r.contents {
		field, err := r.Field(i)
		if err != nil {
			return nil, err
		}
		if contents[i], err = field.getitemNextJagged(slicestarts, slicestops, slicecontent, tail); err != nil {
			return nil, err
		}
	}
	out := newRecordArray(contents, r.recordlookup, slicestarts.Len())
	out.params = r.params
	return out, nil
}

func (r *RecordArray) getitemNothing() (Content, error) {
	return r.GetItemRangeNowrap(0, 0)
}

func (r *RecordArray) reduceNext(red Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	contents := make([]Content, len(r.contents))
	for i := range r.contents {
		field, err := r.Field(i)
		if err != nil {
			return nil, err
		}
		if contents[i], err = field.reduceNext(red, negaxis, starts, parents, outlength, mask, keepdims); err != nil {
			return nil, err
		}
	}
	return newRecordArray(contents, r.recordlookup, outlength), nil
}

func (r *RecordArray) nbytesPart(largest map[uintptr]int) {
	for _, c := range r.contents {
		c.nbytesPart(largest)
	}
	r.id.nbytesPart(largest)
}

func (r *RecordArray) validityError(path string) error {
	if r.recordlookup != nil && len(r.recordlookup) != len(r.contents) {
		return validityErr(r.ClassName(), path, "len(recordlookup) != len(contents)")
	}
	for i, c := range r.contents {
		if c.Length() < r.length {
			return validityErr(r.ClassName(), path, "len(field(%d)) < len(recordarray)", i)
		}
	}
	if err := identitiesValidity(r, path); err != nil {
		return err
	}
	for i, c := range r.contents {
		if err := c.validityError(path + ".field(" + strconv.Itoa(i) + ")"); err != nil {
			return err
		}
	}
	return nil
}

func (r *RecordArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeElements(s, r, maxdecimals)
}

// Record is one element of a RecordArray. It is a scalar: it can be read
// by field but not sliced by position.
type Record struct {
	array *RecordArray
	at    int
}

// NewRecord is element at of array.
func NewRecord(array *RecordArray, at int) (*Record, error) {
	if at < 0 || at >= array.length {
		return nil, validationErr("Record", "at=%d is out of range for an array of length %d", at, array.length)
	}
	return &Record{array: array, at: at}, nil
}

func (r *Record) ClassName() string           { return "Record" }
func (r *Record) Length() int                 { return -1 }
func (r *Record) IsScalar() bool              { return true }
func (r *Record) Array() *RecordArray         { return r.array }
func (r *Record) At() int                     { return r.at }
func (r *Record) Parameters() Parameters      { return r.array.params }
func (r *Record) Parameter(key string) string { return r.array.Parameter(key) }
func (r *Record) Form() Form                  { return r.array.Form() }
func (r *Record) NumFields() int              { return r.array.NumFields() }
func (r *Record) Keys() []string              { return r.array.Keys() }

func (r *Record) Identities() *Identities {
	return r.array.id.getitemRangeNowrap(r.at, r.at+1)
}

// Field is the value of field i.
func (r *Record) Field(i int) (Content, error) {
	if i < 0 || i >= len(r.array.contents) {
		return nil, validationErr(r.ClassName(), "field %d out of range for record with %d fields", i, len(r.array.contents))
	}
	return r.array.contents[i].GetItemAtNowrap(r.at)
}

// Fields are the values of every field, in order.
func (r *Record) Fields() ([]Content, error) {
	out := make([]Content, len(r.array.contents))
	for i := range out {
		v, err := r.Field(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *Record) ShallowCopy() Content {
	out := *r
	return &out
}

func (r *Record) withParameters(p Parameters) Content {
	return &Record{array: r.array.withParameters(p).(*RecordArray), at: r.at}
}

func (r *Record) withIdentities(*Identities) Content { return r.ShallowCopy() }

func (r *Record) scalarErr() error {
	return validationErr(r.ClassName(), "scalar Record can only be sliced by field name (string)")
}

func (r *Record) GetItemAt(int) (Content, error)               { return nil, r.scalarErr() }
func (r *Record) GetItemAtNowrap(int) (Content, error)         { return nil, r.scalarErr() }
func (r *Record) GetItemRange(int, int) (Content, error)       { return nil, r.scalarErr() }
func (r *Record) GetItemRangeNowrap(int, int) (Content, error) { return nil, r.scalarErr() }
func (r *Record) Carry(Index, bool) (Content, error)           { return nil, r.scalarErr() }

func (r *Record) GetItemField(key string) (Content, error) {
	i, err := r.array.FieldIndex(key)
	if err != nil {
		return nil, err
	}
	return r.Field(i)
}

func (r *Record) GetItemFields(keys []string) (Content, error) {
	next, err := r.array.GetItemFields(keys)
	if err != nil {
		return nil, err
	}
	return &Record{array: next.(*RecordArray), at: r.at}, nil
}

func (r *Record) getitemNext(SliceItem, Slice, Index) (Content, error) {
	return nil, r.scalarErr()
}

func (r *Record) getitemNextJagged(Index, Index, SliceItem, Slice) (Content, error) {
	return nil, r.scalarErr()
}

func (r *Record) getitemNothing() (Content, error) {
	return r.array.GetItemRangeNowrap(0, 0)
}

func (r *Record) reduceNext(Reducer, int, Index, Index, int, bool, bool) (Content, error) {
	return nil, validationErr(r.ClassName(), "cannot reduce a scalar")
}

func (r *Record) nbytesPart(largest map[uintptr]int) { r.array.nbytesPart(largest) }

func (r *Record) validityError(path string) error {
	if r.at < 0 || r.at >= r.array.length {
		return validityErr(r.ClassName(), path, "at=%d is out of range for an array of length %d", r.at, r.array.length)
	}
	return r.array.validityError(path)
}

func (r *Record) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	keys := r.Keys()
	if len(keys) == 0 {
		s.WriteEmptyObject()
		return nil
	}
	s.WriteObjectStart()
	for i, key := range keys {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(key)
		v, err := r.Field(i)
		if err != nil {
			return err
		}
		if err := writeValue(s, v, maxdecimals); err != nil {
			return err
		}
	}
	s.WriteObjectEnd()
	return nil
}
