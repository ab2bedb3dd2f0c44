package jagged

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// Form is the data-free schema of a Content tree. There is one Form type per
// Content variant; each holds index widths, item sizes, field names and child
// Forms.
type Form interface {
	// ClassName is the layout class, with index-width suffix where the class
	// has one (e.g. "ListOffsetArray64").
	ClassName() string
	HasIdentities() bool
	Parameters() Parameters
	Parameter(key string) string
	FormKey() string

	PurelistParameter(key string) string
	PurelistIsRegular() bool
	PurelistDepth() int
	MinMaxDepth() (int, int)
	BranchDepth() (bool, int)

	NumFields() int
	FieldIndex(key string) (int, error)
	Keys() []string

	// ToJSON encodes the schema; verbose also emits default-valued keys.
	ToJSON(pretty, verbose bool) string
	String() string

	writeJSON(s *jsoniter.Stream, verbose bool)
}

// FormInfo holds the attributes every Form carries.
type FormInfo struct {
	Identities bool
	Params     Parameters
	Key        string
}

func (f FormInfo) HasIdentities() bool         { return f.Identities }
func (f FormInfo) Parameters() Parameters      { return f.Params }
func (f FormInfo) Parameter(key string) string { return f.Params.Get(key) }
func (f FormInfo) FormKey() string             { return f.Key }
func (f FormInfo) NumFields() int              { return -1 }
func (f FormInfo) Keys() []string              { return nil }
func (f FormInfo) FieldIndex(key string) (int, error) {
	return 0, fieldNotFound("Form", key)
}

func (f FormInfo) writeCommon(s *jsoniter.Stream, verbose bool) {
	if verbose || f.Identities {
		s.WriteMore()
		s.WriteObjectField("has_identities")
		s.WriteBool(f.Identities)
	}
	if verbose || len(f.Params) > 0 {
		s.WriteMore()
		s.WriteObjectField("parameters")
		if len(f.Params) == 0 {
			s.WriteEmptyObject()
		} else {
			s.WriteObjectStart()
			for i, k := range f.Params.Keys() {
				if i > 0 {
					s.WriteMore()
				}
				s.WriteObjectField(k)
				s.WriteRaw(f.Params[k])
			}
			s.WriteObjectEnd()
		}
	}
	if f.Key != "" {
		s.WriteMore()
		s.WriteObjectField("form_key")
		s.WriteString(f.Key)
	}
}

func formToJSON(f Form, pretty, verbose bool) string {
	cfg := jsonConfig(pretty)
	s := cfg.BorrowStream(nil)
	defer cfg.ReturnStream(s)
	f.writeJSON(s, verbose)
	return string(s.Buffer())
}

func writeClass(s *jsoniter.Stream, class string) {
	s.WriteObjectStart()
	s.WriteObjectField("class")
	s.WriteString(class)
}

func writeField(s *jsoniter.Stream, key string) {
	s.WriteMore()
	s.WriteObjectField(key)
}

func indexSuffix(f IndexForm) string {
	switch f {
	case IndexI32:
		return "32"
	case IndexU32:
		return "U32"
	case IndexI64:
		return "64"
	}
	return ""
}

func isStringLike(p Parameters) bool {
	return p.Equals("__array__", `"string"`) || p.Equals("__array__", `"bytestring"`)
}

// NumpyForm describes a NumpyArray.
type NumpyForm struct {
	FormInfo
	InnerShape []int
	ItemSize   int
	Format     string
}

// NewPrimitiveForm is the NumpyForm of a one-dimensional array of p.
func NewPrimitiveForm(p Primitive) *NumpyForm {
	return &NumpyForm{ItemSize: p.ItemSize(), Format: p.Format()}
}

func (f *NumpyForm) ClassName() string { return "NumpyArray" }

// Primitive is the shorthand name of the element type when Format is this
// platform's canonical code for it, else "".
func (f *NumpyForm) Primitive() string {
	p := PrimitiveOf(f.Format, f.ItemSize)
	if p == PrimitiveUnknown || p.Format() != f.Format || p.ItemSize() != f.ItemSize {
		return ""
	}
	return p.String()
}

func (f *NumpyForm) PurelistParameter(key string) string { return f.Parameter(key) }
func (f *NumpyForm) PurelistIsRegular() bool             { return true }
func (f *NumpyForm) PurelistDepth() int                  { return len(f.InnerShape) + 1 }
func (f *NumpyForm) MinMaxDepth() (int, int) {
	d := f.PurelistDepth()
	return d, d
}
func (f *NumpyForm) BranchDepth() (bool, int) { return false, f.PurelistDepth() }
func (f *NumpyForm) ToJSON(pretty, verbose bool) string {
	return formToJSON(f, pretty, verbose)
}
func (f *NumpyForm) String() string { return f.ToJSON(true, false) }

func (f *NumpyForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	p := f.Primitive()
	if !verbose && p != "" && len(f.InnerShape) == 0 && !f.Identities && len(f.Params) == 0 && f.Key == "" {
		s.WriteString(p)
		return
	}
	writeClass(s, "NumpyArray")
	if verbose || len(f.InnerShape) > 0 {
		writeField(s, "inner_shape")
		if len(f.InnerShape) == 0 {
			s.WriteEmptyArray()
		} else {
			s.WriteArrayStart()
			for i, d := range f.InnerShape {
				if i > 0 {
					s.WriteMore()
				}
				s.WriteInt(d)
			}
			s.WriteArrayEnd()
		}
	}
	writeField(s, "itemsize")
	s.WriteInt(f.ItemSize)
	writeField(s, "format")
	s.WriteString(f.Format)
	if p != "" {
		writeField(s, "primitive")
		s.WriteString(p)
	}
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// EmptyForm describes an EmptyArray.
type EmptyForm struct {
	FormInfo
}

func (f *EmptyForm) ClassName() string                   { return "EmptyArray" }
func (f *EmptyForm) PurelistParameter(key string) string { return f.Parameter(key) }
func (f *EmptyForm) PurelistIsRegular() bool             { return true }
func (f *EmptyForm) PurelistDepth() int                  { return 1 }
func (f *EmptyForm) MinMaxDepth() (int, int)             { return 1, 1 }
func (f *EmptyForm) BranchDepth() (bool, int)            { return false, 1 }
func (f *EmptyForm) ToJSON(pretty, verbose bool) string  { return formToJSON(f, pretty, verbose) }
func (f *EmptyForm) String() string                      { return f.ToJSON(true, false) }
func (f *EmptyForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, "EmptyArray")
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// listDepths implements the depth rules shared by the three list forms: a
// string-like list counts as a single dimension.
func listPurelistDepth(info FormInfo, content Form) int {
	if isStringLike(info.Params) {
		return 1
	}
	return content.PurelistDepth() + 1
}

func listMinMaxDepth(info FormInfo, content Form) (int, int) {
	if isStringLike(info.Params) {
		return 1, 1
	}
	lo, hi := content.MinMaxDepth()
	return lo + 1, hi + 1
}

func listBranchDepth(info FormInfo, content Form) (bool, int) {
	if isStringLike(info.Params) {
		return false, 1
	}
	branch, depth := content.BranchDepth()
	return branch, depth + 1
}

func purelistParameter(info FormInfo, content Form, key string) string {
	if out := info.Parameter(key); out != "null" {
		return out
	}
	return content.PurelistParameter(key)
}

// RegularForm describes a RegularArray.
type RegularForm struct {
	FormInfo
	Content Form
	Size    int
}

func (f *RegularForm) ClassName() string { return "RegularArray" }
func (f *RegularForm) PurelistParameter(key string) string {
	return purelistParameter(f.FormInfo, f.Content, key)
}
func (f *RegularForm) PurelistIsRegular() bool  { return f.Content.PurelistIsRegular() }
func (f *RegularForm) PurelistDepth() int       { return listPurelistDepth(f.FormInfo, f.Content) }
func (f *RegularForm) MinMaxDepth() (int, int)  { return listMinMaxDepth(f.FormInfo, f.Content) }
func (f *RegularForm) BranchDepth() (bool, int) { return listBranchDepth(f.FormInfo, f.Content) }
func (f *RegularForm) NumFields() int           { return f.Content.NumFields() }
func (f *RegularForm) FieldIndex(key string) (int, error) {
	return f.Content.FieldIndex(key)
}
func (f *RegularForm) Keys() []string                     { return f.Content.Keys() }
func (f *RegularForm) ToJSON(pretty, verbose bool) string { return formToJSON(f, pretty, verbose) }
func (f *RegularForm) String() string                     { return f.ToJSON(true, false) }
func (f *RegularForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, "RegularArray")
	writeField(s, "content")
	f.Content.writeJSON(s, verbose)
	writeField(s, "size")
	s.WriteInt(f.Size)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// ListForm describes a ListArray.
type ListForm struct {
	FormInfo
	Starts  IndexForm
	Stops   IndexForm
	Content Form
}

func (f *ListForm) ClassName() string { return "ListArray" + indexSuffix(f.Starts) }
func (f *ListForm) PurelistParameter(key string) string {
	return purelistParameter(f.FormInfo, f.Content, key)
}
func (f *ListForm) PurelistIsRegular() bool  { return false }
func (f *ListForm) PurelistDepth() int       { return listPurelistDepth(f.FormInfo, f.Content) }
func (f *ListForm) MinMaxDepth() (int, int)  { return listMinMaxDepth(f.FormInfo, f.Content) }
func (f *ListForm) BranchDepth() (bool, int) { return listBranchDepth(f.FormInfo, f.Content) }
func (f *ListForm) NumFields() int           { return f.Content.NumFields() }
func (f *ListForm) FieldIndex(key string) (int, error) {
	return f.Content.FieldIndex(key)
}
func (f *ListForm) Keys() []string                     { return f.Content.Keys() }
func (f *ListForm) ToJSON(pretty, verbose bool) string { return formToJSON(f, pretty, verbose) }
func (f *ListForm) String() string                     { return f.ToJSON(true, false) }
func (f *ListForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, f.ClassName())
	writeField(s, "starts")
	s.WriteString(f.Starts.String())
	writeField(s, "stops")
	s.WriteString(f.Stops.String())
	writeField(s, "content")
	f.Content.writeJSON(s, verbose)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// ListOffsetForm describes a ListOffsetArray.
type ListOffsetForm struct {
	FormInfo
	Offsets IndexForm
	Content Form
}

func (f *ListOffsetForm) ClassName() string { return "ListOffsetArray" + indexSuffix(f.Offsets) }
func (f *ListOffsetForm) PurelistParameter(key string) string {
	return purelistParameter(f.FormInfo, f.Content, key)
}
func (f *ListOffsetForm) PurelistIsRegular() bool  { return false }
func (f *ListOffsetForm) PurelistDepth() int       { return listPurelistDepth(f.FormInfo, f.Content) }
func (f *ListOffsetForm) MinMaxDepth() (int, int)  { return listMinMaxDepth(f.FormInfo, f.Content) }
func (f *ListOffsetForm) BranchDepth() (bool, int) { return listBranchDepth(f.FormInfo, f.Content) }
func (f *ListOffsetForm) NumFields() int           { return f.Content.NumFields() }
func (f *ListOffsetForm) FieldIndex(key string) (int, error) {
	return f.Content.FieldIndex(key)
}
func (f *ListOffsetForm) Keys() []string { return f.Content.Keys() }
func (f *ListOffsetForm) ToJSON(pretty, verbose bool) string {
	return formToJSON(f, pretty, verbose)
}
func (f *ListOffsetForm) String() string { return f.ToJSON(true, false) }
func (f *ListOffsetForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, f.ClassName())
	writeField(s, "offsets")
	s.WriteString(f.Offsets.String())
	writeField(s, "content")
	f.Content.writeJSON(s, verbose)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// IndexedForm describes an IndexedArray.
type IndexedForm struct {
	FormInfo
	Index   IndexForm
	Content Form
}

func (f *IndexedForm) ClassName() string { return "IndexedArray" + indexSuffix(f.Index) }
func (f *IndexedForm) PurelistParameter(key string) string {
	return purelistParameter(f.FormInfo, f.Content, key)
}
func (f *IndexedForm) PurelistIsRegular() bool  { return f.Content.PurelistIsRegular() }
func (f *IndexedForm) PurelistDepth() int       { return f.Content.PurelistDepth() }
func (f *IndexedForm) MinMaxDepth() (int, int)  { return f.Content.MinMaxDepth() }
func (f *IndexedForm) BranchDepth() (bool, int) { return f.Content.BranchDepth() }
func (f *IndexedForm) NumFields() int           { return f.Content.NumFields() }
func (f *IndexedForm) FieldIndex(key string) (int, error) {
	return f.Content.FieldIndex(key)
}
func (f *IndexedForm) Keys() []string                     { return f.Content.Keys() }
func (f *IndexedForm) ToJSON(pretty, verbose bool) string { return formToJSON(f, pretty, verbose) }
func (f *IndexedForm) String() string                     { return f.ToJSON(true, false) }
func (f *IndexedForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, f.ClassName())
	writeField(s, "index")
	s.WriteString(f.Index.String())
	writeField(s, "content")
	f.Content.writeJSON(s, verbose)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// IndexedOptionForm describes an IndexedOptionArray.
type IndexedOptionForm struct {
	FormInfo
	Index   IndexForm
	Content Form
}

func (f *IndexedOptionForm) ClassName() string {
	return "IndexedOptionArray" + indexSuffix(f.Index)
}
func (f *IndexedOptionForm) PurelistParameter(key string) string {
	return purelistParameter(f.FormInfo, f.Content, key)
}
func (f *IndexedOptionForm) PurelistIsRegular() bool  { return f.Content.PurelistIsRegular() }
func (f *IndexedOptionForm) PurelistDepth() int       { return f.Content.PurelistDepth() }
func (f *IndexedOptionForm) MinMaxDepth() (int, int)  { return f.Content.MinMaxDepth() }
func (f *IndexedOptionForm) BranchDepth() (bool, int) { return f.Content.BranchDepth() }
func (f *IndexedOptionForm) NumFields() int           { return f.Content.NumFields() }
func (f *IndexedOptionForm) FieldIndex(key string) (int, error) {
	return f.Content.FieldIndex(key)
}
func (f *IndexedOptionForm) Keys() []string { return f.Content.Keys() }
func (f *IndexedOptionForm) ToJSON(pretty, verbose bool) string {
	return formToJSON(f, pretty, verbose)
}
func (f *IndexedOptionForm) String() string { return f.ToJSON(true, false) }
func (f *IndexedOptionForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, f.ClassName())
	writeField(s, "index")
	s.WriteString(f.Index.String())
	writeField(s, "content")
	f.Content.writeJSON(s, verbose)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// ByteMaskedForm describes a ByteMaskedArray.
type ByteMaskedForm struct {
	FormInfo
	Mask      IndexForm
	Content   Form
	ValidWhen bool
}

func (f *ByteMaskedForm) ClassName() string { return "ByteMaskedArray" }
func (f *ByteMaskedForm) PurelistParameter(key string) string {
	return purelistParameter(f.FormInfo, f.Content, key)
}
func (f *ByteMaskedForm) PurelistIsRegular() bool  { return f.Content.PurelistIsRegular() }
func (f *ByteMaskedForm) PurelistDepth() int       { return f.Content.PurelistDepth() }
func (f *ByteMaskedForm) MinMaxDepth() (int, int)  { return f.Content.MinMaxDepth() }
func (f *ByteMaskedForm) BranchDepth() (bool, int) { return f.Content.BranchDepth() }
func (f *ByteMaskedForm) NumFields() int           { return f.Content.NumFields() }
func (f *ByteMaskedForm) FieldIndex(key string) (int, error) {
	return f.Content.FieldIndex(key)
}
func (f *ByteMaskedForm) Keys() []string { return f.Content.Keys() }
func (f *ByteMaskedForm) ToJSON(pretty, verbose bool) string {
	return formToJSON(f, pretty, verbose)
}
func (f *ByteMaskedForm) String() string { return f.ToJSON(true, false) }
func (f *ByteMaskedForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, "ByteMaskedArray")
	writeField(s, "mask")
	s.WriteString(f.Mask.String())
	writeField(s, "content")
	f.Content.writeJSON(s, verbose)
	writeField(s, "valid_when")
	s.WriteBool(f.ValidWhen)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// BitMaskedForm describes a BitMaskedArray.
type BitMaskedForm struct {
	FormInfo
	Mask      IndexForm
	Content   Form
	ValidWhen bool
	LSBOrder  bool
}

func (f *BitMaskedForm) ClassName() string { return "BitMaskedArray" }
func (f *BitMaskedForm) PurelistParameter(key string) string {
	return purelistParameter(f.FormInfo, f.Content, key)
}
func (f *BitMaskedForm) PurelistIsRegular() bool  { return f.Content.PurelistIsRegular() }
func (f *BitMaskedForm) PurelistDepth() int       { return f.Content.PurelistDepth() }
func (f *BitMaskedForm) MinMaxDepth() (int, int)  { return f.Content.MinMaxDepth() }
func (f *BitMaskedForm) BranchDepth() (bool, int) { return f.Content.BranchDepth() }
func (f *BitMaskedForm) NumFields() int           { return f.Content.NumFields() }
func (f *BitMaskedForm) FieldIndex(key string) (int, error) {
	return f.Content.FieldIndex(key)
}
func (f *BitMaskedForm) Keys() []string { return f.Content.Keys() }
func (f *BitMaskedForm) ToJSON(pretty, verbose bool) string {
	return formToJSON(f, pretty, verbose)
}
func (f *BitMaskedForm) String() string { return f.ToJSON(true, false) }
func (f *BitMaskedForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, "BitMaskedArray")
	writeField(s, "mask")
	s.WriteString(f.Mask.String())
	writeField(s, "content")
	f.Content.writeJSON(s, verbose)
	writeField(s, "valid_when")
	s.WriteBool(f.ValidWhen)
	writeField(s, "lsb_order")
	s.WriteBool(f.LSBOrder)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// UnmaskedForm describes an UnmaskedArray.
type UnmaskedForm struct {
	FormInfo
	Content Form
}

func (f *UnmaskedForm) ClassName() string { return "UnmaskedArray" }
func (f *UnmaskedForm) PurelistParameter(key string) string {
	return purelistParameter(f.FormInfo, f.Content, key)
}
func (f *UnmaskedForm) PurelistIsRegular() bool  { return f.Content.PurelistIsRegular() }
func (f *UnmaskedForm) PurelistDepth() int       { return f.Content.PurelistDepth() }
func (f *UnmaskedForm) MinMaxDepth() (int, int)  { return f.Content.MinMaxDepth() }
func (f *UnmaskedForm) BranchDepth() (bool, int) { return f.Content.BranchDepth() }
func (f *UnmaskedForm) NumFields() int           { return f.Content.NumFields() }
func (f *UnmaskedForm) FieldIndex(key string) (int, error) {
	return f.Content.FieldIndex(key)
}
func (f *UnmaskedForm) Keys() []string { return f.Content.Keys() }
func (f *UnmaskedForm) ToJSON(pretty, verbose bool) string {
	return formToJSON(f, pretty, verbose)
}
func (f *UnmaskedForm) String() string { return f.ToJSON(true, false) }
func (f *UnmaskedForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, "UnmaskedArray")
	writeField(s, "content")
	f.Content.writeJSON(s, verbose)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// RecordForm describes a RecordArray. A nil RecordLookup makes it a tuple.
type RecordForm struct {
	FormInfo
	RecordLookup []string
	Contents     []Form
}

func (f *RecordForm) ClassName() string                   { return "RecordArray" }
func (f *RecordForm) PurelistParameter(key string) string { return f.Parameter(key) }
func (f *RecordForm) PurelistIsRegular() bool             { return true }
func (f *RecordForm) PurelistDepth() int                  { return 1 }

func (f *RecordForm) MinMaxDepth() (int, int) {
	return minMaxOf(f.Contents)
}

func (f *RecordForm) BranchDepth() (bool, int) {
	return branchOf(f.Contents)
}

func (f *RecordForm) NumFields() int { return len(f.Contents) }

func (f *RecordForm) FieldIndex(key string) (int, error) {
	return fieldIndex("RecordForm", f.RecordLookup, len(f.Contents), key)
}

func (f *RecordForm) Keys() []string { return recordKeys(f.RecordLookup, len(f.Contents)) }

func (f *RecordForm) ToJSON(pretty, verbose bool) string { return formToJSON(f, pretty, verbose) }
func (f *RecordForm) String() string                     { return f.ToJSON(true, false) }

func (f *RecordForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, "RecordArray")
	writeField(s, "contents")
	switch {
	case len(f.Contents) == 0 && f.RecordLookup == nil:
		s.WriteEmptyArray()
	case len(f.Contents) == 0:
		s.WriteEmptyObject()
	case f.RecordLookup == nil:
		s.WriteArrayStart()
		for i, c := range f.Contents {
			if i > 0 {
				s.WriteMore()
			}
			c.writeJSON(s, verbose)
		}
		s.WriteArrayEnd()
	default:
		s.WriteObjectStart()
		for i, c := range f.Contents {
			if i > 0 {
				s.WriteMore()
			}
			s.WriteObjectField(f.RecordLookup[i])
			c.writeJSON(s, verbose)
		}
		s.WriteObjectEnd()
	}
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// UnionForm describes a UnionArray.
type UnionForm struct {
	FormInfo
	Tags     IndexForm
	Index    IndexForm
	Contents []Form
}

func (f *UnionForm) ClassName() string {
	return "UnionArray" + "8_" + indexSuffix(f.Index)
}

func (f *UnionForm) PurelistParameter(key string) string {
	if out := f.Parameter(key); out != "null" {
		return out
	}
	if len(f.Contents) == 0 {
		return "null"
	}
	out := f.Contents[0].PurelistParameter(key)
	for _, c := range f.Contents[1:] {
		if !jsonTextEqual(c.PurelistParameter(key), out) {
			return "null"
		}
	}
	return out
}

func (f *UnionForm) PurelistIsRegular() bool {
	for _, c := range f.Contents {
		if !c.PurelistIsRegular() {
			return false
		}
	}
	return f.PurelistDepth() >= 0
}

func (f *UnionForm) PurelistDepth() int {
	out := -1
	for _, c := range f.Contents {
		d := c.PurelistDepth()
		if out == -1 {
			out = d
		} else if out != d {
			return -1
		}
	}
	return out
}

func (f *UnionForm) MinMaxDepth() (int, int)  { return minMaxOf(f.Contents) }
func (f *UnionForm) BranchDepth() (bool, int) { return branchOf(f.Contents) }

func (f *UnionForm) NumFields() int { return len(f.Keys()) }

func (f *UnionForm) FieldIndex(key string) (int, error) {
	for i, k := range f.Keys() {
		if k == key {
			return i, nil
		}
	}
	return 0, fieldNotFound("UnionForm", key)
}

// Keys are the field names common to every branch, in the first branch's
// order.
func (f *UnionForm) Keys() []string {
	if len(f.Contents) == 0 {
		return nil
	}
	var out []string
	for _, k := range f.Contents[0].Keys() {
		common := true
		for _, c := range f.Contents[1:] {
			if _, err := c.FieldIndex(k); err != nil {
				common = false
				break
			}
		}
		if common {
			out = append(out, k)
		}
	}
	return out
}

func (f *UnionForm) ToJSON(pretty, verbose bool) string { return formToJSON(f, pretty, verbose) }
func (f *UnionForm) String() string                     { return f.ToJSON(true, false) }

func (f *UnionForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, f.ClassName())
	writeField(s, "tags")
	s.WriteString(f.Tags.String())
	writeField(s, "index")
	s.WriteString(f.Index.String())
	writeField(s, "contents")
	if len(f.Contents) == 0 {
		s.WriteEmptyArray()
	} else {
		s.WriteArrayStart()
		for i, c := range f.Contents {
			if i > 0 {
				s.WriteMore()
			}
			c.writeJSON(s, verbose)
		}
		s.WriteArrayEnd()
	}
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

// VirtualForm describes a VirtualArray. Form is nil when the generated
// layout is not known in advance.
type VirtualForm struct {
	FormInfo
	Form      Form
	HasLength bool
}

func (f *VirtualForm) ClassName() string { return "VirtualArray" }

func (f *VirtualForm) PurelistParameter(key string) string {
	if out := f.Parameter(key); out != "null" || f.Form == nil {
		return out
	}
	return f.Form.PurelistParameter(key)
}

func (f *VirtualForm) PurelistIsRegular() bool {
	return f.Form != nil && f.Form.PurelistIsRegular()
}

func (f *VirtualForm) PurelistDepth() int {
	if f.Form == nil {
		return 1
	}
	return f.Form.PurelistDepth()
}

func (f *VirtualForm) MinMaxDepth() (int, int) {
	if f.Form == nil {
		return 1, 1
	}
	return f.Form.MinMaxDepth()
}

func (f *VirtualForm) BranchDepth() (bool, int) {
	if f.Form == nil {
		return false, 1
	}
	return f.Form.BranchDepth()
}

func (f *VirtualForm) NumFields() int {
	if f.Form == nil {
		return -1
	}
	return f.Form.NumFields()
}

func (f *VirtualForm) FieldIndex(key string) (int, error) {
	if f.Form == nil {
		return 0, fieldNotFound("VirtualForm", key)
	}
	return f.Form.FieldIndex(key)
}

func (f *VirtualForm) Keys() []string {
	if f.Form == nil {
		return nil
	}
	return f.Form.Keys()
}

func (f *VirtualForm) ToJSON(pretty, verbose bool) string { return formToJSON(f, pretty, verbose) }
func (f *VirtualForm) String() string                     { return f.ToJSON(true, false) }

func (f *VirtualForm) writeJSON(s *jsoniter.Stream, verbose bool) {
	writeClass(s, "VirtualArray")
	writeField(s, "form")
	if f.Form == nil {
		s.WriteNil()
	} else {
		f.Form.writeJSON(s, verbose)
	}
	writeField(s, "has_length")
	s.WriteBool(f.HasLength)
	f.writeCommon(s, verbose)
	s.WriteObjectEnd()
}

func minMaxOf(contents []Form) (int, int) {
	if len(contents) == 0 {
		return 0, 0
	}
	lo, hi := -1, -1
	for _, c := range contents {
		clo, chi := c.MinMaxDepth()
		if lo == -1 || clo < lo {
			lo = clo
		}
		if hi == -1 || chi > hi {
			hi = chi
		}
	}
	return lo, hi
}

func branchOf(contents []Form) (bool, int) {
	if len(contents) == 0 {
		return false, 1
	}
	anybranch := false
	mindepth := -1
	for _, c := range contents {
		branch, depth := c.BranchDepth()
		if mindepth == -1 {
			mindepth = depth
		}
		if branch || mindepth != depth {
			anybranch = true
		}
		if depth < mindepth {
			mindepth = depth
		}
	}
	return anybranch, mindepth
}

func recordKeys(lookup []string, numfields int) []string {
	if lookup != nil {
		return append([]string(nil), lookup...)
	}
	out := make([]string, numfields)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

// fieldIndex resolves a field name, falling back to a decimal position.
func fieldIndex(class string, lookup []string, numfields int, key string) (int, error) {
	for i, k := range lookup {
		if k == key {
			return i, nil
		}
	}
	if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < numfields {
		return i, nil
	}
	return 0, fieldNotFound(class, key)
}
