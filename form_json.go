package jagged

import (
	"fmt"

	"github.com/qri-io/jagged/internal/kernel"
)

// FormFromJSON parses a schema document. Primitive leaves may be given as
// bare strings ("float64", "int32", ...).
func FormFromJSON(data []byte) (Form, error) {
	n, err := parseJSON(data)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Class: "Form", Attempt: kernel.None, Msg: err.Error(), cause: err}
	}
	return formFromNode(n)
}

// FormFromString is FormFromJSON for a string.
func FormFromString(s string) (Form, error) {
	return FormFromJSON([]byte(s))
}

func formFromNode(n *jsonNode) (Form, error) {
	if n.isString() {
		if p, ok := ParsePrimitive(n.str); ok {
			return NewPrimitiveForm(p), nil
		}
		return nil, unrecognizedForm(n)
	}
	classNode, ok := n.get("class")
	if !ok || !classNode.isString() {
		return nil, unrecognizedForm(n)
	}
	class := classNode.str

	info, err := formInfoFromNode(n)
	if err != nil {
		return nil, err
	}

	switch class {
	case "NumpyArray":
		return numpyFormFromNode(n, info)

	case "EmptyArray":
		return &EmptyForm{FormInfo: info}, nil

	case "RegularArray":
		content, err := contentFromNode(n, class)
		if err != nil {
			return nil, err
		}
		size, ok := n.get("size")
		if !ok || !size.isInt() {
			return nil, validationErr(class, "%s is missing its 'size'", class)
		}
		return &RegularForm{FormInfo: info, Content: content, Size: int(size.int64())}, nil

	case "ListOffsetArray", "ListOffsetArray64", "ListOffsetArrayU32", "ListOffsetArray32":
		offsets, err := indexFormFromNode(n, class, "offsets", classWidth(class), "an")
		if err != nil {
			return nil, err
		}
		content, err := contentFromNode(n, class)
		if err != nil {
			return nil, err
		}
		return &ListOffsetForm{FormInfo: info, Offsets: offsets, Content: content}, nil

	case "ListArray", "ListArray64", "ListArrayU32", "ListArray32":
		starts, err := indexFormFromNode(n, class, "starts", classWidth(class), "a")
		if err != nil {
			return nil, err
		}
		stops, err := indexFormFromNode(n, class, "stops", classWidth(class), "a")
		if err != nil {
			return nil, err
		}
		content, err := contentFromNode(n, class)
		if err != nil {
			return nil, err
		}
		return &ListForm{FormInfo: info, Starts: starts, Stops: stops, Content: content}, nil

	case "IndexedOptionArray", "IndexedOptionArray64", "IndexedOptionArray32":
		index, err := indexFormFromNode(n, class, "index", classWidth(class), "an")
		if err != nil {
			return nil, err
		}
		content, err := contentFromNode(n, class)
		if err != nil {
			return nil, err
		}
		return &IndexedOptionForm{FormInfo: info, Index: index, Content: content}, nil

	case "IndexedArray", "IndexedArray64", "IndexedArrayU32", "IndexedArray32":
		index, err := indexFormFromNode(n, class, "index", classWidth(class), "an")
		if err != nil {
			return nil, err
		}
		content, err := contentFromNode(n, class)
		if err != nil {
			return nil, err
		}
		return &IndexedForm{FormInfo: info, Index: index, Content: content}, nil

	case "ByteMaskedArray":
		mask, err := indexFormFromNode(n, class, "mask", nil, "a")
		if err != nil {
			return nil, err
		}
		content, err := contentFromNode(n, class)
		if err != nil {
			return nil, err
		}
		validWhen, err := boolFromNode(n, class, "valid_when")
		if err != nil {
			return nil, err
		}
		return &ByteMaskedForm{FormInfo: info, Mask: mask, Content: content, ValidWhen: validWhen}, nil

	case "BitMaskedArray":
		mask, err := indexFormFromNode(n, class, "mask", nil, "a")
		if err != nil {
			return nil, err
		}
		content, err := contentFromNode(n, class)
		if err != nil {
			return nil, err
		}
		validWhen, err := boolFromNode(n, class, "valid_when")
		if err != nil {
			return nil, err
		}
		lsbOrder, err := boolFromNode(n, class, "lsb_order")
		if err != nil {
			return nil, err
		}
		return &BitMaskedForm{FormInfo: info, Mask: mask, Content: content, ValidWhen: validWhen, LSBOrder: lsbOrder}, nil

	case "UnmaskedArray":
		content, err := contentFromNode(n, class)
		if err != nil {
			return nil, err
		}
		return &UnmaskedForm{FormInfo: info, Content: content}, nil

	case "RecordArray":
		return recordFormFromNode(n, info)

	case "UnionArray", "UnionArray8_64", "UnionArray8_U32", "UnionArray8_32":
		var tagsWidth *IndexForm
		if class != "UnionArray" {
			i8 := IndexI8
			tagsWidth = &i8
		}
		tags, err := indexFormFromNode(n, class, "tags", tagsWidth, "a")
		if err != nil {
			return nil, err
		}
		index, err := indexFormFromNode(n, class, "index", classWidth(class), "an")
		if err != nil {
			return nil, err
		}
		contentsNode, ok := n.get("contents")
		if !ok || contentsNode.kind != jsonArray {
			return nil, validationErr(class, "%s 'contents' must be a JSON list", class)
		}
		contents := make([]Form, 0, len(contentsNode.items))
		for _, item := range contentsNode.items {
			c, err := formFromNode(item)
			if err != nil {
				return nil, err
			}
			contents = append(contents, c)
		}
		return &UnionForm{FormInfo: info, Tags: tags, Index: index, Contents: contents}, nil

	case "VirtualArray":
		formNode, ok := n.get("form")
		if !ok {
			return nil, validationErr(class, "%s is missing its 'form'", class)
		}
		var form Form
		if !formNode.isNull() {
			if form, err = formFromNode(formNode); err != nil {
				return nil, err
			}
		}
		hasLength, err := boolFromNode(n, class, "has_length")
		if err != nil {
			return nil, err
		}
		return &VirtualForm{FormInfo: info, Form: form, HasLength: hasLength}, nil
	}

	return nil, unrecognizedForm(n)
}

func unrecognizedForm(n *jsonNode) error {
	return validationErr("Form", "JSON cannot be recognized as a Form:\n\n%s", n.pretty())
}

func formInfoFromNode(n *jsonNode) (FormInfo, error) {
	var info FormInfo
	if p, ok := n.get("parameters"); ok {
		if p.kind != jsonObject {
			return info, validationErr("Form", "'parameters' must be a JSON object")
		}
		for i, k := range p.keys {
			info.Params = info.Params.With(k, p.fields[i].compact())
		}
	}
	if h, ok := n.get("has_identities"); ok {
		if !h.isBool() {
			return info, validationErr("Form", "'has_identities' must be boolean")
		}
		info.Identities = h.b
	}
	if k, ok := n.get("form_key"); ok && !k.isNull() {
		if !k.isString() {
			return info, validationErr("Form", "'form_key' must be a string")
		}
		info.Key = k.str
	}
	return info, nil
}

func numpyFormFromNode(n *jsonNode, info FormInfo) (Form, error) {
	out := &NumpyForm{FormInfo: info}
	if p, ok := n.get("primitive"); ok && p.isString() {
		prim, ok := ParsePrimitive(p.str)
		if !ok {
			return nil, validationErr("NumpyArray", "unrecognized primitive %q", p.str)
		}
		out.ItemSize, out.Format = prim.ItemSize(), prim.Format()
	} else {
		format, okf := n.get("format")
		itemsize, oki := n.get("itemsize")
		if !okf || !format.isString() || !oki || !itemsize.isInt() {
			return nil, validationErr("NumpyArray", "NumpyForm must have a 'primitive' field or 'format' and 'itemsize'")
		}
		out.ItemSize, out.Format = int(itemsize.int64()), format.str
	}
	if s, ok := n.get("inner_shape"); ok && s.kind == jsonArray {
		for _, d := range s.items {
			if !d.isInt() {
				return nil, validationErr("NumpyArray", "NumpyForm 'inner_shape' must only contain integers")
			}
			out.InnerShape = append(out.InnerShape, int(d.int64()))
		}
	}
	return out, nil
}

func recordFormFromNode(n *jsonNode, info FormInfo) (Form, error) {
	out := &RecordForm{FormInfo: info}
	contents, ok := n.get("contents")
	switch {
	case ok && contents.kind == jsonArray:
		out.Contents = make([]Form, 0, len(contents.items))
		for _, item := range contents.items {
			c, err := formFromNode(item)
			if err != nil {
				return nil, err
			}
			out.Contents = append(out.Contents, c)
		}
	case ok && contents.kind == jsonObject:
		out.RecordLookup = make([]string, 0, len(contents.keys))
		out.Contents = make([]Form, 0, len(contents.keys))
		for i, k := range contents.keys {
			c, err := formFromNode(contents.fields[i])
			if err != nil {
				return nil, err
			}
			out.RecordLookup = append(out.RecordLookup, k)
			out.Contents = append(out.Contents, c)
		}
	default:
		return nil, validationErr("RecordArray", "RecordArray 'contents' must be a JSON list or a JSON object")
	}
	return out, nil
}

// classWidth is the index width implied by a class-name suffix, or nil for
// the generic name.
func classWidth(class string) *IndexForm {
	var f IndexForm
	switch {
	case hasSuffix(class, "U32"):
		f = IndexU32
	case hasSuffix(class, "32"):
		f = IndexI32
	case hasSuffix(class, "64"):
		f = IndexI64
	default:
		return nil
	}
	return &f
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// indexFormFromNode resolves the width of an index key, failing when an
// explicit key disagrees with the class-name suffix or when neither is given.
func indexFormFromNode(n *jsonNode, class, key string, implied *IndexForm, article string) (IndexForm, error) {
	var out IndexForm
	have := implied != nil
	if have {
		out = *implied
	}
	if v, ok := n.get(key); ok && v.isString() {
		f, err := ParseIndexForm(v.str)
		if err != nil {
			return out, validationErr(class, "%s has unrecognized '%s' type: %s", class, key, v.str)
		}
		if have && f != out {
			return out, validationErr(class, "%s has conflicting '%s' type: %s", class, key, v.str)
		}
		out, have = f, true
	}
	if !have {
		return out, validationErr(class, "%s is missing %s '%s' type", class, article, key)
	}
	return out, nil
}

func contentFromNode(n *jsonNode, class string) (Form, error) {
	c, ok := n.get("content")
	if !ok {
		return nil, validationErr(class, "%s is missing its 'content'", class)
	}
	return formFromNode(c)
}

func boolFromNode(n *jsonNode, class, key string) (bool, error) {
	v, ok := n.get(key)
	if !ok || !v.isBool() {
		return false, validationErr(class, "%s is missing its '%s'", class, key)
	}
	return v.b, nil
}

// MustForm parses a schema and panics on error. For tests and static
// schemas.
func MustForm(s string) Form {
	f, err := FormFromString(s)
	if err != nil {
		panic(fmt.Sprintf("jagged: %v", err))
	}
	return f
}
