package jagged

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// KeyFormat names the buffer of role ("data", "offsets", "index", ...) for
// the node with formKey in a partition.
type KeyFormat func(partition int, formKey, role string) string

// DefaultKeyFormat is "part{partition}-{formKey}-{role}".
func DefaultKeyFormat(partition int, formKey, role string) string {
	return fmt.Sprintf("part%d-%s-%s", partition, formKey, role)
}

type buffersOptions struct {
	partition   int
	keyFormat   KeyFormat
	compression *CompressionMeta
	lazy        bool
	cache       ArrayCache
}

// BuffersOption configures ToBuffers and FromBuffers.
type BuffersOption func(*buffersOptions)

// WithPartition sets the partition number used in buffer keys.
func WithPartition(partition int) BuffersOption {
	return func(o *buffersOptions) { o.partition = partition }
}

// WithKeyFormat replaces DefaultKeyFormat.
func WithKeyFormat(f KeyFormat) BuffersOption {
	return func(o *buffersOptions) { o.keyFormat = f }
}

// WithCompression stores (or expects) every buffer compressed with m.
func WithCompression(m CompressionMeta) BuffersOption {
	return func(o *buffersOptions) { o.compression = &m }
}

// WithLazy makes FromBuffers return VirtualArrays for the root and for
// every record field, reading buffers on first use. cache may be nil.
func WithLazy(cache ArrayCache) BuffersOption {
	return func(o *buffersOptions) {
		o.lazy = true
		o.cache = cache
	}
}

func newBuffersOptions(opts []BuffersOption) buffersOptions {
	o := buffersOptions{keyFormat: DefaultKeyFormat}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ToBuffers writes every buffer of c to store and returns the Form, with a
// form_key on every node, that FromBuffers needs to rebuild it, along with
// c's length. Identities are not written; VirtualArrays are materialized.
func ToBuffers(c Content, store Store, opts ...BuffersOption) (Form, int, error) {
	if c.IsScalar() {
		return nil, 0, validationErr(c.ClassName(), "cannot write a scalar to buffers")
	}
	w := &bufferWriter{store: store, o: newBuffersOptions(opts)}
	form, err := w.write(c)
	if err != nil {
		return nil, 0, err
	}
	return form, c.Length(), nil
}

type bufferWriter struct {
	store Store
	o     buffersOptions
	next  int
}

func (w *bufferWriter) info(c Content) FormInfo {
	key := fmt.Sprintf("node%d", w.next)
	w.next++
	return FormInfo{Params: c.Parameters(), Key: key}
}

func (w *bufferWriter) put(info FormInfo, role string, data []byte) error {
	key := w.o.keyFormat(w.o.partition, info.Key, role)
	var buf bytes.Buffer
	cw, err := w.o.compression.Compressor(&buf)
	if err != nil {
		return errors.Wrapf(err, "compressing buffer %q", key)
	}
	if _, err := cw.Write(data); err != nil {
		return errors.Wrapf(err, "compressing buffer %q", key)
	}
	if err := cw.Close(); err != nil {
		return errors.Wrapf(err, "compressing buffer %q", key)
	}
	return errors.Wrapf(w.store.Put(key, &buf), "writing buffer %q", key)
}

func (w *bufferWriter) putIndex(info FormInfo, role string, x Index) error {
	return w.put(info, role, x.Bytes())
}

func (w *bufferWriter) write(c Content) (Form, error) {
	info := w.info(c)
	switch x := c.(type) {
	case *NumpyArray:
		form := x.Form().(*NumpyForm)
		form.FormInfo = info
		return form, w.put(info, "data", x.raw())

	case *EmptyArray:
		return &EmptyForm{FormInfo: info}, nil

	case *RegularArray:
		content, err := w.write(x.content)
		if err != nil {
			return nil, err
		}
		return &RegularForm{FormInfo: info, Content: content, Size: x.size}, nil

	case *ListArray:
		if err := w.putIndex(info, "starts", x.starts); err != nil {
			return nil, err
		}
		if err := w.putIndex(info, "stops", x.stops); err != nil {
			return nil, err
		}
		content, err := w.write(x.content)
		if err != nil {
			return nil, err
		}
		return &ListForm{FormInfo: info, Starts: x.starts.Form(), Stops: x.stops.Form(), Content: content}, nil

	case *ListOffsetArray:
		if err := w.putIndex(info, "offsets", x.offsets); err != nil {
			return nil, err
		}
		content, err := w.write(x.content)
		if err != nil {
			return nil, err
		}
		return &ListOffsetForm{FormInfo: info, Offsets: x.offsets.Form(), Content: content}, nil

	case *IndexedArray:
		if err := w.putIndex(info, "index", x.index); err != nil {
			return nil, err
		}
		content, err := w.write(x.content)
		if err != nil {
			return nil, err
		}
		return &IndexedForm{FormInfo: info, Index: x.index.Form(), Content: content}, nil

	case *IndexedOptionArray:
		if err := w.putIndex(info, "index", x.index); err != nil {
			return nil, err
		}
		content, err := w.write(x.content)
		if err != nil {
			return nil, err
		}
		return &IndexedOptionForm{FormInfo: info, Index: x.index.Form(), Content: content}, nil

	case *ByteMaskedArray:
		if err := w.putIndex(info, "mask", x.mask); err != nil {
			return nil, err
		}
		content, err := w.write(x.content)
		if err != nil {
			return nil, err
		}
		return &ByteMaskedForm{FormInfo: info, Mask: x.mask.Form(), Content: content, ValidWhen: x.validWhen}, nil

	case *BitMaskedArray:
		if err := w.putIndex(info, "mask", x.mask); err != nil {
			return nil, err
		}
		content, err := w.write(x.content)
		if err != nil {
			return nil, err
		}
		return &BitMaskedForm{FormInfo: info, Mask: x.mask.Form(), Content: content, ValidWhen: x.validWhen, LSBOrder: x.lsbOrder}, nil

	case *UnmaskedArray:
		content, err := w.write(x.content)
		if err != nil {
			return nil, err
		}
		return &UnmaskedForm{FormInfo: info, Content: content}, nil

	case *RecordArray:
		contents := make([]Form, len(x.contents))
		for i := range x.contents {
			field, err := x.Field(i)
			if err != nil {
				return nil, err
			}
			if contents[i], err = w.write(field); err != nil {
				return nil, err
			}
		}
		return &RecordForm{FormInfo: info, RecordLookup: x.recordlookup, Contents: contents}, nil

	case *UnionArray:
		if err := w.putIndex(info, "tags", x.tags); err != nil {
			return nil, err
		}
		if err := w.putIndex(info, "index", x.index); err != nil {
			return nil, err
		}
		contents := make([]Form, len(x.contents))
		for i, content := range x.contents {
			next, err := w.write(content)
			if err != nil {
				return nil, err
			}
			contents[i] = next
		}
		return &UnionForm{FormInfo: info, Tags: x.tags.Form(), Index: x.index.Form(), Contents: contents}, nil

	case *VirtualArray:
		w.next--
		array, err := x.Array()
		if err != nil {
			return nil, err
		}
		return w.write(array)
	}
	return nil, unhandledErr(c.ClassName(), "cannot write %s to buffers", c.ClassName())
}

// FromBuffers rebuilds an array of length from the buffers ToBuffers wrote.
// Every node of form needs a form_key.
func FromBuffers(form Form, length int, store Store, opts ...BuffersOption) (Content, error) {
	r := &bufferReader{store: store, o: newBuffersOptions(opts)}
	if r.o.lazy {
		return r.lazy(form, length), nil
	}
	return r.read(form, length)
}

type bufferReader struct {
	store Store
	o     buffersOptions
}

func (r *bufferReader) lazy(form Form, length int) Content {
	expected := form
	if r.o.lazy {
		expected = lazyForm(form)
	}
	gen := NewFuncGenerator(func() (Content, error) { return r.read(form, length) }, expected, length)
	return NewVirtualArray(gen, r.o.cache)
}

// lazyForm is the form a lazy read of f produces: every record field is a
// VirtualArray of known length.
func lazyForm(f Form) Form {
	switch x := f.(type) {
	case *RegularForm:
		out := *x
		out.Content = lazyForm(x.Content)
		return &out
	case *ListForm:
		out := *x
		out.Content = lazyForm(x.Content)
		return &out
	case *ListOffsetForm:
		out := *x
		out.Content = lazyForm(x.Content)
		return &out
	case *IndexedForm:
		out := *x
		out.Content = lazyForm(x.Content)
		return &out
	case *IndexedOptionForm:
		out := *x
		out.Content = lazyForm(x.Content)
		return &out
	case *ByteMaskedForm:
		out := *x
		out.Content = lazyForm(x.Content)
		return &out
	case *BitMaskedForm:
		out := *x
		out.Content = lazyForm(x.Content)
		return &out
	case *UnmaskedForm:
		out := *x
		out.Content = lazyForm(x.Content)
		return &out
	case *RecordForm:
		out := *x
		out.Contents = make([]Form, len(x.Contents))
		for i, cf := range x.Contents {
			out.Contents[i] = &VirtualForm{Form: lazyForm(cf), HasLength: true}
		}
		return &out
	case *UnionForm:
		out := *x
		out.Contents = make([]Form, len(x.Contents))
		for i, cf := range x.Contents {
			out.Contents[i] = lazyForm(cf)
		}
		return &out
	case *VirtualForm:
		return &VirtualForm{Form: lazyForm(x.Form), HasLength: true}
	}
	return f
}

func (r *bufferReader) get(form Form, role string) ([]byte, error) {
	if form.FormKey() == "" {
		return nil, validationErr(form.ClassName(), "cannot read buffers for a form without a form_key")
	}
	key := r.o.keyFormat(r.o.partition, form.FormKey(), role)
	f, err := r.store.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "reading buffer %q", key)
	}
	defer f.Close()
	dr, err := r.o.compression.Decompressor(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing buffer %q", key)
	}
	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, errors.Wrapf(err, "reading buffer %q", key)
	}
	return data, nil
}

// index reads at least n values of an index buffer.
func (r *bufferReader) index(form Form, role string, f IndexForm, n int) (Index, error) {
	data, err := r.get(form, role)
	if err != nil {
		return Index{}, err
	}
	x, err := IndexFromBytes(f, data)
	if err != nil {
		return Index{}, err
	}
	if x.Len() < n {
		return Index{}, validationErr(form.ClassName(), "buffer %q holds %d values, %d needed", role, x.Len(), n)
	}
	return x.GetItemRangeNowrap(0, n), nil
}

func maxValue(x Index) int {
	out := 0
	for i := 0; i < x.Len(); i++ {
		if v := int(x.Get(i)); v > out {
			out = v
		}
	}
	return out
}

func maxPlusOne(x Index) int {
	out := 0
	for i := 0; i < x.Len(); i++ {
		if v := int(x.Get(i)) + 1; v > out {
			out = v
		}
	}
	return out
}

func (r *bufferReader) read(form Form, length int) (Content, error) {
	out, err := r.readNode(form, length)
	if err != nil {
		return nil, err
	}
	if len(form.Parameters()) > 0 {
		out = out.withParameters(form.Parameters())
	}
	return out, nil
}

func (r *bufferReader) readNode(form Form, length int) (Content, error) {
	switch f := form.(type) {
	case *NumpyForm:
		data, err := r.get(f, "data")
		if err != nil {
			return nil, err
		}
		shape := append([]int{length}, f.InnerShape...)
		return NewNumpyArray(data, shape, f.ItemSize, f.Format)

	case *EmptyForm:
		if length != 0 {
			return nil, validationErr(f.ClassName(), "EmptyArray cannot have length %d", length)
		}
		return NewEmptyArray(), nil

	case *RegularForm:
		content, err := r.read(f.Content, length*f.Size)
		if err != nil {
			return nil, err
		}
		return newRegularArray(content, f.Size, length), nil

	case *ListForm:
		starts, err := r.index(f, "starts", f.Starts, length)
		if err != nil {
			return nil, err
		}
		stops, err := r.index(f, "stops", f.Stops, length)
		if err != nil {
			return nil, err
		}
		content, err := r.read(f.Content, maxValue(stops))
		if err != nil {
			return nil, err
		}
		return NewListArray(starts, stops, content), nil

	case *ListOffsetForm:
		offsets, err := r.index(f, "offsets", f.Offsets, length+1)
		if err != nil {
			return nil, err
		}
		content, err := r.read(f.Content, int(offsets.Get(length)))
		if err != nil {
			return nil, err
		}
		return NewListOffsetArray(offsets, content), nil

	case *IndexedForm:
		index, err := r.index(f, "index", f.Index, length)
		if err != nil {
			return nil, err
		}
		content, err := r.read(f.Content, maxPlusOne(index))
		if err != nil {
			return nil, err
		}
		return NewIndexedArray(index, content), nil

	case *IndexedOptionForm:
		index, err := r.index(f, "index", f.Index, length)
		if err != nil {
			return nil, err
		}
		content, err := r.read(f.Content, maxPlusOne(index))
		if err != nil {
			return nil, err
		}
		return NewIndexedOptionArray(index, content), nil

	case *ByteMaskedForm:
		mask, err := r.index(f, "mask", f.Mask, length)
		if err != nil {
			return nil, err
		}
		content, err := r.read(f.Content, length)
		if err != nil {
			return nil, err
		}
		return NewByteMaskedArray(mask, content, f.ValidWhen), nil

	case *BitMaskedForm:
		mask, err := r.index(f, "mask", f.Mask, (length+7)/8)
		if err != nil {
			return nil, err
		}
		content, err := r.read(f.Content, length)
		if err != nil {
			return nil, err
		}
		return NewBitMaskedArray(mask, content, f.ValidWhen, length, f.LSBOrder), nil

	case *UnmaskedForm:
		content, err := r.read(f.Content, length)
		if err != nil {
			return nil, err
		}
		return NewUnmaskedArray(content), nil

	case *RecordForm:
		contents := make([]Content, len(f.Contents))
		for i, cf := range f.Contents {
			if r.o.lazy {
				contents[i] = r.lazy(cf, length)
				continue
			}
			next, err := r.read(cf, length)
			if err != nil {
				return nil, err
			}
			contents[i] = next
		}
		return newRecordArray(contents, f.RecordLookup, length), nil

	case *UnionForm:
		tags, err := r.index(f, "tags", f.Tags, length)
		if err != nil {
			return nil, err
		}
		index, err := r.index(f, "index", f.Index, length)
		if err != nil {
			return nil, err
		}
		lengths := make([]int, len(f.Contents))
		for i := 0; i < length; i++ {
			t := tags.Get(i)
			if t < 0 || t >= int64(len(f.Contents)) {
				return nil, validationErr(f.ClassName(), "tag %d at %d is out of range", t, i)
			}
			if v := int(index.Get(i)) + 1; v > lengths[t] {
				lengths[t] = v
			}
		}
		contents := make([]Content, len(f.Contents))
		for i, cf := range f.Contents {
			next, err := r.read(cf, lengths[i])
			if err != nil {
				return nil, err
			}
			contents[i] = next
		}
		return NewUnionArray(tags, index, contents), nil

	case *VirtualForm:
		if f.Form == nil {
			return nil, validationErr(f.ClassName(), "cannot read a VirtualArray of unknown form from buffers")
		}
		return r.lazy(f.Form, length), nil
	}
	return nil, unhandledErr(form.ClassName(), "cannot read %s from buffers", form.ClassName())
}
