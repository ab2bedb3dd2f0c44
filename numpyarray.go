package jagged

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/qri-io/jagged/internal/kernel"
)

// Element is the set of Go types a NumpyArray can be built from.
type Element interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

func primitiveFor[T Element]() Primitive {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case uint8:
		return Uint8
	case int16:
		return Int16
	case uint16:
		return Uint16
	case int32:
		return Int32
	case uint32:
		return Uint32
	case int64:
		return Int64
	case uint64:
		return Uint64
	case float32:
		return Float32
	}
	return Float64
}

// NumpyArray is a leaf of fixed-size elements in a C-contiguous buffer. The
// first dimension of shape is the array length; further dimensions make each
// element a fixed-shape block. An empty shape is a scalar.
type NumpyArray struct {
	base
	data     []byte
	offset   int
	shape    []int
	itemsize int
	format   string
}

// NewNumpyArray wraps data without copying. format is a struct-module code or
// NumPy typestr; data is read little-endian unless format says otherwise.
func NewNumpyArray(data []byte, shape []int, itemsize int, format string) (*NumpyArray, error) {
	if itemsize <= 0 {
		return nil, validationErr("NumpyArray", "itemsize must be positive, not %d", itemsize)
	}
	for _, d := range shape {
		if d < 0 {
			return nil, validationErr("NumpyArray", "negative dimension in shape %v", shape)
		}
	}
	if need := product(shape) * itemsize; len(data) < need {
		return nil, validationErr("NumpyArray", "buffer of %d bytes is too small for shape %v with itemsize %d", len(data), shape, itemsize)
	}
	return &NumpyArray{data: data, shape: append([]int(nil), shape...), itemsize: itemsize, format: format}, nil
}

// NewPrimitiveArray wraps data holding length elements of p.
func NewPrimitiveArray(p Primitive, data []byte, shape ...int) (*NumpyArray, error) {
	if len(shape) == 0 {
		shape = []int{len(data) / max(p.ItemSize(), 1)}
	}
	return NewNumpyArray(data, shape, p.ItemSize(), p.Format())
}

// NumpyOf copies values into a new one-dimensional array. It panics if the
// values cannot be encoded.
func NumpyOf[T Element](values ...T) *NumpyArray {
	out, err := NumpyShaped(values, len(values))
	if err != nil {
		panic(fmt.Sprintf("jagged: %v", err))
	}
	return out
}

// NumpyShaped copies values into a new array of the given shape.
func NumpyShaped[T Element](values []T, shape ...int) (*NumpyArray, error) {
	if product(shape) != len(values) {
		return nil, validationErr("NumpyArray", "%d values cannot fill shape %v", len(values), shape)
	}
	p := primitiveFor[T]()
	buf := bytes.NewBuffer(make([]byte, 0, len(values)*p.ItemSize()))
	if err := binary.Write(buf, binary.LittleEndian, values); err != nil {
		return nil, errors.Wrapf(err, "encoding %d %s values", len(values), p)
	}
	return &NumpyArray{data: buf.Bytes(), shape: append([]int(nil), shape...), itemsize: p.ItemSize(), format: p.Format()}, nil
}

// NumpyValues decodes a NumpyArray whose primitive is T.
func NumpyValues[T Element](n *NumpyArray) ([]T, error) {
	if want := primitiveFor[T](); n.Primitive() != want {
		return nil, validationErr(n.ClassName(), "array of %s cannot be read as %s", n.Primitive(), want)
	}
	out := make([]T, product(n.shape))
	if err := binary.Read(bytes.NewReader(n.raw()), n.byteOrder(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (n *NumpyArray) ClassName() string { return "NumpyArray" }
func (n *NumpyArray) IsScalar() bool    { return len(n.shape) == 0 }

func (n *NumpyArray) Length() int {
	if len(n.shape) == 0 {
		return -1
	}
	return n.shape[0]
}

// Shape is the full shape, length first.
func (n *NumpyArray) Shape() []int { return append([]int(nil), n.shape...) }

func (n *NumpyArray) NDim() int      { return len(n.shape) }
func (n *NumpyArray) ItemSize() int  { return n.itemsize }
func (n *NumpyArray) Format() string { return n.format }

// Primitive resolves the format; PrimitiveUnknown when it is not one of the
// supported numeric types.
func (n *NumpyArray) Primitive() Primitive { return PrimitiveOf(n.format, n.itemsize) }

// Strides are the C-contiguous byte strides of each dimension.
func (n *NumpyArray) Strides() []int {
	out := make([]int, len(n.shape))
	stride := n.itemsize
	for i := len(n.shape) - 1; i >= 0; i-- {
		out[i] = stride
		stride *= n.shape[i]
	}
	return out
}

// Bytes is the array's portion of its buffer. It shares memory with the
// array and must not be modified.
func (n *NumpyArray) Bytes() []byte { return n.raw() }

func (n *NumpyArray) raw() []byte {
	return n.data[n.offset : n.offset+product(n.shape)*n.itemsize]
}

func (n *NumpyArray) stride0() int {
	if len(n.shape) == 0 {
		return n.itemsize
	}
	return product(n.shape[1:]) * n.itemsize
}

func (n *NumpyArray) byteOrder() binary.ByteOrder {
	o, _ := splitFormat(n.format)
	return o.Binary()
}

func (n *NumpyArray) Form() Form {
	var inner []int
	if len(n.shape) > 1 {
		inner = append(inner, n.shape[1:]...)
	}
	return &NumpyForm{FormInfo: n.info(""), InnerShape: inner, ItemSize: n.itemsize, Format: n.format}
}

func (n *NumpyArray) ShallowCopy() Content {
	out := *n
	return &out
}

func (n *NumpyArray) withParameters(p Parameters) Content {
	out := *n
	out.params = p
	return &out
}

func (n *NumpyArray) withIdentities(id *Identities) Content {
	out := *n
	out.id = id
	return &out
}

func (n *NumpyArray) GetItemAt(at int) (Content, error) {
	if n.IsScalar() {
		return nil, validationErr(n.ClassName(), "cannot slice a scalar")
	}
	return getItemAt(n, at)
}

func (n *NumpyArray) GetItemAtNowrap(at int) (Content, error) {
	return &NumpyArray{
		base:     base{params: n.params},
		data:     n.data,
		offset:   n.offset + at*n.stride0(),
		shape:    n.shape[1:],
		itemsize: n.itemsize,
		format:   n.format,
	}, nil
}

func (n *NumpyArray) GetItemRange(start, stop int) (Content, error) {
	if n.IsScalar() {
		return nil, validationErr(n.ClassName(), "cannot slice a scalar")
	}
	return getItemRange(n, start, stop)
}

func (n *NumpyArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	shape := append([]int{stop - start}, n.shape[1:]...)
	return &NumpyArray{
		base:     base{id: n.identitiesRange(start, stop), params: n.params},
		data:     n.data,
		offset:   n.offset + start*n.stride0(),
		shape:    shape,
		itemsize: n.itemsize,
		format:   n.format,
	}, nil
}

func (n *NumpyArray) GetItemField(key string) (Content, error) {
	return nil, validationErr(n.ClassName(), "cannot slice NumpyArray by field name %q", key)
}

func (n *NumpyArray) GetItemFields(keys []string) (Content, error) {
	return nil, validationErr(n.ClassName(), "cannot slice NumpyArray by field names %q", keys)
}

func (n *NumpyArray) Carry(carry Index, allowLazy bool) (Content, error) {
	if n.IsScalar() {
		return nil, validationErr(n.ClassName(), "cannot carry a scalar")
	}
	stride := n.stride0()
	src := n.raw()
	out := make([]byte, carry.Len()*stride)
	for i := 0; i < carry.Len(); i++ {
		c := carry.Get(i)
		if c < 0 || c >= int64(n.shape[0]) {
			return nil, handleError(kernel.Error{Str: "index out of range", Kernel: "NumpyArrayGetitemCarry", Identity: kernel.None, Attempt: c}, n.ClassName(), n.id)
		}
		copy(out[i*stride:(i+1)*stride], src[int(c)*stride:])
	}
	id, err := n.id.carry(carry)
	if err != nil {
		return nil, err
	}
	shape := append([]int{carry.Len()}, n.shape[1:]...)
	return &NumpyArray{base: base{id: id, params: n.params}, data: out, shape: shape, itemsize: n.itemsize, format: n.format}, nil
}

// ToRegularArray expresses the inner dimensions as nested RegularArrays over
// a one-dimensional leaf sharing the same buffer.
func (n *NumpyArray) ToRegularArray() Content {
	if len(n.shape) <= 1 {
		return n.ShallowCopy()
	}
	var out Content = &NumpyArray{
		data:     n.data,
		offset:   n.offset,
		shape:    []int{product(n.shape)},
		itemsize: n.itemsize,
		format:   n.format,
	}
	for i := len(n.shape) - 1; i >= 1; i-- {
		out = newRegularArray(out, n.shape[i], product(n.shape[:i]))
	}
	outer := out.(*RegularArray)
	outer.id, outer.params = n.id, n.params
	return outer
}

func (n *NumpyArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	if head == nil {
		return n.ShallowCopy(), nil
	}
	if len(n.shape) > 1 {
		return n.ToRegularArray().getitemNext(head, tail, advanced)
	}
	switch head.(type) {
	case SliceAt, SliceRange, SliceArray, SliceJagged:
		return nil, validationErr(n.ClassName(), "too many dimensions in slice")
	}
	return getitemNextCommon(n, head, tail, advanced)
}

func (n *NumpyArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	if len(n.shape) > 1 {
		return n.ToRegularArray().getitemNextJagged(slicestarts, slicestops, slicecontent, tail)
	}
	return nil, validationErr(n.ClassName(), "too many jagged slice dimensions for array")
}

func (n *NumpyArray) getitemNothing() (Content, error) {
	return n.GetItemRangeNowrap(0, 0)
}

func (n *NumpyArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	if n.IsScalar() {
		return nil, validationErr(n.ClassName(), "cannot reduce a scalar")
	}
	if len(n.shape) > 1 {
		return n.ToRegularArray().reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
	}
	reduced, err := r.apply(n, starts, parents, outlength)
	if err != nil {
		return nil, err
	}
	var out Content = reduced
	if mask {
		m, data := int8Index(outlength)
		if err := handleError(kernel.ReduceMask(data, parents), n.ClassName(), n.id); err != nil {
			return nil, err
		}
		out = NewByteMaskedArray(m, out, false)
	}
	if keepdims {
		out = newRegularArray(out, 1, outlength)
	}
	return out, nil
}

func (n *NumpyArray) nbytesPart(largest map[uintptr]int) {
	NewIndexU8(n.data).nbytesPart(largest)
	n.id.nbytesPart(largest)
}

func (n *NumpyArray) validityError(path string) error {
	if n.Primitive() == PrimitiveUnknown {
		return validityErr(n.ClassName(), path, "unsupported format %q with itemsize %d", n.format, n.itemsize)
	}
	return identitiesValidity(n, path)
}

func (n *NumpyArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	w, err := n.widen()
	if err != nil {
		return err
	}
	pos := 0
	w.writeDims(s, n.shape, &pos, maxdecimals)
	return nil
}

// widened holds an array's values converted to the widest Go type of their
// kind, which is what the reducers and the JSON writer work on.
type widened struct {
	kind   BasicType
	ints   []int64
	uints  []uint64
	floats []float64
}

func (n *NumpyArray) widen() (widened, error) {
	p := n.Primitive()
	order := n.byteOrder()
	raw := n.raw()
	count := product(n.shape)
	size := n.itemsize
	w := widened{kind: p.Kind()}
	switch w.kind {
	case BTBoolean, BTInteger:
		w.ints = make([]int64, count)
		for i := range w.ints {
			b := raw[i*size:]
			switch p {
			case Bool:
				if b[0] != 0 {
					w.ints[i] = 1
				}
			case Int8:
				w.ints[i] = int64(int8(b[0]))
			case Int16:
				w.ints[i] = int64(int16(order.Uint16(b)))
			case Int32:
				w.ints[i] = int64(int32(order.Uint32(b)))
			default:
				w.ints[i] = int64(order.Uint64(b))
			}
		}
	case BTUnsigned:
		w.uints = make([]uint64, count)
		for i := range w.uints {
			b := raw[i*size:]
			switch p {
			case Uint8:
				w.uints[i] = uint64(b[0])
			case Uint16:
				w.uints[i] = uint64(order.Uint16(b))
			case Uint32:
				w.uints[i] = uint64(order.Uint32(b))
			default:
				w.uints[i] = order.Uint64(b)
			}
		}
	case BTFloatingPoint:
		w.floats = make([]float64, count)
		for i := range w.floats {
			b := raw[i*size:]
			if p == Float32 {
				w.floats[i] = float64(math.Float32frombits(order.Uint32(b)))
			} else {
				w.floats[i] = math.Float64frombits(order.Uint64(b))
			}
		}
	default:
		return w, unhandledErr(n.ClassName(), "cannot interpret format %q with itemsize %d", n.format, n.itemsize)
	}
	return w, nil
}

func (w widened) writeDims(s *jsoniter.Stream, shape []int, pos *int, maxdecimals int) {
	if len(shape) == 0 {
		w.writeAt(s, *pos, maxdecimals)
		*pos++
		return
	}
	if shape[0] == 0 {
		s.WriteEmptyArray()
		return
	}
	s.WriteArrayStart()
	for i := 0; i < shape[0]; i++ {
		if i > 0 {
			s.WriteMore()
		}
		w.writeDims(s, shape[1:], pos, maxdecimals)
	}
	s.WriteArrayEnd()
}

func (w widened) writeAt(s *jsoniter.Stream, i, maxdecimals int) {
	switch w.kind {
	case BTBoolean:
		s.WriteBool(w.ints[i] != 0)
	case BTInteger:
		s.WriteInt64(w.ints[i])
	case BTUnsigned:
		s.WriteUint64(w.uints[i])
	default:
		writeFloat(s, w.floats[i], maxdecimals)
	}
}

func (w widened) toNumpy(p Primitive) *NumpyArray {
	var data []byte
	var length int
	switch w.kind {
	case BTUnsigned:
		data, length = encodeAs(w.uints, p), len(w.uints)
	case BTFloatingPoint:
		data, length = encodeAs(w.floats, p), len(w.floats)
	default:
		data, length = encodeAs(w.ints, p), len(w.ints)
	}
	return &NumpyArray{data: data, shape: []int{length}, itemsize: p.ItemSize(), format: p.Format()}
}

// encodeAs narrows widened values to p, little-endian.
func encodeAs[T kernel.Number](vals []T, p Primitive) []byte {
	size := p.ItemSize()
	out := make([]byte, len(vals)*size)
	le := binary.LittleEndian
	for i, v := range vals {
		b := out[i*size:]
		switch p {
		case Bool:
			if v != 0 {
				b[0] = 1
			}
		case Int8:
			b[0] = byte(int8(v))
		case Uint8:
			b[0] = uint8(v)
		case Int16:
			le.PutUint16(b, uint16(int16(v)))
		case Uint16:
			le.PutUint16(b, uint16(v))
		case Int32:
			le.PutUint32(b, uint32(int32(v)))
		case Uint32:
			le.PutUint32(b, uint32(v))
		case Int64:
			le.PutUint64(b, uint64(int64(v)))
		case Uint64:
			le.PutUint64(b, uint64(v))
		case Float32:
			le.PutUint32(b, math.Float32bits(float32(v)))
		case Float64:
			le.PutUint64(b, math.Float64bits(float64(v)))
		}
	}
	return out
}
