package jagged

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"

	"github.com/qri-io/jagged/internal/kernel"
)

// IndexForm is the integer width and signedness of an Index buffer.
type IndexForm int

const (
	IndexI8 IndexForm = iota
	IndexU8
	IndexI32
	IndexU32
	IndexI64
)

var indexFormNames = map[IndexForm]string{
	IndexI8:  "i8",
	IndexU8:  "u8",
	IndexI32: "i32",
	IndexU32: "u32",
	IndexI64: "i64",
}

func (f IndexForm) String() string {
	if s, ok := indexFormNames[f]; ok {
		return s
	}
	return fmt.Sprintf("IndexForm(%d)", int(f))
}

// ItemSize is the width of one index element in bytes.
func (f IndexForm) ItemSize() int {
	switch f {
	case IndexI8, IndexU8:
		return 1
	case IndexI32, IndexU32:
		return 4
	default:
		return 8
	}
}

// ParseIndexForm reads "i8", "u8", "i32", "u32" or "i64".
func ParseIndexForm(s string) (IndexForm, error) {
	for f, name := range indexFormNames {
		if name == s {
			return f, nil
		}
	}
	return 0, validationErr("Index", "unrecognized index form %q", s)
}

type integer interface {
	~int8 | ~uint8 | ~int32 | ~uint32 | ~int64
}

type indexBuffer interface {
	get(i int) int64
	len() int
	ptr() uintptr
	itemsize() int
}

type buffer[T integer] []T

func (b buffer[T]) get(i int) int64 { return int64(b[i]) }
func (b buffer[T]) len() int        { return len(b) }
func (b buffer[T]) itemsize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}
func (b buffer[T]) ptr() uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// Index is an immutable offset+length view over a shared integer buffer.
// Views made with GetItemRange share the buffer; anything that changes
// values allocates a new one.
type Index struct {
	form   IndexForm
	buf    indexBuffer
	offset int
	length int
}

var _ kernel.Ints = Index{}

func newIndex[T integer](form IndexForm, data []T) Index {
	return Index{form: form, buf: buffer[T](data), length: len(data)}
}

// NewIndex8 wraps data without copying; data must not be modified afterwards.
func NewIndex8(data []int8) Index { return newIndex(IndexI8, data) }

// NewIndexU8 wraps data without copying; data must not be modified afterwards.
func NewIndexU8(data []uint8) Index { return newIndex(IndexU8, data) }

// NewIndex32 wraps data without copying; data must not be modified afterwards.
func NewIndex32(data []int32) Index { return newIndex(IndexI32, data) }

// NewIndexU32 wraps data without copying; data must not be modified afterwards.
func NewIndexU32(data []uint32) Index { return newIndex(IndexU32, data) }

// NewIndex64 wraps data without copying; data must not be modified afterwards.
func NewIndex64(data []int64) Index { return newIndex(IndexI64, data) }

// Form returns the width/signedness of the buffer.
func (x Index) Form() IndexForm { return x.form }

// Len is the number of elements in the view.
func (x Index) Len() int { return x.length }

// Offset is the position of the view's first element in the shared buffer.
func (x Index) Offset() int { return x.offset }

// Get returns element i of the view without bounds wrapping.
func (x Index) Get(i int) int64 { return x.buf.get(x.offset + i) }

// GetItem returns element at, counting from the end when negative.
func (x Index) GetItem(at int) (int64, error) {
	regular := at
	if regular < 0 {
		regular += x.length
	}
	if regular < 0 || regular >= x.length {
		return 0, validationErr("Index"+x.form.String(), "index %d out of range for length %d", at, x.length)
	}
	return x.Get(regular), nil
}

// GetItemRange returns a clamped subrange sharing the buffer.
func (x Index) GetItemRange(start, stop int) Index {
	s, e := kernel.RegularizeRangeSlice(int64(start), int64(stop), true, true, true, int64(x.length))
	return x.GetItemRangeNowrap(int(s), int(e))
}

// GetItemRangeNowrap returns x[start:stop] sharing the buffer; bounds are
// the caller's responsibility.
func (x Index) GetItemRangeNowrap(start, stop int) Index {
	return Index{form: x.form, buf: x.buf, offset: x.offset + start, length: stop - start}
}

// Int64s returns the values as int64. For an i64 index this is a view of the
// shared buffer and must be treated as read-only.
func (x Index) Int64s() []int64 {
	if b, ok := x.buf.(buffer[int64]); ok {
		return b[x.offset : x.offset+x.length]
	}
	out := make([]int64, x.length)
	for i := range out {
		out[i] = x.Get(i)
	}
	return out
}

// ToInt64 returns an i64 Index with the same values.
func (x Index) ToInt64() Index {
	if x.form == IndexI64 {
		return x
	}
	return NewIndex64(x.Int64s())
}

// Bytes encodes the view little-endian, one ItemSize per element.
func (x Index) Bytes() []byte {
	size := x.form.ItemSize()
	out := make([]byte, x.length*size)
	for i := 0; i < x.length; i++ {
		v := x.Get(i)
		switch size {
		case 1:
			out[i] = byte(v)
		case 4:
			binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
		default:
			binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
		}
	}
	return out
}

// IndexFromBytes decodes a little-endian buffer written by Index.Bytes.
func IndexFromBytes(form IndexForm, data []byte) (Index, error) {
	size := form.ItemSize()
	if len(data)%size != 0 {
		return Index{}, validationErr("Index"+form.String(), "buffer of %d bytes is not a multiple of %d", len(data), size)
	}
	n := len(data) / size
	switch form {
	case IndexI8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(data[i])
		}
		return NewIndex8(out), nil
	case IndexU8:
		out := make([]uint8, n)
		copy(out, data)
		return NewIndexU8(out), nil
	case IndexI32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return NewIndex32(out), nil
	case IndexU32:
		out := make([]uint32, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
		return NewIndexU32(out), nil
	case IndexI64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return NewIndex64(out), nil
	}
	return Index{}, validationErr("Index", "unrecognized index form %d", int(form))
}

func (x Index) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < x.length; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		if i == 5 && x.length > 10 {
			b.WriteString("...")
			i = x.length - 5
		}
		fmt.Fprintf(&b, "%d", x.Get(i))
	}
	b.WriteString("]")
	return b.String()
}

func (x Index) nbytesPart(largest map[uintptr]int) {
	if x.buf == nil {
		return
	}
	p := x.buf.ptr()
	if p == 0 {
		return
	}
	n := x.buf.len() * x.buf.itemsize()
	if n > largest[p] {
		largest[p] = n
	}
}

// int64Index allocates a fresh i64 index of length n along with its backing
// slice, for kernels to fill.
func int64Index(n int) (Index, []int64) {
	data := make([]int64, n)
	return NewIndex64(data), data
}

func int8Index(n int) (Index, []int8) {
	data := make([]int8, n)
	return NewIndex8(data), data
}
