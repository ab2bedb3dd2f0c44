package jagged

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qri-io/jagged/internal/kernel"
)

// Identities is an optional provenance table attached to a Content node: one
// row of Width integers per element, naming where the element came from.
// A nil *Identities means "no identities".
type Identities struct {
	ref    uuid.UUID
	width  int
	length int
	offset int
	data   []int64
}

// NewIdentities wraps data, which holds length rows of width integers.
func NewIdentities(ref uuid.UUID, width, length int, data []int64) (*Identities, error) {
	if width < 1 {
		return nil, validationErr("Identities", "width must be at least 1, not %d", width)
	}
	if len(data) < width*length {
		return nil, validationErr("Identities", "%d values cannot hold %d rows of width %d", len(data), length, width)
	}
	return &Identities{ref: ref, width: width, length: length, data: data}, nil
}

// NewRootIdentities numbers length elements 0..length-1 under a fresh
// reference.
func NewRootIdentities(length int) *Identities {
	data := make([]int64, length)
	kernel.LocalIndex(data)
	return &Identities{ref: uuid.New(), width: 1, length: length, data: data}
}

// Ref is the reference shared by every Identities derived from one root.
func (id *Identities) Ref() uuid.UUID { return id.ref }

// Width is the number of integers per row.
func (id *Identities) Width() int { return id.width }

// Length is the number of rows.
func (id *Identities) Length() int { return id.length }

// Identity formats row at as "[a, b, ...]".
func (id *Identities) Identity(at int) string {
	var b strings.Builder
	b.WriteString("[")
	row := (id.offset + at) * id.width
	for j := 0; j < id.width; j++ {
		if j > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(id.data[row+j], 10))
	}
	b.WriteString("]")
	return b.String()
}

func (id *Identities) getitemRangeNowrap(start, stop int) *Identities {
	if id == nil {
		return nil
	}
	out := *id
	out.offset += start
	out.length = stop - start
	return &out
}

func (id *Identities) carry(carry Index) (*Identities, error) {
	if id == nil {
		return nil, nil
	}
	out := make([]int64, carry.Len()*id.width)
	for i := 0; i < carry.Len(); i++ {
		c := carry.Get(i)
		if c < 0 || c >= int64(id.length) {
			return nil, &Error{Kind: KindKernel, Class: "Identities", Kernel: "IdentitiesGetitemCarry", Attempt: c, Msg: "index out of range"}
		}
		copy(out[i*id.width:(i+1)*id.width], id.data[(id.offset+int(c))*id.width:])
	}
	return &Identities{ref: id.ref, width: id.width, length: carry.Len(), data: out}, nil
}

func (id *Identities) nbytesPart(largest map[uintptr]int) {
	if id == nil {
		return
	}
	NewIndex64(id.data).nbytesPart(largest)
}
