package jagged

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Primitive is the element type of a NumpyArray leaf.
type Primitive int

const (
	PrimitiveUnknown Primitive = iota
	Bool
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var primitiveNames = map[Primitive]string{
	Bool:    "bool",
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

func (p Primitive) String() string {
	if s, ok := primitiveNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePrimitive reads one of the shorthand names "float64", "int32", "bool"...
func ParsePrimitive(s string) (Primitive, bool) {
	for p, name := range primitiveNames {
		if name == s {
			return p, true
		}
	}
	return PrimitiveUnknown, false
}

// ItemSize is the width of one element in bytes.
func (p Primitive) ItemSize() int {
	switch p {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// Kind groups primitives by how their bits are read.
func (p Primitive) Kind() BasicType {
	switch p {
	case Bool:
		return BTBoolean
	case Int8, Int16, Int32, Int64:
		return BTInteger
	case Uint8, Uint16, Uint32, Uint64:
		return BTUnsigned
	case Float32, Float64:
		return BTFloatingPoint
	}
	return BTOther
}

// llp64 reports whether C long is 32 bits on this platform, which moves the
// struct-module codes for 32- and 64-bit integers.
func llp64() bool {
	return runtime.GOOS == "windows" || runtime.GOARCH == "386" || runtime.GOARCH == "arm"
}

// Format is the platform's struct-module format code for p.
func (p Primitive) Format() string {
	switch p {
	case Bool:
		return "?"
	case Int8:
		return "b"
	case Uint8:
		return "B"
	case Int16:
		return "h"
	case Uint16:
		return "H"
	case Int32:
		if llp64() {
			return "l"
		}
		return "i"
	case Uint32:
		if llp64() {
			return "L"
		}
		return "I"
	case Int64:
		if llp64() {
			return "q"
		}
		return "l"
	case Uint64:
		if llp64() {
			return "Q"
		}
		return "L"
	case Float32:
		return "f"
	case Float64:
		return "d"
	}
	return ""
}

// PrimitiveOf resolves a format string and item size to a Primitive. The
// format may carry a byte-order prefix and may be a struct-module code ("d",
// "l", "?") or a NumPy typestr ("<f8", "|b1").
func PrimitiveOf(format string, itemsize int) Primitive {
	_, code := splitFormat(format)
	switch code {
	case "?":
		return Bool
	case "b":
		return Int8
	case "B":
		return Uint8
	case "h":
		return Int16
	case "H":
		return Uint16
	case "i":
		return Int32
	case "I":
		return Uint32
	case "q":
		return Int64
	case "Q":
		return Uint64
	case "l":
		if itemsize == 4 {
			return Int32
		}
		return Int64
	case "L":
		if itemsize == 4 {
			return Uint32
		}
		return Uint64
	case "f":
		return Float32
	case "d":
		return Float64
	}
	if dt, err := ParseDtype(format); err == nil {
		return dt.Primitive()
	}
	return PrimitiveUnknown
}

// splitFormat separates an optional byte-order prefix from a format code.
func splitFormat(format string) (ByteOrder, string) {
	if format == "" {
		return BONative, format
	}
	if o, err := ParseByteOrder(rune(format[0])); err == nil {
		return o, format[1:]
	}
	return BONative, format
}

// ByteOrder is the first character of a format string or NumPy typestr.
type ByteOrder rune

// ParseByteOrder validates a byte-order character.
func ParseByteOrder(r rune) (ByteOrder, error) {
	o := ByteOrder(r)
	if _, ok := byteOrders[o]; !ok {
		return o, fmt.Errorf("unsupported byte order format: %q", r)
	}
	return o, nil
}

const (
	BONotRelevant  ByteOrder = '|'
	BOLittleEndian ByteOrder = '<'
	BOBigEndian    ByteOrder = '>'
	BONative       ByteOrder = '='
	BONativeAlign  ByteOrder = '@'
	BONetwork      ByteOrder = '!'
)

var byteOrders = map[ByteOrder]struct{}{
	BONotRelevant:  {},
	BOLittleEndian: {},
	BOBigEndian:    {},
	BONative:       {},
	BONativeAlign:  {},
	BONetwork:      {},
}

// Binary returns the decoder for this byte order. Native orders decode
// little-endian, the only host order supported.
func (o ByteOrder) Binary() binary.ByteOrder {
	switch o {
	case BOBigEndian, BONetwork:
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// BasicType is the NumPy kind character of a typestr.
type BasicType rune

// ParseBasicType validates a NumPy kind character.
func ParseBasicType(r rune) (BasicType, error) {
	t := BasicType(r)
	if _, ok := supportedBasicTypes[t]; !ok {
		return t, fmt.Errorf("unsupported basic type: %q", r)
	}
	return t, nil
}

// Human is a readable name for the kind.
func (bt BasicType) Human() string {
	return supportedBasicTypes[bt]
}

const (
	BTBoolean       BasicType = 'b'
	BTInteger       BasicType = 'i'
	BTUnsigned      BasicType = 'u'
	BTFloatingPoint BasicType = 'f'
	BTOther         BasicType = 'V'
)

var supportedBasicTypes = map[BasicType]string{
	BTBoolean:       "bool",
	BTInteger:       "int",
	BTUnsigned:      "uint",
	BTFloatingPoint: "float",
	BTOther:         "other",
}

// Dtype is a NumPy array-protocol type string: byte order, kind and size,
// e.g. "<i8" or "|b1".
type Dtype struct {
	ByteOrder ByteOrder
	BasicType BasicType
	ByteSize  int
}

// ParseDtype reads a NumPy typestr.
func ParseDtype(s string) (dt Dtype, err error) {
	if len(s) < 3 {
		return dt, fmt.Errorf("invalid Dtype string. %q is too short", s)
	}

	boByte, s := s[0], s[1:]
	dt.ByteOrder, err = ParseByteOrder(rune(boByte))
	if err != nil {
		return dt, err
	}

	typeByte, s := s[0], s[1:]
	dt.BasicType, err = ParseBasicType(rune(typeByte))
	if err != nil {
		return dt, err
	}

	size, err := strconv.ParseInt(strings.TrimSpace(s), 10, 0)
	if err != nil {
		return dt, err
	}
	dt.ByteSize = int(size)
	return dt, nil
}

func (dt Dtype) String() string {
	return fmt.Sprintf("%s%s%d", string(dt.ByteOrder), string(dt.BasicType), dt.ByteSize)
}

// Primitive maps the typestr to a Primitive, or PrimitiveUnknown.
func (dt Dtype) Primitive() Primitive {
	switch dt.BasicType {
	case BTBoolean:
		if dt.ByteSize == 1 {
			return Bool
		}
	case BTInteger:
		switch dt.ByteSize {
		case 1:
			return Int8
		case 2:
			return Int16
		case 4:
			return Int32
		case 8:
			return Int64
		}
	case BTUnsigned:
		switch dt.ByteSize {
		case 1:
			return Uint8
		case 2:
			return Uint16
		case 4:
			return Uint32
		case 8:
			return Uint64
		}
	case BTFloatingPoint:
		switch dt.ByteSize {
		case 4:
			return Float32
		case 8:
			return Float64
		}
	}
	return PrimitiveUnknown
}

// DtypeOf is the little-endian typestr for p.
func DtypeOf(p Primitive) Dtype {
	order := BOLittleEndian
	if p.ItemSize() == 1 {
		order = BONotRelevant
	}
	return Dtype{ByteOrder: order, BasicType: p.Kind(), ByteSize: p.ItemSize()}
}
