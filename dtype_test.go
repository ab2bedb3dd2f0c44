package jagged

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDtype(t *testing.T) {
	dt, err := ParseDtype("<f8")
	require.NoError(t, err)
	assert.Equal(t, Dtype{ByteOrder: BOLittleEndian, BasicType: BTFloatingPoint, ByteSize: 8}, dt)
	assert.Equal(t, "<f8", dt.String())
	assert.Equal(t, Float64, dt.Primitive())
	assert.Equal(t, "float", dt.BasicType.Human())

	for _, bad := range []string{"<f", "*i4", "<x4", "<i?"} {
		_, err := ParseDtype(bad)
		assert.Error(t, err, bad)
	}

	dt, err = ParseDtype(">i3")
	require.NoError(t, err)
	assert.Equal(t, PrimitiveUnknown, dt.Primitive())
}

func TestPrimitiveOf(t *testing.T) {
	cases := []struct {
		format   string
		itemsize int
		want     Primitive
	}{
		{"?", 1, Bool},
		{"d", 8, Float64},
		{"<d", 8, Float64},
		{"q", 8, Int64},
		{"l", 8, Int64},
		{"l", 4, Int32},
		{"L", 4, Uint32},
		{"B", 1, Uint8},
		{"<i2", 2, Int16},
		{"|b1", 1, Bool},
		{">u8", 8, Uint64},
		{"x", 1, PrimitiveUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PrimitiveOf(c.format, c.itemsize), c.format)
	}

	for p := Bool; p <= Float64; p++ {
		assert.Equal(t, p, PrimitiveOf(p.Format(), p.ItemSize()), p.String())
		got, ok := ParsePrimitive(p.String())
		assert.True(t, ok)
		assert.Equal(t, p, got)
		assert.Equal(t, p, DtypeOf(p).Primitive(), p.String())
	}
	assert.Equal(t, "|b1", DtypeOf(Bool).String())
	assert.Equal(t, "<u4", DtypeOf(Uint32).String())
}

func TestByteOrder(t *testing.T) {
	o, _ := splitFormat(">d")
	assert.Equal(t, binary.BigEndian, o.Binary())
	o, code := splitFormat("d")
	assert.Equal(t, BONative, o)
	assert.Equal(t, "d", code)
	assert.Equal(t, binary.LittleEndian, o.Binary())

	_, err := ParseByteOrder('x')
	assert.Error(t, err)
}
