package jagged

import (
	"io"

	"github.com/qri-io/dataset/compression"
)

// CompressionMeta names the codec buffers are stored with. An empty ID
// stores them as-is.
type CompressionMeta struct {
	ID string `json:"id"`
}

// Decompressor wraps r with the reader for the codec.
func (m *CompressionMeta) Decompressor(r io.ReadCloser) (io.ReadCloser, error) {
	if m == nil || m.ID == "" {
		return r, nil
	}
	return compression.Decompressor(m.ID, r)
}

// Compressor wraps w; callers must Close the result to flush it.
func (m *CompressionMeta) Compressor(w io.Writer) (io.WriteCloser, error) {
	if m == nil || m.ID == "" {
		return nopWriteCloser{w}, nil
	}
	return compression.Compressor(m.ID, w)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
