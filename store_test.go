package jagged

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	assert.Equal(t, MemoryStoreType, s.Type())

	_, err := s.Get("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Put("b", strings.NewReader("hello")))
	require.NoError(t, s.Put("a", bytes.NewReader([]byte{0, 1, 2})))
	assert.Equal(t, []string{"a", "b"}, s.Keys())
	assert.Equal(t, 8, s.Size())

	r, err := s.Get("b")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	require.NoError(t, r.Close())

	var buf bytes.Buffer
	require.NoError(t, WriteMemoryStore(&buf, s))
	assert.Contains(t, buf.String(), `"a":"AAEC"`)
	read, err := ReadMemoryStore(&buf)
	require.NoError(t, err)
	r, err = read.Get("a")
	require.NoError(t, err)
	data, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, data)

	_, err = ReadMemoryStore(strings.NewReader(`{"a": "not base64!"}`))
	assert.Error(t, err)
}

func TestMemoryStoreConcurrentPuts(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := ToBuffers(jaggedInts(), s, WithPartition(i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Keys(), 16)
}

func TestCompressionMeta(t *testing.T) {
	for _, m := range []*CompressionMeta{nil, {}, {ID: "gzip"}, {ID: "zst"}} {
		var buf bytes.Buffer
		w, err := m.Compressor(&buf)
		require.NoError(t, err)
		_, err = w.Write([]byte("jagged jagged jagged"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := m.Decompressor(io.NopCloser(&buf))
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "jagged jagged jagged", string(data))
	}

	_, err := (&CompressionMeta{ID: "lz5"}).Compressor(io.Discard)
	assert.Error(t, err)
}
