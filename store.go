package jagged

import (
	"bytes"
	"encoding/base64"
	"io"
	"sort"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	// MemoryStoreType is the Type of a MemoryStore.
	MemoryStoreType = "MemoryStore"
)

// Store holds named buffers.
type Store interface {
	Get(key string) (io.ReadCloser, error)
	Put(key string, val io.Reader) error
	Type() string
}

// MemoryStore is a Store backed by a map. Its JSON encoding is an object of
// base64 buffers, which is the archive format the CLI reads.
type MemoryStore struct {
	lk   sync.Mutex
	data map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string][]byte{},
	}
}

// Type returns MemoryStoreType.
func (s *MemoryStore) Type() string { return MemoryStoreType }

// Get returns the buffer at key, or an error wrapping ErrNotFound.
func (s *MemoryStore) Get(key string) (io.ReadCloser, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	d, ok := s.data[key]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(d)), nil
}

// Put reads val to the end and stores it at key, replacing any previous buffer.
func (s *MemoryStore) Put(key string, val io.Reader) error {
	d, err := io.ReadAll(val)
	if err != nil {
		return errors.Wrapf(err, "reading buffer %q", key)
	}

	s.lk.Lock()
	defer s.lk.Unlock()
	s.data[key] = d

	return nil
}

// Keys lists the stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.lk.Lock()
	defer s.lk.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size is the total number of stored bytes.
func (s *MemoryStore) Size() int {
	s.lk.Lock()
	defer s.lk.Unlock()
	n := 0
	for _, d := range s.data {
		n += len(d)
	}
	return n
}

// MarshalJSON encodes every buffer as base64.
func (s *MemoryStore) MarshalJSON() ([]byte, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	enc := make(map[string]string, len(s.data))
	for k, d := range s.data {
		enc[k] = base64.StdEncoding.EncodeToString(d)
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(enc)
}

// UnmarshalJSON replaces the contents of s with a decoded archive.
func (s *MemoryStore) UnmarshalJSON(d []byte) error {
	enc := map[string]string{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(d, &enc); err != nil {
		return errors.Wrap(err, "decoding store archive")
	}
	data := make(map[string][]byte, len(enc))
	for k, v := range enc {
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return errors.Wrapf(err, "decoding buffer %q", k)
		}
		data[k] = b
	}

	s.lk.Lock()
	defer s.lk.Unlock()
	s.data = data
	return nil
}

// ReadMemoryStore decodes an archive written by WriteMemoryStore.
func ReadMemoryStore(r io.Reader) (*MemoryStore, error) {
	s := NewMemoryStore()
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteMemoryStore encodes s as an archive.
func WriteMemoryStore(w io.Writer, s *MemoryStore) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(s)
}
