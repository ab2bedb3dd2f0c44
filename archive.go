package jagged

import (
	"bytes"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// StoredArray is an array stored as partitions of buffers under a path of a
// Store, described by the ArrayMeta at path/.jarray.
type StoredArray struct {
	path  Path
	store Store
	mode  PersistenceMode
	meta  *ArrayMeta
	opts  arrayOptions
}

type arrayOptions struct {
	partitionLength int
	compressor      string
	cache           ArrayCache
}

// ArrayOption configures Create and Open.
type ArrayOption func(*arrayOptions)

// WithPartitionLength splits appended arrays into partitions of at most n
// elements.
func WithPartitionLength(n int) ArrayOption {
	return func(o *arrayOptions) { o.partitionLength = n }
}

// WithCompressor compresses the buffers of a newly created array with the
// named codec ("gzip" or "zst"). Existing arrays keep their codec.
func WithCompressor(id string) ArrayOption {
	return func(o *arrayOptions) { o.compressor = id }
}

// WithArrayCache makes partitions lazy, keeping materialized ones in cache.
func WithArrayCache(cache ArrayCache) ArrayOption {
	return func(o *arrayOptions) { o.cache = cache }
}

// Create writes c as a new array at path and returns it opened in mode.
func Create(store Store, path string, c Content, mode PersistenceMode, opts ...ArrayOption) (*StoredArray, error) {
	if mode == ModeRead || mode == ModeReadWrite {
		return nil, errors.Errorf("cannot create an array in mode %q", mode)
	}
	a, err := Open(store, path, mode, opts...)
	if err != nil {
		return nil, err
	}
	if err := a.Append(c); err != nil {
		return nil, err
	}
	return a, nil
}

// Open reads the array metadata at path. Modes "r" and "r+" require the
// array to exist, "w-" requires that it does not, and "w" discards it.
func Open(store Store, path string, mode PersistenceMode, opts ...ArrayOption) (*StoredArray, error) {
	p, err := NewPath(path)
	if err != nil {
		return nil, err
	}

	a := &StoredArray{
		path:  p,
		store: store,
		mode:  mode,
	}
	for _, opt := range opts {
		opt(&a.opts)
	}

	switch mode {
	case ModeRead, ModeReadWrite, ModeReadWriteCreate, ModeWrite, ModeWriteFail:
	default:
		return nil, errors.Errorf("invalid persistence mode %q", mode)
	}

	mp := p.Join(string(MTArray)).String()
	f, err := store.Get(mp)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if mode == ModeRead || mode == ModeReadWrite {
			return nil, errors.Wrapf(ErrNotFound, "no array at %q", a.Path())
		}
		return a, nil
	}
	defer f.Close()

	switch mode {
	case ModeWriteFail:
		return nil, errors.Errorf("array already exists at %q", a.Path())
	case ModeWrite:
		return a, nil
	}

	a.meta = &ArrayMeta{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(f).Decode(a.meta); err != nil {
		return nil, errors.Wrapf(err, "reading %s", mp)
	}
	return a, nil
}

// Info is a one-line description of the array for logs and the CLI.
func (a *StoredArray) Info() string {
	if a.meta == nil {
		return fmt.Sprintf("<jagged.StoredArray path=%q empty>", a.Path())
	}
	return fmt.Sprintf("<jagged.StoredArray path=%q length=%d partitions=%d>", a.Path(), a.Length(), a.NumPartitions())
}

// Path is the normalized location of the array in its Store.
func (a *StoredArray) Path() string {
	return a.path.String()
}

// Meta is nil until something has been written.
func (a *StoredArray) Meta() *ArrayMeta { return a.meta }

// Form is the layout shared by every partition, or nil before the first Append.
func (a *StoredArray) Form() Form {
	if a.meta == nil {
		return nil
	}
	return a.meta.Form
}

// Length is the total length of all partitions.
func (a *StoredArray) Length() int {
	if a.meta == nil {
		return 0
	}
	return a.meta.Length()
}

// NumPartitions is the number of stored partitions.
func (a *StoredArray) NumPartitions() int {
	if a.meta == nil {
		return 0
	}
	return len(a.meta.Partitions)
}

func (a *StoredArray) keyFormat(partition int, formKey, role string) string {
	return a.path.Join(DefaultKeyFormat(partition, formKey, role)).String()
}

// Append writes c as one or more new partitions. c must have the same layout
// as the partitions already stored.
func (a *StoredArray) Append(c Content) error {
	if a.mode == ModeRead {
		return errors.Errorf("array at %q is read-only", a.Path())
	}
	meta := a.meta
	if meta == nil {
		meta = &ArrayMeta{FormatVersion: FormatVersion}
		if a.opts.compressor != "" {
			meta.Compressor = &CompressionMeta{ID: a.opts.compressor}
		}
	} else {
		cp := *meta
		cp.Partitions = append([]int(nil), meta.Partitions...)
		meta = &cp
	}

	for _, r := range partitionRanges(c.Length(), a.opts.partitionLength) {
		part, err := c.GetItemRangeNowrap(r[0], r[1])
		if err != nil {
			return err
		}
		opts := []BuffersOption{WithPartition(len(meta.Partitions)), WithKeyFormat(a.keyFormat)}
		if meta.Compressor != nil {
			opts = append(opts, WithCompression(*meta.Compressor))
		}
		form, length, err := ToBuffers(part, a.store, opts...)
		if err != nil {
			return errors.Wrapf(err, "writing partition %d", len(meta.Partitions))
		}
		if meta.Form == nil {
			meta.Form = form
		} else if !SameLayout(meta.Form, form) {
			return validationErr(c.ClassName(), "cannot append an array of form %s to an array of form %s", form.ToJSON(false, false), meta.Form.ToJSON(false, false))
		}
		meta.Partitions = append(meta.Partitions, length)
	}

	if err := a.writeMeta(meta); err != nil {
		return err
	}
	a.meta = meta
	return nil
}

func (a *StoredArray) writeMeta(meta *ArrayMeta) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(meta)
	if err != nil {
		return err
	}
	mp := a.path.Join(string(MTArray)).String()
	return errors.Wrapf(a.store.Put(mp, bytes.NewReader(data)), "writing %s", mp)
}

// Partition reads one partition.
func (a *StoredArray) Partition(i int) (Content, error) {
	if i < 0 || i >= a.NumPartitions() {
		return nil, errors.Errorf("partition %d out of range for %d partitions", i, a.NumPartitions())
	}
	opts := []BuffersOption{WithPartition(i), WithKeyFormat(a.keyFormat)}
	if a.meta.Compressor != nil {
		opts = append(opts, WithCompression(*a.meta.Compressor))
	}
	if a.opts.cache != nil {
		opts = append(opts, WithLazy(a.opts.cache))
	}
	return FromBuffers(a.meta.Form, a.meta.Partitions[i], a.store, opts...)
}

// ReadAll reads every partition in order.
func (a *StoredArray) ReadAll() ([]Content, error) {
	out := make([]Content, a.NumPartitions())
	for i := range out {
		part, err := a.Partition(i)
		if err != nil {
			return nil, err
		}
		out[i] = part
	}
	return out, nil
}

// ReadRange reads elements [start, stop) of the concatenated partitions, as
// one piece per partition touched. Bounds are clamped like GetItemRange.
func (a *StoredArray) ReadRange(start, stop int) ([]Content, error) {
	if a.meta == nil {
		return nil, nil
	}
	start, stop = regularizeRange(start, stop, a.Length())
	var out []Content
	for _, p := range projectPartitions(a.meta.Partitions, start, stop) {
		part, err := a.Partition(p.PartitionIX)
		if err != nil {
			return nil, err
		}
		piece, err := part.GetItemRangeNowrap(p.Start, p.Stop)
		if err != nil {
			return nil, err
		}
		out = append(out, piece)
	}
	return out, nil
}

// Attributes reads the user metadata at the array's path; a missing
// document is empty.
func (a *StoredArray) Attributes() (Attributes, error) {
	attrs := Attributes{}
	f, err := a.store.Get(a.path.Join(string(MTAttributes)).String())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return attrs, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(f).Decode(&attrs); err != nil {
		return nil, errors.Wrap(err, "reading attributes")
	}
	return attrs, nil
}

// SetAttributes replaces the user metadata stored next to the array.
func (a *StoredArray) SetAttributes(attrs Attributes) error {
	if a.mode == ModeRead {
		return errors.Errorf("array at %q is read-only", a.Path())
	}
	return putJSON(a.store, a.path.Join(string(MTAttributes)), attrs)
}

// CreateGroup marks path as a group.
func CreateGroup(store Store, path string) error {
	p, err := NewPath(path)
	if err != nil {
		return err
	}
	return putJSON(store, p.Join(string(MTGroup)), Group{FormatVersion: FormatVersion})
}

// Consolidate gathers every metadata document in s under the root
// ".jmetadata" key and returns it.
func Consolidate(s *MemoryStore) (*ConsolidatedMetadata, error) {
	out := &ConsolidatedMetadata{ConsolidatedFormat: FormatVersion, Metadata: map[string]MetaTyper{}}
	raw := map[string]jsoniter.RawMessage{}
	for _, key := range s.Keys() {
		if _, ok := KeyMetaType(key); !ok {
			continue
		}
		f, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		raw[key] = buf.Bytes()
	}
	doc := struct {
		ConsolidatedFormat int                            `json:"jagged_consolidated_format"`
		Metadata           map[string]jsoniter.RawMessage `json:"metadata"`
	}{FormatVersion, raw}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if err := s.Put(string(MTMetadata), bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenConsolidated reads the document Consolidate wrote.
func OpenConsolidated(store Store) (*ConsolidatedMetadata, error) {
	f, err := store.Get(string(MTMetadata))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cm := &ConsolidatedMetadata{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(f).Decode(cm); err != nil {
		return nil, errors.Wrap(err, "reading consolidated metadata")
	}
	return cm, nil
}

func putJSON(store Store, p Path, v interface{}) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		return err
	}
	return errors.Wrapf(store.Put(p.String(), bytes.NewReader(data)), "writing %s", p)
}

// PersistenceMode controls how Open and Create treat an existing array.
type PersistenceMode string

const (
	// ModeRead opens an existing array read-only.
	ModeRead PersistenceMode = "r"
	// ModeReadWrite opens an existing array for appends.
	ModeReadWrite PersistenceMode = "r+"
	// ModeReadWriteCreate opens an array for appends, starting empty if none is stored.
	ModeReadWriteCreate PersistenceMode = "a"
	// ModeWrite starts a new array, replacing any stored one.
	ModeWrite PersistenceMode = "w"
	// ModeWriteFail starts a new array and fails if one is already stored.
	ModeWriteFail PersistenceMode = "w-"
)

// Path is a logical location in a Store. The root is the empty Path.
type Path []string

// NewPath normalizes posix so every store sees the same keys: backslashes
// become slashes, leading and trailing slashes are stripped, and runs of
// slashes collapse. "." and ".." segments are rejected.
func NewPath(posix string) (Path, error) {
	var p Path
	for _, seg := range strings.Split(strings.ReplaceAll(posix, `\`, "/"), "/") {
		switch seg {
		case "":
			continue
		case ".", "..":
			return nil, errors.Errorf("invalid path %q: relative segment %q", posix, seg)
		}
		p = append(p, seg)
	}
	return p, nil
}

// String joins the segments with slashes.
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Shift splits off the first segment.
func (p Path) Shift() (head string, ch Path) {
	switch len(p) {
	case 0:
		return "", nil
	case 1:
		return p[0], nil
	default:
		return p[0], p[1:]
	}
}

// Join returns a new Path with elems appended; p is not modified.
func (p Path) Join(elems ...string) Path {
	return append(append(Path(nil), p...), elems...)
}
