package jagged

import (
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// FormatVersion is the archive format written by this package.
const FormatVersion = 1

type MetaType string

const (
	// MTAttributes stores userland metadata keyed by array name
	MTAttributes MetaType = ".jattrs"
	// MTArray is the key for storing metadata on an array store
	MTArray MetaType = ".jarray"
	// MTGroup is the key for storing group definitions on an array store
	MTGroup MetaType = ".jgroup"
	// MTMetadata is the key for composite metadata
	MTMetadata MetaType = ".jmetadata"
)

type MetaTyper interface {
	MetaType() MetaType
}

var metaTypes = map[MetaType]struct{}{
	MTAttributes: {},
	MTArray:      {},
	MTGroup:      {},
}

// relies on the fact that all keynames are 7 characters long
func KeyMetaType(s string) (mt MetaType, ok bool) {
	if len(s) < 7 {
		return mt, false
	}
	mt = MetaType(s[len(s)-7:])
	_, ok = metaTypes[mt]
	return mt, ok
}

type Attributes map[string]interface{}

func (Attributes) MetaType() MetaType { return MTAttributes }

// ArrayMeta describes an array stored as buffers. It is encoded as JSON
// under the ".jarray" key of the array's path.
type ArrayMeta struct {
	// FormatVersion of the archive the array was written with.
	FormatVersion int
	// Form of every partition, with a form_key on each node.
	Form Form
	// Partitions lists the length of each partition in order.
	Partitions []int
	// Compressor applied to every buffer, nil when they are stored as-is.
	Compressor *CompressionMeta
}

func (ArrayMeta) MetaType() MetaType { return MTArray }

// Length is the sum of the partition lengths.
func (m *ArrayMeta) Length() int {
	n := 0
	for _, p := range m.Partitions {
		n += p
	}
	return n
}

type arrayMetaJSON struct {
	FormatVersion int                 `json:"jagged_format"`
	Form          jsoniter.RawMessage `json:"form"`
	Length        int                 `json:"length"`
	Partitions    []int               `json:"partitions"`
	Compressor    *CompressionMeta    `json:"compressor"`
}

// MarshalJSON writes the metadata with its format version.
func (m ArrayMeta) MarshalJSON() ([]byte, error) {
	if m.Form == nil {
		return nil, errors.New("array metadata has no form")
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(arrayMetaJSON{
		FormatVersion: m.FormatVersion,
		Form:          jsoniter.RawMessage(m.Form.ToJSON(false, false)),
		Length:        m.Length(),
		Partitions:    m.Partitions,
		Compressor:    m.Compressor,
	})
}

func (m *ArrayMeta) UnmarshalJSON(d []byte) error {
	raw := arrayMetaJSON{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(d, &raw); err != nil {
		return err
	}
	if len(raw.Form) == 0 {
		return validationErr("ArrayMeta", "array metadata has no form")
	}
	form, err := FormFromJSON(raw.Form)
	if err != nil {
		return errors.Wrap(err, "reading array form")
	}
	out := ArrayMeta{
		FormatVersion: raw.FormatVersion,
		Form:          form,
		Partitions:    raw.Partitions,
		Compressor:    raw.Compressor,
	}
	if out.Length() != raw.Length {
		return validationErr("ArrayMeta", "partition lengths sum to %d, not length %d", out.Length(), raw.Length)
	}
	*m = out
	return nil
}

// Arrays can be organized into groups which can also contain other groups.
// A group exists at logical path "foo/bar" if the "foo/bar/.jgroup" key
// exists in the store.
type Group struct {
	FormatVersion int `json:"jagged_format"`
}

func (Group) MetaType() MetaType { return MTGroup }

// ConsolidatedMetadata gathers every metadata document of a store under one
// key, so an archive can be listed without reading each path.
type ConsolidatedMetadata struct {
	ConsolidatedFormat int                  `json:"jagged_consolidated_format"`
	Metadata           map[string]MetaTyper `json:"metadata"`
}

// Arrays lists the paths holding arrays, sorted.
func (m *ConsolidatedMetadata) Arrays() []string {
	var out []string
	for key, v := range m.Metadata {
		if v.MetaType() == MTArray {
			out = append(out, strings.TrimSuffix(strings.TrimSuffix(key, string(MTArray)), "/"))
		}
	}
	sort.Strings(out)
	return out
}

type consolidatedMetaDecoder struct {
	ConsolidatedFormat int                            `json:"jagged_consolidated_format"`
	Metadata           map[string]jsoniter.RawMessage `json:"metadata"`
}

func (m *ConsolidatedMetadata) UnmarshalJSON(d []byte) error {
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	cd := consolidatedMetaDecoder{}
	if err := json.Unmarshal(d, &cd); err != nil {
		return err
	}
	cm := ConsolidatedMetadata{
		ConsolidatedFormat: cd.ConsolidatedFormat,
		Metadata:           map[string]MetaTyper{},
	}

	for key, data := range cd.Metadata {
		kt, ok := KeyMetaType(key)
		if !ok {
			return errors.Errorf("invalid consolidated metadata key: %q", key)
		}

		switch kt {
		case MTArray:
			arr := &ArrayMeta{}
			if err := json.Unmarshal(data, arr); err != nil {
				return errors.Wrapf(err, "reading %q metadata", key)
			}
			cm.Metadata[key] = arr
		case MTAttributes:
			attr := Attributes{}
			if err := json.Unmarshal(data, &attr); err != nil {
				return errors.Wrapf(err, "reading %q attributes", key)
			}
			cm.Metadata[key] = attr
		case MTGroup:
			grp := Group{}
			if err := json.Unmarshal(data, &grp); err != nil {
				return errors.Wrapf(err, "reading %q group", key)
			}
			cm.Metadata[key] = grp
		}
	}

	*m = cm
	return nil
}
