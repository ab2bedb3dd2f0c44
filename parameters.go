package jagged

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
)

// Parameters is free-form metadata on a Content or Form node: keys map to
// JSON text. The "__array__" and "__record__" keys change how values are
// interpreted (e.g. "string" marks a list of uint8 as text).
type Parameters map[string]string

// canonical re-encodes JSON text with sorted object keys so two texts
// compare equal when they hold the same value.
var canonical = jsoniter.Config{SortMapKeys: true, UseNumber: true}.Froze()

// Get returns the JSON text under key, or "null" when absent.
func (p Parameters) Get(key string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return "null"
}

// With returns a copy with key set; a "null" value removes the key.
func (p Parameters) With(key, value string) Parameters {
	out := make(Parameters, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	if value == "null" {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out.normalized()
}

// Equals reports whether key holds value, compared as JSON values.
func (p Parameters) Equals(key, value string) bool {
	return jsonTextEqual(p.Get(key), value)
}

// Equal compares two parameter sets by structural JSON equality. Keys
// holding "null" are the same as absent keys.
func (p Parameters) Equal(other Parameters) bool {
	keys := map[string]struct{}{}
	for k := range p {
		keys[k] = struct{}{}
	}
	for k := range other {
		keys[k] = struct{}{}
	}
	for k := range keys {
		if !jsonTextEqual(p.Get(k), other.Get(k)) {
			return false
		}
	}
	return true
}

// IsString reports whether key holds a JSON string.
func (p Parameters) IsString(key string) bool {
	v, ok := p[key]
	if !ok {
		return false
	}
	return jsoniter.Get([]byte(v)).ValueType() == jsoniter.StringValue
}

// AsString returns the string held under key, or "" when it is not a string.
func (p Parameters) AsString(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	val := jsoniter.Get([]byte(v))
	if val.ValueType() != jsoniter.StringValue {
		return ""
	}
	return val.ToString()
}

// Keys returns the parameter names in sorted order.
func (p Parameters) Keys() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (p Parameters) normalized() Parameters {
	if len(p) == 0 {
		return nil
	}
	return p
}

func jsonTextEqual(a, b string) bool {
	if a == b {
		return true
	}
	ca, err := canonicalJSON(a)
	if err != nil {
		return false
	}
	cb, err := canonicalJSON(b)
	if err != nil {
		return false
	}
	return ca == cb
}

func canonicalJSON(text string) (string, error) {
	var v interface{}
	if err := canonical.UnmarshalFromString(text, &v); err != nil {
		return "", err
	}
	return canonical.MarshalToString(v)
}

// stringParameter builds the JSON text for a string value.
func stringParameter(s string) string {
	out, _ := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(s)
	return out
}
