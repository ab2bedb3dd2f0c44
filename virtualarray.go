package jagged

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Generator produces the array behind a VirtualArray.
type Generator interface {
	// Form is the expected layout, or nil when it is not known in advance.
	Form() Form
	// Length is the expected length, or -1 when it is not known in advance.
	Length() int
	Generate() (Content, error)
}

// FuncGenerator calls a function to produce the array.
type FuncGenerator struct {
	form   Form
	length int
	fn     func() (Content, error)
}

// NewFuncGenerator wraps fn; form may be nil and length may be -1.
func NewFuncGenerator(fn func() (Content, error), form Form, length int) *FuncGenerator {
	return &FuncGenerator{form: form, length: length, fn: fn}
}

func (g *FuncGenerator) Form() Form                 { return g.form }
func (g *FuncGenerator) Length() int                { return g.length }
func (g *FuncGenerator) Generate() (Content, error) { return g.fn() }

// SliceGenerator produces a range of another VirtualArray.
type SliceGenerator struct {
	array       *VirtualArray
	start, stop int
}

func NewSliceGenerator(array *VirtualArray, start, stop int) *SliceGenerator {
	return &SliceGenerator{array: array, start: start, stop: stop}
}

func (g *SliceGenerator) Form() Form  { return g.array.generator.Form() }
func (g *SliceGenerator) Length() int { return g.stop - g.start }

func (g *SliceGenerator) Generate() (Content, error) {
	inner, err := g.array.Array()
	if err != nil {
		return nil, err
	}
	return inner.GetItemRangeNowrap(g.start, g.stop)
}

// VirtualArray is an array whose contents are produced on first use. The
// result is checked against the generator's form and length and, given a
// cache, kept for later calls; without one every use regenerates it.
type VirtualArray struct {
	base
	generator Generator
	cache     ArrayCache
	cacheKey  string
}

// NewVirtualArray makes a lazy array over g. cache may be nil.
func NewVirtualArray(g Generator, cache ArrayCache) *VirtualArray {
	return &VirtualArray{generator: g, cache: cache, cacheKey: newCacheKey(g.Form())}
}

// newCacheKey is unique per VirtualArray and names the expected layout, so
// that arrays of different forms never share an entry.
func newCacheKey(f Form) string {
	var sum uint64
	if f != nil {
		sum = xxhash.Sum64String(f.ToJSON(false, true))
	}
	return uuid.NewString() + ":" + strconv.FormatUint(sum, 16)
}

func (v *VirtualArray) ClassName() string    { return "VirtualArray" }
func (v *VirtualArray) Generator() Generator { return v.generator }
func (v *VirtualArray) Cache() ArrayCache    { return v.cache }
func (v *VirtualArray) CacheKey() string     { return v.cacheKey }

// Length is the generator's length when known; otherwise the array is
// materialized, and a failing generator reports 0.
func (v *VirtualArray) Length() int {
	if n := v.generator.Length(); n >= 0 {
		return n
	}
	out, err := v.Array()
	if err != nil {
		return 0
	}
	return out.Length()
}

func (v *VirtualArray) Form() Form {
	return &VirtualForm{FormInfo: v.info(""), Form: v.generator.Form(), HasLength: v.generator.Length() >= 0}
}

func (v *VirtualArray) ShallowCopy() Content {
	out := *v
	return &out
}

func (v *VirtualArray) withParameters(p Parameters) Content {
	out := *v
	out.params = p
	return &out
}

func (v *VirtualArray) withIdentities(id *Identities) Content {
	out := *v
	out.id = id
	return &out
}

// Peek returns the cached array without generating it.
func (v *VirtualArray) Peek() (Content, bool) {
	if v.cache == nil {
		return nil, false
	}
	return v.cache.Get(v.cacheKey)
}

// Array materializes the array.
func (v *VirtualArray) Array() (Content, error) {
	if out, ok := v.Peek(); ok {
		return out, nil
	}
	out, err := v.generator.Generate()
	if err != nil {
		return nil, errors.Wrapf(err, "generating virtual array %s", v.cacheKey)
	}
	if out == nil {
		return nil, validationErr(v.ClassName(), "generator returned no array")
	}
	if f := v.generator.Form(); f != nil && !Conforms(out, f) {
		return nil, validationErr(v.ClassName(), "generated array does not conform to expected form:\n\n%s\n\nexpected:\n\n%s", out.Form().ToJSON(true, false), f.ToJSON(true, false))
	}
	if n := v.generator.Length(); n >= 0 && out.Length() != n {
		return nil, validationErr(v.ClassName(), "generated array does not have the expected length: %d but expected %d", out.Length(), n)
	}
	if v.cache != nil {
		v.cache.Put(v.cacheKey, out)
	}
	return out, nil
}

func (v *VirtualArray) GetItemAt(at int) (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.GetItemAt(at)
}

func (v *VirtualArray) GetItemAtNowrap(at int) (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.GetItemAtNowrap(at)
}

func (v *VirtualArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(v, start, stop)
}

// GetItemRangeNowrap stays lazy until the array has been materialized into
// the cache.
func (v *VirtualArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	if out, ok := v.Peek(); ok {
		return out.GetItemRangeNowrap(start, stop)
	}
	out := NewVirtualArray(NewSliceGenerator(v, start, stop), v.cache)
	out.params = v.params
	return out, nil
}

func (v *VirtualArray) GetItemField(key string) (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.GetItemField(key)
}

func (v *VirtualArray) GetItemFields(keys []string) (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.GetItemFields(keys)
}

func (v *VirtualArray) Carry(carry Index, allowLazy bool) (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.Carry(carry, allowLazy)
}

func (v *VirtualArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.getitemNext(head, tail, advanced)
}

func (v *VirtualArray) getitemNextJagged(slicestarts, slicestops Index, slicecontent SliceItem, tail Slice) (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.getitemNextJagged(slicestarts, slicestops, slicecontent, tail)
}

func (v *VirtualArray) getitemNothing() (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.getitemNothing()
}

func (v *VirtualArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	out, err := v.Array()
	if err != nil {
		return nil, err
	}
	return out.reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
}

// nbytesPart counts only what is already materialized.
func (v *VirtualArray) nbytesPart(largest map[uintptr]int) {
	if out, ok := v.Peek(); ok {
		out.nbytesPart(largest)
	}
	v.id.nbytesPart(largest)
}

func (v *VirtualArray) validityError(path string) error {
	out, err := v.Array()
	if err != nil {
		return err
	}
	return out.validityError(path + ".array")
}

func (v *VirtualArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	out, err := v.Array()
	if err != nil {
		return err
	}
	return out.writeJSON(s, maxdecimals)
}
