package jagged

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/qri-io/jagged/internal/kernel"
)

// UnionArray holds heterogeneous elements: element i is
// contents[tags[i]][index[i]].
type UnionArray struct {
	base
	tags     Index
	index    Index
	contents []Content
}

// NewUnionArray wraps i8 tags, an index and the branches without copying.
func NewUnionArray(tags, index Index, contents []Content) *UnionArray {
	return &UnionArray{tags: tags, index: index, contents: contents}
}

func (u *UnionArray) ClassName() string {
	return "UnionArray8_" + indexSuffix(u.index.Form())
}

func (u *UnionArray) Length() int           { return u.tags.Len() }
func (u *UnionArray) Tags() Index           { return u.tags }
func (u *UnionArray) Index() Index          { return u.index }
func (u *UnionArray) NumContents() int      { return len(u.contents) }
func (u *UnionArray) Content(i int) Content { return u.contents[i] }
func (u *UnionArray) Contents() []Content   { return append([]Content(nil), u.contents...) }

func (u *UnionArray) Form() Form {
	return &UnionForm{FormInfo: u.info(""), Tags: u.tags.Form(), Index: u.index.Form(), Contents: formsOf(u.contents)}
}

func (u *UnionArray) ShallowCopy() Content {
	out := *u
	return &out
}

func (u *UnionArray) withParameters(p Parameters) Content {
	out := *u
	out.params = p
	return &out
}

func (u *UnionArray) withIdentities(id *Identities) Content {
	out := *u
	out.id = id
	return &out
}

func (u *UnionArray) GetItemAt(at int) (Content, error) { return getItemAt(u, at) }

func (u *UnionArray) GetItemAtNowrap(at int) (Content, error) {
	tag, index := u.tags.Get(at), u.index.Get(at)
	if tag < 0 || tag >= int64(len(u.contents)) {
		return nil, handleError(kernel.Error{Str: "not 0 <= tag[i] < numcontents", Kernel: "UnionArrayGetitemAt", Identity: int64(at), Attempt: tag}, u.ClassName(), u.id)
	}
	content := u.contents[tag]
	if index < 0 || index >= int64(content.Length()) {
		return nil, handleError(kernel.Error{Str: "index[i] > len(content(tag))", Kernel: "UnionArrayGetitemAt", Identity: int64(at), Attempt: index}, u.ClassName(), u.id)
	}
	return content.GetItemAtNowrap(int(index))
}

func (u *UnionArray) GetItemRange(start, stop int) (Content, error) {
	return getItemRange(u, start, stop)
}

func (u *UnionArray) GetItemRangeNowrap(start, stop int) (Content, error) {
	out := NewUnionArray(u.tags.GetItemRangeNowrap(start, stop), u.index.GetItemRangeNowrap(start, stop), u.contents)
	out.id, out.params = u.identitiesRange(start, stop), u.params
	return out, nil
}

func (u *UnionArray) GetItemField(key string) (Content, error) {
	contents := make([]Content, len(u.contents))
	for i, c := range u.contents {
		next, err := c.GetItemField(key)
		if err != nil {
			return nil, err
		}
		contents[i] = next
	}
	return NewUnionArray(u.tags, u.index, contents), nil
}

func (u *UnionArray) GetItemFields(keys []string) (Content, error) {
	contents := make([]Content, len(u.contents))
	for i, c := range u.contents {
		next, err := c.GetItemFields(keys)
		if err != nil {
			return nil, err
		}
		contents[i] = next
	}
	return NewUnionArray(u.tags, u.index, contents), nil
}

func (u *UnionArray) Carry(carry Index, allowLazy bool) (Content, error) {
	n := carry.Len()
	tags := make([]int8, n)
	index := make([]int64, n)
	for i := 0; i < n; i++ {
		c := carry.Get(i)
		if c < 0 || c >= int64(u.Length()) {
			return nil, handleError(kernel.Error{Str: "index out of range", Kernel: "UnionArrayGetitemCarry", Identity: int64(i), Attempt: c}, u.ClassName(), u.id)
		}
		tags[i] = int8(u.tags.Get(int(c)))
		index[i] = u.index.Get(int(c))
	}
	id, err := u.id.carry(carry)
	if err != nil {
		return nil, err
	}
	out := NewUnionArray(NewIndex8(tags), NewIndex64(index), u.contents)
	out.id, out.params = id, u.params
	return out, nil
}

// Project gathers the elements of branch which, in order.
func (u *UnionArray) Project(which int) (Content, error) {
	tocarry, _, err := u.project(which, false)
	if err != nil {
		return nil, err
	}
	return u.contents[which].Carry(tocarry, false)
}

// project returns the index values of branch which and, with positions, the
// positions they came from.
func (u *UnionArray) project(which int, positions bool) (Index, []int64, error) {
	if which < 0 || which >= len(u.contents) {
		return Index{}, nil, validationErr(u.ClassName(), "index %d out of range for union with %d contents", which, len(u.contents))
	}
	n := kernel.UnionCountTag(u.tags, int64(which))
	tocarry, data := int64Index(int(n))
	var pos []int64
	if positions {
		pos = make([]int64, n)
	}
	if err := handleError(kernel.UnionProject(data, pos, u.tags, u.index, int64(which)), u.ClassName(), u.id); err != nil {
		return Index{}, nil, err
	}
	return tocarry, pos, nil
}

// Simplify flattens unions nested in this one's branches and collapses a
// union with a single branch into that branch.
func (u *UnionArray) Simplify() (Content, error) {
	var contents []Content
	mapping := make([][]int8, len(u.contents))
	for i, c := range u.contents {
		if inner, ok := c.(*UnionArray); ok {
			for _, ic := range inner.contents {
				mapping[i] = append(mapping[i], int8(len(contents)))
				contents = append(contents, ic)
			}
			continue
		}
		mapping[i] = []int8{int8(len(contents))}
		contents = append(contents, c)
	}

	n := u.Length()
	tags := make([]int8, n)
	index := make([]int64, n)
	for at := 0; at < n; at++ {
		t, j := u.tags.Get(at), u.index.Get(at)
		if t < 0 || t >= int64(len(u.contents)) {
			return nil, handleError(kernel.Error{Str: "not 0 <= tag[i] < numcontents", Kernel: "UnionArraySimplify", Identity: int64(at), Attempt: t}, u.ClassName(), u.id)
		}
		inner, ok := u.contents[t].(*UnionArray)
		if !ok {
			tags[at], index[at] = mapping[t][0], j
			continue
		}
		if j < 0 || j >= int64(inner.Length()) {
			return nil, handleError(kernel.Error{Str: "index[i] > len(content(tag))", Kernel: "UnionArraySimplify", Identity: int64(at), Attempt: j}, u.ClassName(), u.id)
		}
		tags[at], index[at] = mapping[t][inner.tags.Get(int(j))], inner.index.Get(int(j))
	}

	if len(contents) == 1 {
		out, err := contents[0].Carry(NewIndex64(index), false)
		if err != nil {
			return nil, err
		}
		if len(u.params) > 0 {
			out = out.withParameters(u.params)
		}
		return out, nil
	}
	out := NewUnionArray(NewIndex8(tags), NewIndex64(index), contents)
	out.id, out.params = u.id, u.params
	return out, nil
}

func (u *UnionArray) getitemNext(head SliceItem, tail Slice, advanced Index) (Content, error) {
	switch head.(type) {
	case SliceAt, SliceRange, SliceArray, SliceJagged:
	default:
		return getitemNextCommon(u, head, tail, advanced)
	}
	outcontents := make([]Content, len(u.contents))
	for i := range u.contents {
		tocarry, positions, err := u.project(i, advanced.Len() > 0)
		if err != nil {
			return nil, err
		}
		projection, err := u.contents[i].Carry(tocarry, false)
		if err != nil {
			return nil, err
		}
		branchAdvanced := advanced
		if advanced.Len() > 0 {
			gathered := make([]int64, len(positions))
			for k, p := range positions {
				gathered[k] = advanced.Get(int(p))
			}
			branchAdvanced = NewIndex64(gathered)
		}
		if outcontents[i], err = projection.getitemNext(head, tail, branchAdvanced); err != nil {
			return nil, err
		}
	}
	outindex, data := int64Index(u.Length())
	if err := handleError(kernel.UnionRegularIndex(data, u.tags, len(u.contents)), u.ClassName(), u.id); err != nil {
		return nil, err
	}
	out := NewUnionArray(u.tags, outindex, outcontents)
	out.params = u.params
	return out.Simplify()
}

func (u *UnionArray) getitemNextJagged(Index, Index, SliceItem, Slice) (Content, error) {
	return nil, unhandledErr(u.ClassName(), "cannot apply jagged slices to irreducible union arrays")
}

func (u *UnionArray) getitemNothing() (Content, error) {
	return u.GetItemRangeNowrap(0, 0)
}

// reduceNext reduces a union whose branches are all one-dimensional leaves,
// or all lists of one-dimensional leaves, by merging the branches first.
func (u *UnionArray) reduceNext(r Reducer, negaxis int, starts, parents Index, outlength int, mask, keepdims bool) (Content, error) {
	simplified, err := u.Simplify()
	if err != nil {
		return nil, err
	}
	if _, ok := simplified.(*UnionArray); !ok {
		return simplified.reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
	}
	merged, err := u.mergeBranches()
	if err != nil {
		return nil, err
	}
	return merged.reduceNext(r, negaxis, starts, parents, outlength, mask, keepdims)
}

func (u *UnionArray) mergeBranches() (Content, error) {
	leaves := make([]*NumpyArray, len(u.contents))
	lists := make([]*ListArray, len(u.contents))
	for i, c := range u.contents {
		if leaf, ok := c.(*NumpyArray); ok && leaf.NDim() == 1 {
			leaves[i] = leaf
			continue
		}
		list, ok := asListArray(c)
		if !ok {
			return nil, unhandledErr(u.ClassName(), "cannot reduce a union containing %s", c.ClassName())
		}
		leaf, ok := list.content.(*NumpyArray)
		if !ok || leaf.NDim() != 1 {
			return nil, unhandledErr(u.ClassName(), "cannot reduce a union of lists of %s", list.content.ClassName())
		}
		lists[i], leaves[i] = list, leaf
	}

	merged, bases, err := concatLeaves(leaves)
	if err != nil {
		return nil, err
	}
	n := u.Length()
	if lists[0] == nil {
		carry := make([]int64, n)
		for at := 0; at < n; at++ {
			t := u.tags.Get(at)
			if lists[t] != nil {
				return nil, unhandledErr(u.ClassName(), "cannot reduce a union mixing lists and leaves")
			}
			carry[at] = int64(bases[t]) + u.index.Get(at)
		}
		return merged.Carry(NewIndex64(carry), false)
	}
	starts := make([]int64, n)
	stops := make([]int64, n)
	for at := 0; at < n; at++ {
		t := u.tags.Get(at)
		list := lists[t]
		if list == nil {
			return nil, unhandledErr(u.ClassName(), "cannot reduce a union mixing lists and leaves")
		}
		j := int(u.index.Get(at))
		starts[at] = int64(bases[t]) + list.starts.Get(j)
		stops[at] = int64(bases[t]) + list.stops.Get(j)
	}
	return NewListArray(NewIndex64(starts), NewIndex64(stops), merged), nil
}

// asListArray expresses any list-type node as a ListArray.
func asListArray(c Content) (*ListArray, bool) {
	switch x := c.(type) {
	case *ListArray:
		return x, true
	case *ListOffsetArray:
		return x.toListArray(), true
	case *RegularArray:
		return x.ToListOffsetArray64().toListArray(), true
	}
	return nil, false
}

// concatLeaves joins one-dimensional leaves into one array of their common
// type, returning where each part starts.
func concatLeaves(parts []*NumpyArray) (*NumpyArray, []int, error) {
	out := parts[0].Primitive()
	for _, p := range parts[1:] {
		out = commonPrimitive(out, p.Primitive())
	}
	all := widened{kind: out.Kind()}
	bases := make([]int, len(parts))
	total := 0
	for i, p := range parts {
		w, err := p.widen()
		if err != nil {
			return nil, nil, err
		}
		w = w.as(all.kind)
		bases[i] = total
		total += p.Length()
		all.ints = append(all.ints, w.ints...)
		all.uints = append(all.uints, w.uints...)
		all.floats = append(all.floats, w.floats...)
	}
	return all.toNumpy(out), bases, nil
}

// commonPrimitive is the type two leaves merge into.
func commonPrimitive(a, b Primitive) Primitive {
	switch {
	case a == b:
		return a
	case a.Kind() == BTFloatingPoint || b.Kind() == BTFloatingPoint:
		return Float64
	case a.Kind() == BTUnsigned && b.Kind() == BTUnsigned:
		return Uint64
	}
	return Int64
}

// as converts the values to kind.
func (w widened) as(kind BasicType) widened {
	if w.kind == kind {
		return w
	}
	out := widened{kind: kind}
	n := len(w.ints) + len(w.uints) + len(w.floats)
	for i := 0; i < n; i++ {
		var f float64
		var v int64
		var uv uint64
		switch {
		case w.ints != nil:
			v, uv, f = w.ints[i], uint64(w.ints[i]), float64(w.ints[i])
		case w.uints != nil:
			v, uv, f = int64(w.uints[i]), w.uints[i], float64(w.uints[i])
		default:
			v, uv, f = int64(w.floats[i]), uint64(w.floats[i]), w.floats[i]
		}
		switch kind {
		case BTFloatingPoint:
			out.floats = append(out.floats, f)
		case BTUnsigned:
			out.uints = append(out.uints, uv)
		default:
			out.ints = append(out.ints, v)
		}
	}
	return out
}

func (u *UnionArray) nbytesPart(largest map[uintptr]int) {
	u.tags.nbytesPart(largest)
	u.index.nbytesPart(largest)
	for _, c := range u.contents {
		c.nbytesPart(largest)
	}
	u.id.nbytesPart(largest)
}

func (u *UnionArray) validityError(path string) error {
	if u.tags.Form() != IndexI8 {
		return validityErr(u.ClassName(), path, "tags must be i8, not %s", u.tags.Form())
	}
	lencontents := make([]int64, len(u.contents))
	for i, c := range u.contents {
		lencontents[i] = int64(c.Length())
	}
	if err := kernelValidity(kernel.UnionValidity(u.tags, u.index, lencontents), u, path); err != nil {
		return err
	}
	if err := identitiesValidity(u, path); err != nil {
		return err
	}
	for i, c := range u.contents {
		if err := c.validityError(path + ".content(" + strconv.Itoa(i) + ")"); err != nil {
			return err
		}
	}
	return nil
}

func (u *UnionArray) writeJSON(s *jsoniter.Stream, maxdecimals int) error {
	return writeElements(s, u, maxdecimals)
}
