package kernel

// Number is the set of widened element types the reducer loops run on.
type Number interface {
	~int64 | ~uint64 | ~float64
}

// ReduceLocalNextParents assigns each content element the index of the list
// that holds it.
func ReduceLocalNextParents(nextparents []int64, offsets Ints) Error {
	base := offsets.Get(0)
	for i := 0; i+1 < offsets.Len(); i++ {
		start, stop := offsets.Get(i), offsets.Get(i+1)
		if stop < start {
			return failure("ReduceLocalNextParents", "offsets must be monotonically increasing", int64(i), None)
		}
		for j := start; j < stop; j++ {
			nextparents[j-base] = int64(i)
		}
	}
	return success()
}

// ReduceLocalOutOffsets counts the lists that fall into each parent group.
func ReduceLocalOutOffsets(outoffsets []int64, parents Ints) Error {
	outlength := int64(len(outoffsets) - 1)
	for i := range outoffsets {
		outoffsets[i] = 0
	}
	for i := 0; i < parents.Len(); i++ {
		p := parents.Get(i)
		if p < 0 || p >= outlength {
			return failure("ReduceLocalOutOffsets", "parent out of range", int64(i), p)
		}
		outoffsets[p+1]++
	}
	for i := int64(0); i < outlength; i++ {
		outoffsets[i+1] += outoffsets[i]
	}
	return success()
}

// Nonlocal describes how a list level regroups its content when the
// reduction runs across the list dimension itself.
type Nonlocal struct {
	MaxCount    int64
	NextCarry   []int64
	NextParents []int64
	NextStarts  []int64
	OutStarts   []int64
	OutStops    []int64
}

// ReduceNonlocal groups element j of every list in parent p into slot
// p*maxcount+j, ordering the carry by slot.
func ReduceNonlocal(offsets, parents Ints, outlength int64) (Nonlocal, Error) {
	n := parents.Len()
	var out Nonlocal
	if offsets.Len() != n+1 {
		return out, failure("ReduceNonlocal", "len(offsets) != len(parents) + 1", None, None)
	}
	for i := 0; i < n; i++ {
		count := offsets.Get(i+1) - offsets.Get(i)
		if count < 0 {
			return out, failure("ReduceNonlocal", "offsets must be monotonically increasing", int64(i), None)
		}
		if count > out.MaxCount {
			out.MaxCount = count
		}
	}
	nslots := outlength * out.MaxCount
	slotcounts := make([]int64, nslots+1)
	maxlen := make([]int64, outlength)
	for i := 0; i < n; i++ {
		p := parents.Get(i)
		if p < 0 || p >= outlength {
			return out, failure("ReduceNonlocal", "parent out of range", int64(i), p)
		}
		count := offsets.Get(i+1) - offsets.Get(i)
		if count > maxlen[p] {
			maxlen[p] = count
		}
		for j := int64(0); j < count; j++ {
			slotcounts[p*out.MaxCount+j+1]++
		}
	}
	for s := int64(0); s < nslots; s++ {
		slotcounts[s+1] += slotcounts[s]
	}

	total := offsets.Get(n) - offsets.Get(0)
	out.NextCarry = make([]int64, total)
	out.NextParents = make([]int64, total)
	out.NextStarts = make([]int64, nslots)
	copy(out.NextStarts, slotcounts[:nslots])
	fill := make([]int64, nslots)
	copy(fill, slotcounts[:nslots])
	for i := 0; i < n; i++ {
		p := parents.Get(i)
		start := offsets.Get(i)
		count := offsets.Get(i+1) - start
		for j := int64(0); j < count; j++ {
			slot := p*out.MaxCount + j
			out.NextCarry[fill[slot]] = start + j
			out.NextParents[fill[slot]] = slot
			fill[slot]++
		}
	}

	out.OutStarts = make([]int64, outlength)
	out.OutStops = make([]int64, outlength)
	for p := int64(0); p < outlength; p++ {
		out.OutStarts[p] = p * out.MaxCount
		out.OutStops[p] = p*out.MaxCount + maxlen[p]
	}
	return out, success()
}

// ReduceMask marks the groups that received no elements.
func ReduceMask(tomask []int8, parents Ints) Error {
	for i := range tomask {
		tomask[i] = 1
	}
	for i := 0; i < parents.Len(); i++ {
		p := parents.Get(i)
		if p < 0 || p >= int64(len(tomask)) {
			return failure("ReduceMask", "parent out of range", int64(i), p)
		}
		tomask[p] = 0
	}
	return success()
}

func checkParent(name string, i int, p int64, outlength int) Error {
	if p < 0 || p >= int64(outlength) {
		return failure(name, "parent out of range", int64(i), p)
	}
	return success()
}

// ReduceCount counts the elements of each group.
func ReduceCount(out []int64, parents Ints) Error {
	for i := 0; i < parents.Len(); i++ {
		p := parents.Get(i)
		if err := checkParent("ReduceCount", i, p, len(out)); !err.Ok() {
			return err
		}
		out[p]++
	}
	return success()
}

// ReduceCountNonzero counts the non-zero elements of each group.
func ReduceCountNonzero[T Number](out []int64, data []T, parents Ints) Error {
	for i, v := range data {
		p := parents.Get(i)
		if err := checkParent("ReduceCountNonzero", i, p, len(out)); !err.Ok() {
			return err
		}
		if v != 0 {
			out[p]++
		}
	}
	return success()
}

// ReduceSum adds the elements of each group into out (pre-filled with 0).
func ReduceSum[T Number](out []T, data []T, parents Ints) Error {
	for i, v := range data {
		p := parents.Get(i)
		if err := checkParent("ReduceSum", i, p, len(out)); !err.Ok() {
			return err
		}
		out[p] += v
	}
	return success()
}

// ReduceProd multiplies the elements of each group into out (pre-filled
// with 1).
func ReduceProd[T Number](out []T, data []T, parents Ints) Error {
	for i, v := range data {
		p := parents.Get(i)
		if err := checkParent("ReduceProd", i, p, len(out)); !err.Ok() {
			return err
		}
		out[p] *= v
	}
	return success()
}

// ReduceMin keeps the smallest element of each group; out is pre-filled with
// the identity.
func ReduceMin[T Number](out []T, data []T, parents Ints) Error {
	for i, v := range data {
		p := parents.Get(i)
		if err := checkParent("ReduceMin", i, p, len(out)); !err.Ok() {
			return err
		}
		if v < out[p] {
			out[p] = v
		}
	}
	return success()
}

// ReduceMax keeps the largest element of each group; out is pre-filled with
// the identity.
func ReduceMax[T Number](out []T, data []T, parents Ints) Error {
	for i, v := range data {
		p := parents.Get(i)
		if err := checkParent("ReduceMax", i, p, len(out)); !err.Ok() {
			return err
		}
		if v > out[p] {
			out[p] = v
		}
	}
	return success()
}

// ReduceAny sets out[p] when any element of group p is non-zero.
func ReduceAny[T Number](out []bool, data []T, parents Ints) Error {
	for i, v := range data {
		p := parents.Get(i)
		if err := checkParent("ReduceAny", i, p, len(out)); !err.Ok() {
			return err
		}
		if v != 0 {
			out[p] = true
		}
	}
	return success()
}

// ReduceAll clears out[p] when any element of group p is zero; out is
// pre-filled with true.
func ReduceAll[T Number](out []bool, data []T, parents Ints) Error {
	for i, v := range data {
		p := parents.Get(i)
		if err := checkParent("ReduceAll", i, p, len(out)); !err.Ok() {
			return err
		}
		if v == 0 {
			out[p] = false
		}
	}
	return success()
}

// ReduceArgMin writes the position of each group's smallest element relative
// to the group's start, or -1 for empty groups.
func ReduceArgMin[T Number](out []int64, data []T, starts, parents Ints) Error {
	return reduceArg("ReduceArgMin", out, data, starts, parents, func(a, b T) bool { return a < b })
}

// ReduceArgMax writes the position of each group's largest element relative
// to the group's start, or -1 for empty groups.
func ReduceArgMax[T Number](out []int64, data []T, starts, parents Ints) Error {
	return reduceArg("ReduceArgMax", out, data, starts, parents, func(a, b T) bool { return a > b })
}

func reduceArg[T Number](name string, out []int64, data []T, starts, parents Ints, better func(a, b T) bool) Error {
	best := make([]int, len(out))
	for p := range out {
		out[p] = -1
		best[p] = -1
	}
	for i, v := range data {
		p := parents.Get(i)
		if err := checkParent(name, i, p, len(out)); !err.Ok() {
			return err
		}
		if best[p] < 0 || better(v, data[best[p]]) {
			best[p] = i
		}
	}
	for p := range out {
		if best[p] < 0 {
			continue
		}
		var start int64
		if p < starts.Len() {
			start = starts.Get(p)
		}
		out[p] = int64(best[p]) - start
	}
	return success()
}
