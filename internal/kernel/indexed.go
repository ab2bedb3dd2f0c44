package kernel

// IndexedNumNull counts negative (missing) entries.
func IndexedNumNull(index Ints) int64 {
	var n int64
	for i := 0; i < index.Len(); i++ {
		if index.Get(i) < 0 {
			n++
		}
	}
	return n
}

// IndexedGetitemNextCarry checks a non-option index and copies it as a carry.
func IndexedGetitemNextCarry(tocarry []int64, index Ints, lencontent int64) Error {
	for i := 0; i < index.Len(); i++ {
		j := index.Get(i)
		if j < 0 || j >= lencontent {
			return failure("IndexedGetitemNextCarry", "index out of range", int64(i), j)
		}
		tocarry[i] = j
	}
	return success()
}

// IndexedGetitemNextCarryOutIndex splits an option index into a carry over
// the valid entries and an outindex that reinserts the missing ones.
func IndexedGetitemNextCarryOutIndex(tocarry, outindex []int64, index Ints, lencontent int64) Error {
	k := int64(0)
	for i := 0; i < index.Len(); i++ {
		j := index.Get(i)
		if j >= lencontent {
			return failure("IndexedGetitemNextCarryOutIndex", "index out of range", int64(i), j)
		}
		if j < 0 {
			outindex[i] = -1
			continue
		}
		tocarry[k] = j
		outindex[i] = k
		k++
	}
	return success()
}

// IndexedGetitemCarry gathers an index by a carry.
func IndexedGetitemCarry(toindex []int64, fromindex Ints, fromcarry Ints) Error {
	for i := 0; i < fromcarry.Len(); i++ {
		c := fromcarry.Get(i)
		if c < 0 || c >= int64(fromindex.Len()) {
			return failure("IndexedGetitemCarry", "index out of range", int64(i), c)
		}
		toindex[i] = fromindex.Get(int(c))
	}
	return success()
}

// IndexedSimplify composes an outer option index with an inner one.
func IndexedSimplify(toindex []int64, outerindex, innerindex Ints) Error {
	for i := 0; i < outerindex.Len(); i++ {
		j := outerindex.Get(i)
		if j < 0 {
			toindex[i] = -1
			continue
		}
		if j >= int64(innerindex.Len()) {
			return failure("IndexedSimplify", "index out of range", int64(i), j)
		}
		toindex[i] = innerindex.Get(int(j))
	}
	return success()
}

// IndexedReduceNext drops missing entries before a reduction, carrying their
// parents along and recording where the survivors land.
func IndexedReduceNext(nextcarry, nextparents, outindex []int64, index, parents Ints) Error {
	k := int64(0)
	for i := 0; i < index.Len(); i++ {
		j := index.Get(i)
		if j < 0 {
			outindex[i] = -1
			continue
		}
		nextcarry[k] = j
		nextparents[k] = parents.Get(i)
		outindex[i] = k
		k++
	}
	return success()
}

// IndexedJaggedProject keeps the jagged slice rows of non-missing entries.
func IndexedJaggedProject(tostarts, tostops []int64, index, slicestarts, slicestops Ints) Error {
	k := 0
	for i := 0; i < index.Len(); i++ {
		if index.Get(i) < 0 {
			continue
		}
		tostarts[k] = slicestarts.Get(i)
		tostops[k] = slicestops.Get(i)
		k++
	}
	return success()
}

// IndexedValidity checks index values against the content length; option
// indexes may also hold negative values.
func IndexedValidity(index Ints, lencontent int64, isOption bool) Error {
	for i := 0; i < index.Len(); i++ {
		j := index.Get(i)
		if !isOption && j < 0 {
			return failure("IndexedValidity", "index[i] < 0", int64(i), j)
		}
		if j >= lencontent {
			return failure("IndexedValidity", "index[i] >= len(content)", int64(i), j)
		}
	}
	return success()
}

// IndexedByteMask marks missing entries with 1.
func IndexedByteMask(tomask []int8, index Ints) Error {
	for i := 0; i < index.Len(); i++ {
		if index.Get(i) < 0 {
			tomask[i] = 1
		} else {
			tomask[i] = 0
		}
	}
	return success()
}
