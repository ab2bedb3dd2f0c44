package kernel

// RegularizeRangeSlice clamps a start:stop pair against length for the given
// step direction. Absent bounds take the direction's defaults.
func RegularizeRangeSlice(start, stop int64, posstep, hasstart, hasstop bool, length int64) (int64, int64) {
	if posstep {
		if !hasstart {
			start = 0
		} else if start < 0 {
			start += length
		}
		if !hasstop {
			stop = length
		} else if stop < 0 {
			stop += length
		}
		if start < 0 {
			start = 0
		}
		if start > length {
			start = length
		}
		if stop < 0 {
			stop = 0
		}
		if stop > length {
			stop = length
		}
		if stop < start {
			stop = start
		}
		return start, stop
	}

	if !hasstart {
		start = length - 1
	} else if start < 0 {
		start += length
	}
	if !hasstop {
		stop = -1
	} else if stop < 0 {
		stop += length
	}
	if start < -1 {
		start = -1
	}
	if start > length-1 {
		start = length - 1
	}
	if stop < -1 {
		stop = -1
	}
	if stop > length-1 {
		stop = length - 1
	}
	if stop > start {
		stop = start
	}
	return start, stop
}

// RangeLength is the number of items a regularized start:stop:step visits.
func RangeLength(start, stop, step int64) int64 {
	numer := start - stop
	if numer < 0 {
		numer = -numer
	}
	denom := step
	if denom < 0 {
		denom = -denom
	}
	d, m := numer/denom, numer%denom
	if m != 0 {
		return d + 1
	}
	return d
}

// ZeroParents assigns every element to group 0.
func ZeroParents(toparents []int64) Error {
	for i := range toparents {
		toparents[i] = 0
	}
	return success()
}

// LocalIndex fills 0..len-1.
func LocalIndex(toindex []int64) Error {
	for i := range toindex {
		toindex[i] = int64(i)
	}
	return success()
}

// RpadAndClipAxis0 writes 0..length-1 followed by -1 up to target.
func RpadAndClipAxis0(toindex []int64, length int64) Error {
	target := int64(len(toindex))
	shorter := length
	if target < shorter {
		shorter = target
	}
	for i := int64(0); i < shorter; i++ {
		toindex[i] = i
	}
	for i := shorter; i < target; i++ {
		toindex[i] = -1
	}
	return success()
}

// RpadAxis1 pads (and optionally clips) every list to target, producing the
// new offsets and an option index into the original content.
func RpadAxis1(tooffsets, toindex []int64, starts, stops Ints, target int64, clip bool) Error {
	k := int64(0)
	tooffsets[0] = 0
	for i := 0; i < starts.Len(); i++ {
		start, stop := starts.Get(i), stops.Get(i)
		if stop < start {
			return failure("RpadAxis1", "stops[i] < starts[i]", int64(i), None)
		}
		count := stop - start
		width := target
		if !clip && count > target {
			width = count
		}
		for j := int64(0); j < width; j++ {
			if j < count {
				toindex[k] = start + j
			} else {
				toindex[k] = -1
			}
			k++
		}
		tooffsets[i+1] = k
	}
	return success()
}

// RpadAxis1Length returns the padded content length RpadAxis1 will need.
func RpadAxis1Length(starts, stops Ints, target int64, clip bool) int64 {
	var total int64
	for i := 0; i < starts.Len(); i++ {
		count := stops.Get(i) - starts.Get(i)
		if !clip && count > target {
			total += count
		} else {
			total += target
		}
	}
	return total
}

// LocalIndexAxis1 numbers the elements of each list from zero.
func LocalIndexAxis1(toindex []int64, offsets Ints) Error {
	for i := 0; i+1 < offsets.Len(); i++ {
		start, stop := offsets.Get(i), offsets.Get(i+1)
		if stop < start {
			return failure("LocalIndexAxis1", "offsets must be monotonically increasing", int64(i), None)
		}
		for j := start; j < stop; j++ {
			toindex[j-offsets.Get(0)] = j - start
		}
	}
	return success()
}

// CombinationsCount is the number of n-combinations of size elements.
func CombinationsCount(n int64, replacement bool, size int64) int64 {
	if replacement {
		size += n - 1
	}
	thisn := n
	switch {
	case thisn > size:
		return 0
	case thisn == size:
		return 1
	}
	if thisn*2 > size {
		thisn = size - thisn
	}
	out := size
	for j := int64(2); j <= thisn; j++ {
		out *= size - j + 1
		out /= j
	}
	return out
}

// Combinations writes every n-combination of 0..size-1, in lexicographic
// order, column-wise into tocarry (one slice per position).
func Combinations(tocarry [][]int64, replacement bool, size int64) Error {
	n := len(tocarry)
	if n == 0 {
		return success()
	}
	want := int64(len(tocarry[0]))
	current := make([]int64, n)
	for j := range current {
		if replacement {
			current[j] = 0
		} else {
			current[j] = int64(j)
		}
	}
	var k int64
	for {
		if n > 0 && current[n-1] >= size {
			break
		}
		if k >= want {
			return failure("Combinations", "more combinations than allocated", None, k)
		}
		for j := 0; j < n; j++ {
			tocarry[j][k] = current[j]
		}
		k++

		// advance the rightmost position that still has room
		j := n - 1
		for j >= 0 {
			current[j]++
			limit := size - int64(n-1-j)
			if replacement {
				limit = size
			}
			if current[j] < limit {
				break
			}
			j--
		}
		if j < 0 {
			break
		}
		for m := j + 1; m < n; m++ {
			if replacement {
				current[m] = current[j]
			} else {
				current[m] = current[m-1] + 1
			}
		}
	}
	if k != want {
		return failure("Combinations", "fewer combinations than allocated", None, k)
	}
	return success()
}

// UnionFillTagsConst writes tag into totags[offset:offset+length].
func UnionFillTagsConst(totags []int8, offset, length int64, tag int8) Error {
	for i := int64(0); i < length; i++ {
		totags[offset+i] = tag
	}
	return success()
}

// UnionFillIndexCount writes 0..length-1 into toindex[offset:offset+length].
func UnionFillIndexCount(toindex []int64, offset, length int64) Error {
	for i := int64(0); i < length; i++ {
		toindex[offset+i] = i
	}
	return success()
}

// MissingRepeat spreads an option-type selection index over repetitions rows
// of a regular dimension of the given size.
func MissingRepeat(outindex []int64, index Ints, repetitions, regularsize int64) Error {
	n := int64(index.Len())
	for i := int64(0); i < repetitions; i++ {
		for j := int64(0); j < n; j++ {
			base := index.Get(int(j))
			if base >= 0 {
				base += i * regularsize
			}
			outindex[i*n+j] = base
		}
	}
	return success()
}

// SliceMissingCheckSame reports whether the missing positions of a slice
// coincide with a bytemask of the array being sliced.
func SliceMissingCheckSame(bytemask, missingindex Ints) (bool, Error) {
	if bytemask.Len() != missingindex.Len() {
		return false, success()
	}
	for i := 0; i < bytemask.Len(); i++ {
		left := bytemask.Get(i) != 0
		right := missingindex.Get(i) < 0
		if left != right {
			return false, success()
		}
	}
	return true, success()
}
