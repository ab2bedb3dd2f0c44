package kernel

// UnionRegularIndex numbers the elements of each tag in order of appearance.
func UnionRegularIndex(toindex []int64, tags Ints, numcontents int) Error {
	counts := make([]int64, numcontents)
	for i := 0; i < tags.Len(); i++ {
		t := tags.Get(i)
		if t < 0 || t >= int64(numcontents) {
			return failure("UnionRegularIndex", "tag out of range", int64(i), t)
		}
		toindex[i] = counts[t]
		counts[t]++
	}
	return success()
}

// UnionCountTag counts the elements whose tag is which.
func UnionCountTag(tags Ints, which int64) int64 {
	var n int64
	for i := 0; i < tags.Len(); i++ {
		if tags.Get(i) == which {
			n++
		}
	}
	return n
}

// UnionProject collects the index values (and positions) of the elements
// whose tag is which.
func UnionProject(tocarry, topositions []int64, tags, index Ints, which int64) Error {
	k := 0
	for i := 0; i < tags.Len(); i++ {
		if tags.Get(i) != which {
			continue
		}
		if k >= len(tocarry) {
			return failure("UnionProject", "more tagged elements than allocated", int64(i), which)
		}
		tocarry[k] = index.Get(i)
		if topositions != nil {
			topositions[k] = int64(i)
		}
		k++
	}
	return success()
}

// UnionValidity checks tags against the number of contents and index values
// against each content's length.
func UnionValidity(tags, index Ints, lencontents []int64) Error {
	if index.Len() < tags.Len() {
		return failure("UnionValidity", "len(index) < len(tags)", None, None)
	}
	for i := 0; i < tags.Len(); i++ {
		t := tags.Get(i)
		if t < 0 {
			return failure("UnionValidity", "tags[i] < 0", int64(i), t)
		}
		if t >= int64(len(lencontents)) {
			return failure("UnionValidity", "tags[i] >= len(contents)", int64(i), t)
		}
		j := index.Get(i)
		if j < 0 {
			return failure("UnionValidity", "index[i] < 0", int64(i), j)
		}
		if j >= lencontents[t] {
			return failure("UnionValidity", "index[i] >= len(content[tags[i]])", int64(i), j)
		}
	}
	return success()
}
