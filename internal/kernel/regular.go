package kernel

// RegularGetitemNextAt selects position at (wrapped once) from every row.
func RegularGetitemNextAt(tocarry []int64, at, size int64) Error {
	regularAt := at
	if regularAt < 0 {
		regularAt += size
	}
	if !(0 <= regularAt && regularAt < size) {
		return failure("RegularGetitemNextAt", "index out of range", None, at)
	}
	for i := range tocarry {
		tocarry[i] = int64(i)*size + regularAt
	}
	return success()
}

// RegularGetitemNextRange selects start::step (nextsize items) from every row.
func RegularGetitemNextRange(tocarry []int64, start, step, length, size, nextsize int64) Error {
	for i := int64(0); i < length; i++ {
		for j := int64(0); j < nextsize; j++ {
			tocarry[i*nextsize+j] = i*size + start + j*step
		}
	}
	return success()
}

// RegularGetitemNextRangeSpreadAdvanced repeats each row's advanced index
// over the nextsize items selected from it.
func RegularGetitemNextRangeSpreadAdvanced(toadvanced []int64, fromadvanced Ints, length, nextsize int64) Error {
	for i := int64(0); i < length; i++ {
		for j := int64(0); j < nextsize; j++ {
			toadvanced[i*nextsize+j] = fromadvanced.Get(int(i))
		}
	}
	return success()
}

// RegularGetitemNextArrayRegularize wraps negative positions of an index
// array against size and checks bounds.
func RegularGetitemNextArrayRegularize(toarray []int64, fromarray Ints, size int64) Error {
	for j := 0; j < fromarray.Len(); j++ {
		v := fromarray.Get(j)
		if v < 0 {
			v += size
		}
		if !(0 <= v && v < size) {
			return failure("RegularGetitemNextArrayRegularize", "index out of range", None, fromarray.Get(j))
		}
		toarray[j] = v
	}
	return success()
}

// RegularGetitemNextArray applies a flat index array to every row.
func RegularGetitemNextArray(tocarry, toadvanced []int64, fromarray []int64, length, size int64) Error {
	lenarray := int64(len(fromarray))
	for i := int64(0); i < length; i++ {
		for j := int64(0); j < lenarray; j++ {
			tocarry[i*lenarray+j] = i*size + fromarray[j]
			toadvanced[i*lenarray+j] = j
		}
	}
	return success()
}

// RegularGetitemNextArrayAdvanced applies one element of the index array per
// row, chosen by the row's advanced position.
func RegularGetitemNextArrayAdvanced(tocarry, toadvanced []int64, fromadvanced Ints, fromarray []int64, length, size int64) Error {
	for i := int64(0); i < length; i++ {
		adv := fromadvanced.Get(int(i))
		if adv < 0 || adv >= int64(len(fromarray)) {
			return failure("RegularGetitemNextArrayAdvanced", "advanced index out of range", i, adv)
		}
		tocarry[i] = i*size + fromarray[adv]
		toadvanced[i] = adv
	}
	return success()
}

// RegularGetitemCarry expands a row carry into a carry over the content.
func RegularGetitemCarry(tocarry []int64, fromcarry Ints, size int64) Error {
	for i := 0; i < fromcarry.Len(); i++ {
		row := fromcarry.Get(i)
		for j := int64(0); j < size; j++ {
			tocarry[int64(i)*size+j] = row*size + j
		}
	}
	return success()
}

// RegularGetitemJaggedExpand repeats a jagged slice's offsets for every row.
func RegularGetitemJaggedExpand(multistarts, multistops []int64, singleoffsets Ints, regularsize, regularlength int64) Error {
	for i := int64(0); i < regularlength; i++ {
		for j := int64(0); j < regularsize; j++ {
			multistarts[i*regularsize+j] = singleoffsets.Get(int(j))
			multistops[i*regularsize+j] = singleoffsets.Get(int(j + 1))
		}
	}
	return success()
}

// RegularCompactOffsets writes offsets 0, size, 2*size, ...
func RegularCompactOffsets(tooffsets []int64, size int64) Error {
	for i := range tooffsets {
		tooffsets[i] = int64(i) * size
	}
	return success()
}
