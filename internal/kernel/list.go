package kernel

// ListGetitemNextAt selects position at (wrapped against each list) from
// every list.
func ListGetitemNextAt(tocarry []int64, starts, stops Ints, at int64) Error {
	for i := 0; i < starts.Len(); i++ {
		length := stops.Get(i) - starts.Get(i)
		regularAt := at
		if regularAt < 0 {
			regularAt += length
		}
		if !(0 <= regularAt && regularAt < length) {
			return failure("ListGetitemNextAt", "index out of range", int64(i), at)
		}
		tocarry[i] = starts.Get(i) + regularAt
	}
	return success()
}

// ListGetitemNextRangeCarryLength counts the items a range selects across
// all lists.
func ListGetitemNextRangeCarryLength(starts, stops Ints, start, stop, step int64, hasstart, hasstop bool) (int64, Error) {
	var total int64
	for i := 0; i < starts.Len(); i++ {
		length := stops.Get(i) - starts.Get(i)
		s, e := RegularizeRangeSlice(start, stop, step > 0, hasstart, hasstop, length)
		total += RangeLength(s, e, step)
	}
	return total, success()
}

// ListGetitemNextRange applies a range to every list, writing new offsets and
// the carry into the content.
func ListGetitemNextRange(tooffsets, tocarry []int64, starts, stops Ints, start, stop, step int64, hasstart, hasstop bool) Error {
	k := int64(0)
	tooffsets[0] = 0
	for i := 0; i < starts.Len(); i++ {
		length := stops.Get(i) - starts.Get(i)
		s, e := RegularizeRangeSlice(start, stop, step > 0, hasstart, hasstop, length)
		if step > 0 {
			for j := s; j < e; j += step {
				tocarry[k] = starts.Get(i) + j
				k++
			}
		} else {
			for j := s; j > e; j += step {
				tocarry[k] = starts.Get(i) + j
				k++
			}
		}
		tooffsets[i+1] = k
	}
	return success()
}

// ListGetitemNextRangeSpreadAdvanced repeats each list's advanced index over
// the items selected from it.
func ListGetitemNextRangeSpreadAdvanced(toadvanced []int64, fromadvanced Ints, fromoffsets []int64) Error {
	for i := 0; i+1 < len(fromoffsets); i++ {
		for j := fromoffsets[i]; j < fromoffsets[i+1]; j++ {
			toadvanced[j] = fromadvanced.Get(i)
		}
	}
	return success()
}

// ListGetitemNextArray applies a flat index array to every list.
func ListGetitemNextArray(tocarry, toadvanced []int64, starts, stops Ints, fromarray []int64, lencontent int64) Error {
	lenarray := int64(len(fromarray))
	for i := 0; i < starts.Len(); i++ {
		start, stop := starts.Get(i), stops.Get(i)
		if stop < start {
			return failure("ListGetitemNextArray", "stops[i] < starts[i]", int64(i), None)
		}
		if start != stop && stop > lencontent {
			return failure("ListGetitemNextArray", "stops[i] > len(content)", int64(i), None)
		}
		length := stop - start
		for j := int64(0); j < lenarray; j++ {
			regularAt := fromarray[j]
			if regularAt < 0 {
				regularAt += length
			}
			if !(0 <= regularAt && regularAt < length) {
				return failure("ListGetitemNextArray", "index out of range", int64(i), fromarray[j])
			}
			tocarry[int64(i)*lenarray+j] = start + regularAt
			toadvanced[int64(i)*lenarray+j] = j
		}
	}
	return success()
}

// ListGetitemNextArrayAdvanced applies one element of the index array per
// list, chosen by the list's advanced position.
func ListGetitemNextArrayAdvanced(tocarry, toadvanced []int64, starts, stops Ints, fromarray []int64, fromadvanced Ints, lencontent int64) Error {
	for i := 0; i < starts.Len(); i++ {
		start, stop := starts.Get(i), stops.Get(i)
		if stop < start {
			return failure("ListGetitemNextArrayAdvanced", "stops[i] < starts[i]", int64(i), None)
		}
		if start != stop && stop > lencontent {
			return failure("ListGetitemNextArrayAdvanced", "stops[i] > len(content)", int64(i), None)
		}
		adv := fromadvanced.Get(i)
		if adv < 0 || adv >= int64(len(fromarray)) {
			return failure("ListGetitemNextArrayAdvanced", "advanced index out of range", int64(i), adv)
		}
		length := stop - start
		regularAt := fromarray[adv]
		if regularAt < 0 {
			regularAt += length
		}
		if !(0 <= regularAt && regularAt < length) {
			return failure("ListGetitemNextArrayAdvanced", "index out of range", int64(i), fromarray[adv])
		}
		tocarry[i] = start + regularAt
		toadvanced[i] = adv
	}
	return success()
}

// ListGetitemCarry gathers starts/stops by a carry.
func ListGetitemCarry(tostarts, tostops []int64, starts, stops Ints, fromcarry Ints) Error {
	for i := 0; i < fromcarry.Len(); i++ {
		c := fromcarry.Get(i)
		if c < 0 || c >= int64(starts.Len()) {
			return failure("ListGetitemCarry", "index out of range", int64(i), c)
		}
		tostarts[i] = starts.Get(int(c))
		tostops[i] = stops.Get(int(c))
	}
	return success()
}

// ListGetitemJaggedExpand prepares a jagged slice applied directly to a list
// dimension whose lists all have jaggedsize elements.
func ListGetitemJaggedExpand(multistarts, multistops []int64, singleoffsets Ints, tocarry []int64, starts, stops Ints, jaggedsize int64) Error {
	for i := 0; i < starts.Len(); i++ {
		start, stop := starts.Get(i), stops.Get(i)
		if stop < start {
			return failure("ListGetitemJaggedExpand", "stops[i] < starts[i]", int64(i), None)
		}
		if stop-start != jaggedsize {
			return failure("ListGetitemJaggedExpand", "cannot fit jagged slice into nested list", int64(i), None)
		}
		for j := int64(0); j < jaggedsize; j++ {
			at := int64(i)*jaggedsize + j
			multistarts[at] = singleoffsets.Get(int(j))
			multistops[at] = singleoffsets.Get(int(j + 1))
			tocarry[at] = start + j
		}
	}
	return success()
}

// ListGetitemJaggedCarryLen sums the lengths of the jagged slice's rows.
func ListGetitemJaggedCarryLen(slicestarts, slicestops Ints) (int64, Error) {
	var total int64
	for i := 0; i < slicestarts.Len(); i++ {
		start, stop := slicestarts.Get(i), slicestops.Get(i)
		if stop < start {
			return 0, failure("ListGetitemJaggedCarryLen", "slicestops[i] < slicestarts[i]", int64(i), None)
		}
		total += stop - start
	}
	return total, success()
}

// ListGetitemJaggedApply selects, inside list i, the positions listed by the
// jagged slice's row i.
func ListGetitemJaggedApply(tooffsets, tocarry []int64, slicestarts, slicestops, sliceindex, starts, stops Ints, contentlen int64) Error {
	k := int64(0)
	tooffsets[0] = 0
	for i := 0; i < slicestarts.Len(); i++ {
		slicestart, slicestop := slicestarts.Get(i), slicestops.Get(i)
		if slicestop < slicestart {
			return failure("ListGetitemJaggedApply", "jagged slice's stops[i] < starts[i]", int64(i), None)
		}
		if slicestop > int64(sliceindex.Len()) {
			return failure("ListGetitemJaggedApply", "jagged slice's offsets extend beyond its content", int64(i), slicestop)
		}
		start, stop := starts.Get(i), stops.Get(i)
		if stop < start {
			return failure("ListGetitemJaggedApply", "stops[i] < starts[i]", int64(i), None)
		}
		if start != stop && stop > contentlen {
			return failure("ListGetitemJaggedApply", "stops[i] > len(content)", int64(i), None)
		}
		count := stop - start
		for j := slicestart; j < slicestop; j++ {
			index := sliceindex.Get(int(j))
			if index < 0 {
				index += count
			}
			if !(0 <= index && index < count) {
				return failure("ListGetitemJaggedApply", "index out of range", int64(i), sliceindex.Get(int(j)))
			}
			tocarry[k] = start + index
			k++
		}
		tooffsets[i+1] = k
	}
	return success()
}

// ListGetitemJaggedNumValid counts the non-missing positions covered by a
// jagged slice whose content has missing values.
func ListGetitemJaggedNumValid(slicestarts, slicestops, missing Ints) (int64, Error) {
	var numvalid int64
	for i := 0; i < slicestarts.Len(); i++ {
		start, stop := slicestarts.Get(i), slicestops.Get(i)
		if stop < start {
			return 0, failure("ListGetitemJaggedNumValid", "slice stops[i] < starts[i]", int64(i), None)
		}
		if stop > int64(missing.Len()) {
			return 0, failure("ListGetitemJaggedNumValid", "slice stops[i] > len(missing)", int64(i), stop)
		}
		for j := start; j < stop; j++ {
			if missing.Get(int(j)) >= 0 {
				numvalid++
			}
		}
	}
	return numvalid, success()
}

// ListGetitemJaggedShrink splits a missing-valued jagged slice into the
// offsets of its valid positions (smalloffsets) and of all positions
// (largeoffsets), and the option index that reinserts the missing ones.
func ListGetitemJaggedShrink(tooutindex, smalloffsets, largeoffsets []int64, slicestarts, slicestops, missing Ints) Error {
	k, m := int64(0), int64(0)
	smalloffsets[0] = 0
	largeoffsets[0] = 0
	for i := 0; i < slicestarts.Len(); i++ {
		for j := slicestarts.Get(i); j < slicestops.Get(i); j++ {
			if missing.Get(int(j)) >= 0 {
				tooutindex[m] = k
				k++
			} else {
				tooutindex[m] = -1
			}
			m++
		}
		smalloffsets[i+1] = k
		largeoffsets[i+1] = m
	}
	return success()
}

// ListGetitemJaggedDescend checks that a nested jagged slice has one row per
// sublist and writes the offsets of the result.
func ListGetitemJaggedDescend(tooffsets []int64, slicestarts, slicestops, starts, stops Ints) Error {
	tooffsets[0] = 0
	for i := 0; i < slicestarts.Len(); i++ {
		slicecount := slicestops.Get(i) - slicestarts.Get(i)
		count := stops.Get(i) - starts.Get(i)
		if slicecount != count {
			return failure("ListGetitemJaggedDescend", "jagged slice inner length differs from array inner length", int64(i), None)
		}
		tooffsets[i+1] = tooffsets[i] + count
	}
	return success()
}

// ListCompactOffsets turns starts/stops into offsets of a compacted content.
func ListCompactOffsets(tooffsets []int64, starts, stops Ints) Error {
	tooffsets[0] = 0
	for i := 0; i < starts.Len(); i++ {
		start, stop := starts.Get(i), stops.Get(i)
		if stop < start {
			return failure("ListCompactOffsets", "stops[i] < starts[i]", int64(i), None)
		}
		tooffsets[i+1] = tooffsets[i] + (stop - start)
	}
	return success()
}

// ListBroadcastCarry lists the content positions covered by starts/stops, in
// order, to compact a ListArray's content.
func ListBroadcastCarry(tocarry []int64, starts, stops Ints) Error {
	k := 0
	for i := 0; i < starts.Len(); i++ {
		for j := starts.Get(i); j < stops.Get(i); j++ {
			tocarry[k] = j
			k++
		}
	}
	return success()
}

// ListValidity checks 0 <= starts[i] <= stops[i] <= lencontent.
func ListValidity(starts, stops Ints, lencontent int64) Error {
	if stops.Len() < starts.Len() {
		return failure("ListValidity", "len(stops) < len(starts)", None, None)
	}
	for i := 0; i < starts.Len(); i++ {
		start, stop := starts.Get(i), stops.Get(i)
		if start != stop {
			if start < 0 {
				return failure("ListValidity", "starts[i] < 0", int64(i), None)
			}
			if start > stop {
				return failure("ListValidity", "starts[i] > stops[i]", int64(i), None)
			}
			if stop > lencontent {
				return failure("ListValidity", "stops[i] > len(content)", int64(i), None)
			}
		}
	}
	return success()
}
