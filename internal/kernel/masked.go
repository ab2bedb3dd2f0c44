package kernel

// ByteMaskedToIndex turns a byte mask into an option index (i or -1).
func ByteMaskedToIndex(toindex []int64, mask Ints, validWhen bool) Error {
	for i := 0; i < mask.Len(); i++ {
		if (mask.Get(i) != 0) == validWhen {
			toindex[i] = int64(i)
		} else {
			toindex[i] = -1
		}
	}
	return success()
}

// ByteMaskedByteMask normalizes a byte mask to 1 = missing.
func ByteMaskedByteMask(tomask []int8, mask Ints, validWhen bool) Error {
	for i := 0; i < mask.Len(); i++ {
		if (mask.Get(i) != 0) == validWhen {
			tomask[i] = 0
		} else {
			tomask[i] = 1
		}
	}
	return success()
}

// ByteMaskedGetitemCarry gathers a byte mask by a carry.
func ByteMaskedGetitemCarry(tomask []int8, mask Ints, fromcarry Ints) Error {
	for i := 0; i < fromcarry.Len(); i++ {
		c := fromcarry.Get(i)
		if c < 0 || c >= int64(mask.Len()) {
			return failure("ByteMaskedGetitemCarry", "index out of range", int64(i), c)
		}
		tomask[i] = int8(mask.Get(int(c)))
	}
	return success()
}

// BitMaskedToByteMask unpacks length bits into a byte mask with 1 = missing.
func BitMaskedToByteMask(tobytemask []int8, bitmask Ints, validWhen, lsbOrder bool) Error {
	length := len(tobytemask)
	if (length+7)/8 > bitmask.Len() {
		return failure("BitMaskedToByteMask", "bitmask too short for length", None, int64(length))
	}
	for i := 0; i < length; i++ {
		b := uint8(bitmask.Get(i / 8))
		var bit uint8
		if lsbOrder {
			bit = (b >> uint(i%8)) & 1
		} else {
			bit = (b >> uint(7-i%8)) & 1
		}
		if (bit != 0) == validWhen {
			tobytemask[i] = 0
		} else {
			tobytemask[i] = 1
		}
	}
	return success()
}

// BitMaskedFromByteMask packs a byte mask (1 = missing) into bits with the
// given polarity and order.
func BitMaskedFromByteMask(tobitmask []uint8, bytemask Ints, validWhen, lsbOrder bool) Error {
	for i := range tobitmask {
		tobitmask[i] = 0
	}
	for i := 0; i < bytemask.Len(); i++ {
		valid := bytemask.Get(i) == 0
		if valid != validWhen {
			continue
		}
		if lsbOrder {
			tobitmask[i/8] |= 1 << uint(i%8)
		} else {
			tobitmask[i/8] |= 1 << uint(7-i%8)
		}
	}
	return success()
}
