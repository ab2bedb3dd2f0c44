package jagged

// A mapping of items from one partition to the output of a range read.
type partitionProjection struct {
	// Index of the partition.
	PartitionIX int
	// Selection of items from the partition array.
	Start, Stop int
	// Position of the selection in the output.
	OutStart int
}

// projectPartitions maps [start, stop) of the concatenated partitions onto
// each partition it touches. start and stop must already be clamped.
func projectPartitions(lengths []int, start, stop int) []partitionProjection {
	var out []partitionProjection
	offset := 0
	for i, n := range lengths {
		lo, hi := max(start-offset, 0), min(stop-offset, n)
		if lo < hi {
			out = append(out, partitionProjection{
				PartitionIX: i,
				Start:       lo,
				Stop:        hi,
				OutStart:    offset + lo - start,
			})
		}
		offset += n
		if offset >= stop {
			break
		}
	}
	return out
}

// partitionRanges splits length items into consecutive runs of at most size.
// A size below one keeps everything in one partition.
func partitionRanges(length, size int) [][2]int {
	if size < 1 || length <= size {
		return [][2]int{{0, length}}
	}
	var out [][2]int
	for start := 0; start < length; start += size {
		out = append(out, [2]int{start, min(start+size, length)})
	}
	return out
}
