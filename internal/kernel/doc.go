// Package kernel provides the flat-buffer loops behind the jagged array layouts.
//
// Every kernel is a pure function over caller-supplied buffers. Inputs are
// read through the [Ints] accessor so that any index width (8, 32 or 64 bit,
// signed or unsigned) can be passed without conversion; outputs are always
// caller-allocated int64 (or int8) slices sized by the caller.
//
// # Error Contract
//
// Kernels never panic on bad data. Instead they return an [Error] value whose
// zero value means success:
//
//	if err := kernel.ListGetitemNextAt(tocarry, starts, stops, at); !err.Ok() {
//	    // err.Kernel names the kernel, err.Identity the offending row,
//	    // err.Attempt the offending value
//	}
//
// The caller translates a failing result into its own error type, attaching
// whatever context (class name, provenance) the kernel cannot know about.
//
// # Kernel Families
//
//   - Regular*: fixed-size sublists (carry computation, at/range/array selection)
//   - List*: variable-length sublists given as starts/stops or offsets
//   - Indexed*, ByteMasked*, BitMasked*: selection views and option types
//   - Union*: tag/index bookkeeping for heterogeneous arrays
//   - Reduce*: parent/group regrouping and the per-group reducer loops
package kernel
