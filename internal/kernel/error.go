package kernel

import "math"

// None marks an absent identity or attempt in an Error, and an absent
// start/stop in a range slice.
const None int64 = math.MaxInt64

// Ints is read-only access to a flat integer buffer of any width.
type Ints interface {
	Len() int
	Get(i int) int64
}

// Int64s adapts a plain slice to Ints.
type Int64s []int64

func (s Int64s) Len() int        { return len(s) }
func (s Int64s) Get(i int) int64 { return s[i] }

// Error is the structured result of a kernel call. The zero value is success.
type Error struct {
	Str      string
	Kernel   string
	Identity int64
	Attempt  int64
}

// Ok reports whether the kernel succeeded.
func (e Error) Ok() bool { return e.Str == "" }

func success() Error { return Error{} }

func failure(kernel, str string, identity, attempt int64) Error {
	return Error{Str: str, Kernel: kernel, Identity: identity, Attempt: attempt}
}
