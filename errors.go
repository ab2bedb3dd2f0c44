package jagged

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qri-io/jagged/internal/kernel"
)

// ErrorKind separates caller mistakes from engine limitations and kernel
// failures.
type ErrorKind int

const (
	// KindValidation is a malformed schema, an invalid slice combination, an
	// out-of-range axis or a bad argument.
	KindValidation ErrorKind = iota + 1
	// KindUnhandled is a layout/slice combination the engine does not cover.
	KindUnhandled
	// KindKernel is an invariant violation detected inside a numeric kernel.
	KindKernel
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnhandled:
		return "unhandled"
	case KindKernel:
		return "kernel"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is; any *Error of the same kind matches.
var (
	ErrValidation = errors.New("invalid argument")
	ErrUnhandled  = errors.New("unhandled case")
	ErrKernel     = errors.New("kernel failure")

	// ErrFieldNotFound is returned (wrapped in a validation error) when a
	// field name or tuple position does not exist.
	ErrFieldNotFound = errors.New("field not found")
	// ErrNotFound is returned by a Store for a missing key
	ErrNotFound = errors.New("not found")
)

// Error is the error type returned by every Content, Form and Slice operation.
type Error struct {
	Kind     ErrorKind
	Class    string
	Identity string
	Kernel   string
	Attempt  int64
	Msg      string
	cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Class != "" {
		b.WriteString(e.Class)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Kernel != "" {
		fmt.Fprintf(&b, " (in %s", e.Kernel)
		if e.Attempt != kernel.None {
			fmt.Fprintf(&b, ", while attempting to get index %d", e.Attempt)
		}
		b.WriteString(")")
	}
	if e.Identity != "" {
		b.WriteString(" at id")
		b.WriteString(e.Identity)
	}
	return b.String()
}

// Is matches the kind sentinels and any wrapped cause.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrUnhandled:
		return e.Kind == KindUnhandled
	case ErrKernel:
		return e.Kind == KindKernel
	}
	return false
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf classifies err; it returns 0 when err is not (or does not wrap) an
// *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func validationErr(class, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Class: class, Attempt: kernel.None, Msg: fmt.Sprintf(format, args...)}
}

func unhandledErr(class, format string, args ...interface{}) error {
	return &Error{Kind: KindUnhandled, Class: class, Attempt: kernel.None, Msg: fmt.Sprintf(format, args...)}
}

func fieldNotFound(class, key string) error {
	return &Error{Kind: KindValidation, Class: class, Attempt: kernel.None, Msg: fmt.Sprintf("no field %q", key), cause: ErrFieldNotFound}
}

// handleError converts a failing kernel result into a KindKernel error for
// the node of class class, resolving the failing row against its identities.
func handleError(err kernel.Error, class string, id *Identities) error {
	if err.Ok() {
		return nil
	}
	out := &Error{
		Kind:    KindKernel,
		Class:   class,
		Kernel:  err.Kernel,
		Attempt: err.Attempt,
		Msg:     err.Str,
	}
	if id != nil && err.Identity != kernel.None && err.Identity < int64(id.Length()) {
		out.Identity = id.Identity(int(err.Identity))
	}
	return out
}
