// Package engerr defines the typed error kinds returned across the
// engine's public entry points, so callers can branch on what went wrong
// without string-matching an error message.
package engerr

import "github.com/pkg/errors"

// Kind identifies which of the engine's error categories an error belongs
// to.
type Kind int

const (
	// InvalidArgument marks a request that was malformed before any
	// computation started: a bad coordinate, an unparseable timezone, an
	// unknown ayanamsa name.
	InvalidArgument Kind = iota

	// EphemerisTransient marks a single ephemeris evaluation that failed
	// (e.g. a body outside a DAF/SPK segment's valid date range). Tolerated
	// by scanners and detectors as a NaN sample, never fatal by itself.
	EphemerisTransient

	// EphemerisInit marks a failure to initialize any ephemeris tier at
	// all (no SPK file found and the low-precision fallback itself could
	// not be constructed) — fatal, since no computation can proceed.
	EphemerisInit

	// StoreUnavailable marks a failure to reach the persistent cache
	// store. Degrades the cache to memory-only rather than failing the
	// request.
	StoreUnavailable

	// PerMonthFailure marks one month of a batch request failing while
	// sibling months in the same batch succeed.
	PerMonthFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case EphemerisTransient:
		return "ephemeris_transient"
	case EphemerisInit:
		return "ephemeris_init"
	case StoreUnavailable:
		return "store_unavailable"
	case PerMonthFailure:
		return "per_month_failure"
	default:
		return "unknown"
	}
}

// Error is a typed, stack-trace-carrying error wrapping an underlying
// cause with one of the Kind values above.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Wrap annotates err with a Kind and a message, preserving err's stack
// trace via pkg/errors.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, cause: errors.Wrap(err, message)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, cause: errors.Wrapf(err, format, args...)}
}

// New creates a new Error of the given kind with a plain message.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, cause: errors.New(message)}
}

// Newf creates a new Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

// KindOf returns the Kind of err if it (or something it wraps) is an
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err's Kind matches kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
