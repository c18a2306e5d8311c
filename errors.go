package capcol

import (
	"errors"
	"fmt"
)

// Kind classifies the failure modes a capped collection operation can
// return. Callers switch on Kind rather than on error strings.
type Kind int

const (
	// KindUnknown is the zero value and should not be returned directly.
	KindUnknown Kind = iota
	// KindNotFound means the collection, list, or data id named in the
	// operation does not exist, or the collection holds no item to return.
	KindNotFound
	// KindAlreadyExists means an insert collided with an existing data id.
	KindAlreadyExists
	// KindOutOfMemory means the backing store rejected the write even
	// after the Evictor ran; Guard exhausted its retries.
	KindOutOfMemory
	// KindInvalidArgument means a parameter failed validation before any
	// write was attempted (bad name, empty list, negative size, ...).
	KindInvalidArgument
	// KindUnavailable means the backing store could not be reached or
	// returned a transport-level failure.
	KindUnavailable
	// KindInternal means the driver or engine observed state it cannot
	// explain, such as a malformed script reply.
	KindInternal
	// KindOlderThanAllowed means OlderAllowed is false on the collection
	// and the write's data time is older than LastRemovedTime.
	KindOlderThanAllowed
	// KindIncompatibleDataVersion means VerifyCollection found the
	// collection's stored DataVersion does not match the caller's.
	KindIncompatibleDataVersion
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindOutOfMemory:
		return "out_of_memory"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnavailable:
		return "unavailable"
	case KindInternal:
		return "internal"
	case KindOlderThanAllowed:
		return "older_than_allowed"
	case KindIncompatibleDataVersion:
		return "incompatible_data_version"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every Engine method. Op names the
// failing operation, e.g. "Insert" or "Receive".
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("capcol: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("capcol: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error for op with the given kind, optionally wrapping
// a lower-level cause.
func NewError(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// KindOf returns the Kind carried by err if err is (or wraps) a *Error,
// and KindUnknown otherwise.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
