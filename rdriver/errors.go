package rdriver

import (
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/arjunkota/capcol"
)

// classify turns a raw error from a script invocation into a *capcol.Error.
// Script-level failures arrive as the Lua {err=...} strings defined in
// scripts/*.lua; transport-level failures arrive as go-redis errors.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return capcol.NewError(op, capcol.KindNotFound, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "EXISTS"):
		return capcol.NewError(op, capcol.KindAlreadyExists, err)
	case strings.Contains(msg, "NOTFOUND"), strings.Contains(msg, "EMPTY"):
		return capcol.NewError(op, capcol.KindNotFound, err)
	case strings.Contains(msg, "BADCURSOR"):
		return capcol.NewError(op, capcol.KindInvalidArgument, err)
	case strings.Contains(msg, "OLDERTHANALLOWED"):
		return capcol.NewError(op, capcol.KindOlderThanAllowed, err)
	case strings.Contains(msg, "INCOMPATIBLEDATAVERSION"):
		return capcol.NewError(op, capcol.KindIncompatibleDataVersion, err)
	case strings.Contains(msg, "MISMATCH"):
		return capcol.NewError(op, capcol.KindInvalidArgument, err)
	case strings.Contains(msg, "INCONSISTENT"):
		return capcol.NewError(op, capcol.KindInternal, err)
	case isOOM(err):
		return capcol.NewError(op, capcol.KindOutOfMemory, err)
	case isUnavailable(err):
		return capcol.NewError(op, capcol.KindUnavailable, err)
	default:
		return capcol.NewError(op, capcol.KindInternal, err)
	}
}

// isOOM reports whether err is the error Redis returns when maxmemory is
// reached and maxmemory-policy is noeviction, or the allotted Lua memory
// budget for a command was exceeded.
func isOOM(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "OOM") || strings.Contains(msg, "used memory")
}

// isUnavailable reports whether err reflects a transport-level failure
// rather than a script-level decision. Reconnection itself is handled by
// go-redis; the driver only needs to know to classify and surface it.
func isUnavailable(err error) bool {
	if errors.Is(err, redis.ErrClosed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connect") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "LOADING") ||
		strings.Contains(msg, "READONLY")
}
