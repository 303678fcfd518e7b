package chans

import (
	"errors"
	"fmt"
)

// Verb identifies the direction of a channel operation.
type Verb uint8

const (
	// VerbSend identifies a send operation.
	VerbSend Verb = iota + 1
	// VerbRecv identifies a receive operation.
	VerbRecv
)

var (
	// ErrClosed indicates the channel can never complete the requested
	// operation again. For buffered channels, receives only fail with
	// ErrClosed once all buffered values have been received.
	ErrClosed = errors.New(`chans: channel closed`)

	// ErrNotReady is matched (via [errors.Is]) by every [*NotReadyError].
	ErrNotReady = errors.New(`chans: channel not ready`)
)

// NotReadyError is returned by the non-suspending operations, e.g.
// [Unicast.TrySend], when the operation could not complete immediately.
type NotReadyError struct {
	Verb Verb
}

func (v Verb) String() string {
	switch v {
	case VerbSend:
		return `send`
	case VerbRecv:
		return `recv`
	default:
		return fmt.Sprintf(`Verb(%d)`, uint8(v))
	}
}

// Error implements the error interface.
func (e *NotReadyError) Error() string {
	return `chans: channel not ready to ` + e.Verb.String()
}

// Is returns true for [ErrNotReady], and for any *NotReadyError with the
// same (or an unset) Verb.
func (e *NotReadyError) Is(target error) bool {
	if target == ErrNotReady {
		return true
	}
	var t *NotReadyError
	if errors.As(target, &t) {
		return t.Verb == 0 || t.Verb == e.Verb
	}
	return false
}
