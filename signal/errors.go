package signal

import "errors"

var (
	// ErrSlotAttached is returned by Connect when the owner slot already
	// owns a live registration.
	ErrSlotAttached = errors.New("slot is already attached to a connection")

	// ErrClosed is returned by Connect after the signal was closed.
	ErrClosed = errors.New("signal is closed")

	// ErrNilCallback is returned by Connect for a nil callback.
	ErrNilCallback = errors.New("callback is nil")

	ErrMethodNotFound  = errors.New("method not found")
	ErrMethodSignature = errors.New("method signature does not match signal")
)
