package core

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block: a full queue returns ErrBackpressure.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
