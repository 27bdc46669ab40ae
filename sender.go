package catty

import "sync/atomic"

// A Sender is the producing endpoint of a one-shot channel, created by
// [New]. It is a single-use capability: exactly one of Send or Close
// consumes it.
type Sender[T any] struct {
	cell *cell[T]
	done atomic.Bool
}

// Send delivers v to the receiver and consumes the sender. If the
// receiver was already closed, Send reports [ErrReceiverGone] and v is
// discarded; otherwise the receiver is guaranteed to observe v, and any
// receive already waiting is woken after v is published.
//
// Calling Send on a consumed sender panics.
func (s *Sender[T]) Send(v T) error {
	if !s.done.CompareAndSwap(false, true) {
		panic("catty: Send on a consumed Sender")
	}
	return s.cell.send(v)
}

// Close consumes the sender without sending. A receive that is waiting,
// or that happens later, resolves with [ErrSenderDropped]. Close after a
// successful Send, or a second Close, has no effect.
func (s *Sender[T]) Close() {
	if s.done.CompareAndSwap(false, true) {
		s.cell.senderClose()
	}
}
