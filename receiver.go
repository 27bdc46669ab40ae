package catty

import (
	"context"
	"runtime"
	"sync/atomic"
)

// A Receiver is the consuming endpoint of a one-shot channel, created by
// [New]. It is a single-use capability: the first operation to resolve
// the transfer, or a Close, consumes it. A Receiver must not be shared
// among goroutines.
type Receiver[T any] struct {
	cell  *cell[T]
	done  atomic.Bool
	ready chan struct{} // lazily allocated by Ready
}

// recvSpin bounds how many times Recv re-reads the state word before it
// parks. Tuning only; correctness does not depend on it.
const recvSpin = 8

// Recv blocks until the sender delivers a value or is closed, and
// consumes the receiver. It returns the value, or [ErrSenderDropped] if
// the sender was closed without sending.
//
// If ctx ends first, Recv returns ctx.Err() and the receiver is not
// consumed: the caller may try again, or Close the receiver to tell the
// sender it has lost interest.
//
// Calling Recv on a consumed receiver panics.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	if r.done.Load() {
		panic("catty: receive on a consumed Receiver")
	}
	for range recvSpin {
		if v, ok, err := r.cell.tryRecv(); ok || err != nil {
			r.done.Store(true)
			return v, err
		}
		runtime.Gosched()
	}
	ready := r.Ready()

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-ready:
		v, _, err := r.cell.tryRecv()
		r.done.Store(true)
		return v, err
	}
}

// TryRecv reads the current outcome without waiting. It returns the value
// and ok == true if one was delivered, [ErrSenderDropped] if the sender
// was closed without sending, or ok == false with a nil error while the
// transfer is still pending. Either non-pending outcome consumes the
// receiver; a pending probe does not.
//
// Calling TryRecv on a consumed receiver panics.
func (r *Receiver[T]) TryRecv() (v T, ok bool, err error) {
	if r.done.Load() {
		panic("catty: receive on a consumed Receiver")
	}
	v, ok, err = r.cell.tryRecv()
	if ok || err != nil {
		r.done.Store(true)
	}
	return v, ok, err
}

// Poll reads the current outcome without waiting, arranging a wakeup if
// there is none yet. When the transfer has resolved, Poll reports
// resolved == true with the value or [ErrSenderDropped], and consumes the
// receiver. Otherwise it installs wake and reports resolved == false,
// with the contract that wake will be invoked exactly once, from an
// arbitrary goroutine, when the sender delivers or is closed. A send that
// races the installation still either resolves this call or fires the
// wakeup; it is never lost.
//
// Polling again while a previous wake handle has not yet fired replaces
// the handle and forfeits its invocation; poll again only after a wakeup.
// Calling Poll on a consumed receiver panics.
func (r *Receiver[T]) Poll(wake func()) (v T, resolved bool, err error) {
	if r.done.Load() {
		panic("catty: receive on a consumed Receiver")
	}
	v, ok, err := r.cell.tryRecv()
	if ok || err != nil {
		r.done.Store(true)
		return v, true, err
	}
	if !r.cell.register(wake) {
		// The sender reached a terminal state between the check and the
		// registration, and the handle was withdrawn unfired.
		v, _, err = r.cell.tryRecv()
		r.done.Store(true)
		return v, true, err
	}
	return v, false, nil
}

// Ready returns a channel that is closed once the transfer has resolved,
// for use in a select. After it fires, TryRecv reports the outcome
// without waiting. Repeated calls return the same channel. Ready shares
// the channel's single waiter slot with Poll; use one or the other on a
// given receiver, not both.
func (r *Receiver[T]) Ready() <-chan struct{} {
	if r.ready == nil {
		ch := make(chan struct{})
		r.ready = ch
		if !r.cell.register(func() { close(ch) }) {
			close(ch)
		}
	}
	return r.ready
}

// Close consumes the receiver without retrieving anything. A Send that
// is in flight or happens later reports [ErrReceiverGone] and its value
// is discarded. Close on a consumed receiver has no effect.
func (r *Receiver[T]) Close() {
	if r.done.CompareAndSwap(false, true) {
		r.cell.receiverClose()
	}
}
