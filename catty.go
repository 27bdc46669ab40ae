// Package catty implements a one-shot channel: a single value is handed
// off from exactly one producer to exactly one consumer.
//
// A call to [New] returns a connected [Sender] and [Receiver] pair. The
// sender either delivers one value with [Sender.Send] or gives up with
// [Sender.Close]; the receiver retrieves the outcome with [Receiver.Recv],
// [Receiver.TryRecv], or by polling, or gives up with [Receiver.Close].
// Each side learns that the other has gone away through an error value,
// never by blocking forever.
//
// Both handles are single-use capabilities: once an operation has resolved
// the transfer, calling it again is a contract violation and panics.
// Either handle may safely be used from a different goroutine than its
// peer, but a single handle must not be shared among goroutines.
//
// The channel itself takes no locks. All coordination goes through one
// atomic state word on a shared cell, so a send and a receive never
// contend on anything heavier than a compare-and-swap, and the whole
// channel costs one allocation.
package catty

import (
	"errors"
	"sync/atomic"
)

// ErrReceiverGone is reported by Send when the receiver was closed before
// the value could be delivered. The value is discarded.
var ErrReceiverGone = errors.New("receiver is gone")

// ErrSenderDropped is reported by a receive when the sender was closed
// without sending a value.
var ErrSenderDropped = errors.New("sender dropped without sending")

// State bits of the cell. Every transition is a single atomic Or or
// compare-and-swap on the word, so no two bits ever need to be updated
// "together" under a lock.
const (
	hasValue     uint32 = 1 << iota // value is published; never cleared
	senderGone                      // sender closed without sending
	receiverGone                    // receiver closed before resolving
	waiterSet                       // a wake handle is (or was) installed
)

// A cell is the single heap-allocated object shared by a Sender and a
// Receiver. The value slot is written at most once, by Send, before
// hasValue is published, and read at most once, by the receiver, after
// hasValue is observed. The Or publishing hasValue orders the write
// before any read that observes the bit.
type cell[T any] struct {
	state  atomic.Uint32
	value  T
	waiter atomic.Pointer[func()]
}

// New creates a one-shot channel and returns its two endpoints.
func New[T any]() (*Sender[T], *Receiver[T]) {
	c := new(cell[T])
	return &Sender[T]{cell: c}, &Receiver[T]{cell: c}
}

// send delivers v and wakes the waiter, if one is installed. It reports
// ErrReceiverGone if the receiver was closed first, in which case v is
// discarded.
func (c *cell[T]) send(v T) error {
	if c.state.Load()&receiverGone != 0 {
		return ErrReceiverGone
	}
	c.value = v
	old := c.state.Or(hasValue)
	if old&receiverGone != 0 {
		return ErrReceiverGone
	}
	if old&waiterSet != 0 {
		c.notify()
	}
	return nil
}

// senderClose records that no value will ever arrive, and wakes the
// waiter, if one is installed, so it can observe ErrSenderDropped.
func (c *cell[T]) senderClose() {
	if c.state.Or(senderGone)&waiterSet != 0 {
		c.notify()
	}
}

// receiverClose records that no value will ever be retrieved. It wakes
// nothing: no one waits on a closed receiver.
func (c *cell[T]) receiverClose() { c.state.Or(receiverGone) }

// tryRecv reads the current outcome without waiting: the value if one was
// published, ErrSenderDropped if the sender gave up, or ok == false with a
// nil error while the transfer is still pending.
func (c *cell[T]) tryRecv() (v T, ok bool, err error) {
	s := c.state.Load()
	if s&hasValue != 0 {
		return c.value, true, nil
	}
	if s&senderGone != 0 {
		return v, false, ErrSenderDropped
	}
	return v, false, nil
}

// register installs wake as the cell's waiter and reports whether it was
// retained. When register reports true, wake will be invoked exactly once,
// by whichever sender operation reaches a terminal state (possibly one
// that raced the registration and already has). When it reports false, a
// terminal state was reached first, the handle was withdrawn before anyone
// could invoke it, and the caller must resolve immediately.
//
// Installing the handle and re-checking for a terminal state hinge on the
// same atomic Or, which is what rules out a lost wakeup: a send that
// publishes after the Or must observe waiterSet and invoke the handle.
//
// At most one waiter may be live at a time. Re-registering is permitted
// only after a previous handle has fired (the poll-again pattern).
func (c *cell[T]) register(wake func()) bool {
	c.waiter.Store(&wake)
	if c.state.Or(waiterSet)&(hasValue|senderGone) != 0 {
		return c.waiter.Swap(nil) == nil
	}
	return true
}

// notify invokes and clears the installed waiter. The Swap makes the
// invocation exactly-once even when a send races a registration that is
// concurrently withdrawing the handle.
func (c *cell[T]) notify() {
	if w := c.waiter.Swap(nil); w != nil {
		(*w)()
	}
}
