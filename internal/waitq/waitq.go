// Package waitq implements the queues of parked operations shared by every
// channel variant, along with the ticket used to resolve races between
// operations registered on more than one queue.
//
// Nothing in this package locks. Each Queue must be guarded by the lock of the
// channel that owns it, and every method must be called with that lock held.
package waitq

import (
	"sync/atomic"
)

const (
	ticketPending uint32 = iota
	ticketClaimed
)

type (
	// Ticket is shared by every Waiter registered by a single blocking call.
	// At most one party may claim it, and only the claimant may wake it.
	Ticket struct {
		wake   chan struct{}
		state  atomic.Uint32
		index  int
		closed bool
	}

	// Waiter is a parked send or receive, linked into exactly one Queue
	// until it is claimed or removed.
	//
	// For a send, Value holds the payload. For a receive, the claimant
	// stores the delivered value into Value before waking the ticket.
	Waiter[T any] struct {
		Value  T
		ticket *Ticket
		queue  *Queue[T]
		prev   *Waiter[T]
		next   *Waiter[T]
		index  int
	}

	// Queue is an ordered (FIFO) registry of waiters. The zero value is
	// an empty queue.
	Queue[T any] struct {
		head *Waiter[T]
		tail *Waiter[T]
		len  int
	}
)

// NewTicket returns a pending ticket.
func NewTicket() *Ticket {
	return &Ticket{wake: make(chan struct{})}
}

// Claim transitions the ticket from pending to claimed. Exactly one call
// observes true, all others (including any later one) observe false.
func (x *Ticket) Claim() bool {
	return x.state.CompareAndSwap(ticketPending, ticketClaimed)
}

// Wake records which waiter completed the call, and whether it completed due
// to its channel closing, then releases the parked caller.
//
// WARNING: Must be called exactly once, and only by the party whose Claim
// returned true.
func (x *Ticket) Wake(index int, closed bool) {
	x.index = index
	x.closed = closed
	close(x.wake)
}

// Done is closed by Wake.
func (x *Ticket) Done() <-chan struct{} {
	return x.wake
}

// Result returns the values recorded by Wake. It must only be called after
// Done is closed.
func (x *Ticket) Result() (index int, closed bool) {
	return x.index, x.closed
}

// Wake wakes the ticket of a claimed waiter, recording this waiter as the
// one that completed the call.
func (x *Waiter[T]) Wake(closed bool) {
	x.ticket.Wake(x.index, closed)
}

// Len returns the number of linked waiters, including any whose ticket has
// already been claimed via another queue.
func (x *Queue[T]) Len() int {
	return x.len
}

// Enqueue appends a new waiter to the tail of the queue.
func (x *Queue[T]) Enqueue(ticket *Ticket, index int, value T) *Waiter[T] {
	if ticket == nil {
		panic(`waitq: nil ticket`)
	}
	w := &Waiter[T]{
		Value:  value,
		ticket: ticket,
		queue:  x,
		prev:   x.tail,
		index:  index,
	}
	if x.tail == nil {
		x.head = w
	} else {
		x.tail.next = w
	}
	x.tail = w
	x.len++
	return w
}

// Claim unlinks waiters from the head of the queue until it finds one whose
// ticket it can claim, returning it, or nil if the queue was exhausted.
// Waiters whose ticket was already claimed elsewhere are stale, and are
// discarded.
//
// The caller must Wake the returned waiter, after transferring any value,
// before releasing the queue's lock.
func (x *Queue[T]) Claim() *Waiter[T] {
	for x.head != nil {
		w := x.head
		x.unlink(w)
		if w.ticket.Claim() {
			return w
		}
	}
	return nil
}

// Remove unlinks w, if it is still linked into this queue, reporting whether
// it did so.
func (x *Queue[T]) Remove(w *Waiter[T]) bool {
	if w == nil || w.queue != x {
		return false
	}
	x.unlink(w)
	return true
}

func (x *Queue[T]) unlink(w *Waiter[T]) {
	if w.prev == nil {
		x.head = w.next
	} else {
		w.prev.next = w.next
	}
	if w.next == nil {
		x.tail = w.prev
	} else {
		w.next.prev = w.prev
	}
	w.prev = nil
	w.next = nil
	w.queue = nil
	x.len--
}
