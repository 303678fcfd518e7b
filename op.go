package chans

import (
	"github.com/joeycumines/go-chans/internal/waitq"
)

type (
	// Op describes a send or receive on a channel, for use with [Select].
	// Use [SendTo] and [RecvFrom] to construct one.
	//
	// An Op records the outcome of the most recent select it was passed to,
	// and must not be used by more than one select concurrently, nor passed
	// more than once to the same select.
	Op interface {
		// Verb returns the direction of the operation.
		Verb() Verb

		base() *lockable
		// poll attempts to complete the operation without suspending.
		// The blocked result indicates the channel is closed, and the
		// operation can never complete.
		poll() (done, blocked bool)
		enqueue(ticket *waitq.Ticket, index int)
		dequeue()
		settle()
	}

	// SendOp sends Value.
	SendOp[T any] struct {
		ch     *hchan[T]
		waiter *waitq.Waiter[T]
		Value  T
	}

	// RecvOp receives into Value.
	RecvOp[T any] struct {
		ch     *hchan[T]
		waiter *waitq.Waiter[T]
		// Value is the received value, valid after a select in which this
		// operation was selected.
		Value T
	}
)

var (
	_ Op = (*SendOp[any])(nil)
	_ Op = (*RecvOp[any])(nil)
)

// SendTo describes sending value to ch.
func SendTo[T any](ch Sender[T], value T) *SendOp[T] {
	if ch == nil {
		panic(`chans: nil channel`)
	}
	return &SendOp[T]{ch: ch.core(), Value: value}
}

// RecvFrom describes receiving from ch.
func RecvFrom[T any](ch Receiver[T]) *RecvOp[T] {
	if ch == nil {
		panic(`chans: nil channel`)
	}
	return &RecvOp[T]{ch: ch.core()}
}

func (*SendOp[T]) Verb() Verb { return VerbSend }

func (x *SendOp[T]) base() *lockable { return &x.ch.lockable }

func (x *SendOp[T]) poll() (done, blocked bool) {
	done, err := x.ch.pollSend(x.Value)
	return done, err != nil
}

func (x *SendOp[T]) enqueue(ticket *waitq.Ticket, index int) {
	x.waiter = x.ch.sendq.Enqueue(ticket, index, x.Value)
}

func (x *SendOp[T]) dequeue() {
	x.ch.sendq.Remove(x.waiter)
}

func (x *SendOp[T]) settle() {
	x.waiter = nil
}

func (*RecvOp[T]) Verb() Verb { return VerbRecv }

func (x *RecvOp[T]) base() *lockable { return &x.ch.lockable }

func (x *RecvOp[T]) poll() (done, blocked bool) {
	value, done, err := x.ch.pollRecv()
	if done {
		x.Value = value
	}
	return done, err != nil
}

func (x *RecvOp[T]) enqueue(ticket *waitq.Ticket, index int) {
	var zero T
	x.waiter = x.ch.recvq.Enqueue(ticket, index, zero)
}

func (x *RecvOp[T]) dequeue() {
	x.ch.recvq.Remove(x.waiter)
}

func (x *RecvOp[T]) settle() {
	x.Value = x.waiter.Value
	x.waiter = nil
}
