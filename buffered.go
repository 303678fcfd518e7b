package chans

import (
	"github.com/joeycumines/go-chans/internal/ring"
)

// Buffered is a channel with a bounded buffer. Sends complete without
// suspending while the buffer has room, and receives complete without
// suspending while it is non-empty.
//
// After the channel is closed (see [Closable]), buffered values remain
// receivable, and ErrClosed is only returned once the buffer is exhausted.
type Buffered[T any] struct {
	*hchan[T]
	buf *buffered[T]
}

type buffered[T any] struct {
	buf      *ring.Buffer[T]
	capacity int
	order    Order
}

// NewBuffered initializes a new Buffered channel, with room for capacity
// values. A panic will occur if capacity is less than 1.
//
// See also [WithOrder].
func NewBuffered[T any](capacity int, opts ...Option) *Buffered[T] {
	if capacity < 1 {
		panic(`chans: buffered capacity must be at least 1`)
	}
	cfg := resolveOptions(opts)
	b := &buffered[T]{
		// grows on demand, up to capacity
		buf:      ring.New[T](min(capacity, 16)),
		capacity: capacity,
		order:    cfg.order,
	}
	return &Buffered[T]{hchan: newChan[T](b, cfg), buf: b}
}

// Len returns the number of buffered values.
func (x *Buffered[T]) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.buf.Len()
}

// Cap returns the capacity of the buffer.
func (x *Buffered[T]) Cap() int {
	return x.buf.capacity
}

func (*buffered[T]) kind() string { return `buffered` }

func (x *buffered[T]) trySend(c *hchan[T], value T) bool {
	// a parked receiver implies an empty buffer, so order is preserved
	if w := c.recvq.Claim(); w != nil {
		deliver(w, value)
		return true
	}
	if x.buf.Len() < x.capacity {
		x.buf.PushBack(value)
		return true
	}
	return false
}

func (x *buffered[T]) tryRecv(c *hchan[T]) (value T, ok bool) {
	if x.buf.Len() != 0 {
		value, ok = x.pop()
		// refill the freed slot from the longest-waiting sender
		if w := c.sendq.Claim(); w != nil {
			x.buf.PushBack(w.Value)
			w.Wake(false)
		}
		return
	}
	if w := c.sendq.Claim(); w != nil {
		value, ok = w.Value, true
		w.Wake(false)
	}
	return
}

func (x *buffered[T]) pop() (T, bool) {
	if x.order == LIFO {
		return x.buf.PopBack()
	}
	return x.buf.PopFront()
}
