package chans

// Closable adds explicit, terminal closure to any channel variant, without
// altering how the variant matches senders and receivers.
//
// Once closed, sends fail with ErrClosed, and so do receives that would
// otherwise suspend. Parked senders and receivers are woken with ErrClosed.
// Values a [Buffered] channel holds at the time of closing are still
// received, in order, before receives begin to fail.
//
// Methods specific to the variant, e.g. [Buffered.Len] or [Default.Reset],
// are reached via [Closable.Inner].
type Closable[T any] struct {
	Channel[T]
}

// NewClosable wraps ch, adding Close. A panic will occur if ch is nil.
//
// Closure applies to the channel itself, i.e. it is observed through any
// other reference to ch, including ch itself.
func NewClosable[T any](ch Channel[T]) *Closable[T] {
	if ch == nil {
		panic(`chans: nil channel`)
	}
	return &Closable[T]{Channel: ch}
}

// Close closes the channel. It is idempotent.
func (x *Closable[T]) Close() {
	x.core().close()
}

// Inner returns the wrapped channel, e.g. for use with a type assertion.
func (x *Closable[T]) Inner() Channel[T] {
	return x.Channel
}

// Closed reports whether Close has been called.
func (x *Closable[T]) Closed() bool {
	return x.core().isClosed()
}
