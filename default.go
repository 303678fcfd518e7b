package chans

// Default is a [Broadcast] channel that also retains the last value sent.
// While a value is retained, every Receive returns it immediately, until the
// next Send replaces it, [Default.Reset] clears it, or the channel is closed.
//
// It is intended for broadcasting state, rather than events.
type Default[T any] struct {
	*hchan[T]
	cur *current[T]
}

type current[T any] struct {
	value T
	ok    bool
}

// NewDefault initializes a new Default channel, without a value.
func NewDefault[T any](opts ...Option) *Default[T] {
	v := &current[T]{}
	return &Default[T]{hchan: newChan[T](v, resolveOptions(opts)), cur: v}
}

// NewDefaultWith initializes a new Default channel, retaining value.
func NewDefaultWith[T any](value T, opts ...Option) *Default[T] {
	x := NewDefault[T](opts...)
	x.cur.value, x.cur.ok = value, true
	return x
}

// Reset clears the retained value, if any, such that receivers will suspend
// until the next send.
func (x *Default[T]) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	var zero T
	x.cur.value, x.cur.ok = zero, false
}

func (*current[T]) kind() string { return `default` }

func (x *current[T]) trySend(c *hchan[T], value T) bool {
	x.value, x.ok = value, true
	wakeAll(c, value)
	return true
}

func (x *current[T]) tryRecv(c *hchan[T]) (value T, ok bool) {
	// the retained value is state, and is not drained after close
	if x.ok && !c.closed {
		value, ok = x.value, true
	}
	return
}
