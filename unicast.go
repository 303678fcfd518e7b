package chans

// Unicast is a zero-capacity channel: values never rest in the channel, they
// are handed directly from a sender to a receiver, and Send completes only
// once a receiver has taken the value.
//
// Parked senders and receivers are each served in arrival order.
type Unicast[T any] struct {
	*hchan[T]
}

type unicast[T any] struct{}

// NewUnicast initializes a new Unicast channel.
func NewUnicast[T any](opts ...Option) *Unicast[T] {
	return &Unicast[T]{newChan[T](unicast[T]{}, resolveOptions(opts))}
}

func (unicast[T]) kind() string { return `unicast` }

func (unicast[T]) trySend(c *hchan[T], value T) bool {
	if w := c.recvq.Claim(); w != nil {
		deliver(w, value)
		return true
	}
	return false
}

func (unicast[T]) tryRecv(c *hchan[T]) (value T, ok bool) {
	if w := c.sendq.Claim(); w != nil {
		value, ok = w.Value, true
		w.Wake(false)
	}
	return
}
