package chans

// Broadcast is a channel that delivers each sent value to every receiver
// parked at the time of the send. Send never suspends: a value sent while no
// receiver is parked is dropped.
type Broadcast[T any] struct {
	*hchan[T]
}

type broadcast[T any] struct{}

// NewBroadcast initializes a new Broadcast channel.
func NewBroadcast[T any](opts ...Option) *Broadcast[T] {
	return &Broadcast[T]{newChan[T](broadcast[T]{}, resolveOptions(opts))}
}

func (broadcast[T]) kind() string { return `broadcast` }

func (broadcast[T]) trySend(c *hchan[T], value T) bool {
	wakeAll(c, value)
	return true
}

func (broadcast[T]) tryRecv(*hchan[T]) (value T, ok bool) {
	return
}

// wakeAll delivers value to every receiver currently parked on c.
func wakeAll[T any](c *hchan[T], value T) {
	for w := c.recvq.Claim(); w != nil; w = c.recvq.Claim() {
		deliver(w, value)
	}
}
