package chans

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-chans/internal/waitq"
	"github.com/joeycumines/logiface"
)

type (
	// Sender is the send side of a channel.
	Sender[T any] interface {
		// Send sends value, suspending until the channel accepts it, ctx is
		// done, or the channel is closed, in which case ErrClosed is
		// returned.
		Send(ctx context.Context, value T) error

		// TrySend is like Send, but fails with a *NotReadyError instead of
		// suspending.
		TrySend(value T) error

		core() *hchan[T]
	}

	// Receiver is the receive side of a channel.
	Receiver[T any] interface {
		// Receive receives a value, suspending until one is available, ctx
		// is done, or the channel is closed and exhausted, in which case
		// ErrClosed is returned.
		Receive(ctx context.Context) (T, error)

		// TryReceive is like Receive, but fails with a *NotReadyError
		// instead of suspending.
		TryReceive() (T, error)

		core() *hchan[T]
	}

	// Channel is implemented by every channel variant in this package, and
	// by [Closable].
	Channel[T any] interface {
		Sender[T]
		Receiver[T]
	}

	// variant implements the matching algorithm for one kind of channel.
	// Methods are called with the channel's lock held, and must not block.
	// The closed flag is checked by hchan, and is not the variant's concern.
	variant[T any] interface {
		kind() string
		// trySend completes a send without suspending, if possible.
		trySend(c *hchan[T], value T) bool
		// tryRecv completes a receive without suspending, if possible.
		tryRecv(c *hchan[T]) (T, bool)
	}

	// lockable is the untyped part of every channel, allowing select to
	// order and acquire locks across channels of differing element types.
	lockable struct {
		mu sync.Mutex
		id uint64
	}

	// hchan is the state shared by every variant.
	hchan[T any] struct {
		variant variant[T]
		logger  *logiface.Logger[logiface.Event]
		name    string
		sendq   waitq.Queue[T]
		recvq   waitq.Queue[T]
		lockable
		closed bool
	}
)

var chanIDs atomic.Uint64

func newChan[T any](v variant[T], cfg *chanOptions) *hchan[T] {
	return &hchan[T]{
		variant:  v,
		logger:   cfg.logger,
		name:     cfg.name,
		lockable: lockable{id: chanIDs.Add(1)},
	}
}

func (c *hchan[T]) core() *hchan[T] { return c }

func (c *hchan[T]) Send(ctx context.Context, value T) error {
	if ctx == nil {
		panic(`chans: nil context`)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if ok, err := c.pollSend(value); ok || err != nil {
		c.mu.Unlock()
		return err
	}
	ticket := waitq.NewTicket()
	w := c.sendq.Enqueue(ticket, 0, value)
	c.mu.Unlock()

	if err := c.wait(ctx, ticket, &c.sendq, w); err != nil {
		return err
	}
	if _, closed := ticket.Result(); closed {
		return ErrClosed
	}
	return nil
}

func (c *hchan[T]) TrySend(value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok, err := c.pollSend(value)
	if !ok && err == nil {
		err = &NotReadyError{Verb: VerbSend}
	}
	return err
}

func (c *hchan[T]) Receive(ctx context.Context) (value T, err error) {
	if ctx == nil {
		panic(`chans: nil context`)
	}
	if err = ctx.Err(); err != nil {
		return
	}

	c.mu.Lock()
	var ok bool
	if value, ok, err = c.pollRecv(); ok || err != nil {
		c.mu.Unlock()
		return
	}
	ticket := waitq.NewTicket()
	w := c.recvq.Enqueue(ticket, 0, value)
	c.mu.Unlock()

	if err = c.wait(ctx, ticket, &c.recvq, w); err != nil {
		return
	}
	if _, closed := ticket.Result(); closed {
		err = ErrClosed
		return
	}
	return w.Value, nil
}

func (c *hchan[T]) TryReceive() (value T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ok bool
	value, ok, err = c.pollRecv()
	if !ok && err == nil {
		err = &NotReadyError{Verb: VerbRecv}
	}
	return
}

// pollSend attempts a send without suspending. Must be called with the lock
// held.
func (c *hchan[T]) pollSend(value T) (bool, error) {
	if c.closed {
		return false, ErrClosed
	}
	return c.variant.trySend(c, value), nil
}

// pollRecv attempts a receive without suspending. Must be called with the
// lock held. Values still deliverable after close are received first.
func (c *hchan[T]) pollRecv() (value T, ok bool, err error) {
	if value, ok = c.variant.tryRecv(c); ok {
		return
	}
	if c.closed {
		err = ErrClosed
	}
	return
}

// wait parks until the waiter w (registered in q) is claimed, or ctx is
// done, in which case w is removed.
func (c *hchan[T]) wait(ctx context.Context, ticket *waitq.Ticket, q *waitq.Queue[T], w *waitq.Waiter[T]) error {
	err := park(ctx, ticket)
	if err != nil {
		// the ticket is ours, so w cannot be claimed concurrently
		c.mu.Lock()
		q.Remove(w)
		c.mu.Unlock()
		c.log(c.logger.Trace()).
			Err(err).
			Log(`channel wait canceled`)
	}
	return err
}

// close marks the channel closed, then wakes every parked waiter, with the
// closed signal. Closing is idempotent.
//
// Receivers are only ever parked while nothing is deliverable, so waking
// them does not skip any buffered value.
func (c *hchan[T]) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	var senders, receivers int
	for w := c.sendq.Claim(); w != nil; w = c.sendq.Claim() {
		w.Wake(true)
		senders++
	}
	for w := c.recvq.Claim(); w != nil; w = c.recvq.Claim() {
		w.Wake(true)
		receivers++
	}
	c.mu.Unlock()

	c.log(c.logger.Debug()).
		Int(`senders`, senders).
		Int(`receivers`, receivers).
		Log(`channel closed`)
}

func (c *hchan[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// deliver completes a claimed receive waiter with value.
func deliver[T any](w *waitq.Waiter[T], value T) {
	w.Value = value
	w.Wake(false)
}

func (c *hchan[T]) log(b *logiface.Builder[logiface.Event]) *logiface.Builder[logiface.Event] {
	if !b.Enabled() {
		return b
	}
	b = b.Uint64(`chan`, c.id).Str(`kind`, c.variant.kind())
	if c.name != `` {
		b = b.Str(`name`, c.name)
	}
	return b
}
