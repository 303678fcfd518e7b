package chans

import (
	"cmp"
	"context"

	"github.com/joeycumines/go-chans/internal/waitq"
	"golang.org/x/exp/slices"
)

// NotReady is the index returned by [SelectNoWait] when no operation could
// complete immediately.
const NotReady = -1

// selection is the state of a single select call.
type selection struct {
	ops     []Op
	locks   []*lockable
	blocked []bool
}

// Select performs exactly one of ops, suspending until one of them can
// complete, returning its index. For a [RecvOp], the received value is
// available via its Value field.
//
// If several operations can complete immediately, the first listed wins.
// Once suspended, whichever operation is matched first wins. Operations on
// closed channels are excluded, and ErrClosed is returned only if every
// operation is on a closed channel that is unable to perform it (for
// receives, a closed channel that is also exhausted).
//
// If ctx is done before an operation completes, ctx.Err() is returned, and
// none of the operations will have taken effect.
//
// A panic will occur if ctx is nil, no ops are provided, or the same op is
// provided more than once. Distinct ops may share a channel.
func Select(ctx context.Context, ops ...Op) (int, error) {
	if ctx == nil {
		panic(`chans: nil context`)
	}
	if err := ctx.Err(); err != nil {
		return NotReady, err
	}
	sel := newSelection(ops)
	for {
		sel.lock()
		if index, err := sel.poll(); index != NotReady || err != nil {
			sel.unlock()
			return index, err
		}
		ticket := waitq.NewTicket()
		for i, op := range sel.ops {
			if !sel.blocked[i] {
				op.enqueue(ticket, i)
			}
		}
		sel.unlock()

		err := park(ctx, ticket)

		// deregister the losers (and, if canceled, everything)
		sel.lock()
		for i, op := range sel.ops {
			if !sel.blocked[i] {
				op.dequeue()
			}
		}
		sel.unlock()

		if err != nil {
			return NotReady, err
		}

		index, closed := ticket.Result()
		if closed {
			// the channel closed while parked, retry without it
			continue
		}
		sel.ops[index].settle()
		return index, nil
	}
}

// SelectNoWait is like [Select], but returns [NotReady] instead of
// suspending, if no operation can complete immediately.
func SelectNoWait(ops ...Op) (int, error) {
	sel := newSelection(ops)
	sel.lock()
	defer sel.unlock()
	return sel.poll()
}

// SelectGet receives from the first of channels to have a value, using
// [Select], returning the channel received from, and the value.
func SelectGet[T any](ctx context.Context, channels ...Receiver[T]) (Receiver[T], T, error) {
	ops, recvs := recvOps(channels)
	index, err := Select(ctx, ops...)
	if err != nil {
		var zero T
		return nil, zero, err
	}
	return channels[index], recvs[index].Value, nil
}

// SelectGetDefault is like [SelectGet], but uses [SelectNoWait], returning
// a nil channel and def, if no channel had a value.
func SelectGetDefault[T any](def T, channels ...Receiver[T]) (Receiver[T], T, error) {
	ops, recvs := recvOps(channels)
	index, err := SelectNoWait(ops...)
	if err != nil {
		var zero T
		return nil, zero, err
	}
	if index == NotReady {
		return nil, def, nil
	}
	return channels[index], recvs[index].Value, nil
}

func recvOps[T any](channels []Receiver[T]) ([]Op, []*RecvOp[T]) {
	ops := make([]Op, len(channels))
	recvs := make([]*RecvOp[T], len(channels))
	for i, ch := range channels {
		recvs[i] = RecvFrom(ch)
		ops[i] = recvs[i]
	}
	return ops, recvs
}

func newSelection(ops []Op) *selection {
	if len(ops) == 0 {
		panic(`chans: select requires at least one operation`)
	}
	sel := selection{
		ops:     ops,
		locks:   make([]*lockable, 0, len(ops)),
		blocked: make([]bool, len(ops)),
	}
	for i, op := range ops {
		if op == nil {
			panic(`chans: nil operation`)
		}
		// each op holds the registration for a single waiter
		if slices.Contains(ops[:i], op) {
			panic(`chans: duplicate operation`)
		}
		sel.locks = append(sel.locks, op.base())
	}
	// lock in channel order, each channel once, to avoid deadlocking
	// against concurrent selects
	slices.SortFunc(sel.locks, func(a, b *lockable) int {
		return cmp.Compare(a.id, b.id)
	})
	sel.locks = slices.Compact(sel.locks)
	return &sel
}

func (x *selection) lock() {
	for _, l := range x.locks {
		l.mu.Lock()
	}
}

func (x *selection) unlock() {
	for i := len(x.locks) - 1; i >= 0; i-- {
		x.locks[i].mu.Unlock()
	}
}

// poll performs the first operation able to complete immediately, in the
// order given, recording which operations are blocked by a closed channel.
// Must be called with every lock held.
func (x *selection) poll() (int, error) {
	viable := false
	for i, op := range x.ops {
		done, blocked := op.poll()
		if done {
			return i, nil
		}
		x.blocked[i] = blocked
		if !blocked {
			viable = true
		}
	}
	if !viable {
		return NotReady, ErrClosed
	}
	return NotReady, nil
}
