package chans

import (
	"context"

	"github.com/joeycumines/go-chans/internal/waitq"
)

// Parker suspends the calling task, on behalf of a blocking channel
// operation. It is the hook by which a scheduler (see the coop package)
// takes control of suspension and resumption.
//
// Park must return nil only after wake is closed, or ctx.Err() if ctx is
// done first. If both are ready, either outcome is acceptable.
type Parker interface {
	Park(ctx context.Context, wake <-chan struct{}) error
}

type parkerKey struct{}

// goroutineParker blocks the calling goroutine, and is used when the context
// carries no Parker.
type goroutineParker struct{}

// WithParker returns a context that causes blocking operations performed
// using it to suspend via p.
func WithParker(ctx context.Context, p Parker) context.Context {
	if ctx == nil {
		panic(`chans: nil context`)
	}
	if p == nil {
		panic(`chans: nil parker`)
	}
	return context.WithValue(ctx, parkerKey{}, p)
}

// ParkerFrom returns the Parker that blocking operations will use, for ctx.
func ParkerFrom(ctx context.Context) Parker {
	if p, ok := ctx.Value(parkerKey{}).(Parker); ok {
		return p
	}
	return goroutineParker{}
}

func (goroutineParker) Park(ctx context.Context, wake <-chan struct{}) error {
	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// park suspends until ticket is woken, or ctx is done. A non-nil error means
// the ticket was claimed by the caller, i.e. the operation was canceled and
// its waiters must be removed.
func park(ctx context.Context, ticket *waitq.Ticket) error {
	err := ParkerFrom(ctx).Park(ctx, ticket.Done())
	if err == nil {
		return nil
	}
	if ticket.Claim() {
		return err
	}
	// lost the race: the claimant completes the hand-off without blocking
	<-ticket.Done()
	return nil
}
