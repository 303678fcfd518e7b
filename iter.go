package chans

import (
	"context"
	"errors"
	"iter"
)

// All returns a sequence of the values received from ch. The sequence ends
// normally once ch is closed and exhausted. Any other error (e.g. from ctx)
// is yielded once, with the zero value, and ends the sequence.
//
// Each value is consumed from ch, i.e. the sequence cannot be restarted.
func All[T any](ctx context.Context, ch Receiver[T]) iter.Seq2[T, error] {
	if ctx == nil {
		panic(`chans: nil context`)
	}
	if ch == nil {
		panic(`chans: nil channel`)
	}
	return func(yield func(T, error) bool) {
		for {
			value, err := ch.Receive(ctx)
			if errors.Is(err, ErrClosed) {
				return
			}
			if !yield(value, err) || err != nil {
				return
			}
		}
	}
}
