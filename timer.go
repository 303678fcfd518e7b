package chans

import (
	"context"
	"time"
)

// After returns a [Default] channel that retains the current time, once d
// has elapsed. Every receive suspends until then, and returns immediately
// afterward, making it suitable as a timeout, in a [Select].
func After(d time.Duration, opts ...Option) *Default[time.Time] {
	ch := NewDefault[time.Time](opts...)
	time.AfterFunc(d, func() {
		// sends on a Default channel never suspend
		_ = ch.Send(context.Background(), time.Now())
	})
	return ch
}
