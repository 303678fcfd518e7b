// Package chans implements closable, typed channels between concurrently
// scheduled tasks, and a select primitive that waits on the first ready
// operation across several of them.
//
// # Variants
//
//   - [Unicast]: zero capacity, values are handed directly from sender to
//     receiver
//   - [Buffered]: bounded FIFO (or LIFO, see [WithOrder]) buffer
//   - [Broadcast]: each value is delivered to every receiver parked at the
//     time of the send, or dropped if there are none
//   - [Default]: a Broadcast channel that retains the last value sent
//
// Any of them may be wrapped by [Closable], which adds Close. Closing wakes
// every parked operation with [ErrClosed], though values already buffered
// remain receivable. [All] ranges over received values, ending when the
// channel is closed.
//
// # Select
//
// [Select] performs exactly one of several [Op] values, constructed using
// [SendTo] and [RecvFrom]. Operations able to complete immediately are
// preferred, in the order given. Otherwise, the caller is registered with
// every channel at once, and the first to match wins, the rest being
// deregistered before Select returns. [SelectNoWait] never suspends.
// [SelectGet] and [SelectGetDefault] are receive-only conveniences. Timeouts
// may be implemented by including a receive from [After].
//
// # Suspension
//
// Blocking operations accept a [context.Context], which may be used to
// cancel them. By default, the calling goroutine blocks. A scheduler may
// instead take control of suspension by attaching a [Parker] to the context,
// see [WithParker], and the coop package, which runs tasks one at a time, on
// an event loop.
//
// Every channel guards its state with a lock, held only while matching,
// claiming, or registering operations, never while suspended. Select
// acquires the locks of all of its channels, in a consistent order.
package chans
