package coop

import (
	"context"

	"github.com/joeycumines/go-chans"
)

// Task is a unit of work spawned by [Scheduler.Go].
//
// Each task has its own goroutine, and every Park that suspends starts one
// more, short-lived goroutine, which reschedules the task once it is woken.
type Task struct {
	sched  *Scheduler
	err    error
	resume chan struct{}
	yield  chan struct{}
	done   chan struct{}
	id     uint64
}

type taskKey struct{}

var _ chans.Parker = (*Task)(nil)

// TaskFrom returns the task associated with ctx, or nil.
func TaskFrom(ctx context.Context) *Task {
	t, _ := ctx.Value(taskKey{}).(*Task)
	return t
}

// ID returns the task's identifier, unique within its scheduler.
func (t *Task) ID() uint64 {
	return t.id
}

// Done is closed once the task has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's error. It must only be called after Done is closed.
func (t *Task) Err() error {
	return t.err
}

// Park implements [chans.Parker], yielding control until wake is closed, or
// ctx is done. If wake is already closed, Park returns immediately, without
// yielding.
func (t *Task) Park(ctx context.Context, wake <-chan struct{}) error {
	select {
	case <-wake:
		return nil
	default:
	}

	go func() {
		select {
		case <-wake:
		case <-ctx.Done():
		}
		t.sched.schedule(t)
	}()

	t.yield <- struct{}{}
	<-t.resume

	select {
	case <-wake:
		return nil
	default:
		return ctx.Err()
	}
}

func (t *Task) context(ctx context.Context) context.Context {
	return chans.WithParker(context.WithValue(ctx, taskKey{}, t), t)
}

func (t *Task) main(ctx context.Context, fn func(ctx context.Context) error) {
	<-t.resume

	logger := t.sched.logger
	logger.Debug().
		Uint64(`task`, t.id).
		Log(`coop: task started`)

	defer func() {
		if r := recover(); r != nil {
			t.err = PanicError{Value: r}
			logger.Err().
				Uint64(`task`, t.id).
				Err(t.err).
				Log(`coop: task panicked`)
		} else if t.err != nil {
			logger.Debug().
				Uint64(`task`, t.id).
				Err(t.err).
				Log(`coop: task failed`)
		} else {
			logger.Debug().
				Uint64(`task`, t.id).
				Log(`coop: task finished`)
		}
		close(t.done)
		t.sched.finish(t)
		t.yield <- struct{}{}
	}()

	t.err = fn(ctx)
}
