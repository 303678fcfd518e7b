package coop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
)

// Scheduler runs tasks one at a time. Instances must be initialized using
// the New factory.
type Scheduler struct {
	loop   Loop
	own    *eventloop.Loop // set if the loop was not provided
	logger *logiface.Logger[logiface.Event]
	idle   chan struct{} // closed once running reaches zero
	errs   []error

	// baton is held for the duration of every step, i.e. while a task is
	// executing
	baton sync.Mutex

	mu       sync.Mutex // guards idle, errs, running
	running  int
	switches atomic.Uint64
	ids      atomic.Uint64
}

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("coop: task panicked: %v", e.Value)
}

// Unwrap returns the panic value, if it is an error.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// New initializes a new Scheduler. Unless [WithLoop] is provided, an event
// loop is created, which is run by [Scheduler.Run].
func New(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	x := &Scheduler{
		loop:   cfg.loop,
		logger: cfg.logger,
	}
	if x.loop == nil {
		if x.own, err = eventloop.New(); err != nil {
			return nil, err
		}
		x.loop = x.own
	}
	return x, nil
}

// Go spawns a task, which will run fn, with a context derived from ctx that
// suspends blocking chans operations via the task (see [Task.Park]).
//
// The context passed to fn, and any derived from it, must only be used by
// the task itself.
func (x *Scheduler) Go(ctx context.Context, fn func(ctx context.Context) error) *Task {
	if ctx == nil {
		panic(`coop: nil context`)
	}
	if fn == nil {
		panic(`coop: nil task func`)
	}

	t := &Task{
		sched:  x,
		id:     x.ids.Add(1),
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
		done:   make(chan struct{}),
	}

	x.mu.Lock()
	if x.running == 0 {
		x.idle = make(chan struct{})
	}
	x.running++
	x.mu.Unlock()

	go t.main(t.context(ctx), fn)
	x.schedule(t)

	return t
}

// Run runs the scheduler's loop until every task has finished, returning
// the errors of any failed tasks, joined, or ctx.Err(), if ctx is done
// first. If [WithLoop] was used, Run only waits for tasks.
//
// Tasks are only stepped while the loop is running, and Run must be called
// at most once.
func (x *Scheduler) Run(ctx context.Context) error {
	if x.own == nil {
		return x.Wait(ctx)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- x.own.Run(loopCtx)
	}()

	err := x.Wait(ctx)

	cancel()
	if loopErr := <-loopDone; err == nil && loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		err = loopErr
	}

	return err
}

// Wait blocks until there are no running tasks, returning the errors of
// any failed tasks, joined, or ctx.Err(), if ctx is done first.
func (x *Scheduler) Wait(ctx context.Context) error {
	x.mu.Lock()
	idle := x.idle
	x.mu.Unlock()

	if idle != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle:
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	return errors.Join(x.errs...)
}

// Switches returns the number of task steps performed, i.e. the number of
// times control has passed to a task.
func (x *Scheduler) Switches() uint64 {
	return x.switches.Load()
}

// schedule arranges for t to be stepped on the loop. If the loop has
// stopped, t is stepped from a new goroutine, still holding the baton.
func (x *Scheduler) schedule(t *Task) {
	if err := x.loop.Submit(func() { x.step(t) }); err != nil {
		x.logger.Warning().
			Limit().
			Err(err).
			Uint64(`task`, t.id).
			Log(`coop: loop submit failed, stepping task off-loop`)
		go x.step(t)
	}
}

// step passes control to t, until it parks or returns.
func (x *Scheduler) step(t *Task) {
	x.baton.Lock()
	defer x.baton.Unlock()
	x.switches.Add(1)
	t.resume <- struct{}{}
	<-t.yield
}

func (x *Scheduler) finish(t *Task) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if t.err != nil {
		x.errs = append(x.errs, t.err)
	}
	x.running--
	if x.running == 0 {
		close(x.idle)
	}
}
