package coop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-chans"
	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newScheduler(t *testing.T, opts ...Option) *Scheduler {
	t.Helper()
	sched, err := New(opts...)
	require.NoError(t, err)
	return sched
}

func TestScheduler_pingPong(t *testing.T) {
	ctx := testContext(t)
	sched := newScheduler(t)

	ping := chans.NewUnicast[int]()
	pong := chans.NewUnicast[int]()
	const rounds = 50

	var trace []string
	sched.Go(ctx, func(ctx context.Context) error {
		for i := range rounds {
			trace = append(trace, fmt.Sprint(`ping `, i))
			if err := ping.Send(ctx, i); err != nil {
				return err
			}
			v, err := pong.Receive(ctx)
			if err != nil {
				return err
			}
			if v != i*2 {
				return fmt.Errorf(`unexpected pong %d`, v)
			}
		}
		return nil
	})
	sched.Go(ctx, func(ctx context.Context) error {
		for range rounds {
			v, err := ping.Receive(ctx)
			if err != nil {
				return err
			}
			trace = append(trace, fmt.Sprint(`pong `, v))
			if err := pong.Send(ctx, v*2); err != nil {
				return err
			}
		}
		return nil
	})

	require.NoError(t, sched.Run(ctx))
	require.Len(t, trace, rounds*2)
	for i := range rounds {
		assert.Equal(t, fmt.Sprint(`ping `, i), trace[i*2])
		assert.Equal(t, fmt.Sprint(`pong `, i), trace[i*2+1])
	}
	assert.Greater(t, sched.Switches(), uint64(rounds))
}

func TestScheduler_oneTaskAtATime(t *testing.T) {
	ctx := testContext(t)
	sched := newScheduler(t)

	ch := chans.NewClosable[int](chans.NewBuffered[int](2))
	var active, peak atomic.Int32
	enter := func() {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Microsecond)
	}
	leave := func() { active.Add(-1) }

	const producers = 4
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := range producers {
		sched.Go(ctx, func(ctx context.Context) error {
			defer wg.Done()
			for i := range 20 {
				enter()
				leave()
				if err := ch.Send(ctx, p*100+i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	sched.Go(ctx, func(ctx context.Context) error {
		return ch.Send(ctx, -1)
	})
	var received int
	sched.Go(ctx, func(ctx context.Context) error {
		for v, err := range chans.All[int](ctx, ch) {
			if err != nil {
				return err
			}
			enter()
			leave()
			if v >= 0 {
				received++
			}
			if received == producers*20 {
				ch.Close()
			}
		}
		return nil
	})

	err := sched.Run(ctx)
	wg.Wait()
	// the -1 sender may be woken by close, if it was not yet received
	if err != nil {
		require.ErrorIs(t, err, chans.ErrClosed)
	}
	assert.Equal(t, producers*20, received)
	assert.Equal(t, int32(1), peak.Load())
}

func TestScheduler_noSwitchWithoutSuspending(t *testing.T) {
	ctx := testContext(t)
	sched := newScheduler(t)

	state := chans.NewDefaultWith(`ready`)
	idle := chans.NewUnicast[int]()
	task := sched.Go(ctx, func(ctx context.Context) error {
		if _, err := state.Receive(ctx); err != nil {
			return err
		}
		index, err := chans.SelectNoWait(chans.RecvFrom(idle), chans.SendTo(idle, 1))
		if err != nil {
			return err
		}
		if index != chans.NotReady {
			return fmt.Errorf(`unexpected index %d`, index)
		}
		return nil
	})

	require.NoError(t, sched.Run(ctx))
	<-task.Done()
	require.NoError(t, task.Err())
	assert.Equal(t, uint64(1), sched.Switches())
}

func TestScheduler_parkedSwitches(t *testing.T) {
	ctx := testContext(t)
	sched := newScheduler(t)

	ch := chans.NewUnicast[int]()
	sched.Go(ctx, func(ctx context.Context) error {
		_, err := ch.Receive(ctx)
		return err
	})
	sched.Go(ctx, func(ctx context.Context) error {
		return ch.Send(ctx, 1)
	})

	require.NoError(t, sched.Run(ctx))
	// receiver: start, resumed after the send; sender: start
	assert.Equal(t, uint64(3), sched.Switches())
}

func TestScheduler_taskErrors(t *testing.T) {
	ctx := testContext(t)
	sched := newScheduler(t)

	errA := errors.New(`a`)
	a := sched.Go(ctx, func(context.Context) error { return errA })
	b := sched.Go(ctx, func(context.Context) error { panic(`boom`) })
	c := sched.Go(ctx, func(context.Context) error { return nil })

	err := sched.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	var panicErr PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, `boom`, panicErr.Value)
	assert.EqualError(t, panicErr, `coop: task panicked: boom`)

	for _, task := range []*Task{a, b, c} {
		select {
		case <-task.Done():
		default:
			t.Fatal(`expected task done`)
		}
	}
	assert.Same(t, errA, a.Err())
	assert.IsType(t, PanicError{}, b.Err())
	assert.NoError(t, c.Err())
}

func TestPanicError_Unwrap(t *testing.T) {
	inner := errors.New(`inner`)
	assert.ErrorIs(t, PanicError{Value: inner}, inner)
	assert.NoError(t, PanicError{Value: 1}.Unwrap())
}

func TestScheduler_cancelParkedTask(t *testing.T) {
	ctx := testContext(t)
	sched := newScheduler(t)

	never := chans.NewUnicast[int]()
	taskCtx, cancel := context.WithCancel(ctx)
	started := chans.NewDefault[struct{}]()
	task := sched.Go(taskCtx, func(ctx context.Context) error {
		_ = started.TrySend(struct{}{})
		_, err := never.Receive(ctx)
		return err
	})

	runErr := make(chan error, 1)
	go func() { runErr <- sched.Run(ctx) }()

	_, err := started.Receive(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-ctx.Done():
		t.Fatal(ctx.Err())
	}
	assert.ErrorIs(t, task.Err(), context.Canceled)
	_, err = never.TryReceive()
	assert.ErrorIs(t, err, chans.ErrNotReady)
}

func TestScheduler_runCanceled(t *testing.T) {
	sched := newScheduler(t)
	never := chans.NewUnicast[int]()
	sched.Go(context.Background(), func(ctx context.Context) error {
		_, err := never.Receive(ctx)
		return err
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sched.Run(ctx), context.DeadlineExceeded)
}

func TestScheduler_TaskFrom(t *testing.T) {
	ctx := testContext(t)
	sched := newScheduler(t)
	assert.Nil(t, TaskFrom(ctx))

	var inner *Task
	task := sched.Go(ctx, func(ctx context.Context) error {
		inner = TaskFrom(ctx)
		if _, ok := chans.ParkerFrom(ctx).(*Task); !ok {
			return errors.New(`expected task parker`)
		}
		return nil
	})
	require.NoError(t, sched.Run(ctx))
	assert.Same(t, task, inner)
	assert.NotZero(t, task.ID())
}

func TestScheduler_externalLoop(t *testing.T) {
	ctx := testContext(t)

	loop, err := eventloop.New()
	require.NoError(t, err)
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = loop.Run(loopCtx) }()

	sched := newScheduler(t, WithLoop(loop))
	ch := chans.NewBuffered[int](1)
	sched.Go(ctx, func(ctx context.Context) error {
		return ch.Send(ctx, 5)
	})
	require.NoError(t, sched.Run(ctx))
	v, err := ch.TryReceive()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestScheduler_waitWithoutTasks(t *testing.T) {
	sched := newScheduler(t)
	assert.NoError(t, sched.Wait(testContext(t)))
}

func TestNew_invalidLoop(t *testing.T) {
	sched, err := New(WithLoop(nil))
	assert.EqualError(t, err, `coop: loop must not be nil`)
	assert.Nil(t, sched)
}

func TestScheduler_Go_invalid(t *testing.T) {
	sched := newScheduler(t)
	//lint:ignore SA1012 testing nil context
	assert.PanicsWithValue(t, `coop: nil context`, func() { sched.Go(nil, func(context.Context) error { return nil }) })
	assert.PanicsWithValue(t, `coop: nil task func`, func() { sched.Go(context.Background(), nil) })
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (x *lockedBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.Write(p)
}

func (x *lockedBuffer) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.String()
}

func TestScheduler_logging(t *testing.T) {
	ctx := testContext(t)
	var buf lockedBuffer
	sched := newScheduler(t, WithLogger(stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(&buf),
			stumpy.WithTimeField(``),
		),
		stumpy.L.WithLevel(logiface.LevelDebug),
	).Logger()))

	sched.Go(ctx, func(context.Context) error { return nil })
	require.NoError(t, sched.Run(ctx))

	assert.Equal(t, `{"lvl":"debug","task":"1","msg":"coop: task started"}
{"lvl":"debug","task":"1","msg":"coop: task finished"}
`, buf.String())
}
