package coop

import (
	"errors"

	"github.com/joeycumines/logiface"
)

// Loop is the interface required of an event loop. It is implemented by
// *eventloop.Loop, from github.com/joeycumines/go-eventloop.
type Loop interface {
	// Submit submits a task for execution on the loop.
	Submit(func()) error
}

// schedulerOptions holds configuration for a [Scheduler].
type schedulerOptions struct {
	loop   Loop
	logger *logiface.Logger[logiface.Event]
}

// Option configures a [Scheduler].
type Option interface {
	applyOption(*schedulerOptions) error
}

// schedulerOptionImpl implements [Option] via a closure.
type schedulerOptionImpl struct {
	fn func(*schedulerOptions) error
}

func (o *schedulerOptionImpl) applyOption(opts *schedulerOptions) error {
	return o.fn(opts)
}

// WithLoop configures the event loop tasks are stepped on. The caller is
// then responsible for running it, and [Scheduler.Run] only waits for tasks.
// If not set, the scheduler creates, and runs, its own loop.
// The loop must not be nil.
func WithLoop(loop Loop) Option {
	return &schedulerOptionImpl{fn: func(opts *schedulerOptions) error {
		if loop == nil {
			return errors.New(`coop: loop must not be nil`)
		}
		opts.loop = loop
		return nil
	}}
}

// WithLogger configures structured logging. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &schedulerOptionImpl{fn: func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveOptions applies the given options to a default [schedulerOptions].
func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
