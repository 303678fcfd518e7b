package chans

import (
	"errors"

	"github.com/joeycumines/logiface"
)

// Order is the storage discipline of a [Buffered] channel.
type Order uint8

const (
	// FIFO buffers values as a queue. It is the default.
	FIFO Order = iota
	// LIFO buffers values as a stack, i.e. the most recently buffered value
	// is received first.
	LIFO
)

// chanOptions holds configuration for channel construction.
type chanOptions struct {
	logger *logiface.Logger[logiface.Event]
	name   string
	order  Order
}

// Option configures a channel. Options are applied during construction, and
// a constructor panics if any option is invalid.
type Option interface {
	applyOption(*chanOptions) error
}

// chanOptionImpl implements [Option] via a closure.
type chanOptionImpl struct {
	fn func(*chanOptions) error
}

func (o *chanOptionImpl) applyOption(opts *chanOptions) error {
	return o.fn(opts)
}

// WithLogger configures structured logging for the channel. A nil logger
// disables logging, which is the default.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &chanOptionImpl{fn: func(opts *chanOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithName sets a name, included in log events.
func WithName(name string) Option {
	return &chanOptionImpl{fn: func(opts *chanOptions) error {
		opts.name = name
		return nil
	}}
}

// WithOrder sets the storage discipline of a [Buffered] channel. It has no
// effect on other variants.
func WithOrder(order Order) Option {
	return &chanOptionImpl{fn: func(opts *chanOptions) error {
		switch order {
		case FIFO, LIFO:
		default:
			return errors.New(`chans: invalid order`)
		}
		opts.order = order
		return nil
	}}
}

// resolveOptions applies the given options to a default [chanOptions],
// panicking on error.
func resolveOptions(opts []Option) *chanOptions {
	cfg := &chanOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			panic(err)
		}
	}
	return cfg
}
