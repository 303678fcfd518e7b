package chans

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfter(t *testing.T) {
	ctx := testContext(t)
	start := time.Now()
	ch := After(20 * time.Millisecond)

	_, err := ch.TryReceive()
	require.ErrorIs(t, err, ErrNotReady)

	v, err := ch.Receive(ctx)
	require.NoError(t, err)
	assert.False(t, v.Before(start.Add(20*time.Millisecond)))

	// the value is retained
	again, err := ch.TryReceive()
	require.NoError(t, err)
	assert.Equal(t, v, again)
}

func TestAfter_selectTimeout(t *testing.T) {
	ctx := testContext(t)
	never := NewUnicast[int]()
	index, err := Select(ctx, RecvFrom(never), RecvFrom(After(time.Millisecond)))
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.Equal(t, 0, receiversParked(never.core()))
}

func TestAfter_cancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(testContext(t), 10*time.Millisecond)
	defer cancel()
	_, err := After(time.Hour).Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
