package waitq

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicket_Claim(t *testing.T) {
	ticket := NewTicket()
	require.True(t, ticket.Claim())
	require.False(t, ticket.Claim())
	require.False(t, ticket.Claim())
}

func TestTicket_ClaimConcurrent(t *testing.T) {
	ticket := NewTicket()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ticket.Claim() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestTicket_Wake(t *testing.T) {
	ticket := NewTicket()
	select {
	case <-ticket.Done():
		t.Fatal("expected pending ticket")
	default:
	}
	require.True(t, ticket.Claim())
	ticket.Wake(3, true)
	<-ticket.Done()
	index, closed := ticket.Result()
	assert.Equal(t, 3, index)
	assert.True(t, closed)
}

func TestQueue_FIFO(t *testing.T) {
	var q Queue[int]
	for i := range 4 {
		q.Enqueue(NewTicket(), i, i*10)
	}
	require.Equal(t, 4, q.Len())
	for i := range 4 {
		w := q.Claim()
		require.NotNil(t, w)
		assert.Equal(t, i*10, w.Value)
		assert.False(t, q.Remove(w), `claimed waiter still linked`)
		w.Wake(false)
		index, closed := w.ticket.Result()
		assert.Equal(t, i, index)
		assert.False(t, closed)
	}
	assert.Nil(t, q.Claim())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ClaimSkipsStale(t *testing.T) {
	var a, b Queue[string]
	shared := NewTicket()
	a.Enqueue(shared, 0, `a`)
	b.Enqueue(shared, 1, `b`)
	other := NewTicket()
	b.Enqueue(other, 0, `c`)

	w := a.Claim()
	require.NotNil(t, w)
	assert.Equal(t, `a`, w.Value)

	// the first waiter in b shares the claimed ticket, and is dropped
	assert.Equal(t, 2, b.Len())
	w = b.Claim()
	require.NotNil(t, w)
	assert.Equal(t, `c`, w.Value)
	assert.Same(t, other, w.ticket)
	assert.Equal(t, 0, b.Len())
}

func TestQueue_ClaimDiscardsOnlyStale(t *testing.T) {
	var q Queue[int]
	ticket := NewTicket()
	q.Enqueue(ticket, 0, 1)
	require.True(t, ticket.Claim())
	assert.Nil(t, q.Claim())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Remove(t *testing.T) {
	var q, other Queue[int]
	w1 := q.Enqueue(NewTicket(), 0, 1)
	w2 := q.Enqueue(NewTicket(), 0, 2)
	w3 := q.Enqueue(NewTicket(), 0, 3)

	assert.False(t, other.Remove(w2))
	assert.True(t, q.Remove(w2))
	assert.False(t, q.Remove(w2))
	assert.False(t, q.Remove(nil))
	assert.Equal(t, 2, q.Len())

	assert.Same(t, w1, q.Claim())
	assert.True(t, q.Remove(w3))
	assert.Nil(t, q.Claim())

	// re-usable after draining
	w4 := q.Enqueue(NewTicket(), 0, 4)
	assert.Same(t, w4, q.Claim())
}

func TestQueue_EnqueueNilTicket(t *testing.T) {
	var q Queue[int]
	assert.PanicsWithValue(t, `waitq: nil ticket`, func() {
		q.Enqueue(nil, 0, 0)
	})
}
