package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

type recordingPublisher struct {
	mu       sync.Mutex
	events   []entity.LedgerEvent
	failures int
	err      error
	closed   bool
}

func (r *recordingPublisher) Publish(_ context.Context, event entity.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingPublisher) received() []entity.LedgerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.LedgerEvent(nil), r.events...)
}

func TestDispatcherKeepsOrder(t *testing.T) {
	rec := &recordingPublisher{}
	d := NewDispatcher(rec, 16)
	d.Start(context.Background())

	for i := int64(1); i <= 10; i++ {
		require.NoError(t, d.Publish(context.Background(), entity.LedgerEvent{TicketID: i}))
	}
	require.NoError(t, d.Close())

	got := rec.received()
	require.Len(t, got, 10)
	for i, ev := range got {
		assert.Equal(t, int64(i+1), ev.TicketID)
	}
	assert.True(t, rec.closed)

	assert.ErrorIs(t, d.Publish(context.Background(), entity.LedgerEvent{}), ErrDispatcherClosed)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(&recordingPublisher{}, 1)

	// not started, so the single slot stays occupied
	require.NoError(t, d.Publish(context.Background(), entity.LedgerEvent{}))
	assert.ErrorIs(t, d.Publish(context.Background(), entity.LedgerEvent{}), ErrBufferFull)
	assert.Equal(t, uint64(1), d.Dropped())
}

func TestRetryPublisher(t *testing.T) {
	transient := errors.New("broker unavailable")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantErr   bool
		delivered int
	}{
		{name: "succeeds after transient failures", failures: 2, err: transient, delivered: 1},
		{name: "gives up after max retries", failures: 5, err: transient, wantErr: true},
		{name: "permanent error is not retried", failures: 1, err: Permanent(transient), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingPublisher{failures: tt.failures, err: tt.err}
			pub := WithRetry(rec, NewRetryPolicy(3, time.Millisecond))

			err := pub.Publish(context.Background(), entity.LedgerEvent{ID: "e1"})
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, transient)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, rec.received(), tt.delivered)
		})
	}
}

func TestRetryPublisherStopsOnCancel(t *testing.T) {
	rec := &recordingPublisher{failures: 10, err: errors.New("down")}
	pub := WithRetry(rec, NewRetryPolicy(10, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.Publish(ctx, entity.LedgerEvent{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoffIsCapped(t *testing.T) {
	policy := NewRetryPolicy(10, 100*time.Millisecond)

	assert.Equal(t, 100*time.Millisecond, policy.Backoff(1))
	for attempt := 2; attempt <= 10; attempt++ {
		d := policy.Backoff(attempt)
		assert.LessOrEqual(t, d, 2*time.Second, "attempt %d", attempt)
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{failures: 1, err: errors.New("down")}

	err := Fanout(ok, failing).Publish(context.Background(), entity.LedgerEvent{ID: "x"})
	require.Error(t, err)
	assert.Len(t, ok.received(), 1)
}

type parkedEvents struct {
	mu     sync.Mutex
	events []entity.LedgerEvent
	causes []error
}

func (p *parkedEvents) Park(_ context.Context, event entity.LedgerEvent, cause error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.causes = append(p.causes, cause)
	return nil
}

func TestDispatcherParksFailedEvents(t *testing.T) {
	down := errors.New("broker down")
	rec := &recordingPublisher{failures: 1, err: down}
	dl := &parkedEvents{}

	d := NewDispatcher(rec, 4)
	d.SetDeadLetter(dl)
	d.Start(context.Background())

	require.NoError(t, d.Publish(context.Background(), entity.LedgerEvent{TicketID: 1}))
	require.NoError(t, d.Publish(context.Background(), entity.LedgerEvent{TicketID: 2}))
	require.NoError(t, d.Close())

	require.Len(t, dl.events, 1)
	assert.Equal(t, int64(1), dl.events[0].TicketID)
	assert.ErrorIs(t, dl.causes[0], down)

	got := rec.received()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].TicketID)
}

func TestRetryEachRedeliversOnlyToFailingSink(t *testing.T) {
	healthy := &recordingPublisher{}
	broken := &recordingPublisher{failures: 2, err: errors.New("down")}

	pub := RetryEach(NewRetryPolicy(3, time.Millisecond), healthy, broken)
	require.NoError(t, pub.Publish(context.Background(), entity.LedgerEvent{ID: "e1"}))

	assert.Len(t, healthy.received(), 1)
	assert.Len(t, broken.received(), 1)
}

func TestRetryEachReportsExhaustedSink(t *testing.T) {
	healthy := &recordingPublisher{}
	broken := &recordingPublisher{failures: 10, err: errors.New("down")}

	err := RetryEach(NewRetryPolicy(2, time.Millisecond), healthy, broken).
		Publish(context.Background(), entity.LedgerEvent{ID: "e1"})
	require.Error(t, err)
	assert.Len(t, healthy.received(), 1)
	assert.Empty(t, broken.received())
}

func TestDispatcherParksEventsOnFullBuffer(t *testing.T) {
	dl := &parkedEvents{}
	d := NewDispatcher(&recordingPublisher{}, 1)
	d.SetDeadLetter(dl)

	require.NoError(t, d.Publish(context.Background(), entity.LedgerEvent{TicketID: 1}))
	assert.ErrorIs(t, d.Publish(context.Background(), entity.LedgerEvent{TicketID: 2}), ErrBufferFull)

	require.Len(t, dl.events, 1)
	assert.Equal(t, int64(2), dl.events[0].TicketID)
	assert.ErrorIs(t, dl.causes[0], ErrBufferFull)
}
