package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

var (
	ErrBufferFull       = errors.New("notification buffer full")
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

// DeadLetter keeps events whose delivery failed for later inspection.
type DeadLetter interface {
	Park(ctx context.Context, event entity.LedgerEvent, cause error) error
}

// Dispatcher decouples publication from the ledger. Events are queued in a
// bounded buffer and delivered by a single goroutine in commit order.
type Dispatcher struct {
	next       Publisher
	deadLetter DeadLetter
	queue      chan entity.LedgerEvent
	done       chan struct{}
	mu         sync.RWMutex
	closed     bool
	dropped    atomic.Uint64
}

func NewDispatcher(next Publisher, bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Dispatcher{
		next:  next,
		queue: make(chan entity.LedgerEvent, bufferSize),
		done:  make(chan struct{}),
	}
}

// SetDeadLetter parks undeliverable events in dl. Call before Start.
func (d *Dispatcher) SetDeadLetter(dl DeadLetter) {
	d.deadLetter = dl
}

// Start delivers queued events until Close is called. ctx bounds each
// publication.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		for event := range d.queue {
			if err := d.next.Publish(ctx, event); err != nil {
				d.fail(ctx, event, err)
			}
		}
	}()
}

func (d *Dispatcher) fail(ctx context.Context, event entity.LedgerEvent, cause error) {
	entry := logrus.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})
	entry.Errorf("Failed to publish ledger event: %v", cause)

	if d.deadLetter == nil {
		return
	}
	if err := d.deadLetter.Park(ctx, event, cause); err != nil {
		entry.Errorf("Failed to park ledger event: %v", err)
	}
}

// Publish enqueues event without blocking. Events rejected on a full buffer
// are parked in the dead-letter set when one is configured.
func (d *Dispatcher) Publish(ctx context.Context, event entity.LedgerEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- event:
		return nil
	default:
		d.dropped.Add(1)
		d.fail(context.WithoutCancel(ctx), event, ErrBufferFull)
		return ErrBufferFull
	}
}

// Dropped reports how many events were rejected because the buffer was full.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close stops accepting events, waits for the queue to drain and closes the
// downstream publisher. Start must have been called.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
	return d.next.Close()
}
