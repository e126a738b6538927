// Package notify publishes committed ledger events to downstream consumers.
// Delivery is best effort: a failed publication never affects the ledger.
package notify

import (
	"context"
	"errors"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, event entity.LedgerEvent) error
	Close() error
}

// LogPublisher writes events to the structured log. Used when no broker is
// configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, event entity.LedgerEvent) error {
	logrus.WithFields(logrus.Fields{
		"event_type": event.Type,
		"height":     event.Height,
		"caller":     event.Caller,
		"event_id":   event.EventID,
		"ticket_id":  event.TicketID,
		"amount":     event.Amount,
	}).Info("Ledger event")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

type fanout []Publisher

// Fanout publishes every event to all publishers and joins their errors.
func Fanout(publishers ...Publisher) Publisher {
	return fanout(publishers)
}

func (f fanout) Publish(ctx context.Context, event entity.LedgerEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
