package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func (s *Store) NextEventID(ctx context.Context) (int64, error) {
	return s.nextID(ctx, "event")
}

func (s *Store) CreateEvent(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (
			id, name, description, venue, category, organizer, event_height,
			total_tickets, tickets_sold, ticket_price, refund_window, revenue, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.q(ctx).ExecContext(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.Venue,
		event.Category,
		event.Organizer,
		event.EventHeight,
		event.TotalTickets,
		event.TicketsSold,
		event.TicketPrice,
		event.RefundWindow,
		event.Revenue,
		event.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("event %d already exists: %w", event.ID, err)
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	query := `
		SELECT id, name, description, venue, category, organizer, event_height,
			total_tickets, tickets_sold, ticket_price, refund_window, revenue, is_active
		FROM events
		WHERE id = $1
	`

	var event entity.Event
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Venue,
		&event.Category,
		&event.Organizer,
		&event.EventHeight,
		&event.TotalTickets,
		&event.TicketsSold,
		&event.TicketPrice,
		&event.RefundWindow,
		&event.Revenue,
		&event.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// UpdateEvent persists the mutable counters. Descriptive fields and the
// organizer never change after creation.
func (s *Store) UpdateEvent(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET tickets_sold = $1, revenue = $2, is_active = $3
		WHERE id = $4
	`

	result, err := s.q(ctx).ExecContext(ctx, query,
		event.TicketsSold,
		event.Revenue,
		event.IsActive,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}
