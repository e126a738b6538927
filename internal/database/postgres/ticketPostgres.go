package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func (s *Store) NextTicketID(ctx context.Context) (int64, error) {
	return s.nextID(ctx, "ticket")
}

func (s *Store) CreateTicket(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, event_id, owner, purchase_price, purchase_height, is_used, is_refunded)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.q(ctx).ExecContext(ctx, query,
		ticket.ID,
		ticket.EventID,
		ticket.Owner,
		ticket.PurchasePrice,
		ticket.PurchaseHeight,
		ticket.IsUsed,
		ticket.IsRefunded,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (s *Store) GetTicket(ctx context.Context, id int64) (*entity.Ticket, error) {
	query := `
		SELECT id, event_id, owner, purchase_price, purchase_height, is_used, is_refunded
		FROM tickets
		WHERE id = $1
	`

	var ticket entity.Ticket
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.Owner,
		&ticket.PurchasePrice,
		&ticket.PurchaseHeight,
		&ticket.IsUsed,
		&ticket.IsRefunded,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

// UpdateTicket writes the terminal flags. Purchase price and height are
// immutable.
func (s *Store) UpdateTicket(ctx context.Context, ticket *entity.Ticket) error {
	result, err := s.q(ctx).ExecContext(ctx,
		`UPDATE tickets SET is_used = $1, is_refunded = $2 WHERE id = $3`,
		ticket.IsUsed, ticket.IsRefunded, ticket.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
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

func (s *Store) GetUserTickets(ctx context.Context, identity string) (*entity.UserTickets, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT ticket_id FROM user_tickets WHERE owner = $1 ORDER BY position`,
		identity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tickets: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ticket: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user tickets: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}
	return &entity.UserTickets{Identity: identity, TicketIDs: ids}, nil
}

func (s *Store) AppendUserTicket(ctx context.Context, identity string, ticketID int64) error {
	query := `
		INSERT INTO user_tickets (owner, position, ticket_id)
		SELECT $1, COALESCE(MAX(position), 0) + 1, $2
		FROM user_tickets
		WHERE owner = $1
	`

	if _, err := s.q(ctx).ExecContext(ctx, query, identity, ticketID); err != nil {
		return fmt.Errorf("failed to append user ticket: %w", err)
	}
	return nil
}
