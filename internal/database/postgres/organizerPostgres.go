package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func (s *Store) GetOrganizer(ctx context.Context, identity string) (*entity.OrganizerAccount, error) {
	query := `
		SELECT identity, events_organized, total_revenue, pending_withdrawals
		FROM organizers
		WHERE identity = $1
	`

	var acc entity.OrganizerAccount
	err := s.q(ctx).QueryRowContext(ctx, query, identity).Scan(
		&acc.Identity,
		&acc.EventsOrganized,
		&acc.TotalRevenue,
		&acc.PendingWithdrawals,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organizer: %w", err)
	}
	return &acc, nil
}

func (s *Store) SaveOrganizer(ctx context.Context, account *entity.OrganizerAccount) error {
	query := `
		INSERT INTO organizers (identity, events_organized, total_revenue, pending_withdrawals)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity) DO UPDATE
		SET events_organized = EXCLUDED.events_organized,
			total_revenue = EXCLUDED.total_revenue,
			pending_withdrawals = EXCLUDED.pending_withdrawals
	`

	_, err := s.q(ctx).ExecContext(ctx, query,
		account.Identity,
		account.EventsOrganized,
		account.TotalRevenue,
		account.PendingWithdrawals,
	)
	if err != nil {
		return fmt.Errorf("failed to save organizer: %w", err)
	}
	return nil
}
