package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func (s *Store) GetPlatform(ctx context.Context) (*entity.PlatformConfig, error) {
	query := `
		SELECT owner, platform_fee_percent, min_ticket_price, max_refund_window, purchase_after_event
		FROM platform_config
		WHERE id = 1
	`

	var cfg entity.PlatformConfig
	err := s.q(ctx).QueryRowContext(ctx, query).Scan(
		&cfg.Owner,
		&cfg.PlatformFeePercent,
		&cfg.MinTicketPrice,
		&cfg.MaxRefundWindow,
		&cfg.PurchaseAfterEvent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPlatformUninitiated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get platform config: %w", err)
	}
	return &cfg, nil
}

// SavePlatform updates the mutable settings. Owner, refund ceiling and
// purchase policy are fixed by InitPlatform.
func (s *Store) SavePlatform(ctx context.Context, cfg *entity.PlatformConfig) error {
	result, err := s.q(ctx).ExecContext(ctx,
		`UPDATE platform_config SET platform_fee_percent = $1, min_ticket_price = $2 WHERE id = 1`,
		cfg.PlatformFeePercent, cfg.MinTicketPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to save platform config: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrPlatformUninitiated
	}
	return nil
}

func (s *Store) InitPlatform(ctx context.Context, cfg *entity.PlatformConfig) (*entity.PlatformConfig, error) {
	var current *entity.PlatformConfig
	err := s.WithTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO platform_config (id, owner, platform_fee_percent, min_ticket_price, max_refund_window, purchase_after_event)
			VALUES (1, $1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`
		_, err := s.q(ctx).ExecContext(ctx, query,
			cfg.Owner,
			cfg.PlatformFeePercent,
			cfg.MinTicketPrice,
			cfg.MaxRefundWindow,
			cfg.PurchaseAfterEvent,
		)
		if err != nil {
			return fmt.Errorf("failed to init platform config: %w", err)
		}

		current, err = s.GetPlatform(ctx)
		return err
	})
	return current, err
}
