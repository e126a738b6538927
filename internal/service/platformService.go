package service

import (
	"context"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func (s *ledgerService) UpdatePlatformFee(ctx context.Context, caller string, feePercent uint64) error {
	_, err := s.submit(ctx, Operation{Type: OpUpdatePlatformFee, Caller: caller, Value: feePercent})
	return err
}

func (s *ledgerService) UpdateMinTicketPrice(ctx context.Context, caller string, minPrice uint64) error {
	_, err := s.submit(ctx, Operation{Type: OpUpdateMinTicketPrice, Caller: caller, Value: minPrice})
	return err
}

// CalculatePlatformFee returns floor(amount * fee / 100) at the current fee.
func (s *ledgerService) CalculatePlatformFee(ctx context.Context, amount uint64) (uint64, error) {
	cfg, err := s.store.GetPlatform(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.CalculateFee(amount), nil
}

func (s *ledgerService) GetPlatform(ctx context.Context) (*entity.PlatformConfig, error) {
	return s.store.GetPlatform(ctx)
}

func (s *ledgerService) updatePlatformFee(ctx context.Context, caller string, feePercent uint64) (*entity.LedgerEvent, error) {
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		cfg, err := s.ownerConfig(ctx, caller)
		if err != nil {
			return err
		}
		if feePercent > entity.MaxPlatformFeePercent {
			return fmt.Errorf("%w: fee %d%% exceeds %d%%", entity.ErrInvalidPrice, feePercent, entity.MaxPlatformFeePercent)
		}

		cfg.PlatformFeePercent = feePercent
		return s.store.SavePlatform(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return &entity.LedgerEvent{Type: entity.LedgerPlatformFeeUpdated, Amount: feePercent}, nil
}

func (s *ledgerService) updateMinTicketPrice(ctx context.Context, caller string, minPrice uint64) (*entity.LedgerEvent, error) {
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		cfg, err := s.ownerConfig(ctx, caller)
		if err != nil {
			return err
		}

		cfg.MinTicketPrice = minPrice
		return s.store.SavePlatform(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return &entity.LedgerEvent{Type: entity.LedgerMinTicketPriceUpdate, Amount: minPrice}, nil
}

func (s *ledgerService) ownerConfig(ctx context.Context, caller string) (*entity.PlatformConfig, error) {
	cfg, err := s.store.GetPlatform(ctx)
	if err != nil {
		return nil, err
	}
	if caller != cfg.Owner {
		return nil, fmt.Errorf("%w: only the platform owner may change settings", entity.ErrNotAuthorized)
	}
	return cfg, nil
}
