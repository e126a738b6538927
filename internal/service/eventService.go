package service

import (
	"context"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func (s *ledgerService) CreateEvent(ctx context.Context, caller string, req *CreateEventRequest) (int64, error) {
	res, err := s.submit(ctx, Operation{Type: OpCreateEvent, Caller: caller, Event: req})
	return res.EventID, err
}

func (s *ledgerService) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *ledgerService) GetOrganizerRevenue(ctx context.Context, identity string) (*entity.OrganizerAccount, error) {
	acc, err := s.store.GetOrganizer(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to get organizer: %w", err)
	}
	return acc, nil
}

// createEvent checks price floor, refund ceiling and event height in that
// order. Both the price and the window violations report InvalidPrice.
func (s *ledgerService) createEvent(ctx context.Context, height uint64, caller string, req *CreateEventRequest) (int64, *entity.LedgerEvent, error) {
	if req == nil {
		return 0, nil, fmt.Errorf("%w: missing event", entity.ErrInvalidOperation)
	}
	if err := req.Validate(); err != nil {
		return 0, nil, err
	}

	var id int64
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.GetPlatform(ctx)
		if err != nil {
			return err
		}

		if req.TicketPrice < cfg.MinTicketPrice {
			return fmt.Errorf("%w: ticket price %d below minimum %d", entity.ErrInvalidPrice, req.TicketPrice, cfg.MinTicketPrice)
		}
		if req.RefundWindow > cfg.MaxRefundWindow {
			return fmt.Errorf("%w: refund window %d exceeds maximum %d", entity.ErrInvalidPrice, req.RefundWindow, cfg.MaxRefundWindow)
		}
		if req.EventHeight <= height {
			return fmt.Errorf("%w: event height %d is not after current height %d", entity.ErrEventExpired, req.EventHeight, height)
		}

		id, err = s.store.NextEventID(ctx)
		if err != nil {
			return err
		}

		event := &entity.Event{
			ID:           id,
			Name:         req.Name,
			Description:  req.Description,
			Venue:        req.Venue,
			Category:     req.Category,
			Organizer:    caller,
			EventHeight:  req.EventHeight,
			TotalTickets: req.TotalTickets,
			TicketPrice:  req.TicketPrice,
			RefundWindow: req.RefundWindow,
			IsActive:     true,
		}
		if err := s.store.CreateEvent(ctx, event); err != nil {
			return err
		}

		acc, err := s.store.GetOrganizer(ctx, caller)
		if err != nil {
			return err
		}
		if acc == nil {
			acc = &entity.OrganizerAccount{Identity: caller}
		}
		acc.EventsOrganized++
		return s.store.SaveOrganizer(ctx, acc)
	})
	if err != nil {
		return 0, nil, err
	}

	return id, &entity.LedgerEvent{
		Type:    entity.LedgerEventCreated,
		EventID: id,
		Amount:  req.TicketPrice,
	}, nil
}
