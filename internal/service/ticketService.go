package service

import (
	"context"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func (s *ledgerService) PurchaseTicket(ctx context.Context, caller string, eventID int64) (int64, error) {
	res, err := s.submit(ctx, Operation{Type: OpPurchaseTicket, Caller: caller, EventID: eventID})
	return res.TicketID, err
}

func (s *ledgerService) ValidateTicket(ctx context.Context, caller string, ticketID int64) error {
	_, err := s.submit(ctx, Operation{Type: OpValidateTicket, Caller: caller, TicketID: ticketID})
	return err
}

func (s *ledgerService) RefundTicket(ctx context.Context, caller string, ticketID int64) error {
	_, err := s.submit(ctx, Operation{Type: OpRefundTicket, Caller: caller, TicketID: ticketID})
	return err
}

func (s *ledgerService) GetTicket(ctx context.Context, id int64) (*entity.Ticket, error) {
	ticket, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

func (s *ledgerService) GetUserTickets(ctx context.Context, identity string) (*entity.UserTickets, error) {
	tickets, err := s.store.GetUserTickets(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to get user tickets: %w", err)
	}
	return tickets, nil
}

func (s *ledgerService) purchaseTicket(ctx context.Context, height uint64, caller string, eventID int64) (int64, *entity.LedgerEvent, error) {
	var (
		id          int64
		price       uint64
		payee       string
		transferred bool
	)

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.store.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return fmt.Errorf("%w: event %d", entity.ErrNotFound, eventID)
		}
		if event.SoldOut() {
			return fmt.Errorf("%w: event %d has %d of %d tickets sold", entity.ErrSoldOut, eventID, event.TicketsSold, event.TotalTickets)
		}

		cfg, err := s.store.GetPlatform(ctx)
		if err != nil {
			return err
		}
		if !cfg.PurchaseAfterEvent && event.HasOccurred(height) {
			return fmt.Errorf("%w: event %d occurred at height %d", entity.ErrEventExpired, eventID, event.EventHeight)
		}

		price = event.TicketPrice
		revenue, err := addUint64(event.Revenue, price)
		if err != nil {
			return err
		}

		payee = s.counterparty(cfg, event)
		if err := s.transfer(ctx, caller, payee, price); err != nil {
			return err
		}
		transferred = true

		id, err = s.store.NextTicketID(ctx)
		if err != nil {
			return err
		}
		ticket := &entity.Ticket{
			ID:             id,
			EventID:        eventID,
			Owner:          caller,
			PurchasePrice:  price,
			PurchaseHeight: height,
		}
		if err := s.store.CreateTicket(ctx, ticket); err != nil {
			return err
		}

		event.TicketsSold++
		event.Revenue = revenue
		if err := s.store.UpdateEvent(ctx, event); err != nil {
			return err
		}

		acc, err := s.store.GetOrganizer(ctx, event.Organizer)
		if err != nil {
			return err
		}
		if acc == nil {
			acc = &entity.OrganizerAccount{Identity: event.Organizer}
		}
		if acc.TotalRevenue, err = addUint64(acc.TotalRevenue, price); err != nil {
			return err
		}
		if err := s.store.SaveOrganizer(ctx, acc); err != nil {
			return err
		}

		return s.store.AppendUserTicket(ctx, caller, id)
	})
	if err != nil {
		if transferred {
			s.compensate(ctx, payee, caller, price, err)
		}
		return 0, nil, err
	}

	return id, &entity.LedgerEvent{
		Type:     entity.LedgerTicketPurchased,
		EventID:  eventID,
		TicketID: id,
		Amount:   price,
	}, nil
}

// validateTicket redeems a ticket at the gate. Used and refunded tickets
// both report TicketUsed.
func (s *ledgerService) validateTicket(ctx context.Context, caller string, ticketID int64) (*entity.LedgerEvent, error) {
	var eventID int64

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.store.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("%w: ticket %d", entity.ErrNotFound, ticketID)
		}

		event, err := s.store.GetEvent(ctx, ticket.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return fmt.Errorf("%w: event %d", entity.ErrNotFound, ticket.EventID)
		}
		if caller != event.Organizer {
			return fmt.Errorf("%w: only the organizer of event %d may validate", entity.ErrNotAuthorized, event.ID)
		}
		if ticket.Settled() {
			return fmt.Errorf("%w: ticket %d", entity.ErrTicketUsed, ticketID)
		}

		ticket.IsUsed = true
		eventID = ticket.EventID
		return s.store.UpdateTicket(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	return &entity.LedgerEvent{
		Type:     entity.LedgerTicketValidated,
		EventID:  eventID,
		TicketID: ticketID,
	}, nil
}

// refundTicket returns the purchase price to the owner. Capacity is not
// reclaimed and organizer total revenue is historical, so only the event
// revenue goes down.
func (s *ledgerService) refundTicket(ctx context.Context, height uint64, caller string, ticketID int64) (*entity.LedgerEvent, error) {
	var (
		eventID     int64
		price       uint64
		payer       string
		transferred bool
	)

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.store.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("%w: ticket %d", entity.ErrNotFound, ticketID)
		}
		if caller != ticket.Owner {
			return fmt.Errorf("%w: only the owner of ticket %d may refund", entity.ErrNotAuthorized, ticketID)
		}
		if ticket.Settled() {
			return fmt.Errorf("%w: ticket %d", entity.ErrTicketUsed, ticketID)
		}

		event, err := s.store.GetEvent(ctx, ticket.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return fmt.Errorf("%w: event %d", entity.ErrNotFound, ticket.EventID)
		}
		if !ticket.WithinRefundWindow(height, event.RefundWindow) {
			return fmt.Errorf("%w: purchased at %d, window %d, now %d",
				entity.ErrRefundWindowClosed, ticket.PurchaseHeight, event.RefundWindow, height)
		}
		if event.Revenue < ticket.PurchasePrice {
			return fmt.Errorf("event %d revenue %d below refund %d", event.ID, event.Revenue, ticket.PurchasePrice)
		}

		cfg, err := s.store.GetPlatform(ctx)
		if err != nil {
			return err
		}

		eventID = event.ID
		price = ticket.PurchasePrice
		payer = s.counterparty(cfg, event)
		if err := s.transfer(ctx, payer, caller, price); err != nil {
			return err
		}
		transferred = true

		ticket.IsRefunded = true
		if err := s.store.UpdateTicket(ctx, ticket); err != nil {
			return err
		}

		event.Revenue -= price
		return s.store.UpdateEvent(ctx, event)
	})
	if err != nil {
		if transferred {
			s.compensate(ctx, caller, payer, price, err)
		}
		return nil, err
	}

	return &entity.LedgerEvent{
		Type:     entity.LedgerTicketRefunded,
		EventID:  eventID,
		TicketID: ticketID,
		Amount:   price,
	}, nil
}
