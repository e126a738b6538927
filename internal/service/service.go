package service

import (
	"context"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

// EventService registers events and reads organizer aggregates.
type EventService interface {
	CreateEvent(ctx context.Context, caller string, req *CreateEventRequest) (int64, error)
	GetEvent(ctx context.Context, id int64) (*entity.Event, error)
	GetOrganizerRevenue(ctx context.Context, identity string) (*entity.OrganizerAccount, error)
}

// TicketService covers the ticket lifecycle: purchase, validation at the
// gate and self-service refund.
type TicketService interface {
	PurchaseTicket(ctx context.Context, caller string, eventID int64) (int64, error)
	ValidateTicket(ctx context.Context, caller string, ticketID int64) error
	RefundTicket(ctx context.Context, caller string, ticketID int64) error
	GetTicket(ctx context.Context, id int64) (*entity.Ticket, error)
	GetUserTickets(ctx context.Context, identity string) (*entity.UserTickets, error)
}

// PlatformService holds the owner-gated platform settings.
type PlatformService interface {
	UpdatePlatformFee(ctx context.Context, caller string, feePercent uint64) error
	UpdateMinTicketPrice(ctx context.Context, caller string, minPrice uint64) error
	CalculatePlatformFee(ctx context.Context, amount uint64) (uint64, error)
	GetPlatform(ctx context.Context) (*entity.PlatformConfig, error)
	Height(ctx context.Context) (uint64, error)
}

// BatchService applies several operations at one height, in order. A
// rejected operation does not affect its siblings.
type BatchService interface {
	ApplyBatch(ctx context.Context, ops []Operation) (*BatchResult, error)
}

type Ledger interface {
	EventService
	TicketService
	PlatformService
	BatchService

	// Quiesce runs fn while no operation is in progress.
	Quiesce(fn func() error) error
}

// Publisher receives ledger events after their operation commits.
type Publisher interface {
	Publish(ctx context.Context, event entity.LedgerEvent) error
}

// Recorder journals every operation outcome.
type Recorder interface {
	Record(ctx context.Context, rec entity.OperationRecord) error
}
