// Package database declares the ledger stores. Every mutation goes through
// Transactor.WithTx so that all stores change together or not at all.
package database

import (
	"context"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

type Transactor interface {
	// WithTx runs fn inside one transaction carried by ctx. A nested call
	// joins the outer transaction. Returning an error discards every write.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventRepository interface {
	NextEventID(ctx context.Context) (int64, error)
	CreateEvent(ctx context.Context, event *entity.Event) error
	// GetEvent returns nil, nil when the event does not exist.
	GetEvent(ctx context.Context, id int64) (*entity.Event, error)
	UpdateEvent(ctx context.Context, event *entity.Event) error
}

type TicketRepository interface {
	NextTicketID(ctx context.Context) (int64, error)
	CreateTicket(ctx context.Context, ticket *entity.Ticket) error
	// GetTicket returns nil, nil when the ticket does not exist.
	GetTicket(ctx context.Context, id int64) (*entity.Ticket, error)
	UpdateTicket(ctx context.Context, ticket *entity.Ticket) error
}

type OrganizerRepository interface {
	// GetOrganizer returns nil, nil for an identity that never created an event.
	GetOrganizer(ctx context.Context, identity string) (*entity.OrganizerAccount, error)
	SaveOrganizer(ctx context.Context, account *entity.OrganizerAccount) error
}

type UserTicketRepository interface {
	// GetUserTickets returns nil, nil for an identity that never purchased.
	GetUserTickets(ctx context.Context, identity string) (*entity.UserTickets, error)
	AppendUserTicket(ctx context.Context, identity string, ticketID int64) error
}

type PlatformRepository interface {
	GetPlatform(ctx context.Context) (*entity.PlatformConfig, error)
	SavePlatform(ctx context.Context, cfg *entity.PlatformConfig) error
	// InitPlatform stores cfg unless a configuration already exists and
	// returns whichever configuration is in effect.
	InitPlatform(ctx context.Context, cfg *entity.PlatformConfig) (*entity.PlatformConfig, error)
}

type Store interface {
	Transactor
	EventRepository
	TicketRepository
	OrganizerRepository
	UserTicketRepository
	PlatformRepository
	Close() error
}
