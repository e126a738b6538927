// Package memory is the in-process ledger store. Writes made inside WithTx
// are staged on the transaction and only reach the committed state when fn
// returns nil.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/database"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

type state struct {
	LastEventID  int64                              `cbor:"last_event_id"`
	LastTicketID int64                              `cbor:"last_ticket_id"`
	Events       map[int64]entity.Event             `cbor:"events"`
	Tickets      map[int64]entity.Ticket            `cbor:"tickets"`
	Organizers   map[string]entity.OrganizerAccount `cbor:"organizers"`
	UserTickets  map[string][]int64                 `cbor:"user_tickets"`
	Platform     *entity.PlatformConfig             `cbor:"platform"`
}

func newState() state {
	return state{
		Events:      make(map[int64]entity.Event),
		Tickets:     make(map[int64]entity.Ticket),
		Organizers:  make(map[string]entity.OrganizerAccount),
		UserTickets: make(map[string][]int64),
	}
}

// tx holds the writes of one open transaction.
type tx struct {
	lastEventID  int64
	lastTicketID int64
	events       map[int64]entity.Event
	tickets      map[int64]entity.Ticket
	organizers   map[string]entity.OrganizerAccount
	userTickets  map[string][]int64
	platform     *entity.PlatformConfig
}

type txKey struct{}

type Store struct {
	txMu sync.Mutex // one open transaction at a time
	mu   sync.RWMutex
	base state
	book BalanceBook
}

var _ database.Store = (*Store)(nil)

func New() *Store {
	return &Store{base: newState()}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	t := &tx{
		lastEventID:  s.base.LastEventID,
		lastTicketID: s.base.LastTicketID,
		events:       make(map[int64]entity.Event),
		tickets:      make(map[int64]entity.Ticket),
		organizers:   make(map[string]entity.OrganizerAccount),
		userTickets:  make(map[string][]int64),
	}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}

	s.commit(t)
	return nil
}

func (s *Store) commit(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.base.LastEventID = t.lastEventID
	s.base.LastTicketID = t.lastTicketID
	for id, e := range t.events {
		s.base.Events[id] = e
	}
	for id, tk := range t.tickets {
		s.base.Tickets[id] = tk
	}
	for identity, acc := range t.organizers {
		s.base.Organizers[identity] = acc
	}
	for identity, ids := range t.userTickets {
		s.base.UserTickets[identity] = ids
	}
	if t.platform != nil {
		s.base.Platform = t.platform
	}
}

func (s *Store) Close() error {
	return nil
}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// write runs fn against the transaction in ctx, opening one if needed.
func (s *Store) write(ctx context.Context, fn func(t *tx) error) error {
	return s.WithTx(ctx, func(ctx context.Context) error {
		return fn(txFrom(ctx))
	})
}

func (s *Store) NextEventID(ctx context.Context) (int64, error) {
	var id int64
	err := s.write(ctx, func(t *tx) error {
		t.lastEventID++
		id = t.lastEventID
		return nil
	})
	return id, err
}

func (s *Store) CreateEvent(ctx context.Context, event *entity.Event) error {
	return s.write(ctx, func(t *tx) error {
		t.events[event.ID] = *event
		return nil
	})
}

func (s *Store) UpdateEvent(ctx context.Context, event *entity.Event) error {
	existing, err := s.GetEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return entity.ErrNotFound
	}
	return s.CreateEvent(ctx, event)
}

func (s *Store) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	if t := txFrom(ctx); t != nil {
		if e, ok := t.events[id]; ok {
			return &e, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.base.Events[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *Store) NextTicketID(ctx context.Context) (int64, error) {
	var id int64
	err := s.write(ctx, func(t *tx) error {
		t.lastTicketID++
		id = t.lastTicketID
		return nil
	})
	return id, err
}

func (s *Store) CreateTicket(ctx context.Context, ticket *entity.Ticket) error {
	return s.write(ctx, func(t *tx) error {
		t.tickets[ticket.ID] = *ticket
		return nil
	})
}

func (s *Store) UpdateTicket(ctx context.Context, ticket *entity.Ticket) error {
	existing, err := s.GetTicket(ctx, ticket.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return entity.ErrNotFound
	}
	return s.CreateTicket(ctx, ticket)
}

func (s *Store) GetTicket(ctx context.Context, id int64) (*entity.Ticket, error) {
	if t := txFrom(ctx); t != nil {
		if tk, ok := t.tickets[id]; ok {
			return &tk, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if tk, ok := s.base.Tickets[id]; ok {
		return &tk, nil
	}
	return nil, nil
}

func (s *Store) GetOrganizer(ctx context.Context, identity string) (*entity.OrganizerAccount, error) {
	if t := txFrom(ctx); t != nil {
		if acc, ok := t.organizers[identity]; ok {
			return &acc, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.base.Organizers[identity]; ok {
		return &acc, nil
	}
	return nil, nil
}

func (s *Store) SaveOrganizer(ctx context.Context, account *entity.OrganizerAccount) error {
	return s.write(ctx, func(t *tx) error {
		t.organizers[account.Identity] = *account
		return nil
	})
}

func (s *Store) GetUserTickets(ctx context.Context, identity string) (*entity.UserTickets, error) {
	ids := s.userTicketIDs(ctx, identity)
	if ids == nil {
		return nil, nil
	}
	return &entity.UserTickets{Identity: identity, TicketIDs: slices.Clone(ids)}, nil
}

func (s *Store) AppendUserTicket(ctx context.Context, identity string, ticketID int64) error {
	return s.write(ctx, func(t *tx) error {
		ids := slices.Clone(s.userTicketIDs(ctx, identity))
		t.userTickets[identity] = append(ids, ticketID)
		return nil
	})
}

func (s *Store) userTicketIDs(ctx context.Context, identity string) []int64 {
	if t := txFrom(ctx); t != nil {
		if ids, ok := t.userTickets[identity]; ok {
			return ids
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base.UserTickets[identity]
}

func (s *Store) GetPlatform(ctx context.Context) (*entity.PlatformConfig, error) {
	if t := txFrom(ctx); t != nil && t.platform != nil {
		cfg := *t.platform
		return &cfg, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.base.Platform == nil {
		return nil, entity.ErrPlatformUninitiated
	}
	cfg := *s.base.Platform
	return &cfg, nil
}

func (s *Store) SavePlatform(ctx context.Context, cfg *entity.PlatformConfig) error {
	return s.write(ctx, func(t *tx) error {
		saved := *cfg
		t.platform = &saved
		return nil
	})
}

func (s *Store) InitPlatform(ctx context.Context, cfg *entity.PlatformConfig) (*entity.PlatformConfig, error) {
	var current *entity.PlatformConfig
	err := s.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.GetPlatform(ctx)
		if err == nil {
			current = existing
			return nil
		}
		if !errors.Is(err, entity.ErrPlatformUninitiated) {
			return err
		}
		if err := s.SavePlatform(ctx, cfg); err != nil {
			return err
		}
		saved := *cfg
		current = &saved
		return nil
	})
	return current, err
}
