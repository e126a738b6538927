package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/postgres"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := postgres.Open(dsn)
	if err != nil {
		t.Skipf("database unreachable: %v", err)
	}

	ctx := context.Background()
	require.NoError(t, postgres.RunMigrations(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE user_tickets, tickets, events, organizers, platform_config`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE ledger_counters SET value = 0`)
	require.NoError(t, err)

	store := NewStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreEventAndTicketLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(ctx context.Context) error {
		id, err := store.NextEventID(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1), id)

		require.NoError(t, store.CreateEvent(ctx, &entity.Event{
			ID: id, Name: "Festival", Organizer: "org", EventHeight: 100,
			TotalTickets: 2, TicketPrice: 10, RefundWindow: 5, IsActive: true,
		}))

		tid, err := store.NextTicketID(ctx)
		require.NoError(t, err)
		require.NoError(t, store.CreateTicket(ctx, &entity.Ticket{
			ID: tid, EventID: id, Owner: "alice", PurchasePrice: 10, PurchaseHeight: 3,
		}))
		return store.AppendUserTicket(ctx, "alice", tid)
	})
	require.NoError(t, err)

	ev, err := store.GetEvent(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "Festival", ev.Name)

	ev.TicketsSold = 1
	ev.Revenue = 10
	require.NoError(t, store.UpdateEvent(ctx, ev))

	tk, err := store.GetTicket(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, tk)
	tk.IsUsed = true
	require.NoError(t, store.UpdateTicket(ctx, tk))

	tk, err = store.GetTicket(ctx, 1)
	require.NoError(t, err)
	assert.True(t, tk.IsUsed)

	idx, err := store.GetUserTickets(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, idx.TicketIDs)

	missing, err := store.GetEvent(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreRollbackReturnsIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(ctx context.Context) error {
		_, err := store.NextEventID(ctx)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	id, err := store.NextEventID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestStorePlatformAndOrganizer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg, err := store.InitPlatform(ctx, &entity.PlatformConfig{Owner: "owner", PlatformFeePercent: 5, MaxRefundWindow: 1008})
	require.NoError(t, err)
	assert.Equal(t, "owner", cfg.Owner)

	cfg, err = store.InitPlatform(ctx, &entity.PlatformConfig{Owner: "other"})
	require.NoError(t, err)
	assert.Equal(t, "owner", cfg.Owner)

	cfg.PlatformFeePercent = 8
	require.NoError(t, store.SavePlatform(ctx, cfg))
	got, err := store.GetPlatform(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), got.PlatformFeePercent)

	require.NoError(t, store.SaveOrganizer(ctx, &entity.OrganizerAccount{Identity: "org", EventsOrganized: 1}))
	require.NoError(t, store.SaveOrganizer(ctx, &entity.OrganizerAccount{Identity: "org", EventsOrganized: 2, TotalRevenue: 30}))
	acc, err := store.GetOrganizer(ctx, "org")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), acc.EventsOrganized)
	assert.Equal(t, uint64(30), acc.TotalRevenue)
}

func TestConcurrentTransactionsDoNotLoseUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateEvent(ctx, &entity.Event{
		ID: 1, Name: "Festival", Organizer: "org", EventHeight: 100,
		TotalTickets: 50, TicketPrice: 10, RefundWindow: 5, IsActive: true,
	}))

	const buyers = 20
	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.WithTx(ctx, func(ctx context.Context) error {
				event, err := store.GetEvent(ctx, 1)
				if err != nil {
					return err
				}
				time.Sleep(5 * time.Millisecond)
				event.TicketsSold++
				event.Revenue += event.TicketPrice
				return store.UpdateEvent(ctx, event)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	event, err := store.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(buyers), event.TicketsSold)
	assert.Equal(t, uint64(buyers*10), event.Revenue)
}
