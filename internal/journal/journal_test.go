package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func TestJournalRecordAndList(t *testing.T) {
	ctx := context.Background()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	now := time.Now().UTC()
	records := []entity.OperationRecord{
		{Height: 1, Caller: "alice", Operation: "purchase-ticket", Arguments: `{"event_id":1}`, At: now},
		{Height: 1, Caller: "bob", Operation: "purchase-ticket", Arguments: `{"event_id":1}`, Code: entity.CodeSoldOut, Error: "event is sold out", At: now},
		{Height: 2, Caller: "alice", Operation: "refund-ticket", Arguments: `{"ticket_id":1}`, At: now},
	}
	for _, rec := range records {
		require.NoError(t, j.Record(ctx, rec))
	}

	all, err := j.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "refund-ticket", all[0].Operation, "newest first")
	assert.Equal(t, entity.CodeSoldOut, all[1].Code)

	alice, err := j.List(ctx, Filter{Caller: "alice"})
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	page, err := j.List(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Caller)
}
