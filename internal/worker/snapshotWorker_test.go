package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/clock"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/database/memory"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

type countingSnapshotter struct {
	mu      sync.Mutex
	heights []uint64
	err     error
}

func (c *countingSnapshotter) SaveSnapshot(_ string, height uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.heights = append(c.heights, height)
	return nil
}

func (c *countingSnapshotter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.heights)
}

func TestSnapshotWorkerWritesOnShutdown(t *testing.T) {
	store := &countingSnapshotter{}
	clk := clock.NewManual(42)
	w := NewSnapshotWorker(store, clk, "unused", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	<-done
	assert.Equal(t, []uint64{42}, store.heights)
}

func TestSnapshotWorkerTicks(t *testing.T) {
	store := &countingSnapshotter{}
	w := NewSnapshotWorker(store, clock.NewManual(1), "unused", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return store.count() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestSnapshotFailureIsReported(t *testing.T) {
	store := &countingSnapshotter{err: errors.New("read-only filesystem")}
	w := NewSnapshotWorker(store, clock.NewManual(1), "unused", time.Hour)

	assert.False(t, w.Snapshot(context.Background()))
}

func TestSnapshotRestoresLedger(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.cbor")

	store := memory.New()
	_, err := store.InitPlatform(ctx, &entity.PlatformConfig{Owner: "platform", PlatformFeePercent: 5})
	require.NoError(t, err)
	require.NoError(t, store.CreateEvent(ctx, &entity.Event{ID: 1, Name: "Concert", Organizer: "alice"}))

	w := NewSnapshotWorker(store, clock.NewManual(77), path, time.Hour)
	require.True(t, w.Snapshot(ctx))

	restored := memory.New()
	height, err := restored.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), height)

	event, err := restored.GetEvent(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "Concert", event.Name)
}
