package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/clock"
)

func TestSchedulerProducesBlocks(t *testing.T) {
	clk := clock.NewManual(10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewScheduler(clk, 5*time.Millisecond).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		h, _ := clk.Height(context.Background())
		return h >= 13
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	stopped, err := clk.Height(context.Background())
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	after, _ := clk.Height(context.Background())
	assert.Equal(t, stopped, after)
}
