package clock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	ctx := context.Background()
	clk := NewManual(10)

	h, err := clk.Height(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), h)

	h, err = clk.Advance(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), h)

	require.NoError(t, clk.Set(20))
	assert.Error(t, clk.Set(19), "clock must not move backwards")

	h, _ = clk.Height(ctx)
	assert.Equal(t, uint64(20), h)
}
