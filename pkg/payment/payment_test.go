package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRailTransfer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		from, to string
		amount   uint64
		wantErr  error
		wantFrom uint64
		wantTo   uint64
	}{
		{name: "moves full amount", from: "alice", to: "bob", amount: 40, wantFrom: 60, wantTo: 40},
		{name: "exact balance", from: "alice", to: "bob", amount: 100, wantFrom: 0, wantTo: 100},
		{name: "insufficient funds leaves balances", from: "alice", to: "bob", amount: 101, wantErr: ErrInsufficientFunds, wantFrom: 100},
		{name: "self transfer rejected", from: "alice", to: "alice", amount: 1, wantErr: ErrInvalidTransfer, wantFrom: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rail := NewMemoryRail(map[string]uint64{"alice": 100})

			err := rail.Transfer(ctx, tt.from, tt.to, tt.amount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantFrom, rail.Balance("alice"))
			if tt.to != tt.from {
				assert.Equal(t, tt.wantTo, rail.Balance(tt.to))
			}
		})
	}
}

func TestMemoryRailRestore(t *testing.T) {
	rail := NewMemoryRail(map[string]uint64{"alice": 100})
	require.NoError(t, rail.Transfer(context.Background(), "alice", "bob", 100))
	assert.Equal(t, map[string]uint64{"bob": 100}, rail.Balances())

	fresh := NewMemoryRail(map[string]uint64{"alice": 100})
	fresh.Restore(rail.Balances())
	assert.Equal(t, uint64(0), fresh.Balance("alice"))
	assert.Equal(t, uint64(100), fresh.Balance("bob"))
}
