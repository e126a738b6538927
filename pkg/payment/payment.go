// Package payment holds the value-transfer rails the ledger settles through.
// A transfer either moves the full amount or nothing.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransfer   = errors.New("invalid transfer")
)

type Rail interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
}

// MemoryRail keeps balances in process. Used by tests and standalone runs.
type MemoryRail struct {
	mu       sync.Mutex
	balances map[string]uint64
}

func NewMemoryRail(genesis map[string]uint64) *MemoryRail {
	balances := make(map[string]uint64, len(genesis))
	for id, amount := range genesis {
		balances[id] = amount
	}
	return &MemoryRail{balances: balances}
}

func (r *MemoryRail) Transfer(_ context.Context, from, to string, amount uint64) error {
	if from == "" || to == "" || from == to {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransfer, from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, r.balances[from], amount)
	}
	r.balances[from] -= amount
	r.balances[to] += amount
	return nil
}

// Credit mints amount into id.
func (r *MemoryRail) Credit(id string, amount uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[id] += amount
}

func (r *MemoryRail) Balance(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[id]
}

// Balances returns a copy of every non-zero balance.
func (r *MemoryRail) Balances() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]uint64, len(r.balances))
	for id, amount := range r.balances {
		if amount > 0 {
			out[id] = amount
		}
	}
	return out
}

// Restore replaces all balances with balances.
func (r *MemoryRail) Restore(balances map[string]uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.balances = make(map[string]uint64, len(balances))
	for id, amount := range balances {
		r.balances[id] = amount
	}
}
