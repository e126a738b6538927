package memory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Core deterministic encoding: sorted map keys, so the same committed
	// state always produces identical bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("memory: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("memory: CBOR decoder initialization failed: " + err.Error())
	}
}

// BalanceBook is an in-process payment rail whose balances are saved and
// restored together with the ledger state.
type BalanceBook interface {
	Balances() map[string]uint64
	Restore(balances map[string]uint64)
}

type snapshot struct {
	Height   uint64            `cbor:"height"`
	State    state             `cbor:"state"`
	Balances map[string]uint64 `cbor:"balances"`
}

// TrackBalances includes book in every snapshot and restores it from
// LoadSnapshot. Call before the first load.
func (s *Store) TrackBalances(book BalanceBook) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.book = book
}

// SaveSnapshot writes the committed state to path. It waits for an open
// transaction to finish, so staged writes are never included.
func (s *Store) SaveSnapshot(path string, height uint64) error {
	s.txMu.Lock()
	snap := snapshot{Height: height}
	if s.book != nil {
		snap.Balances = s.book.Balances()
	}
	s.mu.RLock()
	snap.State = s.base
	data, err := encMode.Marshal(snap)
	s.mu.RUnlock()
	s.txMu.Unlock()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the committed state with the snapshot at path and
// returns the height it was taken at. A missing file returns an error
// wrapping os.ErrNotExist.
func (s *Store) LoadSnapshot(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}

	snap := snapshot{State: newState()}
	if err := decMode.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("decode snapshot: %w", err)
	}
	restored := newState()
	restored.LastEventID = snap.State.LastEventID
	restored.LastTicketID = snap.State.LastTicketID
	restored.Platform = snap.State.Platform
	for id, e := range snap.State.Events {
		restored.Events[id] = e
	}
	for id, t := range snap.State.Tickets {
		restored.Tickets[id] = t
	}
	for identity, acc := range snap.State.Organizers {
		restored.Organizers[identity] = acc
	}
	for identity, ids := range snap.State.UserTickets {
		restored.UserTickets[identity] = ids
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	s.base = restored
	s.mu.Unlock()

	if s.book != nil && snap.Balances != nil {
		s.book.Restore(snap.Balances)
	}

	return snap.Height, nil
}
