package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/database"
)

// Store implements every ledger repository on one *sql.DB so that a single
// transaction spans all of them.
type Store struct {
	db *sql.DB
}

var _ database.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.db, fn)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) q(ctx context.Context) queryer {
	return conn(ctx, s.db)
}

// nextID bumps a named counter. The row stays locked until the enclosing
// transaction ends, so a rollback gives the id back.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.WithTx(ctx, func(ctx context.Context) error {
		return s.q(ctx).QueryRowContext(ctx,
			`UPDATE ledger_counters SET value = value + 1 WHERE name = $1 RETURNING value`,
			name,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", name, err)
	}
	return id, nil
}
