package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := Open(connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// Open connects with a ready DSN and checks the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Money and heights are unsigned in the ledger; BIGINT columns carry them,
// so stored values are bounded by the signed 64-bit range.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS ledger_counters (
		name VARCHAR(32) PRIMARY KEY,
		value BIGINT NOT NULL DEFAULT 0
	)`,
	`INSERT INTO ledger_counters (name, value) VALUES ('event', 0), ('ticket', 0)
		ON CONFLICT (name) DO NOTHING`,

	`CREATE TABLE IF NOT EXISTS events (
		id BIGINT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		venue VARCHAR(100) NOT NULL DEFAULT '',
		category VARCHAR(50) NOT NULL DEFAULT '',
		organizer TEXT NOT NULL,
		event_height BIGINT NOT NULL,
		total_tickets BIGINT NOT NULL CHECK (total_tickets >= 0),
		tickets_sold BIGINT NOT NULL DEFAULT 0 CHECK (tickets_sold >= 0),
		ticket_price BIGINT NOT NULL,
		refund_window BIGINT NOT NULL,
		revenue BIGINT NOT NULL DEFAULT 0 CHECK (revenue >= 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		CHECK (tickets_sold <= total_tickets)
	)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGINT PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id),
		owner TEXT NOT NULL,
		purchase_price BIGINT NOT NULL,
		purchase_height BIGINT NOT NULL,
		is_used BOOLEAN NOT NULL DEFAULT FALSE,
		is_refunded BOOLEAN NOT NULL DEFAULT FALSE,
		CHECK (NOT (is_used AND is_refunded))
	)`,

	`CREATE TABLE IF NOT EXISTS organizers (
		identity TEXT PRIMARY KEY,
		events_organized BIGINT NOT NULL DEFAULT 0,
		total_revenue BIGINT NOT NULL DEFAULT 0,
		pending_withdrawals BIGINT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS user_tickets (
		owner TEXT NOT NULL,
		position INTEGER NOT NULL,
		ticket_id BIGINT NOT NULL REFERENCES tickets(id),
		PRIMARY KEY (owner, position)
	)`,

	`CREATE TABLE IF NOT EXISTS platform_config (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		owner TEXT NOT NULL,
		platform_fee_percent BIGINT NOT NULL CHECK (platform_fee_percent BETWEEN 0 AND 100),
		min_ticket_price BIGINT NOT NULL CHECK (min_ticket_price >= 0),
		max_refund_window BIGINT NOT NULL,
		purchase_after_event BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_events_organizer ON events(organizer)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_event_id ON tickets(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_owner ON tickets(owner)`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
