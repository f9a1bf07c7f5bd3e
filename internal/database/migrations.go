package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createAccountsTable,
		createEventsTable,
		createCouponsTable,
		createTicketsTable,
		createTicketIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createAccountsTable = `
CREATE TABLE IF NOT EXISTS accounts (
    id VARCHAR(36) PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'user',
    phone VARCHAR(30),
    member BOOLEAN NOT NULL DEFAULT FALSE,
    member_id VARCHAR(50),
    member_verified BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (role IN ('user', 'admin', 'super_admin'))
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id VARCHAR(36) PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    location VARCHAR(500) NOT NULL DEFAULT '',
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    price_regular DECIMAL(10,2) NOT NULL DEFAULT 0,
    price_member DECIMAL(10,2),
    status VARCHAR(20) NOT NULL DEFAULT 'upcoming',
    image_url TEXT,
    featured BOOLEAN NOT NULL DEFAULT FALSE,
    total_tickets INTEGER,
    available_tickets INTEGER,
    deleted_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('upcoming', 'ongoing', 'completed', 'canceled')),
    CHECK (end_date >= start_date),
    CHECK (available_tickets IS NULL OR available_tickets >= 0),
    CHECK (total_tickets IS NULL OR available_tickets <= total_tickets)
);`

const createCouponsTable = `
CREATE TABLE IF NOT EXISTS coupons (
    id VARCHAR(36) PRIMARY KEY,
    code VARCHAR(50) UNIQUE NOT NULL,
    discount_percentage DECIMAL(5,2) NOT NULL,
    event_id VARCHAR(36) REFERENCES events(id),
    valid_from TIMESTAMP NOT NULL,
    valid_until TIMESTAMP,
    max_uses INTEGER,
    used_count INTEGER NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (max_uses IS NULL OR used_count <= max_uses)
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id VARCHAR(36) PRIMARY KEY,
    event_id VARCHAR(36) NOT NULL REFERENCES events(id),
    account_id VARCHAR(36) NOT NULL REFERENCES accounts(id),
    quantity INTEGER NOT NULL,
    ticket_type VARCHAR(20) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    payment_method VARCHAR(50) NOT NULL,
    payment_ref VARCHAR(50),
    total_amount DECIMAL(10,2) NOT NULL,
    coupon_code VARCHAR(50),
    discount_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
    qr_code TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (quantity > 0),
    CHECK (ticket_type IN ('regular', 'member')),
    CHECK (status IN ('active', 'used', 'canceled', 'expired'))
);`

const createTicketIndexes = `
CREATE INDEX IF NOT EXISTS tickets_account_id_idx ON tickets (account_id);
CREATE INDEX IF NOT EXISTS tickets_event_id_idx ON tickets (event_id);
CREATE INDEX IF NOT EXISTS coupons_code_idx ON coupons (code);
CREATE INDEX IF NOT EXISTS events_status_idx ON events (status);`
