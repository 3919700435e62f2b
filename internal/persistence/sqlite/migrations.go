package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration is one ordered schema step. Versions are applied exactly once,
// tracked in schema_migrations.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "catalog tables",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS hotels (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				address     TEXT NOT NULL DEFAULT '',
				city        TEXT NOT NULL,
				country     TEXT NOT NULL DEFAULT '',
				rating      INTEGER NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 5),
				image_url   TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS room_categories (
				id            TEXT PRIMARY KEY,
				name          TEXT NOT NULL,
				description   TEXT NOT NULL DEFAULT '',
				base_price    REAL NOT NULL CHECK (base_price > 0),
				max_occupancy INTEGER NOT NULL CHECK (max_occupancy > 0),
				amenities     TEXT NOT NULL DEFAULT '[]',
				image_url     TEXT NOT NULL DEFAULT '',
				created_at    TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS rooms (
				id          TEXT PRIMARY KEY,
				hotel_id    TEXT NOT NULL REFERENCES hotels(id),
				category_id TEXT NOT NULL REFERENCES room_categories(id),
				room_number TEXT NOT NULL,
				floor       INTEGER NOT NULL DEFAULT 0,
				status      TEXT NOT NULL DEFAULT 'available'
					CHECK (status IN ('available', 'occupied', 'maintenance', 'reserved')),
				created_at  TEXT NOT NULL,
				UNIQUE (hotel_id, room_number)
			)`,
		},
	},
	{
		version: 2,
		name:    "users and sessions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				full_name     TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL,
				disabled      INTEGER NOT NULL DEFAULT 0,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES users(id),
				token      TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
		},
	},
	{
		version: 3,
		name:    "bookings",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS bookings (
				id               TEXT PRIMARY KEY,
				user_id          TEXT NOT NULL REFERENCES users(id),
				room_id          TEXT NOT NULL REFERENCES rooms(id),
				check_in         TEXT NOT NULL,
				check_out        TEXT NOT NULL,
				guest_count      INTEGER NOT NULL CHECK (guest_count > 0),
				special_requests TEXT,
				total_amount     REAL NOT NULL CHECK (total_amount > 0),
				status           TEXT NOT NULL DEFAULT 'pending'
					CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed')),
				payment_status   TEXT NOT NULL DEFAULT 'pending'
					CHECK (payment_status IN ('pending', 'paid', 'failed', 'refunded')),
				created_at       TEXT NOT NULL,
				updated_at       TEXT NOT NULL,
				CHECK (check_out > check_in)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_room_window ON bookings(room_id, check_in, check_out)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id, created_at)`,
		},
	},
}

// Migrate applies pending schema migrations in order, each inside its own
// transaction.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite: store not open")
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := s.migrationApplied(ctx, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = s.withTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
					return fmt.Errorf("sqlite: migration %d (%s): %w", m.version, m.name, execErr)
				}
			}
			_, execErr := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, formatTime(time.Now()),
			)
			return execErr
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: check migration %d: %w", version, err)
	}
	return count > 0, nil
}
