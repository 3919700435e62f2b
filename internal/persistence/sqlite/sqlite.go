// Package sqlite implements the persistence repositories on SQLite via the
// pure-Go modernc.org/sqlite driver.
//
// Connections are opened with immediate transaction locking so that every
// write transaction takes the database write lock up front. SQLite's single
// writer then serialises the booking check-and-insert, which is what closes
// the double-booking race: the overlap check a transaction performs is still
// valid when its insert commits.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/example/hotel-reservations/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store owns the database handle shared by the repositories.
type Store struct {
	db *sql.DB
}

// Open connects to the database identified by the DSN. Foreign keys and
// immediate transaction locking are enforced regardless of the caller's DSN.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: empty dsn")
	}

	db, err := sql.Open("sqlite", normalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// SQLite allows one writer; a single pooled connection avoids
	// SQLITE_BUSY churn between our own transactions.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for test seeding.
func (s *Store) DB() *sql.DB {
	return s.db
}

func normalizeDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	extras := make([]string, 0, 2)
	if !strings.Contains(dsn, "foreign_keys") {
		extras = append(extras, "_pragma="+url.QueryEscape("foreign_keys(1)"))
	}
	if !strings.Contains(dsn, "_txlock") {
		extras = append(extras, "_txlock=immediate")
	}
	if len(extras) == 0 {
		return dsn
	}
	return dsn + sep + strings.Join(extras, "&")
}

// withTx runs fn inside a transaction, committing on nil and rolling back on
// error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// mapSQLError translates driver constraint failures into persistence errors.
func mapSQLError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return persistence.ErrForeignKeyViolation
	case strings.Contains(msg, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}

const dateFormat = "2006-01-02"

func formatDate(t time.Time) string {
	return t.UTC().Format(dateFormat)
}

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateFormat, value, time.UTC)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
