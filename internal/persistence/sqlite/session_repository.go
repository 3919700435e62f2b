package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/hotel-reservations/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository over the Store.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository binds a session repository to the store.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

const sessionColumns = `id, user_id, token, expires_at, created_at, revoked_at`

// CreateSession inserts a new session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	var revokedAt sql.NullString
	if session.RevokedAt != nil {
		revokedAt = sql.NullString{String: formatTime(*session.RevokedAt), Valid: true}
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Token,
		formatTime(session.ExpiresAt), formatTime(session.CreatedAt), revokedAt)
	if err != nil {
		return persistence.Session{}, mapSQLError(err)
	}
	return session, nil
}

// GetSession fetches a session by token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token)
	return scanSession(row)
}

// RevokeSession stamps the session revoked and returns the updated record.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE token = ? AND revoked_at IS NULL`,
		formatTime(revokedAt), token)
	if err != nil {
		return persistence.Session{}, mapSQLError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes sessions past their expiry.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.store.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, formatTime(reference))
	return mapSQLError(err)
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var expiresAt, createdAt string
	var revokedAt sql.NullString

	err := row.Scan(&session.ID, &session.UserID, &session.Token,
		&expiresAt, &createdAt, &revokedAt)
	if err != nil {
		return persistence.Session{}, mapSQLError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: session %s expires_at: %w", session.ID, err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: session %s created_at: %w", session.ID, err)
	}
	if revokedAt.Valid {
		revoked, perr := parseTime(revokedAt.String)
		if perr != nil {
			return persistence.Session{}, fmt.Errorf("sqlite: session %s revoked_at: %w", session.ID, perr)
		}
		session.RevokedAt = &revoked
	}
	return session, nil
}
