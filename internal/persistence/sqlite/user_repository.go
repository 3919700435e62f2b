package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/hotel-reservations/internal/persistence"
)

// UserRepository implements persistence.UserRepository over the Store.
type UserRepository struct {
	store *Store
}

// NewUserRepository binds a user repository to the store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

const userColumns = `id, email, full_name, password_hash, disabled, created_at, updated_at`

// CreateUser inserts a guest account. A duplicate email yields ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, strings.ToLower(user.Email), user.FullName, user.PasswordHash,
		boolToInt(user.Disabled), formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	return mapSQLError(err)
}

// GetUser fetches one account by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches one account by email, case-insensitively.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
	return scanUser(row)
}

func scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var disabled int
	var createdAt, updatedAt string

	err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash,
		&disabled, &createdAt, &updatedAt)
	if err != nil {
		return persistence.User{}, mapSQLError(err)
	}

	user.Disabled = disabled != 0
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("sqlite: user %s created_at: %w", user.ID, err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("sqlite: user %s updated_at: %w", user.ID, err)
	}
	return user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
