package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/hotel-reservations/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository over the Store.
//
// CreateBooking runs its overlap check and insert inside one immediate-mode
// transaction. With SQLite's single writer, no other booking can land between
// the check and the insert, so two concurrent creates for overlapping windows
// on the same room can never both commit.
type BookingRepository struct {
	store *Store
}

// NewBookingRepository binds a booking repository to the store.
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

const bookingColumns = `id, user_id, room_id, check_in, check_out, guest_count,
	special_requests, total_amount, status, payment_status, created_at, updated_at`

const overlapCondition = `room_id = ? AND status != 'cancelled' AND check_in < ? AND ? < check_out`

// CreateBooking atomically verifies the no-overlap invariant for the room and
// inserts the booking. A conflicting non-cancelled booking at commit time
// yields persistence.ErrConflict.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	if booking.ID == "" {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		var conflicts int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM bookings WHERE `+overlapCondition,
			booking.RoomID, formatDate(booking.CheckOut), formatDate(booking.CheckIn),
		).Scan(&conflicts)
		if err != nil {
			return mapSQLError(err)
		}
		if conflicts > 0 {
			return persistence.ErrConflict
		}

		var specialRequests sql.NullString
		if booking.SpecialRequests != nil {
			specialRequests = sql.NullString{String: *booking.SpecialRequests, Valid: true}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			booking.ID, booking.UserID, booking.RoomID,
			formatDate(booking.CheckIn), formatDate(booking.CheckOut),
			booking.GuestCount, specialRequests, booking.TotalAmount,
			booking.Status, booking.PaymentStatus,
			formatTime(booking.CreatedAt), formatTime(booking.UpdatedAt),
		)
		return mapSQLError(err)
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return r.GetBooking(ctx, booking.ID)
}

// GetBooking fetches one booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// ListUserBookings returns the user's bookings, newest first.
func (r *BookingRepository) ListUserBookings(ctx context.Context, userID string) ([]persistence.Booking, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, scanErr := scanBooking(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// OverlappingRoomIDs reports which of the given rooms hold a non-cancelled
// booking intersecting [checkIn, checkOut).
func (r *BookingRepository) OverlappingRoomIDs(ctx context.Context, roomIDs []string, checkIn, checkOut time.Time) ([]string, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(roomIDs)-1) + "?"
	args := make([]any, 0, len(roomIDs)+2)
	for _, id := range roomIDs {
		args = append(args, id)
	}
	args = append(args, formatDate(checkOut), formatDate(checkIn))

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT DISTINCT room_id FROM bookings
		 WHERE room_id IN (`+placeholders+`)
		   AND status != 'cancelled' AND check_in < ? AND ? < check_out`,
		args...)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var conflicting []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapSQLError(err)
		}
		conflicting = append(conflicting, id)
	}
	return conflicting, rows.Err()
}

// UpdateBookingStatus transitions the booking's status pair only when the
// stored pair still equals expect, acting as a compare-and-swap so concurrent
// duplicate requests cannot both apply.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id string, expect, next persistence.BookingStatusPair) (persistence.Booking, error) {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, payment_status = ?, updated_at = ?
			 WHERE id = ? AND status = ? AND payment_status = ?`,
			next.Status, next.PaymentStatus, formatTime(time.Now()),
			id, expect.Status, expect.PaymentStatus,
		)
		if err != nil {
			return mapSQLError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: rows affected: %w", err)
		}
		if affected > 0 {
			return nil
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE id = ?`, id).Scan(&count); err != nil {
			return mapSQLError(err)
		}
		if count == 0 {
			return persistence.ErrNotFound
		}
		return persistence.ErrStaleStatus
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return r.GetBooking(ctx, id)
}

// ExpirePendingBookings cancels pending bookings created before cutoff and
// returns how many were affected.
func (r *BookingRepository) ExpirePendingBookings(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled', updated_at = ?
		 WHERE status = 'pending' AND created_at < ?`,
		formatTime(time.Now()), formatTime(cutoff),
	)
	if err != nil {
		return 0, mapSQLError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return int(affected), nil
}

// CompleteElapsedBookings marks paid confirmed bookings whose check-out date
// is on or before reference as completed.
func (r *BookingRepository) CompleteElapsedBookings(ctx context.Context, reference time.Time) (int, error) {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE bookings SET status = 'completed', updated_at = ?
		 WHERE status = 'confirmed' AND payment_status = 'paid' AND check_out <= ?`,
		formatTime(time.Now()), formatDate(reference),
	)
	if err != nil {
		return 0, mapSQLError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return int(affected), nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var checkIn, checkOut, createdAt, updatedAt string
	var specialRequests sql.NullString

	err := row.Scan(&booking.ID, &booking.UserID, &booking.RoomID,
		&checkIn, &checkOut, &booking.GuestCount, &specialRequests,
		&booking.TotalAmount, &booking.Status, &booking.PaymentStatus,
		&createdAt, &updatedAt)
	if err != nil {
		return persistence.Booking{}, mapSQLError(err)
	}

	if specialRequests.Valid {
		booking.SpecialRequests = &specialRequests.String
	}
	if booking.CheckIn, err = parseDate(checkIn); err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: booking %s check_in: %w", booking.ID, err)
	}
	if booking.CheckOut, err = parseDate(checkOut); err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: booking %s check_out: %w", booking.ID, err)
	}
	if booking.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: booking %s created_at: %w", booking.ID, err)
	}
	if booking.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: booking %s updated_at: %w", booking.ID, err)
	}
	return booking, nil
}
