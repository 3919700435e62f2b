package persistence

import (
	"context"
	"time"
)

// RoomSearchFilter narrows the structural candidate query for availability
// searches. Zero values mean "no constraint".
type RoomSearchFilter struct {
	// City is matched case-insensitively as a substring of the hotel city.
	City string
	// CategoryName must equal the category name exactly when provided.
	CategoryName string
	// MinOccupancy excludes categories that cannot host the party.
	MinOccupancy int
}

// CatalogRepository exposes read operations over the static hotel catalog.
type CatalogRepository interface {
	ListHotels(ctx context.Context) ([]Hotel, error)
	GetHotel(ctx context.Context, id string) (Hotel, error)
	ListRoomCategories(ctx context.Context) ([]RoomCategory, error)
	GetRoomDetail(ctx context.Context, roomID string) (RoomDetail, error)
	// ListAvailableRooms returns rooms whose operational status is
	// RoomStatusAvailable and which satisfy the structural filter, with
	// category and hotel joined, in catalog order.
	ListAvailableRooms(ctx context.Context, filter RoomSearchFilter) ([]RoomDetail, error)
}

// BookingRepository stores reservations and enforces the no-overlap invariant
// at insert time.
type BookingRepository interface {
	// CreateBooking atomically verifies that no non-cancelled booking on the
	// same room overlaps [booking.CheckIn, booking.CheckOut) and inserts the
	// record. Implementations must make the check and the insert a single
	// atomic unit; a losing writer receives ErrConflict.
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	// ListUserBookings returns the user's bookings, newest first.
	ListUserBookings(ctx context.Context, userID string) ([]Booking, error)
	// OverlappingRoomIDs reports which of the given rooms hold a
	// non-cancelled booking intersecting the half-open window
	// [checkIn, checkOut).
	OverlappingRoomIDs(ctx context.Context, roomIDs []string, checkIn, checkOut time.Time) ([]string, error)
	// UpdateBookingStatus transitions a booking's status pair only when the
	// stored pair equals expect. A mismatch returns ErrStaleStatus.
	UpdateBookingStatus(ctx context.Context, id string, expect, next BookingStatusPair) (Booking, error)
	// ExpirePendingBookings cancels pending bookings created before cutoff
	// and returns how many were affected.
	ExpirePendingBookings(ctx context.Context, cutoff time.Time) (int, error)
	// CompleteElapsedBookings marks confirmed bookings whose check-out date
	// is on or before reference as completed and returns how many were
	// affected.
	CompleteElapsedBookings(ctx context.Context, reference time.Time) (int, error)
}

// UserRepository stores guest accounts and credentials.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
