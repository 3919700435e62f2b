package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// PaymentStatus is the settlement state of a booking's payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// RoomStatus is the coarse operational flag on a room, distinct from
// booking-derived availability for a date range.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusReserved    RoomStatus = "reserved"
)

// Hotel is a read-only catalog property.
type Hotel struct {
	ID          string
	Name        string
	Description string
	Address     string
	City        string
	Country     string
	Rating      int
	ImageURL    string
	CreatedAt   time.Time
}

// RoomCategory is a read-only catalog room class carrying the nightly rate
// and occupancy limit.
type RoomCategory struct {
	ID           string
	Name         string
	Description  string
	BasePrice    float64
	MaxOccupancy int
	Amenities    []string
	ImageURL     string
	CreatedAt    time.Time
}

// Room is a read-only catalog room referencing its hotel and category.
type Room struct {
	ID         string
	HotelID    string
	CategoryID string
	RoomNumber string
	Floor      int
	Status     RoomStatus
	CreatedAt  time.Time
}

// RoomDetail joins a room with its owning category and hotel for display and
// pricing.
type RoomDetail struct {
	Room     Room
	Category RoomCategory
	Hotel    Hotel
}

// Booking is a reservation of one room for a half-open stay window
// [CheckIn, CheckOut).
type Booking struct {
	ID              string
	UserID          string
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	GuestCount      int
	SpecialRequests string
	TotalAmount     float64
	Status          BookingStatus
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingDetail attaches the booked room's catalog data to a booking.
type BookingDetail struct {
	Booking Booking
	Room    RoomDetail
}

// SearchFilters narrows an availability search. CheckIn, CheckOut and Guests
// are required; the remaining fields are optional.
type SearchFilters struct {
	City     string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// CreateBookingParams wraps the data required to reserve a room.
type CreateBookingParams struct {
	Principal       Principal
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	GuestCount      int
	SpecialRequests string
}

// User represents a guest account exposed by the application services.
type User struct {
	ID        string
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// RegisterParams captures the data required to create a guest account.
type RegisterParams struct {
	Email    string
	Password string
	FullName string
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication
// attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
