package persistence

import "time"

// Booking status values stored in the bookings table.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Payment status values stored in the bookings table.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Room operational status values. A room outside RoomStatusAvailable is never
// offered regardless of its booking calendar.
const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
	RoomStatusReserved    = "reserved"
)

// Hotel is a catalog property record.
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

// RoomCategory is a catalog room-class record.
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

// Room is a catalog room record referencing its hotel and category by id.
type Room struct {
	ID         string
	HotelID    string
	CategoryID string
	RoomNumber string
	Floor      int
	Status     string
	CreatedAt  time.Time
}

// RoomDetail joins a room with its owning category and hotel.
type RoomDetail struct {
	Room     Room
	Category RoomCategory
	Hotel    Hotel
}

// Booking is a reservation of one room for a half-open stay window.
type Booking struct {
	ID              string
	UserID          string
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	GuestCount      int
	SpecialRequests *string
	TotalAmount     float64
	Status          string
	PaymentStatus   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingStatusPair is the optimistic-concurrency token for guarded booking
// updates.
type BookingStatusPair struct {
	Status        string
	PaymentStatus string
}

// User is a guest account with login credentials.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
