package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/hotel-reservations/internal/application"
	"github.com/example/hotel-reservations/internal/persistence"
)

var (
	hotelCounter    uint64
	categoryCounter uint64
	roomCounter     uint64
	bookingCounter  uint64
	userCounter     uint64
	sessionCounter  uint64
)

var referenceTime = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceStay returns a deterministic three-night stay window one week
// after the reference time.
func ReferenceStay() (checkIn, checkOut time.Time) {
	checkIn = time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)
	return checkIn, checkIn.AddDate(0, 0, 3)
}

// ----------------------------- Hotel fixtures ----------------------------

// HotelFixture represents a deterministic hotel record.
type HotelFixture struct {
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

// HotelOption configures the generated hotel fixture.
type HotelOption func(*HotelFixture)

// NewHotelFixture returns a deterministic hotel fixture with optional
// overrides.
func NewHotelFixture(opts ...HotelOption) HotelFixture {
	idx := atomic.AddUint64(&hotelCounter, 1)
	id := fmt.Sprintf("hotel-%03d", idx)
	fixture := HotelFixture{
		ID:          id,
		Name:        fmt.Sprintf("Hotel %03d", idx),
		Description: fmt.Sprintf("Description for hotel %03d", idx),
		Address:     fmt.Sprintf("%d Harbour Street", idx),
		City:        "Lisbon",
		Country:     "Portugal",
		Rating:      4,
		ImageURL:    fmt.Sprintf("https://images.example.com/%s.jpg", id),
		CreatedAt:   referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithHotelID overrides the generated hotel ID.
func WithHotelID(id string) HotelOption {
	return func(f *HotelFixture) {
		f.ID = id
	}
}

// WithHotelName overrides the generated hotel name.
func WithHotelName(name string) HotelOption {
	return func(f *HotelFixture) {
		f.Name = name
	}
}

// WithHotelCity sets the city the hotel is located in.
func WithHotelCity(city string) HotelOption {
	return func(f *HotelFixture) {
		f.City = city
	}
}

// WithHotelCountry sets the country the hotel is located in.
func WithHotelCountry(country string) HotelOption {
	return func(f *HotelFixture) {
		f.Country = country
	}
}

// WithHotelRating sets the star rating.
func WithHotelRating(rating int) HotelOption {
	return func(f *HotelFixture) {
		f.Rating = rating
	}
}

// Persistence converts the fixture into a persistence record.
func (f HotelFixture) Persistence() persistence.Hotel {
	return persistence.Hotel{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Address:     f.Address,
		City:        f.City,
		Country:     f.Country,
		Rating:      f.Rating,
		ImageURL:    f.ImageURL,
		CreatedAt:   f.CreatedAt,
	}
}

// Application converts the fixture into an application model.
func (f HotelFixture) Application() application.Hotel {
	return application.Hotel{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Address:     f.Address,
		City:        f.City,
		Country:     f.Country,
		Rating:      f.Rating,
		ImageURL:    f.ImageURL,
		CreatedAt:   f.CreatedAt,
	}
}

// ------------------------- Room category fixtures ------------------------

// RoomCategoryFixture represents a deterministic room-class record.
type RoomCategoryFixture struct {
	ID           string
	Name         string
	Description  string
	BasePrice    float64
	MaxOccupancy int
	Amenities    []string
	ImageURL     string
	CreatedAt    time.Time
}

// RoomCategoryOption configures the generated category fixture.
type RoomCategoryOption func(*RoomCategoryFixture)

// NewRoomCategoryFixture returns a deterministic category fixture with
// optional overrides.
func NewRoomCategoryFixture(opts ...RoomCategoryOption) RoomCategoryFixture {
	idx := atomic.AddUint64(&categoryCounter, 1)
	id := fmt.Sprintf("category-%03d", idx)
	fixture := RoomCategoryFixture{
		ID:           id,
		Name:         fmt.Sprintf("Category %03d", idx),
		Description:  fmt.Sprintf("Description for category %03d", idx),
		BasePrice:    100,
		MaxOccupancy: 2,
		Amenities:    []string{"wifi", "air conditioning"},
		ImageURL:     fmt.Sprintf("https://images.example.com/%s.jpg", id),
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCategoryID overrides the generated category ID.
func WithCategoryID(id string) RoomCategoryOption {
	return func(f *RoomCategoryFixture) {
		f.ID = id
	}
}

// WithCategoryName overrides the generated category name.
func WithCategoryName(name string) RoomCategoryOption {
	return func(f *RoomCategoryFixture) {
		f.Name = name
	}
}

// WithBasePrice sets the nightly rate.
func WithBasePrice(price float64) RoomCategoryOption {
	return func(f *RoomCategoryFixture) {
		f.BasePrice = price
	}
}

// WithMaxOccupancy sets the occupancy limit.
func WithMaxOccupancy(limit int) RoomCategoryOption {
	return func(f *RoomCategoryFixture) {
		f.MaxOccupancy = limit
	}
}

// WithAmenities replaces the amenity list.
func WithAmenities(amenities ...string) RoomCategoryOption {
	return func(f *RoomCategoryFixture) {
		f.Amenities = amenities
	}
}

// Persistence converts the fixture into a persistence record.
func (f RoomCategoryFixture) Persistence() persistence.RoomCategory {
	return persistence.RoomCategory{
		ID:           f.ID,
		Name:         f.Name,
		Description:  f.Description,
		BasePrice:    f.BasePrice,
		MaxOccupancy: f.MaxOccupancy,
		Amenities:    f.Amenities,
		ImageURL:     f.ImageURL,
		CreatedAt:    f.CreatedAt,
	}
}

// Application converts the fixture into an application model.
func (f RoomCategoryFixture) Application() application.RoomCategory {
	return application.RoomCategory{
		ID:           f.ID,
		Name:         f.Name,
		Description:  f.Description,
		BasePrice:    f.BasePrice,
		MaxOccupancy: f.MaxOccupancy,
		Amenities:    f.Amenities,
		ImageURL:     f.ImageURL,
		CreatedAt:    f.CreatedAt,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room record tied to a hotel and a
// category.
type RoomFixture struct {
	ID         string
	HotelID    string
	CategoryID string
	RoomNumber string
	Floor      int
	Status     string
	CreatedAt  time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional
// overrides. Callers usually pair it with WithRoomHotel and WithRoomCategory
// so foreign keys resolve.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:         fmt.Sprintf("room-%03d", idx),
		HotelID:    "hotel-001",
		CategoryID: "category-001",
		RoomNumber: fmt.Sprintf("%d", 100+idx),
		Floor:      1,
		Status:     persistence.RoomStatusAvailable,
		CreatedAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomHotel ties the room to the given hotel.
func WithRoomHotel(hotelID string) RoomOption {
	return func(f *RoomFixture) {
		f.HotelID = hotelID
	}
}

// WithRoomCategory ties the room to the given category.
func WithRoomCategory(categoryID string) RoomOption {
	return func(f *RoomFixture) {
		f.CategoryID = categoryID
	}
}

// WithRoomNumber overrides the generated room number.
func WithRoomNumber(number string) RoomOption {
	return func(f *RoomFixture) {
		f.RoomNumber = number
	}
}

// WithRoomFloor sets the floor.
func WithRoomFloor(floor int) RoomOption {
	return func(f *RoomFixture) {
		f.Floor = floor
	}
}

// WithRoomStatus sets the operational status.
func WithRoomStatus(status string) RoomOption {
	return func(f *RoomFixture) {
		f.Status = status
	}
}

// Persistence converts the fixture into a persistence record.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:         f.ID,
		HotelID:    f.HotelID,
		CategoryID: f.CategoryID,
		RoomNumber: f.RoomNumber,
		Floor:      f.Floor,
		Status:     f.Status,
		CreatedAt:  f.CreatedAt,
	}
}

// Application converts the fixture into an application model.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:         f.ID,
		HotelID:    f.HotelID,
		CategoryID: f.CategoryID,
		RoomNumber: f.RoomNumber,
		Floor:      f.Floor,
		Status:     application.RoomStatus(f.Status),
		CreatedAt:  f.CreatedAt,
	}
}

// RoomDetailFixture bundles a room with its category and hotel the way the
// catalog joins them.
type RoomDetailFixture struct {
	Room     RoomFixture
	Category RoomCategoryFixture
	Hotel    HotelFixture
}

// NewRoomDetailFixture builds a consistent hotel, category and room trio.
func NewRoomDetailFixture(hotelOpts []HotelOption, categoryOpts []RoomCategoryOption, roomOpts []RoomOption) RoomDetailFixture {
	hotel := NewHotelFixture(hotelOpts...)
	category := NewRoomCategoryFixture(categoryOpts...)
	roomOpts = append([]RoomOption{WithRoomHotel(hotel.ID), WithRoomCategory(category.ID)}, roomOpts...)
	return RoomDetailFixture{
		Room:     NewRoomFixture(roomOpts...),
		Category: category,
		Hotel:    hotel,
	}
}

// Persistence converts the fixture into a persistence record.
func (f RoomDetailFixture) Persistence() persistence.RoomDetail {
	return persistence.RoomDetail{
		Room:     f.Room.Persistence(),
		Category: f.Category.Persistence(),
		Hotel:    f.Hotel.Persistence(),
	}
}

// Application converts the fixture into an application model.
func (f RoomDetailFixture) Application() application.RoomDetail {
	return application.RoomDetail{
		Room:     f.Room.Application(),
		Category: f.Category.Application(),
		Hotel:    f.Hotel.Application(),
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking record.
type BookingFixture struct {
	ID              string
	UserID          string
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	GuestCount      int
	SpecialRequests string
	TotalAmount     float64
	Status          string
	PaymentStatus   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic pending booking for the
// reference stay window with optional overrides.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	checkIn, checkOut := ReferenceStay()
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := BookingFixture{
		ID:            fmt.Sprintf("booking-%03d", idx),
		UserID:        "user-001",
		RoomID:        "room-001",
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		GuestCount:    2,
		TotalAmount:   300,
		Status:        persistence.BookingStatusPending,
		PaymentStatus: persistence.PaymentStatusPending,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingUser ties the booking to the given user.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
	}
}

// WithBookingRoom ties the booking to the given room.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingStay sets the stay window.
func WithBookingStay(checkIn, checkOut time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CheckIn = checkIn
		f.CheckOut = checkOut
	}
}

// WithBookingGuests sets the guest count.
func WithBookingGuests(count int) BookingOption {
	return func(f *BookingFixture) {
		f.GuestCount = count
	}
}

// WithBookingTotal sets the total amount.
func WithBookingTotal(amount float64) BookingOption {
	return func(f *BookingFixture) {
		f.TotalAmount = amount
	}
}

// WithBookingStatuses sets the booking and payment statuses together.
func WithBookingStatuses(status, paymentStatus string) BookingOption {
	return func(f *BookingFixture) {
		f.Status = status
		f.PaymentStatus = paymentStatus
	}
}

// WithBookingSpecialRequests sets the free-form request text.
func WithBookingSpecialRequests(text string) BookingOption {
	return func(f *BookingFixture) {
		f.SpecialRequests = text
	}
}

// WithBookingCreatedAt sets the created timestamp on the fixture.
func WithBookingCreatedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CreatedAt = t
	}
}

// Persistence converts the fixture into a persistence record.
func (f BookingFixture) Persistence() persistence.Booking {
	var requests *string
	if f.SpecialRequests != "" {
		value := f.SpecialRequests
		requests = &value
	}
	return persistence.Booking{
		ID:              f.ID,
		UserID:          f.UserID,
		RoomID:          f.RoomID,
		CheckIn:         f.CheckIn,
		CheckOut:        f.CheckOut,
		GuestCount:      f.GuestCount,
		SpecialRequests: requests,
		TotalAmount:     f.TotalAmount,
		Status:          f.Status,
		PaymentStatus:   f.PaymentStatus,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// Application converts the fixture into an application model.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:              f.ID,
		UserID:          f.UserID,
		RoomID:          f.RoomID,
		CheckIn:         f.CheckIn,
		CheckOut:        f.CheckOut,
		GuestCount:      f.GuestCount,
		SpecialRequests: f.SpecialRequests,
		TotalAmount:     f.TotalAmount,
		Status:          application.BookingStatus(f.Status),
		PaymentStatus:   application.PaymentStatus(f.PaymentStatus),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic guest account.
type UserFixture struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional
// overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		FullName:     fmt.Sprintf("Guest %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserFullName overrides the generated full name.
func WithUserFullName(name string) UserOption {
	return func(f *UserFixture) {
		f.FullName = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserDisabled marks the account as disabled.
func WithUserDisabled(disabled bool) UserOption {
	return func(f *UserFixture) {
		f.Disabled = disabled
	}
}

// Persistence converts the fixture into a persistence record.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		FullName:     f.FullName,
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Application converts the fixture into an application model.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Email:     f.Email,
		FullName:  f.FullName,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Credentials converts the fixture into the credential view used by the
// auth service.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
	}
}

// Principal returns the principal corresponding to the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture valid for 24
// hours from the reference time, with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:        id,
		UserID:    "user-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionUser ties the session to the given user.
func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = userID
	}
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiry instant.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt marks the session revoked at the given instant.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &t
	}
}

// Persistence converts the fixture into a persistence record.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		RevokedAt: f.RevokedAt,
	}
}

// Application converts the fixture into an application model.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		RevokedAt: f.RevokedAt,
	}
}
