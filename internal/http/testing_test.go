package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/hotel-reservations/internal/application"
	"github.com/example/hotel-reservations/internal/payment"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var handlerTestNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var payload T
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return payload
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	return decodeBody[errorResponse](t, rec)
}

type stubAuthService struct {
	register     func(ctx context.Context, params application.RegisterParams) (application.User, error)
	authenticate func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	logout       func(ctx context.Context, token string) error
}

func (s *stubAuthService) Register(ctx context.Context, params application.RegisterParams) (application.User, error) {
	return s.register(ctx, params)
}

func (s *stubAuthService) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	return s.authenticate(ctx, params)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logout(ctx, token)
}

type stubCatalogService struct {
	listHotels         func(ctx context.Context) ([]application.Hotel, error)
	getHotel           func(ctx context.Context, id string) (application.Hotel, error)
	listRoomCategories func(ctx context.Context) ([]application.RoomCategory, error)
	getRoomDetail      func(ctx context.Context, roomID string) (application.RoomDetail, error)
}

func (s *stubCatalogService) ListHotels(ctx context.Context) ([]application.Hotel, error) {
	return s.listHotels(ctx)
}

func (s *stubCatalogService) GetHotel(ctx context.Context, id string) (application.Hotel, error) {
	return s.getHotel(ctx, id)
}

func (s *stubCatalogService) ListRoomCategories(ctx context.Context) ([]application.RoomCategory, error) {
	return s.listRoomCategories(ctx)
}

func (s *stubCatalogService) GetRoomDetail(ctx context.Context, roomID string) (application.RoomDetail, error) {
	return s.getRoomDetail(ctx, roomID)
}

type stubAvailabilityService struct {
	search func(ctx context.Context, filters application.SearchFilters) ([]application.RoomDetail, error)
}

func (s *stubAvailabilityService) Search(ctx context.Context, filters application.SearchFilters) ([]application.RoomDetail, error) {
	return s.search(ctx, filters)
}

type stubBookingService struct {
	create        func(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	settlePayment func(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, payment.Result, error)
	cancel        func(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	list          func(ctx context.Context, principal application.Principal) ([]application.BookingDetail, error)
}

func (s *stubBookingService) Create(ctx context.Context, params application.CreateBookingParams) (application.Booking, error) {
	return s.create(ctx, params)
}

func (s *stubBookingService) SettlePayment(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, payment.Result, error) {
	return s.settlePayment(ctx, principal, bookingID)
}

func (s *stubBookingService) Cancel(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error) {
	return s.cancel(ctx, principal, bookingID)
}

func (s *stubBookingService) ListUserBookings(ctx context.Context, principal application.Principal) ([]application.BookingDetail, error) {
	return s.list(ctx, principal)
}

func sampleRoomDetail() application.RoomDetail {
	return application.RoomDetail{
		Room: application.Room{
			ID: "room-1", HotelID: "hotel-1", CategoryID: "category-1",
			RoomNumber: "101", Floor: 1, Status: application.RoomStatusAvailable,
		},
		Category: application.RoomCategory{
			ID: "category-1", Name: "Sea View", BasePrice: 150, MaxOccupancy: 2,
			Amenities: []string{"wifi"},
		},
		Hotel: application.Hotel{
			ID: "hotel-1", Name: "Harbour Hotel", City: "Lisbon", Country: "Portugal", Rating: 4,
		},
	}
}

func sampleBooking() application.Booking {
	return application.Booking{
		ID:            "booking-1",
		UserID:        "user-1",
		RoomID:        "room-1",
		CheckIn:       time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
		GuestCount:    2,
		TotalAmount:   450,
		Status:        application.BookingStatusPending,
		PaymentStatus: application.PaymentStatusPending,
		CreatedAt:     handlerTestNow,
		UpdatedAt:     handlerTestNow,
	}
}
