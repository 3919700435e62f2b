package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/hotel-reservations/internal/application"
	"github.com/example/hotel-reservations/internal/payment"
)

func newTestRouter(t *testing.T, bookings *stubBookingService) http.Handler {
	t.Helper()
	if bookings == nil {
		bookings = &stubBookingService{}
	}

	auth := &stubAuthService{
		register: func(context.Context, application.RegisterParams) (application.User, error) {
			return application.User{ID: "user-1"}, nil
		},
		authenticate: func(context.Context, application.AuthenticateParams) (application.AuthenticateResult, error) {
			return application.AuthenticateResult{}, nil
		},
		logout: func(context.Context, string) error { return nil },
	}
	catalog := &stubCatalogService{
		listHotels: func(context.Context) ([]application.Hotel, error) { return nil, nil },
		getHotel: func(_ context.Context, id string) (application.Hotel, error) {
			return application.Hotel{ID: id}, nil
		},
		listRoomCategories: func(context.Context) ([]application.RoomCategory, error) { return nil, nil },
		getRoomDetail: func(_ context.Context, roomID string) (application.RoomDetail, error) {
			detail := sampleRoomDetail()
			detail.Room.ID = roomID
			return detail, nil
		},
	}
	availability := &stubAvailabilityService{
		search: func(context.Context, application.SearchFilters) ([]application.RoomDetail, error) {
			return nil, nil
		},
	}

	logger := discardLogger()
	return NewRouter(RouterConfig{
		Auth:     NewAuthHandler(auth, logger),
		Catalog:  NewCatalogHandler(catalog, availability, logger),
		Bookings: NewBookingHandler(bookings, logger),
	})
}

func TestRouterDispatch(t *testing.T) {
	bookings := &stubBookingService{
		create: func(context.Context, application.CreateBookingParams) (application.Booking, error) {
			return sampleBooking(), nil
		},
		list: func(context.Context, application.Principal) ([]application.BookingDetail, error) {
			return nil, nil
		},
		settlePayment: func(_ context.Context, _ application.Principal, bookingID string) (application.Booking, payment.Result, error) {
			if bookingID != "booking-1" {
				t.Errorf("unexpected booking id %q", bookingID)
			}
			return sampleBooking(), payment.Result{Success: true}, nil
		},
		cancel: func(_ context.Context, _ application.Principal, bookingID string) (application.Booking, error) {
			if bookingID != "booking-1" {
				t.Errorf("unexpected booking id %q", bookingID)
			}
			return sampleBooking(), nil
		},
	}
	router := newTestRouter(t, bookings)

	principal := application.Principal{UserID: "user-1"}
	cases := []struct {
		name   string
		method string
		target string
		body   string
		auth   bool
		want   int
	}{
		{"register", http.MethodPost, "/users", `{"email":"a@b.c","password":"p","full_name":"A"}`, false, http.StatusCreated},
		{"login", http.MethodPost, "/sessions", `{"email":"a@b.c","password":"p"}`, false, http.StatusCreated},
		{"list hotels", http.MethodGet, "/hotels", "", false, http.StatusOK},
		{"get hotel", http.MethodGet, "/hotels/hotel-1", "", false, http.StatusOK},
		{"list categories", http.MethodGet, "/room-categories", "", false, http.StatusOK},
		{"search rooms", http.MethodGet, "/rooms/search?check_in=2025-03-17&check_out=2025-03-20", "", false, http.StatusOK},
		{"get room", http.MethodGet, "/rooms/room-1", "", false, http.StatusOK},
		{"list bookings", http.MethodGet, "/bookings", "", true, http.StatusOK},
		{"create booking", http.MethodPost, "/bookings", `{"room_id":"room-1","check_in":"2025-03-17","check_out":"2025-03-20","guest_count":2}`, true, http.StatusCreated},
		{"settle payment", http.MethodPost, "/bookings/booking-1/payment", "", true, http.StatusOK},
		{"cancel booking", http.MethodDelete, "/bookings/booking-1", "", true, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			if tc.auth {
				req = req.WithContext(ContextWithPrincipal(req.Context(), principal))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, nil)

	cases := []struct {
		name      string
		method    string
		target    string
		wantAllow string
	}{
		{"delete hotels", http.MethodDelete, "/hotels", "GET"},
		{"get users", http.MethodGet, "/users", "POST"},
		{"put sessions", http.MethodPut, "/sessions", "POST, DELETE"},
		{"put bookings", http.MethodPut, "/bookings", "GET, POST"},
		{"get payment", http.MethodGet, "/bookings/booking-1/payment", "POST"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected 405, got %d", rec.Code)
			}
			if allow := rec.Header().Get("Allow"); allow != tc.wantAllow {
				t.Errorf("expected Allow %q, got %q", tc.wantAllow, allow)
			}
		})
	}
}

func TestRouterUnknownPaths(t *testing.T) {
	router := newTestRouter(t, nil)

	targets := []string{
		"/hotels/hotel-1/rooms",
		"/bookings/booking-1/payment/extra",
		"/rooms/",
		"/bookings//payment",
	}
	for _, target := range targets {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, rec.Code)
		}
	}
}

func TestRouterAppliesMiddlewareInOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	catalog := &stubCatalogService{
		listHotels: func(context.Context) ([]application.Hotel, error) { return nil, nil },
	}
	router := NewRouter(RouterConfig{
		Catalog:    NewCatalogHandler(catalog, nil, discardLogger()),
		Middleware: []func(http.Handler) http.Handler{tag("outer"), tag("inner")},
	})

	req := httptest.NewRequest(http.MethodGet, "/hotels", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("unexpected middleware order: %v", order)
	}
}
