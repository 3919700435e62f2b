package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/hotel-reservations/internal/application"
	"github.com/example/hotel-reservations/internal/payment"
)

type bookingService interface {
	Create(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	SettlePayment(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, payment.Result, error)
	Cancel(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	ListUserBookings(ctx context.Context, principal application.Principal) ([]application.BookingDetail, error)
}

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	service   bookingService
	responder responder
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

type createBookingRequest struct {
	RoomID          string `json:"room_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	GuestCount      int    `json:"guest_count"`
	SpecialRequests string `json:"special_requests"`
}

type bookingResponse struct {
	ID              string  `json:"id"`
	RoomID          string  `json:"room_id"`
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	GuestCount      int     `json:"guest_count"`
	SpecialRequests string  `json:"special_requests,omitempty"`
	TotalAmount     float64 `json:"total_amount"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"payment_status"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type bookingDetailResponse struct {
	bookingResponse
	Room roomDetailResponse `json:"room"`
}

type paymentResponse struct {
	Booking bookingResponse `json:"booking"`
	Message string          `json:"message"`
}

// Create serves POST /bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	checkIn, err := parseWireDate(req.CheckIn)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	checkOut, err := parseWireDate(req.CheckOut)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	booking, err := h.service.Create(r.Context(), application.CreateBookingParams{
		Principal:       principal,
		RoomID:          req.RoomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestCount:      req.GuestCount,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBookingResponse(booking))
}

// List serves GET /bookings for the authenticated guest.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	details, err := h.service.ListUserBookings(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]bookingDetailResponse, 0, len(details))
	for _, detail := range details {
		payload = append(payload, bookingDetailResponse{
			bookingResponse: toBookingResponse(detail.Booking),
			Room:            toRoomDetailResponse(detail.Room),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// SettlePayment serves POST /bookings/{id}/payment.
func (h *BookingHandler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	booking, result, err := h.service.SettlePayment(r.Context(), principal, bookingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		// The booking stays pending with a failed payment; the guest may retry.
		status = http.StatusPaymentRequired
	}
	h.responder.writeJSON(r.Context(), w, status, paymentResponse{
		Booking: toBookingResponse(booking),
		Message: result.Message,
	})
}

// Cancel serves DELETE /bookings/{id}.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	booking, err := h.service.Cancel(r.Context(), principal, bookingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBookingResponse(booking))
}

func toBookingResponse(booking application.Booking) bookingResponse {
	return bookingResponse{
		ID:              booking.ID,
		RoomID:          booking.RoomID,
		CheckIn:         booking.CheckIn.UTC().Format(wireDateFormat),
		CheckOut:        booking.CheckOut.UTC().Format(wireDateFormat),
		GuestCount:      booking.GuestCount,
		SpecialRequests: booking.SpecialRequests,
		TotalAmount:     booking.TotalAmount,
		Status:          string(booking.Status),
		PaymentStatus:   string(booking.PaymentStatus),
		CreatedAt:       booking.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       booking.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
