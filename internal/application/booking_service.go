package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/hotel-reservations/internal/payment"
	"github.com/example/hotel-reservations/internal/persistence"
	"github.com/example/hotel-reservations/internal/stay"
)

// BookingRepository captures the persistence interactions needed by the
// ledger. CreateBooking must be atomic: the no-overlap check and the insert
// form a single unit, and a losing concurrent writer surfaces
// persistence.ErrConflict rather than a second successful insert.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, expect, next BookingStatusPair) (Booking, error)
	ExpirePendingBookings(ctx context.Context, cutoff time.Time) (int, error)
	CompleteElapsedBookings(ctx context.Context, reference time.Time) (int, error)
}

// BookingStatusPair is the expected-previous-status guard for booking
// transitions; updates only apply when the stored pair still matches.
type BookingStatusPair struct {
	Status        BookingStatus
	PaymentStatus PaymentStatus
}

// RoomFinder resolves a room with its category and hotel joined.
type RoomFinder interface {
	GetRoomDetail(ctx context.Context, roomID string) (RoomDetail, error)
}

// SnapshotInvalidator drops cached availability snapshots after the booking
// calendar changes.
type SnapshotInvalidator interface {
	InvalidateSnapshot()
}

// BookingService owns the booking lifecycle: atomic creation under the
// no-overlap invariant, payment settlement, cancellation and the time-driven
// sweeps.
type BookingService struct {
	bookings       BookingRepository
	rooms          RoomFinder
	gateway        payment.Gateway
	snapshots      SnapshotInvalidator
	paymentTimeout time.Duration
	pendingTTL     time.Duration
	idGenerator    func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, rooms RoomFinder, gateway payment.Gateway, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, gateway, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomFinder, gateway payment.Gateway, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:       bookings,
		rooms:          rooms,
		gateway:        gateway,
		paymentTimeout: 5 * time.Second,
		pendingTTL:     30 * time.Minute,
		idGenerator:    idGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

// SetSnapshotInvalidator registers the availability cache to drop after
// booking mutations.
func (s *BookingService) SetSnapshotInvalidator(snapshots SnapshotInvalidator) {
	if s == nil {
		return
	}
	s.snapshots = snapshots
}

// SetPaymentTimeout bounds the gateway call during settlement.
func (s *BookingService) SetPaymentTimeout(d time.Duration) {
	if s == nil || d <= 0 {
		return
	}
	s.paymentTimeout = d
}

// SetPendingTTL configures how long an unsettled pending booking holds its
// room before ExpireStalePending cancels it.
func (s *BookingService) SetPendingTTL(d time.Duration) {
	if s == nil || d <= 0 {
		return
	}
	s.pendingTTL = d
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) invalidateSnapshots() {
	if s.snapshots != nil {
		s.snapshots.InvalidateSnapshot()
	}
}

// Create reserves a room for the stay window. The overlap check and the
// insert happen as one atomic unit in the repository, so two concurrent
// creates for overlapping windows on the same room can never both succeed;
// the loser receives ErrConflict. The booking starts as pending/pending with
// its total computed once from the category's nightly rate.
func (s *BookingService) Create(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil || s.rooms == nil {
		err = fmt.Errorf("booking dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create",
		"user_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created", "total_amount", booking.TotalAmount)
	}()

	if strings.TrimSpace(params.Principal.UserID) == "" {
		err = ErrUnauthorized
		return
	}

	window, werr := stay.NewWindow(params.CheckIn, params.CheckOut)
	if werr != nil {
		err = ErrInvalidRange
		return
	}
	if window.CheckIn.Before(stay.Midnight(s.now())) {
		err = ErrInvalidRange
		return
	}

	if params.GuestCount < 1 {
		vErr := &ValidationError{}
		vErr.add("guest_count", "at least one guest is required")
		err = vErr
		return
	}

	detail, derr := s.rooms.GetRoomDetail(ctx, params.RoomID)
	if derr != nil {
		err = mapCatalogError(derr)
		return
	}

	if params.GuestCount > detail.Category.MaxOccupancy {
		err = ErrCapacityExceeded
		return
	}

	total, perr := CalculateTotal(window.CheckIn, window.CheckOut, detail.Category.BasePrice)
	if perr != nil {
		err = perr
		return
	}

	createdAt := s.now()
	candidate := Booking{
		ID:              s.idGenerator(),
		UserID:          params.Principal.UserID,
		RoomID:          detail.Room.ID,
		CheckIn:         window.CheckIn,
		CheckOut:        window.CheckOut,
		GuestCount:      params.GuestCount,
		SpecialRequests: strings.TrimSpace(params.SpecialRequests),
		TotalAmount:     total,
		Status:          BookingStatusPending,
		PaymentStatus:   PaymentStatusPending,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	booking, err = s.bookings.CreateBooking(ctx, candidate)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	s.invalidateSnapshots()
	return
}

// SettlePayment resolves a pending booking's payment outcome through the
// gateway. Success advances the booking to confirmed/paid; failure leaves it
// pending with payment_status failed and retryable. Settling a booking that
// is already confirmed, cancelled or completed returns ErrInvalidState so a
// guest can never be charged twice.
func (s *BookingService) SettlePayment(ctx context.Context, principal Principal, bookingID string) (booking Booking, result payment.Result, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil || s.gateway == nil {
		err = fmt.Errorf("booking dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "SettlePayment",
		"user_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "payment settlement failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "payment settled", "success", result.Success, "payment_status", booking.PaymentStatus)
	}()

	current, gerr := s.bookings.GetBooking(ctx, bookingID)
	if gerr != nil {
		err = mapBookingRepoError(gerr)
		return
	}

	if current.UserID != principal.UserID {
		err = ErrUnauthorized
		return
	}

	if current.Status != BookingStatusPending {
		err = ErrInvalidState
		return
	}
	expect := BookingStatusPair{Status: current.Status, PaymentStatus: current.PaymentStatus}

	attemptCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	result, aerr := s.gateway.Attempt(attemptCtx, bookingID)
	if aerr != nil {
		// The provider never answered; record the failed attempt and keep
		// the booking retryable.
		if booking, err = s.recordFailedAttempt(ctx, bookingID, expect); err != nil {
			return
		}
		if errors.Is(aerr, context.DeadlineExceeded) {
			err = ErrPaymentTimeout
			return
		}
		err = aerr
		return
	}

	if !result.Success {
		booking, err = s.recordFailedAttempt(ctx, bookingID, expect)
		return
	}

	booking, err = s.bookings.UpdateBookingStatus(ctx, bookingID, expect, BookingStatusPair{
		Status:        BookingStatusConfirmed,
		PaymentStatus: PaymentStatusPaid,
	})
	if err != nil {
		err = mapBookingRepoError(err)
	}
	return
}

func (s *BookingService) recordFailedAttempt(ctx context.Context, bookingID string, expect BookingStatusPair) (Booking, error) {
	booking, err := s.bookings.UpdateBookingStatus(ctx, bookingID, expect, BookingStatusPair{
		Status:        BookingStatusPending,
		PaymentStatus: PaymentStatusFailed,
	})
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	return booking, nil
}

// Cancel withdraws a confirmed booking on behalf of its owner, transitioning
// it to cancelled/refunded. The freed window is immediately visible to
// availability searches because cancelled bookings never count as conflicts.
func (s *BookingService) Cancel(ctx context.Context, principal Principal, bookingID string) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Cancel",
		"user_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "cancellation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	current, gerr := s.bookings.GetBooking(ctx, bookingID)
	if gerr != nil {
		err = mapBookingRepoError(gerr)
		return
	}

	if current.UserID != principal.UserID {
		err = ErrUnauthorized
		return
	}

	if current.Status != BookingStatusConfirmed || current.PaymentStatus != PaymentStatusPaid {
		err = ErrInvalidState
		return
	}

	booking, err = s.bookings.UpdateBookingStatus(ctx, bookingID,
		BookingStatusPair{Status: BookingStatusConfirmed, PaymentStatus: PaymentStatusPaid},
		BookingStatusPair{Status: BookingStatusCancelled, PaymentStatus: PaymentStatusRefunded},
	)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	s.invalidateSnapshots()
	return
}

// ListUserBookings returns the user's bookings, newest first, with the booked
// room's catalog data attached. A booking whose room has vanished from the
// catalog is still listed, with empty room data.
func (s *BookingService) ListUserBookings(ctx context.Context, principal Principal) ([]BookingDetail, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}
	if strings.TrimSpace(principal.UserID) == "" {
		return nil, ErrUnauthorized
	}

	bookings, err := s.bookings.ListUserBookings(ctx, principal.UserID)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}

	details := make([]BookingDetail, 0, len(bookings))
	for _, booking := range bookings {
		detail := BookingDetail{Booking: booking}
		if s.rooms != nil {
			room, rerr := s.rooms.GetRoomDetail(ctx, booking.RoomID)
			switch {
			case rerr == nil:
				detail.Room = room
			case errors.Is(mapCatalogError(rerr), ErrNotFound):
				// stale catalog reference, keep the booking itself
			default:
				return nil, rerr
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

// ExpireStalePending cancels pending bookings whose payment was never settled
// within the pending TTL, freeing their rooms. Driven by an external sweep.
func (s *BookingService) ExpireStalePending(ctx context.Context) (int, error) {
	if s == nil || s.bookings == nil {
		return 0, fmt.Errorf("booking repository not configured")
	}

	cutoff := s.now().Add(-s.pendingTTL)
	expired, err := s.bookings.ExpirePendingBookings(ctx, cutoff)
	if err != nil {
		return 0, mapBookingRepoError(err)
	}
	if expired > 0 {
		s.invalidateSnapshots()
		s.loggerWith(ctx, "ExpireStalePending").InfoContext(ctx, "expired stale pending bookings", "count", expired)
	}
	return expired, nil
}

// CompleteElapsed marks confirmed bookings whose check-out date has passed as
// completed. Driven by an external sweep.
func (s *BookingService) CompleteElapsed(ctx context.Context) (int, error) {
	if s == nil || s.bookings == nil {
		return 0, fmt.Errorf("booking repository not configured")
	}

	completed, err := s.bookings.CompleteElapsedBookings(ctx, stay.Midnight(s.now()))
	if err != nil {
		return 0, mapBookingRepoError(err)
	}
	if completed > 0 {
		s.loggerWith(ctx, "CompleteElapsed").InfoContext(ctx, "completed elapsed bookings", "count", completed)
	}
	return completed, nil
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	case errors.Is(err, ErrInvalidState), errors.Is(err, persistence.ErrStaleStatus):
		return ErrInvalidState
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		return ErrInvalidRange
	}
	return err
}
