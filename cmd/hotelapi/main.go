package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/hotel-reservations/internal/application"
	"github.com/example/hotel-reservations/internal/config"
	httptransport "github.com/example/hotel-reservations/internal/http"
	"github.com/example/hotel-reservations/internal/payment"
	"github.com/example/hotel-reservations/internal/persistence"
	"github.com/example/hotel-reservations/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	catalog := newCatalogAdapter(sqlite.NewCatalogRepository(storage))
	bookings := newBookingRepositoryAdapter(sqlite.NewBookingRepository(storage))
	users := newUserStoreAdapter(sqlite.NewUserRepository(storage))
	sessions := newSessionRepositoryAdapter(sqlite.NewSessionRepository(storage))

	gateway := payment.NewSimulatedGateway(payment.RandomOutcome(cfg.PaymentSuccessRate, time.Now().UnixNano()))

	catalogService := application.NewCatalogServiceWithLogger(catalog, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(catalog, bookings, now, logger)
	bookingService := application.NewBookingServiceWithLogger(bookings, catalog, gateway, idGenerator, now, logger)
	bookingService.SetSnapshotInvalidator(availabilityService)
	bookingService.SetPaymentTimeout(cfg.PaymentTimeout)
	bookingService.SetPendingTTL(cfg.PendingTTL)
	authService := application.NewAuthServiceWithLogger(users, sessions, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Catalog:  httptransport.NewCatalogHandler(catalogService, availabilityService, logger),
		Bookings: httptransport.NewBookingHandler(bookingService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requiresSession(r) {
			protected.ServeHTTP(w, r)
			return
		}
		router.ServeHTTP(w, r)
	}))

	go runSweeps(ctx, bookingService, cfg.SweepInterval, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservations API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// requiresSession reports whether a request must carry a valid session token.
// Registration, login and the read-only catalog stay public; the booking
// ledger and logout require an authenticated caller.
func requiresSession(r *http.Request) bool {
	path := r.URL.Path
	switch {
	case path == "/users" && r.Method == http.MethodPost:
		return false
	case path == "/sessions":
		// Logout resolves its own token; login has none yet.
		return false
	case path == "/hotels" || strings.HasPrefix(path, "/hotels/"):
		return false
	case path == "/room-categories":
		return false
	case strings.HasPrefix(path, "/rooms/"):
		return false
	}
	return true
}

// runSweeps periodically cancels stale pending bookings and completes
// confirmed stays whose check-out has passed.
func runSweeps(ctx context.Context, bookings *application.BookingService, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if expired, err := bookings.ExpireStalePending(ctx); err != nil {
				logger.Error("pending booking sweep failed", "error", err)
			} else if expired > 0 {
				logger.Info("expired stale pending bookings", "count", expired)
			}
			if completed, err := bookings.CompleteElapsed(ctx); err != nil {
				logger.Error("completion sweep failed", "error", err)
			} else if completed > 0 {
				logger.Info("completed elapsed bookings", "count", completed)
			}
		}
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

type catalogAdapter struct {
	repo persistence.CatalogRepository
}

func newCatalogAdapter(repo persistence.CatalogRepository) *catalogAdapter {
	return &catalogAdapter{repo: repo}
}

func (a *catalogAdapter) ListHotels(ctx context.Context) ([]application.Hotel, error) {
	models, err := a.repo.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	hotels := make([]application.Hotel, 0, len(models))
	for _, model := range models {
		hotels = append(hotels, toApplicationHotel(model))
	}
	return hotels, nil
}

func (a *catalogAdapter) GetHotel(ctx context.Context, id string) (application.Hotel, error) {
	model, err := a.repo.GetHotel(ctx, id)
	if err != nil {
		return application.Hotel{}, err
	}
	return toApplicationHotel(model), nil
}

func (a *catalogAdapter) ListRoomCategories(ctx context.Context) ([]application.RoomCategory, error) {
	models, err := a.repo.ListRoomCategories(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]application.RoomCategory, 0, len(models))
	for _, model := range models {
		categories = append(categories, toApplicationRoomCategory(model))
	}
	return categories, nil
}

func (a *catalogAdapter) GetRoomDetail(ctx context.Context, roomID string) (application.RoomDetail, error) {
	model, err := a.repo.GetRoomDetail(ctx, roomID)
	if err != nil {
		return application.RoomDetail{}, err
	}
	return toApplicationRoomDetail(model), nil
}

func (a *catalogAdapter) ListAvailableRooms(ctx context.Context, filter application.RoomSearchFilter) ([]application.RoomDetail, error) {
	models, err := a.repo.ListAvailableRooms(ctx, persistence.RoomSearchFilter{
		City:         filter.City,
		CategoryName: filter.CategoryName,
	})
	if err != nil {
		return nil, err
	}
	details := make([]application.RoomDetail, 0, len(models))
	for _, model := range models {
		details = append(details, toApplicationRoomDetail(model))
	}
	return details, nil
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	stored, err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking))
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) ListUserBookings(ctx context.Context, userID string) ([]application.Booking, error) {
	models, err := a.repo.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings, nil
}

func (a *bookingRepositoryAdapter) UpdateBookingStatus(ctx context.Context, id string, expect, next application.BookingStatusPair) (application.Booking, error) {
	stored, err := a.repo.UpdateBookingStatus(ctx, id,
		persistence.BookingStatusPair{Status: string(expect.Status), PaymentStatus: string(expect.PaymentStatus)},
		persistence.BookingStatusPair{Status: string(next.Status), PaymentStatus: string(next.PaymentStatus)})
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) ExpirePendingBookings(ctx context.Context, cutoff time.Time) (int, error) {
	return a.repo.ExpirePendingBookings(ctx, cutoff)
}

func (a *bookingRepositoryAdapter) CompleteElapsedBookings(ctx context.Context, reference time.Time) (int, error) {
	return a.repo.CompleteElapsedBookings(ctx, reference)
}

func (a *bookingRepositoryAdapter) OverlappingRoomIDs(ctx context.Context, roomIDs []string, checkIn, checkOut time.Time) ([]string, error) {
	return a.repo.OverlappingRoomIDs(ctx, roomIDs, checkIn, checkOut)
}

type userStoreAdapter struct {
	repo persistence.UserRepository
}

func newUserStoreAdapter(repo persistence.UserRepository) *userStoreAdapter {
	return &userStoreAdapter{repo: repo}
}

func (a *userStoreAdapter) CreateUser(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(creds)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, creds.User.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
		Disabled:     stored.Disabled,
	}, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toApplicationHotel(model persistence.Hotel) application.Hotel {
	return application.Hotel{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Address:     model.Address,
		City:        model.City,
		Country:     model.Country,
		Rating:      model.Rating,
		ImageURL:    model.ImageURL,
		CreatedAt:   model.CreatedAt,
	}
}

func toApplicationRoomCategory(model persistence.RoomCategory) application.RoomCategory {
	return application.RoomCategory{
		ID:           model.ID,
		Name:         model.Name,
		Description:  model.Description,
		BasePrice:    model.BasePrice,
		MaxOccupancy: model.MaxOccupancy,
		Amenities:    append([]string(nil), model.Amenities...),
		ImageURL:     model.ImageURL,
		CreatedAt:    model.CreatedAt,
	}
}

func toApplicationRoomDetail(model persistence.RoomDetail) application.RoomDetail {
	return application.RoomDetail{
		Room: application.Room{
			ID:         model.Room.ID,
			HotelID:    model.Room.HotelID,
			CategoryID: model.Room.CategoryID,
			RoomNumber: model.Room.RoomNumber,
			Floor:      model.Room.Floor,
			Status:     application.RoomStatus(model.Room.Status),
			CreatedAt:  model.Room.CreatedAt,
		},
		Category: toApplicationRoomCategory(model.Category),
		Hotel:    toApplicationHotel(model.Hotel),
	}
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	var special *string
	if booking.SpecialRequests != "" {
		value := booking.SpecialRequests
		special = &value
	}
	return persistence.Booking{
		ID:              booking.ID,
		UserID:          booking.UserID,
		RoomID:          booking.RoomID,
		CheckIn:         booking.CheckIn,
		CheckOut:        booking.CheckOut,
		GuestCount:      booking.GuestCount,
		SpecialRequests: special,
		TotalAmount:     booking.TotalAmount,
		Status:          string(booking.Status),
		PaymentStatus:   string(booking.PaymentStatus),
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

func toApplicationBooking(model persistence.Booking) application.Booking {
	var special string
	if model.SpecialRequests != nil {
		special = *model.SpecialRequests
	}
	return application.Booking{
		ID:              model.ID,
		UserID:          model.UserID,
		RoomID:          model.RoomID,
		CheckIn:         model.CheckIn,
		CheckOut:        model.CheckOut,
		GuestCount:      model.GuestCount,
		SpecialRequests: special,
		TotalAmount:     model.TotalAmount,
		Status:          application.BookingStatus(model.Status),
		PaymentStatus:   application.PaymentStatus(model.PaymentStatus),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toPersistenceUser(creds application.UserCredentials) persistence.User {
	return persistence.User{
		ID:           creds.User.ID,
		Email:        creds.User.Email,
		FullName:     creds.User.FullName,
		PasswordHash: creds.PasswordHash,
		Disabled:     creds.Disabled,
		CreatedAt:    creds.User.CreatedAt,
		UpdatedAt:    creds.User.UpdatedAt,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:        model.ID,
		Email:     model.Email,
		FullName:  model.FullName,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		RevokedAt: model.RevokedAt,
	}
}
