package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/hotel-reservations/internal/stay"
)

// BookingCalendar answers which rooms hold a conflicting non-cancelled
// booking for a window. Implemented by the booking ledger's storage.
type BookingCalendar interface {
	OverlappingRoomIDs(ctx context.Context, roomIDs []string, checkIn, checkOut time.Time) ([]string, error)
}

// AvailabilityService computes which rooms are free for a requested stay. The
// result is a point-in-time snapshot: it does not reserve anything, and a
// returned room can still lose a race to a concurrent booking. The ledger's
// create operation is the sole enforcement point.
type AvailabilityService struct {
	catalog  CatalogReader
	calendar BookingCalendar
	cache    *availabilityCache
	logger   *slog.Logger
}

// NewAvailabilityService wires dependencies for availability searches.
func NewAvailabilityService(catalog CatalogReader, calendar BookingCalendar, now func() time.Time) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(catalog, calendar, now, nil)
}

// NewAvailabilityServiceWithLogger constructs an AvailabilityService with a
// specified logger.
func NewAvailabilityServiceWithLogger(catalog CatalogReader, calendar BookingCalendar, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		catalog:  catalog,
		calendar: calendar,
		cache:    newAvailabilityCache(0, 0, now),
		logger:   defaultLogger(logger),
	}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// InvalidateSnapshot drops cached search results. The booking ledger calls
// this after every mutation so later searches observe the new calendar.
func (s *AvailabilityService) InvalidateSnapshot() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// Search returns the rooms that are structurally eligible for the filters and
// have no conflicting non-cancelled booking in [CheckIn, CheckOut), with
// category and hotel attached, in catalog order.
func (s *AvailabilityService) Search(ctx context.Context, filters SearchFilters) (result []RoomDetail, err error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	if s.catalog == nil || s.calendar == nil {
		return nil, fmt.Errorf("availability dependencies not configured")
	}

	logger := s.loggerWith(ctx, "Search",
		"city", filters.City,
		"guests", filters.Guests,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "availability search failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "availability search completed", "rooms", len(result))
	}()

	window, werr := stay.NewWindow(filters.CheckIn, filters.CheckOut)
	if werr != nil {
		err = ErrInvalidRange
		return
	}

	vErr := &ValidationError{}
	if filters.Guests < 1 {
		vErr.add("guests", "at least one guest is required")
	}
	if filters.MinPrice != nil && *filters.MinPrice < 0 {
		vErr.add("min_price", "must not be negative")
	}
	if filters.MaxPrice != nil && *filters.MaxPrice < 0 {
		vErr.add("max_price", "must not be negative")
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		vErr.add("price", "minimum price must not exceed maximum price")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	key := buildAvailabilityCacheKey(normalizedFilters(filters, window))
	if cached, ok := s.cache.Get(key); ok {
		result = cached
		return
	}

	candidates, cerr := s.catalog.ListAvailableRooms(ctx, RoomSearchFilter{
		City:         strings.TrimSpace(filters.City),
		CategoryName: strings.TrimSpace(filters.Category),
	})
	if cerr != nil {
		err = mapCatalogError(cerr)
		return
	}

	eligible := make([]RoomDetail, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Category.MaxOccupancy < filters.Guests {
			continue
		}
		if !withinPriceBand(candidate.Category.BasePrice, filters.MinPrice, filters.MaxPrice) {
			continue
		}
		eligible = append(eligible, candidate)
	}

	if len(eligible) == 0 {
		result = []RoomDetail{}
		s.cache.Store(key, result)
		return
	}

	roomIDs := make([]string, 0, len(eligible))
	for _, candidate := range eligible {
		roomIDs = append(roomIDs, candidate.Room.ID)
	}

	conflicting, oerr := s.calendar.OverlappingRoomIDs(ctx, roomIDs, window.CheckIn, window.CheckOut)
	if oerr != nil {
		err = oerr
		return
	}

	booked := make(map[string]struct{}, len(conflicting))
	for _, id := range conflicting {
		booked[id] = struct{}{}
	}

	result = make([]RoomDetail, 0, len(eligible))
	for _, candidate := range eligible {
		if _, taken := booked[candidate.Room.ID]; taken {
			continue
		}
		result = append(result, candidate)
	}

	s.cache.Store(key, result)
	return
}

// withinPriceBand applies the price filter only when both bounds are
// supplied, matching the observed search behavior.
func withinPriceBand(price float64, minPrice, maxPrice *float64) bool {
	if minPrice == nil || maxPrice == nil {
		return true
	}
	return price >= *minPrice && price <= *maxPrice
}

func normalizedFilters(filters SearchFilters, window stay.Window) SearchFilters {
	filters.CheckIn = window.CheckIn
	filters.CheckOut = window.CheckOut
	return filters
}
