package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/hotel-reservations/internal/persistence"
)

// CatalogReader captures the read-only catalog interactions needed by the
// services. The engine never writes catalog data.
type CatalogReader interface {
	ListHotels(ctx context.Context) ([]Hotel, error)
	GetHotel(ctx context.Context, id string) (Hotel, error)
	ListRoomCategories(ctx context.Context) ([]RoomCategory, error)
	GetRoomDetail(ctx context.Context, roomID string) (RoomDetail, error)
	ListAvailableRooms(ctx context.Context, filter RoomSearchFilter) ([]RoomDetail, error)
}

// RoomSearchFilter narrows the structural candidate query: operational status,
// city substring and category name. Capacity and price band are applied by the
// availability service.
type RoomSearchFilter struct {
	City         string
	CategoryName string
}

// CatalogService exposes the static hotel/room-category/room reference data.
type CatalogService struct {
	catalog CatalogReader
	logger  *slog.Logger
}

// NewCatalogService wires dependencies for catalog reads.
func NewCatalogService(catalog CatalogReader) *CatalogService {
	return NewCatalogServiceWithLogger(catalog, nil)
}

// NewCatalogServiceWithLogger constructs a CatalogService with a specified logger.
func NewCatalogServiceWithLogger(catalog CatalogReader, logger *slog.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, logger: defaultLogger(logger)}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

// ListHotels returns every hotel, best rated first.
func (s *CatalogService) ListHotels(ctx context.Context) ([]Hotel, error) {
	if s == nil || s.catalog == nil {
		return nil, fmt.Errorf("catalog not configured")
	}

	hotels, err := s.catalog.ListHotels(ctx)
	if err != nil {
		s.loggerWith(ctx, "ListHotels").ErrorContext(ctx, "catalog read failed", "error", err)
		return nil, mapCatalogError(err)
	}
	return hotels, nil
}

// GetHotel fetches a single hotel by id.
func (s *CatalogService) GetHotel(ctx context.Context, id string) (Hotel, error) {
	if s == nil || s.catalog == nil {
		return Hotel{}, fmt.Errorf("catalog not configured")
	}
	if strings.TrimSpace(id) == "" {
		return Hotel{}, ErrNotFound
	}

	hotel, err := s.catalog.GetHotel(ctx, id)
	if err != nil {
		return Hotel{}, mapCatalogError(err)
	}
	return hotel, nil
}

// ListRoomCategories returns every room category, cheapest first.
func (s *CatalogService) ListRoomCategories(ctx context.Context) ([]RoomCategory, error) {
	if s == nil || s.catalog == nil {
		return nil, fmt.Errorf("catalog not configured")
	}

	categories, err := s.catalog.ListRoomCategories(ctx)
	if err != nil {
		s.loggerWith(ctx, "ListRoomCategories").ErrorContext(ctx, "catalog read failed", "error", err)
		return nil, mapCatalogError(err)
	}
	return categories, nil
}

// GetRoomDetail fetches a room with its category and hotel joined.
func (s *CatalogService) GetRoomDetail(ctx context.Context, roomID string) (RoomDetail, error) {
	if s == nil || s.catalog == nil {
		return RoomDetail{}, fmt.Errorf("catalog not configured")
	}
	if strings.TrimSpace(roomID) == "" {
		return RoomDetail{}, ErrNotFound
	}

	detail, err := s.catalog.GetRoomDetail(ctx, roomID)
	if err != nil {
		return RoomDetail{}, mapCatalogError(err)
	}
	return detail, nil
}

func mapCatalogError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
