package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/hotel-reservations/internal/application"
)

type catalogService interface {
	ListHotels(ctx context.Context) ([]application.Hotel, error)
	GetHotel(ctx context.Context, id string) (application.Hotel, error)
	ListRoomCategories(ctx context.Context) ([]application.RoomCategory, error)
	GetRoomDetail(ctx context.Context, roomID string) (application.RoomDetail, error)
}

type availabilityService interface {
	Search(ctx context.Context, filters application.SearchFilters) ([]application.RoomDetail, error)
}

// CatalogHandler serves the read-only hotel catalog and availability search.
type CatalogHandler struct {
	catalog      catalogService
	availability availabilityService
	responder    responder
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog catalogService, availability availabilityService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, availability: availability, responder: newResponder(logger)}
}

const wireDateFormat = "2006-01-02"

type hotelResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Rating      int    `json:"rating"`
	ImageURL    string `json:"image_url"`
}

type roomCategoryResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	BasePrice    float64  `json:"base_price"`
	MaxOccupancy int      `json:"max_occupancy"`
	Amenities    []string `json:"amenities"`
	ImageURL     string   `json:"image_url"`
}

type roomDetailResponse struct {
	ID         string               `json:"id"`
	RoomNumber string               `json:"room_number"`
	Floor      int                  `json:"floor"`
	Status     string               `json:"status"`
	Category   roomCategoryResponse `json:"category"`
	Hotel      hotelResponse        `json:"hotel"`
}

type searchResponse struct {
	Rooms []roomDetailResponse `json:"rooms"`
}

// ListHotels serves GET /hotels.
func (h *CatalogHandler) ListHotels(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	hotels, err := h.catalog.ListHotels(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]hotelResponse, 0, len(hotels))
	for _, hotel := range hotels {
		payload = append(payload, toHotelResponse(hotel))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// GetHotel serves GET /hotels/{id}.
func (h *CatalogHandler) GetHotel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	hotel, err := h.catalog.GetHotel(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toHotelResponse(hotel))
}

// ListRoomCategories serves GET /room-categories.
func (h *CatalogHandler) ListRoomCategories(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	categories, err := h.catalog.ListRoomCategories(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]roomCategoryResponse, 0, len(categories))
	for _, category := range categories {
		payload = append(payload, toRoomCategoryResponse(category))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// GetRoom serves GET /rooms/{id}.
func (h *CatalogHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	detail, err := h.catalog.GetRoomDetail(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDetailResponse(detail))
}

// SearchRooms serves GET /rooms/search.
func (h *CatalogHandler) SearchRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.availability == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filters, err := buildSearchFilters(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	rooms, err := h.availability.Search(r.Context(), filters)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := searchResponse{Rooms: make([]roomDetailResponse, 0, len(rooms))}
	for _, room := range rooms {
		payload.Rooms = append(payload.Rooms, toRoomDetailResponse(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func buildSearchFilters(query url.Values) (application.SearchFilters, error) {
	filters := application.SearchFilters{
		City:     strings.TrimSpace(query.Get("city")),
		Category: strings.TrimSpace(query.Get("category")),
		Guests:   1,
	}

	checkIn, err := parseWireDate(query.Get("check_in"))
	if err != nil {
		return application.SearchFilters{}, err
	}
	filters.CheckIn = checkIn

	checkOut, err := parseWireDate(query.Get("check_out"))
	if err != nil {
		return application.SearchFilters{}, err
	}
	filters.CheckOut = checkOut

	if guests := strings.TrimSpace(query.Get("guests")); guests != "" {
		parsed, perr := strconv.Atoi(guests)
		if perr != nil {
			return application.SearchFilters{}, errInvalidQueryValue("guests")
		}
		filters.Guests = parsed
	}

	if minPrice := strings.TrimSpace(query.Get("min_price")); minPrice != "" {
		parsed, perr := strconv.ParseFloat(minPrice, 64)
		if perr != nil {
			return application.SearchFilters{}, errInvalidQueryValue("min_price")
		}
		filters.MinPrice = &parsed
	}

	if maxPrice := strings.TrimSpace(query.Get("max_price")); maxPrice != "" {
		parsed, perr := strconv.ParseFloat(maxPrice, 64)
		if perr != nil {
			return application.SearchFilters{}, errInvalidQueryValue("max_price")
		}
		filters.MaxPrice = &parsed
	}

	return filters, nil
}

func parseWireDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errMissingDateParam
	}
	parsed, err := time.ParseInLocation(wireDateFormat, value, time.UTC)
	if err != nil {
		return time.Time{}, errMalformedDateParam
	}
	return parsed, nil
}

func toHotelResponse(hotel application.Hotel) hotelResponse {
	return hotelResponse{
		ID:          hotel.ID,
		Name:        hotel.Name,
		Description: hotel.Description,
		Address:     hotel.Address,
		City:        hotel.City,
		Country:     hotel.Country,
		Rating:      hotel.Rating,
		ImageURL:    hotel.ImageURL,
	}
}

func toRoomCategoryResponse(category application.RoomCategory) roomCategoryResponse {
	amenities := category.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return roomCategoryResponse{
		ID:           category.ID,
		Name:         category.Name,
		Description:  category.Description,
		BasePrice:    category.BasePrice,
		MaxOccupancy: category.MaxOccupancy,
		Amenities:    amenities,
		ImageURL:     category.ImageURL,
	}
}

func toRoomDetailResponse(detail application.RoomDetail) roomDetailResponse {
	return roomDetailResponse{
		ID:         detail.Room.ID,
		RoomNumber: detail.Room.RoomNumber,
		Floor:      detail.Room.Floor,
		Status:     string(detail.Room.Status),
		Category:   toRoomCategoryResponse(detail.Category),
		Hotel:      toHotelResponse(detail.Hotel),
	}
}
