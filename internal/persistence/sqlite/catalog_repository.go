package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/hotel-reservations/internal/persistence"
)

// CatalogRepository implements persistence.CatalogRepository over the Store.
type CatalogRepository struct {
	store *Store
}

// NewCatalogRepository binds a catalog repository to the store.
func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

const hotelColumns = `id, name, description, address, city, country, rating, image_url, created_at`

// ListHotels returns every hotel, best rated first.
func (r *CatalogRepository) ListHotels(ctx context.Context) ([]persistence.Hotel, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+hotelColumns+` FROM hotels ORDER BY rating DESC, name ASC`)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var hotels []persistence.Hotel
	for rows.Next() {
		hotel, scanErr := scanHotel(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		hotels = append(hotels, hotel)
	}
	return hotels, rows.Err()
}

// GetHotel fetches one hotel by id.
func (r *CatalogRepository) GetHotel(ctx context.Context, id string) (persistence.Hotel, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+hotelColumns+` FROM hotels WHERE id = ?`, id)
	hotel, err := scanHotel(row)
	if err != nil {
		return persistence.Hotel{}, err
	}
	return hotel, nil
}

const categoryColumns = `id, name, description, base_price, max_occupancy, amenities, image_url, created_at`

// ListRoomCategories returns every room category, cheapest first.
func (r *CatalogRepository) ListRoomCategories(ctx context.Context) ([]persistence.RoomCategory, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM room_categories ORDER BY base_price ASC, name ASC`)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var categories []persistence.RoomCategory
	for rows.Next() {
		category, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

const roomDetailQuery = `
	SELECT
		r.id, r.hotel_id, r.category_id, r.room_number, r.floor, r.status, r.created_at,
		c.id, c.name, c.description, c.base_price, c.max_occupancy, c.amenities, c.image_url, c.created_at,
		h.id, h.name, h.description, h.address, h.city, h.country, h.rating, h.image_url, h.created_at
	FROM rooms r
	JOIN room_categories c ON c.id = r.category_id
	JOIN hotels h ON h.id = r.hotel_id`

// GetRoomDetail fetches one room with its category and hotel joined.
func (r *CatalogRepository) GetRoomDetail(ctx context.Context, roomID string) (persistence.RoomDetail, error) {
	row := r.store.db.QueryRowContext(ctx, roomDetailQuery+` WHERE r.id = ?`, roomID)
	return scanRoomDetail(row)
}

// ListAvailableRooms returns operationally available rooms matching the
// structural filter, with category and hotel joined, in catalog order.
func (r *CatalogRepository) ListAvailableRooms(ctx context.Context, filter persistence.RoomSearchFilter) ([]persistence.RoomDetail, error) {
	query := roomDetailQuery + ` WHERE r.status = ?`
	args := []any{persistence.RoomStatusAvailable}

	if city := strings.TrimSpace(filter.City); city != "" {
		query += ` AND instr(lower(h.city), lower(?)) > 0`
		args = append(args, city)
	}
	if category := strings.TrimSpace(filter.CategoryName); category != "" {
		query += ` AND c.name = ?`
		args = append(args, category)
	}
	if filter.MinOccupancy > 0 {
		query += ` AND c.max_occupancy >= ?`
		args = append(args, filter.MinOccupancy)
	}
	query += ` ORDER BY r.created_at ASC, r.id ASC`

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var details []persistence.RoomDetail
	for rows.Next() {
		detail, scanErr := scanRoomDetail(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

// InsertHotel loads a hotel record. Catalog writes are an operational concern
// outside the engine; they exist for provisioning and fixtures.
func (r *CatalogRepository) InsertHotel(ctx context.Context, hotel persistence.Hotel) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO hotels (`+hotelColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hotel.ID, hotel.Name, hotel.Description, hotel.Address, hotel.City,
		hotel.Country, hotel.Rating, hotel.ImageURL, formatTime(hotel.CreatedAt))
	return mapSQLError(err)
}

// InsertRoomCategory loads a room-category record.
func (r *CatalogRepository) InsertRoomCategory(ctx context.Context, category persistence.RoomCategory) error {
	amenities, err := json.Marshal(category.Amenities)
	if err != nil {
		return fmt.Errorf("sqlite: marshal amenities: %w", err)
	}
	_, err = r.store.db.ExecContext(ctx,
		`INSERT INTO room_categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Description, category.BasePrice,
		category.MaxOccupancy, string(amenities), category.ImageURL, formatTime(category.CreatedAt))
	return mapSQLError(err)
}

// InsertRoom loads a room record.
func (r *CatalogRepository) InsertRoom(ctx context.Context, room persistence.Room) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO rooms (id, hotel_id, category_id, room_number, floor, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.HotelID, room.CategoryID, room.RoomNumber, room.Floor,
		room.Status, formatTime(room.CreatedAt))
	return mapSQLError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHotel(row rowScanner) (persistence.Hotel, error) {
	var hotel persistence.Hotel
	var createdAt string
	err := row.Scan(&hotel.ID, &hotel.Name, &hotel.Description, &hotel.Address,
		&hotel.City, &hotel.Country, &hotel.Rating, &hotel.ImageURL, &createdAt)
	if err != nil {
		return persistence.Hotel{}, mapSQLError(err)
	}
	if hotel.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Hotel{}, fmt.Errorf("sqlite: hotel %s created_at: %w", hotel.ID, err)
	}
	return hotel, nil
}

func scanCategory(row rowScanner) (persistence.RoomCategory, error) {
	var category persistence.RoomCategory
	var amenities, createdAt string
	err := row.Scan(&category.ID, &category.Name, &category.Description, &category.BasePrice,
		&category.MaxOccupancy, &amenities, &category.ImageURL, &createdAt)
	if err != nil {
		return persistence.RoomCategory{}, mapSQLError(err)
	}
	if err := json.Unmarshal([]byte(amenities), &category.Amenities); err != nil {
		return persistence.RoomCategory{}, fmt.Errorf("sqlite: category %s amenities: %w", category.ID, err)
	}
	if category.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.RoomCategory{}, fmt.Errorf("sqlite: category %s created_at: %w", category.ID, err)
	}
	return category, nil
}

func scanRoomDetail(row rowScanner) (persistence.RoomDetail, error) {
	var detail persistence.RoomDetail
	var roomCreated, catAmenities, catCreated, hotelCreated string

	err := row.Scan(
		&detail.Room.ID, &detail.Room.HotelID, &detail.Room.CategoryID,
		&detail.Room.RoomNumber, &detail.Room.Floor, &detail.Room.Status, &roomCreated,
		&detail.Category.ID, &detail.Category.Name, &detail.Category.Description,
		&detail.Category.BasePrice, &detail.Category.MaxOccupancy, &catAmenities,
		&detail.Category.ImageURL, &catCreated,
		&detail.Hotel.ID, &detail.Hotel.Name, &detail.Hotel.Description, &detail.Hotel.Address,
		&detail.Hotel.City, &detail.Hotel.Country, &detail.Hotel.Rating, &detail.Hotel.ImageURL, &hotelCreated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.RoomDetail{}, persistence.ErrNotFound
		}
		return persistence.RoomDetail{}, mapSQLError(err)
	}

	if err := json.Unmarshal([]byte(catAmenities), &detail.Category.Amenities); err != nil {
		return persistence.RoomDetail{}, fmt.Errorf("sqlite: category %s amenities: %w", detail.Category.ID, err)
	}
	if detail.Room.CreatedAt, err = parseTime(roomCreated); err != nil {
		return persistence.RoomDetail{}, fmt.Errorf("sqlite: room %s created_at: %w", detail.Room.ID, err)
	}
	if detail.Category.CreatedAt, err = parseTime(catCreated); err != nil {
		return persistence.RoomDetail{}, fmt.Errorf("sqlite: category %s created_at: %w", detail.Category.ID, err)
	}
	if detail.Hotel.CreatedAt, err = parseTime(hotelCreated); err != nil {
		return persistence.RoomDetail{}, fmt.Errorf("sqlite: hotel %s created_at: %w", detail.Hotel.ID, err)
	}
	return detail, nil
}
