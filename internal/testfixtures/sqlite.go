package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/hotel-reservations/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// store for integration-style persistence tests.
type SQLiteHarness struct {
	Store    *sqlite.Store
	Catalog  *sqlite.CatalogRepository
	Bookings *sqlite.BookingRepository
	Users    *sqlite.UserRepository
	Sessions *sqlite.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "reservations.db")

	store, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate store: %v", err)
	}

	harness := &SQLiteHarness{
		Store:    store,
		Catalog:  sqlite.NewCatalogRepository(store),
		Bookings: sqlite.NewBookingRepository(store),
		Users:    sqlite.NewUserRepository(store),
		Sessions: sqlite.NewSessionRepository(store),
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedRoomDetail inserts the fixture's hotel, category and room so foreign
// keys resolve, returning the fixture unchanged for convenience.
func (h *SQLiteHarness) SeedRoomDetail(tb testing.TB, detail RoomDetailFixture) RoomDetailFixture {
	tb.Helper()

	ctx := context.Background()
	if err := h.Catalog.InsertHotel(ctx, detail.Hotel.Persistence()); err != nil {
		tb.Fatalf("failed to insert hotel: %v", err)
	}
	if err := h.Catalog.InsertRoomCategory(ctx, detail.Category.Persistence()); err != nil {
		tb.Fatalf("failed to insert room category: %v", err)
	}
	if err := h.Catalog.InsertRoom(ctx, detail.Room.Persistence()); err != nil {
		tb.Fatalf("failed to insert room: %v", err)
	}
	return detail
}

// SeedUser inserts the fixture's user record.
func (h *SQLiteHarness) SeedUser(tb testing.TB, user UserFixture) UserFixture {
	tb.Helper()

	if err := h.Users.CreateUser(context.Background(), user.Persistence()); err != nil {
		tb.Fatalf("failed to insert user: %v", err)
	}
	return user
}
