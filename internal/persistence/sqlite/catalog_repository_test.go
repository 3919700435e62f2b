package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hotel-reservations/internal/persistence"
)

func setupCatalogRepositoryTest(t *testing.T) (*CatalogRepository, *Store) {
	t.Helper()
	store := setupStoreTest(t)
	return NewCatalogRepository(store), store
}

func TestCatalogRepository_ListHotelsOrdersByRating(t *testing.T) {
	repo, store := setupCatalogRepositoryTest(t)
	ctx := context.Background()

	seedHotel(t, store, persistence.Hotel{ID: "hotel-mid", Name: "Station Inn", City: "Porto", Rating: 3})
	seedHotel(t, store, persistence.Hotel{ID: "hotel-top", Name: "Harbour Hotel", City: "Lisbon", Rating: 5})
	seedHotel(t, store, persistence.Hotel{ID: "hotel-also-top", Name: "Atlantic View", City: "Faro", Rating: 5})

	hotels, err := repo.ListHotels(ctx)
	if err != nil {
		t.Fatalf("ListHotels failed: %v", err)
	}
	if len(hotels) != 3 {
		t.Fatalf("expected three hotels, got %d", len(hotels))
	}
	// Best rated first, names break the tie.
	if hotels[0].ID != "hotel-also-top" || hotels[1].ID != "hotel-top" || hotels[2].ID != "hotel-mid" {
		t.Fatalf("unexpected order: %s, %s, %s", hotels[0].ID, hotels[1].ID, hotels[2].ID)
	}
}

func TestCatalogRepository_GetHotel(t *testing.T) {
	repo, store := setupCatalogRepositoryTest(t)
	ctx := context.Background()

	seeded := seedHotel(t, store, persistence.Hotel{
		ID: "hotel-1", Name: "Harbour Hotel", Description: "On the waterfront",
		Address: "1 Dock Road", City: "Lisbon", Country: "Portugal", Rating: 4,
		ImageURL: "https://images.example.com/hotel-1.jpg",
	})

	hotel, err := repo.GetHotel(ctx, "hotel-1")
	if err != nil {
		t.Fatalf("GetHotel failed: %v", err)
	}
	if hotel.Name != seeded.Name || hotel.City != seeded.City || hotel.Rating != seeded.Rating {
		t.Fatalf("unexpected hotel: %+v", hotel)
	}

	if _, err := repo.GetHotel(ctx, "hotel-404"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogRepository_ListRoomCategoriesCheapestFirst(t *testing.T) {
	repo, store := setupCatalogRepositoryTest(t)
	ctx := context.Background()

	seedCategory(t, store, persistence.RoomCategory{
		ID: "category-suite", Name: "Suite", BasePrice: 320, MaxOccupancy: 4,
		Amenities: []string{"wifi", "balcony", "mini bar"},
	})
	seedCategory(t, store, persistence.RoomCategory{
		ID: "category-standard", Name: "Standard", BasePrice: 90, MaxOccupancy: 2,
		Amenities: []string{"wifi"},
	})

	categories, err := repo.ListRoomCategories(ctx)
	if err != nil {
		t.Fatalf("ListRoomCategories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected two categories, got %d", len(categories))
	}
	if categories[0].ID != "category-standard" || categories[1].ID != "category-suite" {
		t.Fatalf("expected cheapest first, got %s then %s", categories[0].ID, categories[1].ID)
	}
	if len(categories[1].Amenities) != 3 || categories[1].Amenities[1] != "balcony" {
		t.Fatalf("amenities round trip failed: %v", categories[1].Amenities)
	}
}

func TestCatalogRepository_GetRoomDetailJoins(t *testing.T) {
	repo, store := setupCatalogRepositoryTest(t)
	ctx := context.Background()

	seedBookableRoom(t, store)

	detail, err := repo.GetRoomDetail(ctx, "room-1")
	if err != nil {
		t.Fatalf("GetRoomDetail failed: %v", err)
	}
	if detail.Room.RoomNumber != "101" {
		t.Errorf("unexpected room: %+v", detail.Room)
	}
	if detail.Category.Name != "Sea View" || detail.Category.BasePrice != 150 {
		t.Errorf("unexpected category: %+v", detail.Category)
	}
	if detail.Hotel.Name != "Harbour Hotel" || detail.Hotel.City != "Lisbon" {
		t.Errorf("unexpected hotel: %+v", detail.Hotel)
	}

	if _, err := repo.GetRoomDetail(ctx, "room-404"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogRepository_ListAvailableRooms(t *testing.T) {
	repo, store := setupCatalogRepositoryTest(t)
	ctx := context.Background()

	seedHotel(t, store, persistence.Hotel{ID: "hotel-lisbon", Name: "Harbour Hotel", City: "Lisbon"})
	seedHotel(t, store, persistence.Hotel{ID: "hotel-porto", Name: "Station Inn", City: "Porto"})
	seedCategory(t, store, persistence.RoomCategory{
		ID: "category-standard", Name: "Standard", BasePrice: 90, MaxOccupancy: 2,
	})
	seedCategory(t, store, persistence.RoomCategory{
		ID: "category-suite", Name: "Suite", BasePrice: 320, MaxOccupancy: 4,
	})

	seedRoom(t, store, persistence.Room{
		ID: "room-a", HotelID: "hotel-lisbon", CategoryID: "category-standard",
		RoomNumber: "101", CreatedAt: testBase,
	})
	seedRoom(t, store, persistence.Room{
		ID: "room-b", HotelID: "hotel-lisbon", CategoryID: "category-suite",
		RoomNumber: "201", CreatedAt: testBase.Add(time.Minute),
	})
	seedRoom(t, store, persistence.Room{
		ID: "room-c", HotelID: "hotel-porto", CategoryID: "category-standard",
		RoomNumber: "11", CreatedAt: testBase.Add(2 * time.Minute),
	})
	seedRoom(t, store, persistence.Room{
		ID: "room-closed", HotelID: "hotel-lisbon", CategoryID: "category-standard",
		RoomNumber: "102", Status: persistence.RoomStatusMaintenance,
	})

	t.Run("no filter returns all operational rooms in catalog order", func(t *testing.T) {
		details, err := repo.ListAvailableRooms(ctx, persistence.RoomSearchFilter{})
		if err != nil {
			t.Fatalf("ListAvailableRooms failed: %v", err)
		}
		if len(details) != 3 {
			t.Fatalf("expected three rooms, got %d", len(details))
		}
		if details[0].Room.ID != "room-a" || details[1].Room.ID != "room-b" || details[2].Room.ID != "room-c" {
			t.Fatalf("unexpected order: %s, %s, %s", details[0].Room.ID, details[1].Room.ID, details[2].Room.ID)
		}
	})

	t.Run("city substring matches case-insensitively", func(t *testing.T) {
		details, err := repo.ListAvailableRooms(ctx, persistence.RoomSearchFilter{City: "lis"})
		if err != nil {
			t.Fatalf("ListAvailableRooms failed: %v", err)
		}
		if len(details) != 2 {
			t.Fatalf("expected two Lisbon rooms, got %d", len(details))
		}
		for _, detail := range details {
			if detail.Hotel.City != "Lisbon" {
				t.Fatalf("unexpected city %q", detail.Hotel.City)
			}
		}
	})

	t.Run("category name is exact", func(t *testing.T) {
		details, err := repo.ListAvailableRooms(ctx, persistence.RoomSearchFilter{CategoryName: "Suite"})
		if err != nil {
			t.Fatalf("ListAvailableRooms failed: %v", err)
		}
		if len(details) != 1 || details[0].Room.ID != "room-b" {
			t.Fatalf("expected only the suite, got %+v", details)
		}
	})

	t.Run("minimum occupancy excludes small categories", func(t *testing.T) {
		details, err := repo.ListAvailableRooms(ctx, persistence.RoomSearchFilter{MinOccupancy: 3})
		if err != nil {
			t.Fatalf("ListAvailableRooms failed: %v", err)
		}
		if len(details) != 1 || details[0].Room.ID != "room-b" {
			t.Fatalf("expected only the suite, got %+v", details)
		}
	})
}

func TestCatalogRepository_InsertConstraints(t *testing.T) {
	repo, store := setupCatalogRepositoryTest(t)
	ctx := context.Background()

	seedBookableRoom(t, store)

	duplicate := persistence.Room{
		ID: "room-dup", HotelID: "hotel-1", CategoryID: "category-1",
		RoomNumber: "101", CreatedAt: testBase,
	}
	if err := repo.InsertRoom(ctx, duplicate); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for a reused room number, got %v", err)
	}

	orphan := persistence.Room{
		ID: "room-orphan", HotelID: "hotel-404", CategoryID: "category-1",
		RoomNumber: "999", CreatedAt: testBase,
	}
	if err := repo.InsertRoom(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation for unknown hotel, got %v", err)
	}

	freeRate := persistence.RoomCategory{
		ID: "category-free", Name: "Free", BasePrice: 0, MaxOccupancy: 2, CreatedAt: testBase,
	}
	if err := repo.InsertRoomCategory(ctx, freeRate); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for zero rate, got %v", err)
	}
}
