package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/hotel-reservations/internal/persistence"
)

func setupBookingRepositoryTest(t *testing.T) (*BookingRepository, *Store) {
	t.Helper()

	store := setupStoreTest(t)
	seedBookableRoom(t, store)
	seedUser(t, store, "user-1")
	return NewBookingRepository(store), store
}

func testBooking(id string) persistence.Booking {
	return persistence.Booking{
		ID:            id,
		UserID:        "user-1",
		RoomID:        "room-1",
		CheckIn:       testDate(2025, time.March, 17),
		CheckOut:      testDate(2025, time.March, 20),
		GuestCount:    2,
		TotalAmount:   450,
		Status:        persistence.BookingStatusPending,
		PaymentStatus: persistence.PaymentStatusPending,
		CreatedAt:     testBase,
		UpdatedAt:     testBase,
	}
}

func TestBookingRepository_CreateAndGet(t *testing.T) {
	repo, _ := setupBookingRepositoryTest(t)
	ctx := context.Background()

	requests := "late arrival"
	booking := testBooking("booking-1")
	booking.SpecialRequests = &requests

	created, err := repo.CreateBooking(ctx, booking)
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if created.SpecialRequests == nil || *created.SpecialRequests != "late arrival" {
		t.Fatalf("special requests lost: %+v", created.SpecialRequests)
	}

	retrieved, err := repo.GetBooking(ctx, "booking-1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if !retrieved.CheckIn.Equal(testDate(2025, time.March, 17)) {
		t.Errorf("check_in round trip lost precision: %v", retrieved.CheckIn)
	}
	if !retrieved.CheckOut.Equal(testDate(2025, time.March, 20)) {
		t.Errorf("check_out round trip lost precision: %v", retrieved.CheckOut)
	}
	if retrieved.TotalAmount != 450 {
		t.Errorf("expected total 450, got %v", retrieved.TotalAmount)
	}
	if retrieved.Status != persistence.BookingStatusPending || retrieved.PaymentStatus != persistence.PaymentStatusPending {
		t.Errorf("expected pending/pending, got %s/%s", retrieved.Status, retrieved.PaymentStatus)
	}

	if _, err := repo.GetBooking(ctx, "booking-404"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingRepository_CreateRejectsOverlap(t *testing.T) {
	repo, _ := setupBookingRepositoryTest(t)
	ctx := context.Background()

	if _, err := repo.CreateBooking(ctx, testBooking("booking-1")); err != nil {
		t.Fatalf("first CreateBooking failed: %v", err)
	}

	overlapping := testBooking("booking-2")
	overlapping.CheckIn = testDate(2025, time.March, 19)
	overlapping.CheckOut = testDate(2025, time.March, 22)
	if _, err := repo.CreateBooking(ctx, overlapping); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	contained := testBooking("booking-3")
	contained.CheckIn = testDate(2025, time.March, 18)
	contained.CheckOut = testDate(2025, time.March, 19)
	if _, err := repo.CreateBooking(ctx, contained); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict for contained window, got %v", err)
	}

	// Check-out day equals the next check-in day: no overlap.
	adjacent := testBooking("booking-4")
	adjacent.CheckIn = testDate(2025, time.March, 20)
	adjacent.CheckOut = testDate(2025, time.March, 23)
	if _, err := repo.CreateBooking(ctx, adjacent); err != nil {
		t.Fatalf("adjacent CreateBooking failed: %v", err)
	}
}

func TestBookingRepository_CancelledBookingsDoNotBlock(t *testing.T) {
	repo, _ := setupBookingRepositoryTest(t)
	ctx := context.Background()

	cancelled := testBooking("booking-1")
	cancelled.Status = persistence.BookingStatusCancelled
	cancelled.PaymentStatus = persistence.PaymentStatusRefunded
	if _, err := repo.CreateBooking(ctx, cancelled); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := repo.CreateBooking(ctx, testBooking("booking-2")); err != nil {
		t.Fatalf("expected the cancelled booking to free the window: %v", err)
	}
}

func TestBookingRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	repo, _ := setupBookingRepositoryTest(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			booking := testBooking(fmt.Sprintf("booking-%d", idx))
			_, errs[idx] = repo.CreateBooking(context.Background(), booking)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, persistence.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestBookingRepository_ConstraintViolations(t *testing.T) {
	repo, store := setupBookingRepositoryTest(t)
	ctx := context.Background()

	noGuests := testBooking("booking-1")
	noGuests.GuestCount = 0
	if _, err := repo.CreateBooking(ctx, noGuests); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for zero guests, got %v", err)
	}

	orphan := testBooking("booking-2")
	orphan.UserID = "user-404"
	if _, err := repo.CreateBooking(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation for unknown user, got %v", err)
	}

	blank := testBooking("")
	if _, err := repo.CreateBooking(ctx, blank); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for blank id, got %v", err)
	}

	// None of the rejected writes may have landed.
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected an empty bookings table, got %d rows", count)
	}
}

func TestBookingRepository_ListUserBookings(t *testing.T) {
	repo, store := setupBookingRepositoryTest(t)
	seedUser(t, store, "user-2")
	ctx := context.Background()

	first := testBooking("booking-1")
	first.CreatedAt = testBase
	if _, err := repo.CreateBooking(ctx, first); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	second := testBooking("booking-2")
	second.CheckIn = testDate(2025, time.April, 1)
	second.CheckOut = testDate(2025, time.April, 3)
	second.CreatedAt = testBase.Add(time.Hour)
	if _, err := repo.CreateBooking(ctx, second); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	other := testBooking("booking-3")
	other.UserID = "user-2"
	other.CheckIn = testDate(2025, time.May, 1)
	other.CheckOut = testDate(2025, time.May, 2)
	if _, err := repo.CreateBooking(ctx, other); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	bookings, err := repo.ListUserBookings(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListUserBookings failed: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected two bookings, got %d", len(bookings))
	}
	if bookings[0].ID != "booking-2" || bookings[1].ID != "booking-1" {
		t.Fatalf("expected newest first, got %s then %s", bookings[0].ID, bookings[1].ID)
	}
}

func TestBookingRepository_OverlappingRoomIDs(t *testing.T) {
	repo, store := setupBookingRepositoryTest(t)
	seedRoom(t, store, persistence.Room{
		ID: "room-2", HotelID: "hotel-1", CategoryID: "category-1", RoomNumber: "102",
	})
	ctx := context.Background()

	if _, err := repo.CreateBooking(ctx, testBooking("booking-1")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	conflicting, err := repo.OverlappingRoomIDs(ctx, []string{"room-1", "room-2"},
		testDate(2025, time.March, 18), testDate(2025, time.March, 21))
	if err != nil {
		t.Fatalf("OverlappingRoomIDs failed: %v", err)
	}
	if len(conflicting) != 1 || conflicting[0] != "room-1" {
		t.Fatalf("expected only room-1 conflicting, got %v", conflicting)
	}

	// A window after the stay reports nothing.
	conflicting, err = repo.OverlappingRoomIDs(ctx, []string{"room-1", "room-2"},
		testDate(2025, time.March, 20), testDate(2025, time.March, 25))
	if err != nil {
		t.Fatalf("OverlappingRoomIDs failed: %v", err)
	}
	if len(conflicting) != 0 {
		t.Fatalf("expected no conflicts, got %v", conflicting)
	}

	if got, err := repo.OverlappingRoomIDs(ctx, nil, testBase, testBase); err != nil || got != nil {
		t.Fatalf("expected empty input to short-circuit, got %v, %v", got, err)
	}
}

func TestBookingRepository_UpdateBookingStatus(t *testing.T) {
	repo, _ := setupBookingRepositoryTest(t)
	ctx := context.Background()

	if _, err := repo.CreateBooking(ctx, testBooking("booking-1")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	pendingPair := persistence.BookingStatusPair{
		Status:        persistence.BookingStatusPending,
		PaymentStatus: persistence.PaymentStatusPending,
	}
	confirmedPair := persistence.BookingStatusPair{
		Status:        persistence.BookingStatusConfirmed,
		PaymentStatus: persistence.PaymentStatusPaid,
	}

	updated, err := repo.UpdateBookingStatus(ctx, "booking-1", pendingPair, confirmedPair)
	if err != nil {
		t.Fatalf("UpdateBookingStatus failed: %v", err)
	}
	if updated.Status != persistence.BookingStatusConfirmed || updated.PaymentStatus != persistence.PaymentStatusPaid {
		t.Fatalf("expected confirmed/paid, got %s/%s", updated.Status, updated.PaymentStatus)
	}

	// The expected pair no longer matches; the swap must not apply.
	if _, err := repo.UpdateBookingStatus(ctx, "booking-1", pendingPair, confirmedPair); !errors.Is(err, persistence.ErrStaleStatus) {
		t.Fatalf("expected ErrStaleStatus, got %v", err)
	}

	if _, err := repo.UpdateBookingStatus(ctx, "booking-404", pendingPair, confirmedPair); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingRepository_ExpirePendingBookings(t *testing.T) {
	repo, store := setupBookingRepositoryTest(t)
	seedRoom(t, store, persistence.Room{
		ID: "room-2", HotelID: "hotel-1", CategoryID: "category-1", RoomNumber: "102",
	})
	ctx := context.Background()

	stale := testBooking("booking-stale")
	stale.CreatedAt = testBase.Add(-time.Hour)
	if _, err := repo.CreateBooking(ctx, stale); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	fresh := testBooking("booking-fresh")
	fresh.RoomID = "room-2"
	fresh.CreatedAt = testBase.Add(-time.Minute)
	if _, err := repo.CreateBooking(ctx, fresh); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	expired, err := repo.ExpirePendingBookings(ctx, testBase.Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("ExpirePendingBookings failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected one expiry, got %d", expired)
	}

	got, _ := repo.GetBooking(ctx, "booking-stale")
	if got.Status != persistence.BookingStatusCancelled {
		t.Errorf("expected the stale booking cancelled, got %s", got.Status)
	}
	got, _ = repo.GetBooking(ctx, "booking-fresh")
	if got.Status != persistence.BookingStatusPending {
		t.Errorf("expected the fresh booking untouched, got %s", got.Status)
	}
}

func TestBookingRepository_CompleteElapsedBookings(t *testing.T) {
	repo, store := setupBookingRepositoryTest(t)
	seedRoom(t, store, persistence.Room{
		ID: "room-2", HotelID: "hotel-1", CategoryID: "category-1", RoomNumber: "102",
	})
	ctx := context.Background()

	elapsed := testBooking("booking-done")
	elapsed.CheckIn = testDate(2025, time.March, 1)
	elapsed.CheckOut = testDate(2025, time.March, 4)
	elapsed.Status = persistence.BookingStatusConfirmed
	elapsed.PaymentStatus = persistence.PaymentStatusPaid
	if _, err := repo.CreateBooking(ctx, elapsed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	upcoming := testBooking("booking-upcoming")
	upcoming.RoomID = "room-2"
	upcoming.Status = persistence.BookingStatusConfirmed
	upcoming.PaymentStatus = persistence.PaymentStatusPaid
	if _, err := repo.CreateBooking(ctx, upcoming); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	completed, err := repo.CompleteElapsedBookings(ctx, testDate(2025, time.March, 10))
	if err != nil {
		t.Fatalf("CompleteElapsedBookings failed: %v", err)
	}
	if completed != 1 {
		t.Fatalf("expected one completion, got %d", completed)
	}

	got, _ := repo.GetBooking(ctx, "booking-done")
	if got.Status != persistence.BookingStatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	got, _ = repo.GetBooking(ctx, "booking-upcoming")
	if got.Status != persistence.BookingStatusConfirmed {
		t.Errorf("expected the upcoming booking untouched, got %s", got.Status)
	}
}
