package application

import (
	"time"

	"github.com/example/hotel-reservations/internal/stay"
)

// CalculateTotal prices a stay: nights in [checkIn, checkOut) times the
// category's nightly rate, computed once at booking creation and never
// recomputed. The function is pure; it rejects a non-positive span with
// ErrInvalidRange instead of returning a non-positive cost.
func CalculateTotal(checkIn, checkOut time.Time, nightlyRate float64) (float64, error) {
	window, err := stay.NewWindow(checkIn, checkOut)
	if err != nil {
		return 0, ErrInvalidRange
	}
	if nightlyRate <= 0 {
		vErr := &ValidationError{}
		vErr.add("base_price", "nightly rate must be positive")
		return 0, vErr
	}
	return float64(window.Nights()) * nightlyRate, nil
}
