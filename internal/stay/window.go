package stay

import (
	"errors"
	"time"
)

// ErrInvalidWindow is returned when a window's check-out does not fall after
// its check-in.
var ErrInvalidWindow = errors.New("stay: check-out must be after check-in")

// Window is a half-open calendar-date interval [CheckIn, CheckOut). A guest
// occupying the window stays the nights CheckIn .. CheckOut-1 and the room is
// free again on the check-out date itself.
type Window struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewWindow normalises both dates to UTC midnight and validates the span.
func NewWindow(checkIn, checkOut time.Time) (Window, error) {
	w := Window{CheckIn: Midnight(checkIn), CheckOut: Midnight(checkOut)}
	if !w.CheckIn.Before(w.CheckOut) {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

// Midnight truncates a timestamp to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights counts the booked nights covered by the window. A valid window
// always spans at least one night.
func (w Window) Nights() int {
	nights := int(w.CheckOut.Sub(w.CheckIn).Hours() / 24)
	if w.CheckIn.Add(time.Duration(nights) * 24 * time.Hour).Before(w.CheckOut) {
		nights++
	}
	return nights
}

// Overlaps reports whether two half-open windows share at least one night.
// Back-to-back stays (one guest checking out the day another checks in) do
// not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(w.CheckOut)
}

// Hold ties a window to the room it occupies.
type Hold struct {
	BookingID string
	RoomID    string
	Window    Window
}

// Conflict identifies an existing hold that collides with a candidate.
type Conflict struct {
	WithBookingID string
	RoomID        string
}

// DetectConflicts identifies the holds on the candidate's room whose windows
// intersect the candidate's. Holds on other rooms never conflict.
func DetectConflicts(existing []Hold, candidate Hold) []Conflict {
	var conflicts []Conflict
	for _, hold := range existing {
		if hold.RoomID != candidate.RoomID {
			continue
		}
		if hold.BookingID != "" && hold.BookingID == candidate.BookingID {
			continue
		}
		if hold.Window.Overlaps(candidate.Window) {
			conflicts = append(conflicts, Conflict{
				WithBookingID: hold.BookingID,
				RoomID:        hold.RoomID,
			})
		}
	}
	return conflicts
}
