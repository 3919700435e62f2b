package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting user may not perform the
	// operation, such as settling or cancelling another user's booking.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidRange is returned when a stay window is malformed, such as a
	// check-out on or before the check-in or a check-in in the past.
	ErrInvalidRange = errors.New("application: invalid stay window")
	// ErrCapacityExceeded is returned when the guest count exceeds the booked
	// category's maximum occupancy.
	ErrCapacityExceeded = errors.New("application: guest count exceeds room occupancy")
	// ErrConflict is returned when an overlapping non-cancelled booking
	// exists for the room at commit time.
	ErrConflict = errors.New("application: room already booked for the requested dates")
	// ErrInvalidState is returned when a booking cannot make the requested
	// lifecycle transition, such as paying a confirmed or cancelled booking.
	ErrInvalidState = errors.New("application: illegal booking state transition")
	// ErrPaymentTimeout is returned when the payment gateway did not answer
	// within the configured bound. The booking stays retryable.
	ErrPaymentTimeout = errors.New("application: payment gateway timed out")
	// ErrAlreadyExists is returned when a uniqueness rule rejects a write,
	// such as registering an email twice.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when a disabled account attempts to
	// authenticate.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrSessionExpired is returned when a session token is past its TTL.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
