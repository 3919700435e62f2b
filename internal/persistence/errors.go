package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConflict is returned when a booking insert loses to an overlapping
	// non-cancelled stay on the same room at commit time.
	ErrConflict = errors.New("persistence: overlapping booking")
	// ErrStaleStatus is returned when a guarded status update matched no row,
	// meaning the expected previous status no longer holds.
	ErrStaleStatus = errors.New("persistence: stale booking status")
	// ErrConstraintViolation is returned when a storage-level check constraint
	// rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)
