package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrAlreadyProvisioned is returned when a session's meeting fields are
	// written a second time. The meeting resource is written exactly once.
	ErrAlreadyProvisioned = errors.New("persistence: session already has a meeting resource")
)
