package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested resource does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint,
// e.g. a second enrollment for the same (course, email) pair.
var ErrDuplicate = errors.New("already exists")

// isDuplicateErr recognizes unique-constraint violations across the
// supported drivers by message, the same way batch DB errors are
// classified for HTTP responses.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
