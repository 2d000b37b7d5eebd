package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a record exists but belongs to another user.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateEmail is returned when a user with the given email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
// Concurrent registrations can slip past the existence pre-check; the insert
// then trips the constraint and must surface as ErrDuplicateEmail.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}
