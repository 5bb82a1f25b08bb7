// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// lifecycle engine and the HTTP handlers to distinguish between failure
// scenarios with errors.Is.  Driver specific errors are translated here
// so that nothing above this package needs to know which database is in
// use.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a referenced row does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not control, e.g. accepting a booking for an event
// they do not organize.  Handlers translate it into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyAccepted is returned when a booking or offer has already been
// turned into a performance.
var ErrAlreadyAccepted = errors.New("already accepted")

// ErrInvalidTransition is returned when the requested status change is
// not an edge of the state machine for the current status.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrConflict is returned when a write collides with existing state:
// a duplicate key or an event that has no free slot left.  Handlers
// translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// NotFoundError names the missing entity.  It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Unwrap lets errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isUniqueViolation reports whether err is a unique or primary key
// violation from either supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
