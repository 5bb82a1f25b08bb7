package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/gig-booking/internal/identity"
	"github.com/iliyamo/gig-booking/internal/repository"
)

// Errors returned by the engine.  The storage sentinels are re-exported so
// callers only need this package to classify a failure.
var (
	ErrUnauthenticated   = identity.ErrUnauthenticated
	ErrForbidden         = repository.ErrForbidden
	ErrNotFound          = repository.ErrNotFound
	ErrAlreadyAccepted   = repository.ErrAlreadyAccepted
	ErrInvalidTransition = repository.ErrInvalidTransition
	ErrConflict          = repository.ErrConflict

	// ErrInvalidArgument marks a malformed request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreFailure wraps any error the store raised that is not part
	// of the taxonomy above.
	ErrStoreFailure = errors.New("store failure")
)

var classified = []error{
	ErrUnauthenticated,
	ErrForbidden,
	ErrNotFound,
	ErrAlreadyAccepted,
	ErrInvalidTransition,
	ErrConflict,
	ErrInvalidArgument,
}

// classify returns err unchanged when it belongs to the taxonomy and
// wraps it with ErrStoreFailure otherwise.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range classified {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreFailure, err)
}

// Kind names the class of err for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyAccepted):
		return "already_accepted"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	}
	return "store_failure"
}
