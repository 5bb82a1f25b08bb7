package service

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/gig-booking/internal/repository"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	nf := &repository.NotFoundError{Entity: "event", ID: "e1"}
	assert.Same(t, error(nf), classify(nf))

	wrapped := classify(sql.ErrConnDone)
	assert.ErrorIs(t, wrapped, ErrStoreFailure)
	assert.Equal(t, "store_failure", Kind(wrapped))
	assert.Equal(t, wrapped, classify(wrapped))
}

func TestKind(t *testing.T) {
	cases := map[error]string{
		nil:                                 "ok",
		ErrUnauthenticated:                  "unauthenticated",
		ErrForbidden:                        "forbidden",
		fmt.Errorf("x: %w", ErrNotFound):    "not_found",
		ErrAlreadyAccepted:                  "already_accepted",
		ErrInvalidTransition:                "invalid_transition",
		fmt.Errorf("%w: full", ErrConflict): "conflict",
		ErrInvalidArgument:                  "invalid_argument",
		errors.New("disk on fire"):          "store_failure",
	}
	for err, want := range cases {
		assert.Equal(t, want, Kind(err), "%v", err)
	}
}
