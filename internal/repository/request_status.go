package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/gig-booking/internal/model"
)

// transitionRequestTx moves a booking or offer from one status to another
// with a conditional UPDATE.  When no row matches, the current status is
// read back to tell a duplicate accept apart from an illegal move.
func transitionRequestTx(ctx context.Context, tx *sql.Tx, table, entity, id string,
	from, to model.RequestStatus, now time.Time) error {

	q := `UPDATE ` + table + ` SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, string(to), toMillis(now), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM `+table+` WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(entity, id)
	}
	if err != nil {
		return err
	}
	return RequestStatusError(model.RequestStatus(current))
}

// RequestStatusError classifies a booking or offer that is no longer
// pending: accepted maps to ErrAlreadyAccepted, anything else to
// ErrInvalidTransition.  It returns nil for a pending request.
func RequestStatusError(status model.RequestStatus) error {
	switch status {
	case model.RequestPending:
		return nil
	case model.RequestAccepted:
		return ErrAlreadyAccepted
	}
	return ErrInvalidTransition
}
