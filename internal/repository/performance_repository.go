package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/gig-booking/internal/database"
	"github.com/iliyamo/gig-booking/internal/model"
)

// PerformanceRepo reads and writes performances.  Every status change is
// a conditional UPDATE keyed on the expected current status, so a stale
// read can never move a row along an edge that is no longer legal.
type PerformanceRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewPerformanceRepo returns a new PerformanceRepo bound to the given
// database.
func NewPerformanceRepo(db *sql.DB, dialect database.Dialect) *PerformanceRepo {
	return &PerformanceRepo{db: db, dialect: dialect}
}

const performanceColumns = `id, event_id, act_id, booking_id, offer_id, event_date, venue_id, status, status_reason, created_at, updated_at`

func scanPerformance(s rowScanner) (*model.Performance, error) {
	var (
		p                      model.Performance
		bookingID, offerID     sql.NullString
		reason                 sql.NullString
		date, created, updated int64
		status                 string
	)
	if err := s.Scan(&p.ID, &p.EventID, &p.ActID, &bookingID, &offerID, &date,
		&p.VenueID, &status, &reason, &created, &updated); err != nil {
		return nil, err
	}
	p.BookingID = stringPtr(bookingID)
	p.OfferID = stringPtr(offerID)
	p.EventDate = fromMillis(date)
	p.Status = model.PerformanceStatus(status)
	if !p.Status.Valid() {
		return nil, fmt.Errorf("performance %s: unknown status %q", p.ID, status)
	}
	p.StatusReason = stringPtr(reason)
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return &p, nil
}

// CreateTx inserts a performance.  A second performance for the same
// booking or offer violates a unique index and yields ErrConflict.
func (r *PerformanceRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Performance) error {
	const q = `INSERT INTO performances (` + performanceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, p.ID, p.EventID, p.ActID,
		nullString(p.BookingID), nullString(p.OfferID), toMillis(p.EventDate), p.VenueID,
		string(p.Status), nullString(p.StatusReason), toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetByID returns the performance or a NotFoundError.
func (r *PerformanceRepo) GetByID(ctx context.Context, id string) (*model.Performance, error) {
	return r.get(ctx, r.db, id, "")
}

// GetTx reads the performance inside tx without locking it.
func (r *PerformanceRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.Performance, error) {
	return r.get(ctx, tx, id, "")
}

// GetForUpdateTx reads and locks the performance row.
func (r *PerformanceRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Performance, error) {
	return r.get(ctx, tx, id, r.dialect.ForUpdate)
}

func (r *PerformanceRepo) get(ctx context.Context, q queryer, id, lock string) (*model.Performance, error) {
	p, err := scanPerformance(q.QueryRowContext(ctx,
		`SELECT `+performanceColumns+` FROM performances WHERE id = ?`+lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("performance", id)
	}
	return p, err
}

// ListByEvent returns every performance of an event ordered by creation.
func (r *PerformanceRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Performance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+performanceColumns+` FROM performances WHERE event_id = ? ORDER BY created_at, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Performance
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CountActiveByEventTx counts confirmed and pending_reconfirm
// performances of an event.  The count is a locking read: on InnoDB a
// plain SELECT would answer from the snapshot taken at the transaction's
// first read and miss performances committed while the caller waited for
// the event lock.
func (r *PerformanceRepo) CountActiveByEventTx(ctx context.Context, tx *sql.Tx, eventID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, r.countActiveQuery(), eventID,
		string(model.PerformanceConfirmed), string(model.PerformancePendingReconfirm)).Scan(&n)
	return n, err
}

func (r *PerformanceRepo) countActiveQuery() string {
	return `SELECT COUNT(*) FROM performances WHERE event_id = ? AND status IN (?, ?)` + r.dialect.ForUpdate
}

// TransitionTx moves a performance from one status to another and sets
// its reason (nil clears it).  A row that is not in from yields
// ErrInvalidTransition.
func (r *PerformanceRepo) TransitionTx(ctx context.Context, tx *sql.Tx, id string,
	from, to model.PerformanceStatus, reason *string, now time.Time) error {

	if !from.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	const q = `UPDATE performances SET status = ?, status_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, string(to), nullString(reason), toMillis(now), id, string(from))
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ReconfirmTx moves a pending_reconfirm performance back to confirmed,
// clears its reason and refreshes the event snapshot.
func (r *PerformanceRepo) ReconfirmTx(ctx context.Context, tx *sql.Tx, id string,
	eventDate time.Time, venueID string, now time.Time) error {

	const q = `UPDATE performances
		SET status = ?, status_reason = NULL, event_date = ?, venue_id = ?, updated_at = ?
		WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, string(model.PerformanceConfirmed), toMillis(eventDate), venueID,
		toMillis(now), id, string(model.PerformancePendingReconfirm))
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// RequestReconfirmByEventTx moves every confirmed performance of an event
// to pending_reconfirm with reason and returns the affected rows in their
// new state.  Rows in any other status are left alone.  The caller holds
// the event lock.
func (r *PerformanceRepo) RequestReconfirmByEventTx(ctx context.Context, tx *sql.Tx,
	eventID, reason string, now time.Time) ([]model.Performance, error) {

	rows, err := tx.QueryContext(ctx,
		`SELECT `+performanceColumns+` FROM performances WHERE event_id = ? AND status = ? ORDER BY created_at, id`+r.dialect.ForUpdate,
		eventID, string(model.PerformanceConfirmed))
	if err != nil {
		return nil, err
	}
	var affected []model.Performance
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		affected = append(affected, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(affected) == 0 {
		return nil, nil
	}

	const q = `UPDATE performances SET status = ?, status_reason = ?, updated_at = ?
		WHERE event_id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, string(model.PerformancePendingReconfirm), reason, toMillis(now),
		eventID, string(model.PerformanceConfirmed))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if int(n) != len(affected) {
		return nil, ErrConflict
	}
	for i := range affected {
		reason := reason
		affected[i].Status = model.PerformancePendingReconfirm
		affected[i].StatusReason = &reason
		affected[i].UpdatedAt = now.UTC()
	}
	return affected, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrInvalidTransition
	}
	return nil
}
