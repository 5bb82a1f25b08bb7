package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/gig-booking/internal/database"
	"github.com/iliyamo/gig-booking/internal/model"
)

// BookingRepo reads and writes act-initiated booking requests.
type BookingRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB, dialect database.Dialect) *BookingRepo {
	return &BookingRepo{db: db, dialect: dialect}
}

const bookingColumns = `id, event_id, act_id, message, status, created_at, updated_at`

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b                model.Booking
		status           string
		created, updated int64
	)
	if err := s.Scan(&b.ID, &b.EventID, &b.ActID, &b.Message, &status, &created, &updated); err != nil {
		return nil, err
	}
	b.Status = model.RequestStatus(status)
	b.CreatedAt = fromMillis(created)
	b.UpdatedAt = fromMillis(updated)
	return &b, nil
}

// Create inserts a booking.  Status defaults to pending.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.RequestPending
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.EventID, b.ActID, b.Message, string(b.Status),
		toMillis(b.CreatedAt), toMillis(b.UpdatedAt))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetByID returns the booking or a NotFoundError.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return r.get(ctx, r.db, id, "")
}

// GetTx reads the booking inside tx without locking it.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
	return r.get(ctx, tx, id, "")
}

// GetForUpdateTx reads and locks the booking row.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
	return r.get(ctx, tx, id, r.dialect.ForUpdate)
}

func (r *BookingRepo) get(ctx context.Context, q queryer, id, lock string) (*model.Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`+lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("booking", id)
	}
	return b, err
}

// MarkStatusTx moves a pending booking to status.  A booking that is no
// longer pending yields ErrAlreadyAccepted or ErrInvalidTransition.
func (r *BookingRepo) MarkStatusTx(ctx context.Context, tx *sql.Tx, id string, status model.RequestStatus, now time.Time) error {
	return transitionRequestTx(ctx, tx, "bookings", "booking", id, model.RequestPending, status, now)
}
