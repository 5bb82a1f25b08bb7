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

// OfferRepo reads and writes organizer-initiated offers.
type OfferRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewOfferRepo returns a new OfferRepo bound to the given database.
func NewOfferRepo(db *sql.DB, dialect database.Dialect) *OfferRepo {
	return &OfferRepo{db: db, dialect: dialect}
}

const offerColumns = `id, event_id, act_id, status, created_at, updated_at`

func scanOffer(s rowScanner) (*model.Offer, error) {
	var (
		o                model.Offer
		status           string
		created, updated int64
	)
	if err := s.Scan(&o.ID, &o.EventID, &o.ActID, &status, &created, &updated); err != nil {
		return nil, err
	}
	o.Status = model.RequestStatus(status)
	o.CreatedAt = fromMillis(created)
	o.UpdatedAt = fromMillis(updated)
	return &o, nil
}

// Create inserts an offer.  Status defaults to pending.
func (r *OfferRepo) Create(ctx context.Context, o *model.Offer) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = model.RequestPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	const q = `INSERT INTO offers (` + offerColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, o.ID, o.EventID, o.ActID, string(o.Status),
		toMillis(o.CreatedAt), toMillis(o.UpdatedAt))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetByID returns the offer or a NotFoundError.
func (r *OfferRepo) GetByID(ctx context.Context, id string) (*model.Offer, error) {
	return r.get(ctx, r.db, id, "")
}

// GetTx reads the offer inside tx without locking it.
func (r *OfferRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.Offer, error) {
	return r.get(ctx, tx, id, "")
}

// GetForUpdateTx reads and locks the offer row.
func (r *OfferRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Offer, error) {
	return r.get(ctx, tx, id, r.dialect.ForUpdate)
}

func (r *OfferRepo) get(ctx context.Context, q queryer, id, lock string) (*model.Offer, error) {
	o, err := scanOffer(q.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`+lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("offer", id)
	}
	return o, err
}

// MarkStatusTx moves a pending offer to status.
func (r *OfferRepo) MarkStatusTx(ctx context.Context, tx *sql.Tx, id string, status model.RequestStatus, now time.Time) error {
	return transitionRequestTx(ctx, tx, "offers", "offer", id, model.RequestPending, status, now)
}
