package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/gig-booking/internal/model"
)

// VenueRepo reads and writes the venues table.  Venue management is
// handled elsewhere; the engine only needs to know a venue exists.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a new VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// Create inserts a venue, generating its ID when empty.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO venues (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, v.ID, v.Name, toMillis(v.CreatedAt)); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// ExistsTx reports whether a venue with the given ID exists.
func (r *VenueRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM venues WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
