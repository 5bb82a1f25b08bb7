package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/gig-booking/internal/model"
)

// ActRepo reads and writes acts and their member lists.
type ActRepo struct {
	db *sql.DB
}

// NewActRepo returns a new ActRepo bound to the given database.
func NewActRepo(db *sql.DB) *ActRepo { return &ActRepo{db: db} }

// Create inserts an act, generating its ID when empty.
func (r *ActRepo) Create(ctx context.Context, a *model.Act) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO acts (id, owner_profile_id, name, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.OwnerProfileID, a.Name, toMillis(a.CreatedAt))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// AddMember attaches a profile to an act.  Adding the same profile twice
// returns ErrConflict.
func (r *ActRepo) AddMember(ctx context.Context, actID, profileID string) error {
	const q = `INSERT INTO act_members (act_id, profile_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, q, actID, profileID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// IsMemberTx reports whether profileID owns the act or is listed in its
// members.  An unknown act yields false.
func (r *ActRepo) IsMemberTx(ctx context.Context, tx *sql.Tx, actID, profileID string) (bool, error) {
	const q = `SELECT 1 FROM acts a
		WHERE a.id = ?
		  AND (a.owner_profile_id = ?
		       OR EXISTS (SELECT 1 FROM act_members m WHERE m.act_id = a.id AND m.profile_id = ?))`
	var one int
	err := tx.QueryRowContext(ctx, q, actID, profileID, profileID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
