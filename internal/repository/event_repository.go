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

// EventRepo reads and writes the events table.  Events are never deleted;
// the only mutations the engine performs are core-field edits.
type EventRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB, dialect database.Dialect) *EventRepo {
	return &EventRepo{db: db, dialect: dialect}
}

const eventColumns = `id, organizer_profile_id, venue_id, event_date, status, max_artists, created_at, updated_at`

func scanEvent(s rowScanner) (*model.Event, error) {
	var (
		e                      model.Event
		date, created, updated int64
		status                 string
	)
	if err := s.Scan(&e.ID, &e.OrganizerProfileID, &e.VenueID, &date, &status,
		&e.MaxArtists, &created, &updated); err != nil {
		return nil, err
	}
	e.Date = fromMillis(date)
	e.Status = model.EventStatus(status)
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return &e, nil
}

// Create inserts an event.  A missing ID is generated and a missing
// status defaults to scheduled.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = model.EventScheduled
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	const q = `INSERT INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.OrganizerProfileID, e.VenueID,
		toMillis(e.Date), string(e.Status), e.MaxArtists, toMillis(e.CreatedAt), toMillis(e.UpdatedAt))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetByID returns the event or a NotFoundError.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return r.get(ctx, r.db, id, "")
}

// GetForUpdateTx loads the event inside tx and locks its row until the
// transaction ends.
func (r *EventRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Event, error) {
	return r.get(ctx, tx, id, r.dialect.ForUpdate)
}

func (r *EventRepo) get(ctx context.Context, q queryer, id, lock string) (*model.Event, error) {
	e, err := scanEvent(q.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`+lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("event", id)
	}
	return e, err
}

// UpdateCoreTx writes new core fields.  The caller holds the row lock.
func (r *EventRepo) UpdateCoreTx(ctx context.Context, tx *sql.Tx, id string, date time.Time, venueID string, now time.Time) error {
	const q = `UPDATE events SET event_date = ?, venue_id = ?, updated_at = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, toMillis(date), venueID, toMillis(now), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("event", id)
	}
	return nil
}
