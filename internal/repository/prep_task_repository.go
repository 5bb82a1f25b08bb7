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

// PrepTaskRepo reads and writes pre-show checklist items.
type PrepTaskRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewPrepTaskRepo returns a new PrepTaskRepo bound to the given database.
func NewPrepTaskRepo(db *sql.DB, dialect database.Dialect) *PrepTaskRepo {
	return &PrepTaskRepo{db: db, dialect: dialect}
}

const prepTaskColumns = `id, performance_id, task_key, act_id, due_date, is_done, done_at, done_by_profile_id`

func scanPrepTask(s rowScanner) (*model.PrepTask, error) {
	var (
		t           model.PrepTask
		due, doneAt sql.NullInt64
		doneBy      sql.NullString
	)
	if err := s.Scan(&t.ID, &t.PerformanceID, &t.TaskKey, &t.ActID, &due, &t.IsDone, &doneAt, &doneBy); err != nil {
		return nil, err
	}
	t.DueDate = timePtr(due)
	t.DoneAt = timePtr(doneAt)
	t.DoneByProfileID = stringPtr(doneBy)
	return &t, nil
}

// Create inserts a prep task, generating its ID when empty.
func (r *PrepTaskRepo) Create(ctx context.Context, t *model.PrepTask) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	const q = `INSERT INTO prep_tasks (` + prepTaskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.PerformanceID, t.TaskKey, t.ActID,
		nullMillis(t.DueDate), t.IsDone, nullMillis(t.DoneAt), nullString(t.DoneByProfileID))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetByID returns the prep task or a NotFoundError.
func (r *PrepTaskRepo) GetByID(ctx context.Context, id string) (*model.PrepTask, error) {
	return r.get(ctx, r.db, id, "")
}

// GetTx reads the prep task inside tx without locking it.
func (r *PrepTaskRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.PrepTask, error) {
	return r.get(ctx, tx, id, "")
}

// GetForUpdateTx reads and locks the prep task row.
func (r *PrepTaskRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.PrepTask, error) {
	return r.get(ctx, tx, id, r.dialect.ForUpdate)
}

func (r *PrepTaskRepo) get(ctx context.Context, q queryer, id, lock string) (*model.PrepTask, error) {
	t, err := scanPrepTask(q.QueryRowContext(ctx,
		`SELECT `+prepTaskColumns+` FROM prep_tasks WHERE id = ?`+lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("prep task", id)
	}
	return t, err
}

// SetDoneTx marks the task done by profileID at now, or clears the done
// stamp when done is false.  The caller has already locked the row.
func (r *PrepTaskRepo) SetDoneTx(ctx context.Context, tx *sql.Tx, id string, done bool, profileID string, now time.Time) error {
	var (
		doneAt sql.NullInt64
		doneBy sql.NullString
	)
	if done {
		doneAt = sql.NullInt64{Int64: toMillis(now), Valid: true}
		doneBy = sql.NullString{String: profileID, Valid: true}
	}
	const q = `UPDATE prep_tasks SET is_done = ?, done_at = ?, done_by_profile_id = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, done, doneAt, doneBy, id)
	return err
}

// ListByPerformance returns the tasks of a performance ordered by due
// date then key.
func (r *PrepTaskRepo) ListByPerformance(ctx context.Context, performanceID string) ([]model.PrepTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+prepTaskColumns+` FROM prep_tasks WHERE performance_id = ? ORDER BY due_date, task_key`, performanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PrepTask
	for rows.Next() {
		t, err := scanPrepTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
