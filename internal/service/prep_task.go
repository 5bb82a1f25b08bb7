package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/gig-booking/internal/logger"
	"github.com/iliyamo/gig-booking/internal/model"
)

// SetPrepTaskDone marks a prep task done or open again.  Only members of
// the performing act may toggle it, and only while the performance is
// still active.
func (e *Engine) SetPrepTaskDone(ctx context.Context, req SetPrepTaskDoneRequest) (task *model.PrepTask, err error) {
	const op = "set_prep_task_done"
	start := time.Now()
	defer func() {
		e.finish(ctx, op, start, err, logger.String("task_id", req.TaskID), logger.Bool("done", req.Done))
	}()

	caller, err := e.caller(ctx)
	if err != nil {
		return nil, err
	}

	err = e.tx(ctx, func(tx *sql.Tx) error {
		t, err := e.prepTasks.GetTx(ctx, tx, req.TaskID)
		if err != nil {
			return err
		}
		p, err := e.performances.GetForUpdateTx(ctx, tx, t.PerformanceID)
		if err != nil {
			return err
		}
		member, err := e.acts.IsMemberTx(ctx, tx, p.ActID, caller.ProfileID)
		if err != nil {
			return err
		}
		if !member {
			return ErrForbidden
		}
		if p.Status.IsTerminal() {
			return fmt.Errorf("%w: performance is %s", ErrInvalidTransition, p.Status)
		}
		if _, err := e.prepTasks.GetForUpdateTx(ctx, tx, t.ID); err != nil {
			return err
		}
		if err := e.prepTasks.SetDoneTx(ctx, tx, t.ID, req.Done, caller.ProfileID, e.clock()); err != nil {
			return err
		}
		task, err = e.prepTasks.GetTx(ctx, tx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
