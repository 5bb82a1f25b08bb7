package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/gig-booking/internal/identity"
	"github.com/iliyamo/gig-booking/internal/logger"
	"github.com/iliyamo/gig-booking/internal/model"
	"github.com/iliyamo/gig-booking/internal/queue"
)

// OrganizerCancelPerformance cancels a confirmed or pending_reconfirm
// performance on behalf of the event organizer.  An empty reason is
// recorded as ORGANIZER_CANCELED.  Cancelling a declined or canceled
// performance fails with ErrInvalidTransition.
func (e *Engine) OrganizerCancelPerformance(ctx context.Context, req CancelPerformanceRequest) (res PerformanceResult, err error) {
	const op = "organizer_cancel_performance"
	start := time.Now()
	defer func() {
		e.finish(ctx, op, start, err,
			logger.String("performance_id", req.PerformanceID),
			logger.String("status", string(res.Status)))
	}()

	caller, err := e.caller(ctx)
	if err != nil {
		return PerformanceResult{}, err
	}
	reason := req.Reason
	if reason == "" {
		reason = model.ReasonOrganizerCanceled
	}

	var perf *model.Performance
	err = e.tx(ctx, func(tx *sql.Tx) error {
		p, err := e.performances.GetTx(ctx, tx, req.PerformanceID)
		if err != nil {
			return err
		}
		event, err := e.events.GetForUpdateTx(ctx, tx, p.EventID)
		if err != nil {
			return err
		}
		if event.OrganizerProfileID != caller.ProfileID {
			return ErrForbidden
		}
		if p, err = e.performances.GetForUpdateTx(ctx, tx, p.ID); err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(model.PerformanceCanceled) {
			return fmt.Errorf("%w: performance is %s", ErrInvalidTransition, p.Status)
		}

		now := e.clock()
		if err := e.performances.TransitionTx(ctx, tx, p.ID, p.Status, model.PerformanceCanceled, &reason, now); err != nil {
			return err
		}
		p.Status, p.StatusReason, p.UpdatedAt = model.PerformanceCanceled, &reason, now
		perf = p
		return nil
	})
	if err != nil {
		return PerformanceResult{}, err
	}

	e.publish(ctx, performanceEvent(queue.TypePerformanceCanceled, perf, caller))
	return resultOf(perf), nil
}

// ReconfirmPerformance moves a pending_reconfirm performance back to
// confirmed on behalf of a member of its act.  The reason is cleared and
// the snapshot is refreshed from the event's current core fields.
func (e *Engine) ReconfirmPerformance(ctx context.Context, req PerformanceRequest) (res PerformanceResult, err error) {
	const op = "reconfirm_performance"
	start := time.Now()
	defer func() { e.finish(ctx, op, start, err, logger.String("performance_id", req.PerformanceID)) }()

	caller, err := e.caller(ctx)
	if err != nil {
		return PerformanceResult{}, err
	}

	var perf *model.Performance
	err = e.tx(ctx, func(tx *sql.Tx) error {
		p, event, err := e.lockForActMember(ctx, tx, caller, req.PerformanceID)
		if err != nil {
			return err
		}
		if p.Status != model.PerformancePendingReconfirm {
			return fmt.Errorf("%w: performance is %s", ErrInvalidTransition, p.Status)
		}
		if event.IsCancelled() {
			return fmt.Errorf("%w: event %s is cancelled", ErrInvalidTransition, event.ID)
		}

		now := e.clock()
		if err := e.performances.ReconfirmTx(ctx, tx, p.ID, event.Date, event.VenueID, now); err != nil {
			return err
		}
		p.Status, p.StatusReason, p.UpdatedAt = model.PerformanceConfirmed, nil, now
		p.EventDate, p.VenueID = event.Date, event.VenueID
		perf = p
		return nil
	})
	if err != nil {
		return PerformanceResult{}, err
	}

	e.publish(ctx, performanceEvent(queue.TypePerformanceReconfirmed, perf, caller))
	return resultOf(perf), nil
}

// DeclineReconfirmPerformance moves a pending_reconfirm performance to
// declined on behalf of a member of its act.  The reason that triggered
// the reconfirmation is kept.
func (e *Engine) DeclineReconfirmPerformance(ctx context.Context, req PerformanceRequest) (res PerformanceResult, err error) {
	const op = "decline_reconfirm_performance"
	start := time.Now()
	defer func() { e.finish(ctx, op, start, err, logger.String("performance_id", req.PerformanceID)) }()

	caller, err := e.caller(ctx)
	if err != nil {
		return PerformanceResult{}, err
	}

	var perf *model.Performance
	err = e.tx(ctx, func(tx *sql.Tx) error {
		p, _, err := e.lockForActMember(ctx, tx, caller, req.PerformanceID)
		if err != nil {
			return err
		}
		if p.Status != model.PerformancePendingReconfirm {
			return fmt.Errorf("%w: performance is %s", ErrInvalidTransition, p.Status)
		}

		now := e.clock()
		err = e.performances.TransitionTx(ctx, tx, p.ID, model.PerformancePendingReconfirm,
			model.PerformanceDeclined, p.StatusReason, now)
		if err != nil {
			return err
		}
		p.Status, p.UpdatedAt = model.PerformanceDeclined, now
		perf = p
		return nil
	})
	if err != nil {
		return PerformanceResult{}, err
	}

	e.publish(ctx, performanceEvent(queue.TypePerformanceDeclined, perf, caller))
	return resultOf(perf), nil
}

// lockForActMember locks the performance's event and then the
// performance, and checks that caller belongs to the performing act.
func (e *Engine) lockForActMember(ctx context.Context, tx *sql.Tx, caller identity.Identity,
	performanceID string) (*model.Performance, *model.Event, error) {

	p, err := e.performances.GetTx(ctx, tx, performanceID)
	if err != nil {
		return nil, nil, err
	}
	event, err := e.events.GetForUpdateTx(ctx, tx, p.EventID)
	if err != nil {
		return nil, nil, err
	}
	if p, err = e.performances.GetForUpdateTx(ctx, tx, p.ID); err != nil {
		return nil, nil, err
	}
	member, err := e.acts.IsMemberTx(ctx, tx, p.ActID, caller.ProfileID)
	if err != nil {
		return nil, nil, err
	}
	if !member {
		return nil, nil, ErrForbidden
	}
	return p, event, nil
}

// GetPerformance returns one performance.
func (e *Engine) GetPerformance(ctx context.Context, id string) (*model.Performance, error) {
	if _, err := e.caller(ctx); err != nil {
		return nil, err
	}
	p, err := e.performances.GetByID(ctx, id)
	return p, classify(err)
}

// ListEventPerformances returns every performance of an event, whatever
// its status.
func (e *Engine) ListEventPerformances(ctx context.Context, eventID string) ([]model.Performance, error) {
	if _, err := e.caller(ctx); err != nil {
		return nil, err
	}
	if _, err := e.events.GetByID(ctx, eventID); err != nil {
		return nil, classify(err)
	}
	list, err := e.performances.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, classify(err)
	}
	if list == nil {
		list = []model.Performance{}
	}
	return list, nil
}

func resultOf(p *model.Performance) PerformanceResult {
	return PerformanceResult{PerformanceID: p.ID, Status: p.Status, Reason: p.StatusReason}
}
