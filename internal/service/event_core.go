package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/gig-booking/internal/logger"
	"github.com/iliyamo/gig-booking/internal/model"
	"github.com/iliyamo/gig-booking/internal/queue"
	"github.com/iliyamo/gig-booking/internal/repository"
)

// UpdateEventCore changes an event's date and venue.  When either
// differs from the stored value, every confirmed performance of the event
// moves to pending_reconfirm with a reason naming what changed; the event
// write and the cascade commit together.  An edit that changes nothing
// succeeds without touching any row.  Dates are compared at millisecond
// precision, the precision the store keeps.
func (e *Engine) UpdateEventCore(ctx context.Context, req UpdateEventCoreRequest) (res UpdateEventCoreResult, err error) {
	const op = "update_event_core"
	start := time.Now()
	defer func() {
		e.finish(ctx, op, start, err,
			logger.String("event_id", req.EventID),
			logger.Bool("changed", res.Changed),
			logger.Int("cascade", len(res.AffectedPerformanceIDs)))
	}()

	caller, err := e.caller(ctx)
	if err != nil {
		return UpdateEventCoreResult{}, err
	}
	if req.EventID == "" || req.VenueID == "" || req.Date.IsZero() {
		return UpdateEventCoreResult{}, fmt.Errorf("%w: event id, date and venue id are required", ErrInvalidArgument)
	}
	newDate := req.Date.UTC().Truncate(time.Millisecond)

	var (
		affected []model.Performance
		reason   string
	)
	err = e.tx(ctx, func(tx *sql.Tx) error {
		event, err := e.events.GetForUpdateTx(ctx, tx, req.EventID)
		if err != nil {
			return err
		}
		if event.OrganizerProfileID != caller.ProfileID {
			return ErrForbidden
		}
		if event.IsCancelled() {
			return fmt.Errorf("%w: event %s is cancelled", ErrInvalidTransition, event.ID)
		}

		dateChanged := !event.Date.Equal(newDate)
		venueChanged := event.VenueID != req.VenueID
		reason = model.CoreChangeReason(dateChanged, venueChanged)
		if reason == "" {
			return nil
		}
		if venueChanged {
			ok, err := e.venues.ExistsTx(ctx, tx, req.VenueID)
			if err != nil {
				return err
			}
			if !ok {
				return &repository.NotFoundError{Entity: "venue", ID: req.VenueID}
			}
		}

		now := e.clock()
		if err := e.events.UpdateCoreTx(ctx, tx, event.ID, newDate, req.VenueID, now); err != nil {
			return err
		}
		affected, err = e.performances.RequestReconfirmByEventTx(ctx, tx, event.ID, reason, now)
		return err
	})
	if err != nil {
		return UpdateEventCoreResult{}, err
	}

	res = UpdateEventCoreResult{Changed: reason != "", Reason: reason, AffectedPerformanceIDs: []string{}}
	if !res.Changed {
		return res, nil
	}
	e.metrics.ObserveCascade(len(affected))

	evs := make([]queue.PerformanceEvent, 0, len(affected))
	for i := range affected {
		res.AffectedPerformanceIDs = append(res.AffectedPerformanceIDs, affected[i].ID)
		evs = append(evs, performanceEvent(queue.TypePerformanceReconfirmRequested, &affected[i], caller))
	}
	e.publish(ctx, evs...)
	return res, nil
}
