package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/gig-booking/internal/identity"
	"github.com/iliyamo/gig-booking/internal/logger"
	"github.com/iliyamo/gig-booking/internal/model"
	"github.com/iliyamo/gig-booking/internal/queue"
	"github.com/iliyamo/gig-booking/internal/repository"
)

// AcceptBooking turns a pending booking into a confirmed performance.
// Only the organizer of the booking's event may accept it.  The booking
// is re-checked under lock, marked accepted and the performance is
// inserted in the same transaction, so two racing accepts produce one
// performance and one ErrAlreadyAccepted.
func (e *Engine) AcceptBooking(ctx context.Context, req AcceptBookingRequest) (res AcceptResult, err error) {
	const op = "accept_booking"
	start := time.Now()
	defer func() {
		e.finish(ctx, op, start, err,
			logger.String("booking_id", req.BookingID),
			logger.String("performance_id", res.PerformanceID))
	}()

	caller, err := e.caller(ctx)
	if err != nil {
		return AcceptResult{}, err
	}
	if req.BookingID == "" {
		return AcceptResult{}, fmt.Errorf("%w: booking id is required", ErrInvalidArgument)
	}

	var perf *model.Performance
	err = e.tx(ctx, func(tx *sql.Tx) error {
		b, err := e.bookings.GetTx(ctx, tx, req.BookingID)
		if err != nil {
			return err
		}
		event, err := e.events.GetForUpdateTx(ctx, tx, b.EventID)
		if err != nil {
			return err
		}
		if event.OrganizerProfileID != caller.ProfileID {
			return ErrForbidden
		}
		if b, err = e.bookings.GetForUpdateTx(ctx, tx, b.ID); err != nil {
			return err
		}
		if err := repository.RequestStatusError(b.Status); err != nil {
			return err
		}

		now := e.clock()
		if err := e.bookings.MarkStatusTx(ctx, tx, b.ID, model.RequestAccepted, now); err != nil {
			return err
		}
		perf, err = e.confirmTx(ctx, tx, event, b.ActID, &b.ID, nil, now)
		return err
	})
	if err != nil {
		return AcceptResult{}, err
	}

	e.publish(ctx, performanceEvent(queue.TypePerformanceCreated, perf, caller))
	return AcceptResult{PerformanceID: perf.ID}, nil
}

// AcceptOffer turns a pending offer into a confirmed performance.  The
// event organizer or any member of the offered act may accept it.
func (e *Engine) AcceptOffer(ctx context.Context, req AcceptOfferRequest) (res AcceptResult, err error) {
	const op = "accept_offer"
	start := time.Now()
	defer func() {
		e.finish(ctx, op, start, err,
			logger.String("offer_id", req.OfferID),
			logger.String("performance_id", res.PerformanceID))
	}()

	caller, err := e.caller(ctx)
	if err != nil {
		return AcceptResult{}, err
	}
	if req.OfferID == "" {
		return AcceptResult{}, fmt.Errorf("%w: offer id is required", ErrInvalidArgument)
	}

	var perf *model.Performance
	err = e.tx(ctx, func(tx *sql.Tx) error {
		o, err := e.offers.GetTx(ctx, tx, req.OfferID)
		if err != nil {
			return err
		}
		event, err := e.events.GetForUpdateTx(ctx, tx, o.EventID)
		if err != nil {
			return err
		}
		if event.OrganizerProfileID != caller.ProfileID {
			member, err := e.acts.IsMemberTx(ctx, tx, o.ActID, caller.ProfileID)
			if err != nil {
				return err
			}
			if !member {
				return ErrForbidden
			}
		}
		if o, err = e.offers.GetForUpdateTx(ctx, tx, o.ID); err != nil {
			return err
		}
		if err := repository.RequestStatusError(o.Status); err != nil {
			return err
		}

		now := e.clock()
		if err := e.offers.MarkStatusTx(ctx, tx, o.ID, model.RequestAccepted, now); err != nil {
			return err
		}
		perf, err = e.confirmTx(ctx, tx, event, o.ActID, nil, &o.ID, now)
		return err
	})
	if err != nil {
		return AcceptResult{}, err
	}

	e.publish(ctx, performanceEvent(queue.TypePerformanceCreated, perf, caller))
	return AcceptResult{PerformanceID: perf.ID}, nil
}

// confirmTx creates the performance for an accepted booking or offer,
// snapshotting the event's current core fields.  The event row is
// already locked by the caller.
func (e *Engine) confirmTx(ctx context.Context, tx *sql.Tx, event *model.Event, actID string,
	bookingID, offerID *string, now time.Time) (*model.Performance, error) {

	if event.IsCancelled() {
		return nil, fmt.Errorf("%w: event %s is cancelled", ErrInvalidTransition, event.ID)
	}
	if event.MaxArtists > 0 {
		active, err := e.performances.CountActiveByEventTx(ctx, tx, event.ID)
		if err != nil {
			return nil, err
		}
		if !event.HasCapacityFor(active) {
			return nil, fmt.Errorf("%w: event %s is full", ErrConflict, event.ID)
		}
	}

	p := &model.Performance{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		ActID:     actID,
		BookingID: bookingID,
		OfferID:   offerID,
		EventDate: event.Date,
		VenueID:   event.VenueID,
		Status:    model.PerformanceConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.performances.CreateTx(ctx, tx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyAccepted
		}
		return nil, err
	}
	return p, nil
}

// DeclineBooking rejects a pending booking.  Only the event organizer
// may decline it.
func (e *Engine) DeclineBooking(ctx context.Context, req DeclineBookingRequest) (res RequestResult, err error) {
	const op = "decline_booking"
	start := time.Now()
	defer func() { e.finish(ctx, op, start, err, logger.String("booking_id", req.BookingID)) }()

	caller, err := e.caller(ctx)
	if err != nil {
		return RequestResult{}, err
	}
	err = e.tx(ctx, func(tx *sql.Tx) error {
		b, err := e.bookings.GetTx(ctx, tx, req.BookingID)
		if err != nil {
			return err
		}
		event, err := e.events.GetForUpdateTx(ctx, tx, b.EventID)
		if err != nil {
			return err
		}
		if event.OrganizerProfileID != caller.ProfileID {
			return ErrForbidden
		}
		if b, err = e.bookings.GetForUpdateTx(ctx, tx, b.ID); err != nil {
			return err
		}
		if err := repository.RequestStatusError(b.Status); err != nil {
			return err
		}
		return e.bookings.MarkStatusTx(ctx, tx, b.ID, model.RequestDeclined, e.clock())
	})
	if err != nil {
		return RequestResult{}, err
	}
	return RequestResult{ID: req.BookingID, Status: model.RequestDeclined}, nil
}

// DeclineOffer rejects a pending offer.  Only a member of the offered act
// may decline it.
func (e *Engine) DeclineOffer(ctx context.Context, req DeclineOfferRequest) (res RequestResult, err error) {
	const op = "decline_offer"
	start := time.Now()
	defer func() { e.finish(ctx, op, start, err, logger.String("offer_id", req.OfferID)) }()

	caller, err := e.caller(ctx)
	if err != nil {
		return RequestResult{}, err
	}
	err = e.tx(ctx, func(tx *sql.Tx) error {
		o, err := e.offers.GetTx(ctx, tx, req.OfferID)
		if err != nil {
			return err
		}
		if _, err := e.events.GetForUpdateTx(ctx, tx, o.EventID); err != nil {
			return err
		}
		member, err := e.acts.IsMemberTx(ctx, tx, o.ActID, caller.ProfileID)
		if err != nil {
			return err
		}
		if !member {
			return ErrForbidden
		}
		if o, err = e.offers.GetForUpdateTx(ctx, tx, o.ID); err != nil {
			return err
		}
		if err := repository.RequestStatusError(o.Status); err != nil {
			return err
		}
		return e.offers.MarkStatusTx(ctx, tx, o.ID, model.RequestDeclined, e.clock())
	})
	if err != nil {
		return RequestResult{}, err
	}
	return RequestResult{ID: req.OfferID, Status: model.RequestDeclined}, nil
}

func performanceEvent(typ string, p *model.Performance, caller identity.Identity) queue.PerformanceEvent {
	ev := queue.PerformanceEvent{
		Type:          typ,
		PerformanceID: p.ID,
		EventID:       p.EventID,
		ActID:         p.ActID,
		Status:        string(p.Status),
		ActorID:       caller.ProfileID,
		OccurredAt:    p.UpdatedAt,
	}
	if p.StatusReason != nil {
		ev.Reason = *p.StatusReason
	}
	return ev
}
