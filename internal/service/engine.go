// Package service implements the booking/offer → performance lifecycle
// engine.  Every operation resolves the caller, runs as one database
// transaction that re-checks state under row locks, and only after the
// commit publishes lifecycle events and records metrics.  Nothing is
// retried here; failures are returned to the caller as they happen.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/gig-booking/internal/database"
	"github.com/iliyamo/gig-booking/internal/identity"
	"github.com/iliyamo/gig-booking/internal/logger"
	"github.com/iliyamo/gig-booking/internal/metrics"
	"github.com/iliyamo/gig-booking/internal/queue"
	"github.com/iliyamo/gig-booking/internal/repository"
)

// Publisher hands committed lifecycle events to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev queue.PerformanceEvent) error
}

// Engine runs the lifecycle operations.
type Engine struct {
	db       *sql.DB
	resolver identity.Resolver

	events       *repository.EventRepo
	venues       *repository.VenueRepo
	acts         *repository.ActRepo
	bookings     *repository.BookingRepo
	offers       *repository.OfferRepo
	performances *repository.PerformanceRepo
	prepTasks    *repository.PrepTaskRepo

	publisher Publisher
	metrics   *metrics.Manager
	log       logger.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sets where committed lifecycle events go.  The default
// drops them.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Manager) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the repositories for db.
func NewEngine(db *sql.DB, dialect database.Dialect, resolver identity.Resolver, opts ...Option) *Engine {
	e := &Engine{
		db:           db,
		resolver:     resolver,
		events:       repository.NewEventRepo(db, dialect),
		venues:       repository.NewVenueRepo(db),
		acts:         repository.NewActRepo(db),
		bookings:     repository.NewBookingRepo(db, dialect),
		offers:       repository.NewOfferRepo(db, dialect),
		performances: repository.NewPerformanceRepo(db, dialect),
		prepTasks:    repository.NewPrepTaskRepo(db, dialect),
		publisher:    queue.NopPublisher{},
		log:          logger.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("lifecycle")
	return e
}

func (e *Engine) caller(ctx context.Context) (identity.Identity, error) {
	if e.resolver == nil {
		return identity.Identity{}, ErrUnauthenticated
	}
	id, err := e.resolver.ResolveCaller(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return identity.Identity{}, err
		}
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if id.ProfileID == "" {
		return identity.Identity{}, ErrUnauthenticated
	}
	return id, nil
}

func (e *Engine) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return classify(database.WithTx(ctx, e.db, fn))
}

func (e *Engine) clock() time.Time { return e.now().UTC() }

// finish logs and records one completed operation.
func (e *Engine) finish(ctx context.Context, op string, start time.Time, err error, fields ...logger.Field) {
	took := time.Since(start)
	kind := Kind(err)
	e.metrics.ObserveOperation(op, kind, took)

	fields = append(fields, logger.String("operation", op), logger.Duration("took", took))
	switch kind {
	case "ok":
		e.log.Info(ctx, "lifecycle operation done", fields...)
	case "store_failure":
		e.log.Error(ctx, "lifecycle operation failed", append(fields, logger.String("error_kind", kind), logger.Error(err))...)
	default:
		e.log.Warn(ctx, "lifecycle operation rejected", append(fields, logger.String("error_kind", kind), logger.Error(err))...)
	}
}

// publish sends events after a commit.  Failures are logged and counted;
// the committed operation still succeeds.
func (e *Engine) publish(ctx context.Context, evs ...queue.PerformanceEvent) {
	if len(evs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, ev := range evs {
		err := e.publisher.Publish(ctx, ev)
		e.metrics.IncEventsPublished(err == nil)
		if err != nil {
			e.log.Warn(ctx, "publish lifecycle event failed",
				logger.String("type", ev.Type),
				logger.String("performance_id", ev.PerformanceID),
				logger.Error(err))
		}
	}
}
