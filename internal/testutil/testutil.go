// Package testutil provides a migrated SQLite store and row fixtures for
// tests that need the real transactional behaviour of the repositories.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/gig-booking/internal/database"
	"github.com/iliyamo/gig-booking/internal/model"
	"github.com/iliyamo/gig-booking/internal/repository"
)

// NewDB opens a file-backed SQLite database in a temp dir, applies the
// production migrations and closes it when the test ends.
func NewDB(t testing.TB) (*sql.DB, database.Dialect) {
	t.Helper()
	db, dialect, err := database.Open(context.Background(), database.Options{
		Driver:      database.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "gig.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, dialect
}

// Fixtures seeds rows through the repositories.  Every helper fails the
// test on error.
type Fixtures struct {
	t            testing.TB
	db           *sql.DB
	Venues       *repository.VenueRepo
	Acts         *repository.ActRepo
	Events       *repository.EventRepo
	Bookings     *repository.BookingRepo
	Offers       *repository.OfferRepo
	Performances *repository.PerformanceRepo
	PrepTasks    *repository.PrepTaskRepo
}

// NewFixtures binds fixtures to db.
func NewFixtures(t testing.TB, db *sql.DB, dialect database.Dialect) *Fixtures {
	return &Fixtures{
		t:            t,
		db:           db,
		Venues:       repository.NewVenueRepo(db),
		Acts:         repository.NewActRepo(db),
		Events:       repository.NewEventRepo(db, dialect),
		Bookings:     repository.NewBookingRepo(db, dialect),
		Offers:       repository.NewOfferRepo(db, dialect),
		Performances: repository.NewPerformanceRepo(db, dialect),
		PrepTasks:    repository.NewPrepTaskRepo(db, dialect),
	}
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (f *Fixtures) check(err error, what string) {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("seed %s: %v", what, err)
	}
}

// Venue inserts a venue.
func (f *Fixtures) Venue(name string) *model.Venue {
	f.t.Helper()
	v := &model.Venue{Name: name}
	f.check(f.Venues.Create(context.Background(), v), "venue")
	return v
}

// Act inserts an act owned by ownerProfileID with optional extra members.
func (f *Fixtures) Act(name, ownerProfileID string, members ...string) *model.Act {
	f.t.Helper()
	a := &model.Act{Name: name, OwnerProfileID: ownerProfileID}
	f.check(f.Acts.Create(context.Background(), a), "act")
	for _, m := range members {
		f.check(f.Acts.AddMember(context.Background(), a.ID, m), "act member")
	}
	return a
}

// Event inserts a scheduled event.  maxArtists of zero means uncapped.
func (f *Fixtures) Event(organizerProfileID, venueID string, date time.Time, maxArtists int) *model.Event {
	f.t.Helper()
	e := &model.Event{
		OrganizerProfileID: organizerProfileID,
		VenueID:            venueID,
		Date:               date,
		MaxArtists:         maxArtists,
	}
	f.check(f.Events.Create(context.Background(), e), "event")
	return e
}

// CancelEvent flips an event to cancelled.
func (f *Fixtures) CancelEvent(eventID string) {
	f.t.Helper()
	_, err := f.db.ExecContext(context.Background(),
		`UPDATE events SET status = ? WHERE id = ?`, string(model.EventCancelled), eventID)
	f.check(err, "event status")
}

// Booking inserts a pending booking.
func (f *Fixtures) Booking(eventID, actID string) *model.Booking {
	f.t.Helper()
	b := &model.Booking{EventID: eventID, ActID: actID, Message: "we'd love to play"}
	f.check(f.Bookings.Create(context.Background(), b), "booking")
	return b
}

// Offer inserts a pending offer.
func (f *Fixtures) Offer(eventID, actID string) *model.Offer {
	f.t.Helper()
	o := &model.Offer{EventID: eventID, ActID: actID}
	f.check(f.Offers.Create(context.Background(), o), "offer")
	return o
}

// Performance inserts a performance in the given status, snapshotting the
// event's current core fields.  It bypasses the engine so tests can start
// from any state.
func (f *Fixtures) Performance(event *model.Event, actID string, status model.PerformanceStatus) *model.Performance {
	f.t.Helper()
	now := time.Now().UTC()
	p := &model.Performance{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		ActID:     actID,
		EventDate: event.Date,
		VenueID:   event.VenueID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := database.WithTx(context.Background(), f.db, func(tx *sql.Tx) error {
		return f.Performances.CreateTx(context.Background(), tx, p)
	})
	f.check(err, "performance")
	return p
}

// PrepTask inserts an open task for a performance.
func (f *Fixtures) PrepTask(p *model.Performance, key string) *model.PrepTask {
	f.t.Helper()
	task := &model.PrepTask{PerformanceID: p.ID, ActID: p.ActID, TaskKey: key}
	f.check(f.PrepTasks.Create(context.Background(), task), "prep task")
	return task
}
