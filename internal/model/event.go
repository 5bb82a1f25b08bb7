package model

import "time"

// EventStatus enumerates the states an event moves through.  Events are
// never deleted; an organizer cancels them instead.
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
)

// Event represents a live-music night at a venue.  Date and VenueID are
// the event's core fields: changing either after performances exist
// triggers the reconfirmation cascade.
//
// Fields:
//  ID                 – opaque identifier.
//  OrganizerProfileID – profile allowed to accept bookings, send offers,
//                       edit the core fields and cancel performances.
//  VenueID            – venue hosting the event.
//  Date               – start instant of the event (UTC).
//  Status             – scheduled or cancelled.
//  MaxArtists         – cap on active performances; zero means no cap.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Event struct {
	ID                 string      // events.id
	OrganizerProfileID string      // events.organizer_profile_id
	VenueID            string      // events.venue_id
	Date               time.Time   // events.event_date (unix millis)
	Status             EventStatus // events.status
	MaxArtists         int         // events.max_artists
	CreatedAt          time.Time   // events.created_at
	UpdatedAt          time.Time   // events.updated_at
}

// IsCancelled reports whether the event has been called off.
func (e *Event) IsCancelled() bool { return e.Status == EventCancelled }

// HasCapacityFor reports whether another performance fits under
// MaxArtists given the number of currently active performances.
func (e *Event) HasCapacityFor(active int) bool {
	return e.MaxArtists <= 0 || active < e.MaxArtists
}

// Venue is referenced by events.  It is immutable as far as the
// lifecycle engine is concerned.
type Venue struct {
	ID        string    // venues.id
	Name      string    // venues.name
	CreatedAt time.Time // venues.created_at
}
