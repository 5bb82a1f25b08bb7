package model

import "time"

// PerformanceStatus is the state of a performance.  Declined and canceled
// are terminal.
type PerformanceStatus string

const (
	PerformanceConfirmed        PerformanceStatus = "confirmed"
	PerformancePendingReconfirm PerformanceStatus = "pending_reconfirm"
	PerformanceDeclined         PerformanceStatus = "declined"
	PerformanceCanceled         PerformanceStatus = "canceled"
)

// Reason codes stored in performances.status_reason.
const (
	ReasonDateChanged        = "EVENT_DATE_CHANGED"
	ReasonVenueChanged       = "EVENT_VENUE_CHANGED"
	ReasonDateAndVenueChange = "EVENT_DATE_AND_VENUE_CHANGED"
	ReasonOrganizerCanceled  = "ORGANIZER_CANCELED"
)

var performanceTransitions = map[PerformanceStatus][]PerformanceStatus{
	PerformanceConfirmed:        {PerformancePendingReconfirm, PerformanceCanceled},
	PerformancePendingReconfirm: {PerformanceConfirmed, PerformanceDeclined, PerformanceCanceled},
}

// CanTransitionTo reports whether moving from s to next is a legal edge of
// the performance state machine.
func (s PerformanceStatus) CanTransitionTo(next PerformanceStatus) bool {
	for _, allowed := range performanceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s PerformanceStatus) IsTerminal() bool {
	return len(performanceTransitions[s]) == 0
}

// IsActive reports whether the performance still occupies a slot at its
// event.
func (s PerformanceStatus) IsActive() bool {
	return s == PerformanceConfirmed || s == PerformancePendingReconfirm
}

// Valid reports whether s is one of the known statuses.
func (s PerformanceStatus) Valid() bool {
	switch s {
	case PerformanceConfirmed, PerformancePendingReconfirm, PerformanceDeclined, PerformanceCanceled:
		return true
	}
	return false
}

// Performance is the confirmed record of an act playing an event.
// EventDate and VenueID are a snapshot of the event's core fields taken
// when the performance was confirmed (or last reconfirmed); they are not
// updated by later event edits.
//
// Exactly one of BookingID and OfferID is set: the acceptance that created
// the performance.
type Performance struct {
	ID           string            // performances.id
	EventID      string            // performances.event_id
	ActID        string            // performances.act_id
	BookingID    *string           // performances.booking_id (nullable, unique)
	OfferID      *string           // performances.offer_id (nullable, unique)
	EventDate    time.Time         // performances.event_date snapshot
	VenueID      string            // performances.venue_id snapshot
	Status       PerformanceStatus // performances.status
	StatusReason *string           // performances.status_reason (nullable)
	CreatedAt    time.Time         // performances.created_at
	UpdatedAt    time.Time         // performances.updated_at
}

// CoreChangeReason returns the reason code recorded on performances when an
// event's core fields change.  It returns "" when nothing changed.
func CoreChangeReason(dateChanged, venueChanged bool) string {
	switch {
	case dateChanged && venueChanged:
		return ReasonDateAndVenueChange
	case dateChanged:
		return ReasonDateChanged
	case venueChanged:
		return ReasonVenueChanged
	}
	return ""
}
