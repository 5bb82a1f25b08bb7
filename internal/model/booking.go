package model

import "time"

// RequestStatus is shared by bookings and offers.  A request is accepted
// exactly once; accepted and declined are final.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// Booking is an act-initiated request for a slot at an event.
//
// Fields:
//  ID        – opaque identifier.
//  EventID   – event the act wants to play.
//  ActID     – act asking for the slot.
//  Message   – free-form pitch from the act.
//  Status    – pending, accepted or declined.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Booking struct {
	ID        string        // bookings.id
	EventID   string        // bookings.event_id
	ActID     string        // bookings.act_id
	Message   string        // bookings.message
	Status    RequestStatus // bookings.status
	CreatedAt time.Time     // bookings.created_at
	UpdatedAt time.Time     // bookings.updated_at
}

// Offer is an organizer-initiated invitation to an act.  It carries the
// same single-accept invariant as Booking.
type Offer struct {
	ID        string        // offers.id
	EventID   string        // offers.event_id
	ActID     string        // offers.act_id
	Status    RequestStatus // offers.status
	CreatedAt time.Time     // offers.created_at
	UpdatedAt time.Time     // offers.updated_at
}
