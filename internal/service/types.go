package service

import (
	"time"

	"github.com/iliyamo/gig-booking/internal/model"
)

// AcceptBookingRequest names the booking to accept.
type AcceptBookingRequest struct {
	BookingID string
}

// AcceptOfferRequest names the offer to accept.
type AcceptOfferRequest struct {
	OfferID string
}

// AcceptResult carries the performance created by an acceptance.
type AcceptResult struct {
	PerformanceID string `json:"performance_id"`
}

// DeclineBookingRequest names the booking to decline.
type DeclineBookingRequest struct {
	BookingID string
}

// DeclineOfferRequest names the offer to decline.
type DeclineOfferRequest struct {
	OfferID string
}

// RequestResult is the new state of a booking or offer.
type RequestResult struct {
	ID     string              `json:"id"`
	Status model.RequestStatus `json:"status"`
}

// CancelPerformanceRequest cancels a performance.  An empty Reason is
// recorded as ORGANIZER_CANCELED.
type CancelPerformanceRequest struct {
	PerformanceID string
	Reason        string
}

// PerformanceRequest names a performance.
type PerformanceRequest struct {
	PerformanceID string
}

// PerformanceResult is the state of a performance after an operation.
type PerformanceResult struct {
	PerformanceID string                  `json:"performance_id"`
	Status        model.PerformanceStatus `json:"status"`
	Reason        *string                 `json:"reason,omitempty"`
}

// UpdateEventCoreRequest carries the new core fields of an event.  Both
// are required; pass the current value to leave one unchanged.
type UpdateEventCoreRequest struct {
	EventID string
	Date    time.Time
	VenueID string
}

// UpdateEventCoreResult reports what an event core edit did.  Changed is
// false for a no-op edit, in which case no performance was touched.
type UpdateEventCoreResult struct {
	Changed                bool     `json:"changed"`
	Reason                 string   `json:"reason,omitempty"`
	AffectedPerformanceIDs []string `json:"affected_performance_ids"`
}

// SetPrepTaskDoneRequest toggles a prep task.
type SetPrepTaskDoneRequest struct {
	TaskID string
	Done   bool
}
