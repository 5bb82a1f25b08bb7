package handler

import (
	"time"

	"github.com/iliyamo/gig-booking/internal/model"
)

// performanceView is the JSON shape of a performance.
type performanceView struct {
	ID           string  `json:"id"`
	EventID      string  `json:"event_id"`
	ActID        string  `json:"act_id"`
	BookingID    *string `json:"booking_id,omitempty"`
	OfferID      *string `json:"offer_id,omitempty"`
	EventDate    string  `json:"event_date"`
	VenueID      string  `json:"venue_id"`
	Status       string  `json:"status"`
	StatusReason *string `json:"status_reason,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func performanceViewOf(p *model.Performance) performanceView {
	return performanceView{
		ID:           p.ID,
		EventID:      p.EventID,
		ActID:        p.ActID,
		BookingID:    p.BookingID,
		OfferID:      p.OfferID,
		EventDate:    p.EventDate.UTC().Format(time.RFC3339),
		VenueID:      p.VenueID,
		Status:       string(p.Status),
		StatusReason: p.StatusReason,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type prepTaskView struct {
	ID              string  `json:"id"`
	PerformanceID   string  `json:"performance_id"`
	TaskKey         string  `json:"task_key"`
	ActID           string  `json:"act_id"`
	DueDate         *string `json:"due_date,omitempty"`
	IsDone          bool    `json:"is_done"`
	DoneAt          *string `json:"done_at,omitempty"`
	DoneByProfileID *string `json:"done_by_profile_id,omitempty"`
}

func prepTaskViewOf(t *model.PrepTask) prepTaskView {
	return prepTaskView{
		ID:              t.ID,
		PerformanceID:   t.PerformanceID,
		TaskKey:         t.TaskKey,
		ActID:           t.ActID,
		DueDate:         formatOptional(t.DueDate),
		IsDone:          t.IsDone,
		DoneAt:          formatOptional(t.DoneAt),
		DoneByProfileID: t.DoneByProfileID,
	}
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
