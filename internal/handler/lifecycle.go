package handler

// This file exposes the lifecycle engine over HTTP.  Handlers only parse
// input and render output; authorization and every state check happen
// inside the engine's transaction.

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-booking/internal/model"
	"github.com/iliyamo/gig-booking/internal/service"
)

// Lifecycle is the engine surface the handlers call.  *service.Engine
// implements it.
type Lifecycle interface {
	AcceptBooking(ctx context.Context, req service.AcceptBookingRequest) (service.AcceptResult, error)
	DeclineBooking(ctx context.Context, req service.DeclineBookingRequest) (service.RequestResult, error)
	AcceptOffer(ctx context.Context, req service.AcceptOfferRequest) (service.AcceptResult, error)
	DeclineOffer(ctx context.Context, req service.DeclineOfferRequest) (service.RequestResult, error)
	UpdateEventCore(ctx context.Context, req service.UpdateEventCoreRequest) (service.UpdateEventCoreResult, error)
	OrganizerCancelPerformance(ctx context.Context, req service.CancelPerformanceRequest) (service.PerformanceResult, error)
	ReconfirmPerformance(ctx context.Context, req service.PerformanceRequest) (service.PerformanceResult, error)
	DeclineReconfirmPerformance(ctx context.Context, req service.PerformanceRequest) (service.PerformanceResult, error)
	SetPrepTaskDone(ctx context.Context, req service.SetPrepTaskDoneRequest) (*model.PrepTask, error)
	GetPerformance(ctx context.Context, id string) (*model.Performance, error)
	ListEventPerformances(ctx context.Context, eventID string) ([]model.Performance, error)
}

// LifecycleHandler serves the /v1 lifecycle routes.
type LifecycleHandler struct {
	svc Lifecycle
}

// NewLifecycleHandler panics when svc is nil.
func NewLifecycleHandler(svc Lifecycle) *LifecycleHandler {
	if svc == nil {
		panic("nil lifecycle passed to NewLifecycleHandler")
	}
	return &LifecycleHandler{svc: svc}
}

// AcceptBooking handles POST /v1/bookings/:id/accept.
func (h *LifecycleHandler) AcceptBooking(c echo.Context) error {
	res, err := h.svc.AcceptBooking(c.Request().Context(), service.AcceptBookingRequest{BookingID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// DeclineBooking handles POST /v1/bookings/:id/decline.
func (h *LifecycleHandler) DeclineBooking(c echo.Context) error {
	res, err := h.svc.DeclineBooking(c.Request().Context(), service.DeclineBookingRequest{BookingID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// AcceptOffer handles POST /v1/offers/:id/accept.
func (h *LifecycleHandler) AcceptOffer(c echo.Context) error {
	res, err := h.svc.AcceptOffer(c.Request().Context(), service.AcceptOfferRequest{OfferID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// DeclineOffer handles POST /v1/offers/:id/decline.
func (h *LifecycleHandler) DeclineOffer(c echo.Context) error {
	res, err := h.svc.DeclineOffer(c.Request().Context(), service.DeclineOfferRequest{OfferID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type updateEventCoreBody struct {
	Date    string `json:"date"`
	VenueID string `json:"venue_id"`
}

// UpdateEventCore handles PATCH /v1/events/:id/core with body
// {"date": "...", "venue_id": "..."}.  The date is RFC3339 or YYYY-MM-DD
// (midnight UTC).
func (h *LifecycleHandler) UpdateEventCore(c echo.Context) error {
	var body updateEventCoreBody
	if err := c.Bind(&body); err != nil {
		return bindError(c, err, "invalid JSON body")
	}
	date, err := parseEventDate(body.Date)
	if err != nil {
		return badRequest(c, "date must be RFC3339 or YYYY-MM-DD")
	}
	venueID := strings.TrimSpace(body.VenueID)
	if venueID == "" {
		return badRequest(c, "venue_id is required")
	}

	res, err := h.svc.UpdateEventCore(c.Request().Context(), service.UpdateEventCoreRequest{
		EventID: c.Param("id"),
		Date:    date,
		VenueID: venueID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type cancelBody struct {
	Reason string `json:"reason"`
}

// CancelPerformance handles POST /v1/performances/:id/cancel with an
// optional {"reason": "..."} body.
func (h *LifecycleHandler) CancelPerformance(c echo.Context) error {
	var body cancelBody
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&body); err != nil {
			return bindError(c, err, "invalid JSON body")
		}
	}
	res, err := h.svc.OrganizerCancelPerformance(c.Request().Context(), service.CancelPerformanceRequest{
		PerformanceID: c.Param("id"),
		Reason:        strings.TrimSpace(body.Reason),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ReconfirmPerformance handles POST /v1/performances/:id/reconfirm.
func (h *LifecycleHandler) ReconfirmPerformance(c echo.Context) error {
	res, err := h.svc.ReconfirmPerformance(c.Request().Context(), service.PerformanceRequest{PerformanceID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// DeclineReconfirmPerformance handles POST
// /v1/performances/:id/decline-reconfirm.
func (h *LifecycleHandler) DeclineReconfirmPerformance(c echo.Context) error {
	res, err := h.svc.DeclineReconfirmPerformance(c.Request().Context(), service.PerformanceRequest{PerformanceID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type prepTaskBody struct {
	Done *bool `json:"done"`
}

// SetPrepTaskDone handles PATCH /v1/prep-tasks/:id with {"done": bool}.
func (h *LifecycleHandler) SetPrepTaskDone(c echo.Context) error {
	const usage = `body must be {"done": true|false}`
	var body prepTaskBody
	if err := c.Bind(&body); err != nil {
		return bindError(c, err, usage)
	}
	if body.Done == nil {
		return badRequest(c, usage)
	}
	task, err := h.svc.SetPrepTaskDone(c.Request().Context(), service.SetPrepTaskDoneRequest{
		TaskID: c.Param("id"),
		Done:   *body.Done,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, prepTaskViewOf(task))
}

// GetPerformance handles GET /v1/performances/:id.
func (h *LifecycleHandler) GetPerformance(c echo.Context) error {
	p, err := h.svc.GetPerformance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, performanceViewOf(p))
}

// ListEventPerformances handles GET /v1/events/:id/performances.
func (h *LifecycleHandler) ListEventPerformances(c echo.Context) error {
	list, err := h.svc.ListEventPerformances(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]performanceView, 0, len(list))
	for i := range list {
		items = append(items, performanceViewOf(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// parseEventDate accepts RFC3339 or a bare YYYY-MM-DD date.
func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
