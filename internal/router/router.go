package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-booking/internal/handler"
	"github.com/iliyamo/gig-booking/internal/middleware"
)

// Options carries what the routes need besides the lifecycle handler.
type Options struct {
	JWTSecret string
	DB        handler.Pinger
	Metrics   http.Handler
	// RateLimit guards mutating routes.  Nil means no limit.
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes registers the probes, the metrics endpoint and the /v1
// lifecycle API on e.
func RegisterRoutes(e *echo.Echo, h *handler.LifecycleHandler, opts Options) {
	// Probes stay outside authentication so load balancers can reach them.
	e.GET("/healthz", handler.Health)
	if opts.DB != nil {
		e.GET("/readyz", handler.Ready(opts.DB))
	}
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}

	v1 := e.Group("/v1", middleware.JWTAuth(opts.JWTSecret))

	// Reads.
	v1.GET("/performances/:id", h.GetPerformance)
	v1.GET("/events/:id/performances", h.ListEventPerformances)

	// Writes share one limiter.
	w := v1.Group("")
	if opts.RateLimit != nil {
		w.Use(opts.RateLimit)
	}
	w.POST("/bookings/:id/accept", h.AcceptBooking)
	w.POST("/bookings/:id/decline", h.DeclineBooking)
	w.POST("/offers/:id/accept", h.AcceptOffer)
	w.POST("/offers/:id/decline", h.DeclineOffer)
	w.PATCH("/events/:id/core", h.UpdateEventCore)
	w.POST("/performances/:id/cancel", h.CancelPerformance)
	w.POST("/performances/:id/reconfirm", h.ReconfirmPerformance)
	w.POST("/performances/:id/decline-reconfirm", h.DeclineReconfirmPerformance)
	w.PATCH("/prep-tasks/:id", h.SetPrepTaskDone)
}
