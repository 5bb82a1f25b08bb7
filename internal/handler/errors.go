package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-booking/internal/service"
)

// errorResponse is the body of every non-2xx lifecycle response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an engine error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrAlreadyAccepted):
		return http.StatusConflict, "already_accepted"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	}
	return http.StatusInternalServerError, "store_failure"
}

// writeError renders err.  Store failures keep their details out of the
// response body.
func writeError(c echo.Context, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(status, errorResponse{Error: code, Message: msg})
}

// bindError renders a failed c.Bind.  A body without a JSON content type
// is reported as 415, anything else as 400 with fallback.
func bindError(c echo.Context, err error, fallback string) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
		return c.JSON(http.StatusUnsupportedMediaType, errorResponse{
			Error:   "unsupported_media_type",
			Message: "request body must be application/json",
		})
	}
	return badRequest(c, fallback)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_argument", Message: msg})
}
