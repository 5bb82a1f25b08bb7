package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-booking/internal/identity"
)

// profileID returns the authenticated caller's profile id, or "anon" when
// the request carries none.
func profileID(c echo.Context) string {
	if id, ok := identity.FromContext(c.Request().Context()); ok {
		return id.ProfileID
	}
	return "anon"
}
