package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-booking/internal/identity"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and attaches the caller to the request context.  The token subject is
// the caller's profile id; handlers reach it through
// identity.FromContext.  The provided secret must match the one the
// identity provider signs with.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
			if err != nil || !tok.Valid {
				return unauthorized(c, "invalid token")
			}

			sub, err := tok.Claims.GetSubject()
			if err != nil || sub == "" {
				return unauthorized(c, "invalid claims")
			}

			ctx := identity.WithCaller(c.Request().Context(), identity.Identity{ProfileID: sub})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated", "message": msg})
}
