package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/gig-booking/internal/logger"
)

// RequestLogger writes one access log line per request through log.
func RequestLogger(log logger.Logger) echo.MiddlewareFunc {
	log = log.Named("http")
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
				logger.String("profile_id", profileID(c)),
			}
			if v.Error != nil {
				log.Warn(c.Request().Context(), "request failed", append(fields, logger.Error(v.Error))...)
				return nil
			}
			log.Info(c.Request().Context(), "request", fields...)
			return nil
		},
	})
}
