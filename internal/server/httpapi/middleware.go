package httpapi

import (
	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const ownerKey = "owner"

// BearerAuth rejects requests without a valid bearer token before they
// reach the handler. The owner resolved from the token is stored on the
// echo context.
func (s *Server) BearerAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, owner, err := s.issuer.Authenticate(c.Request(), false)
			if err != nil {
				return s.respondError(c, authErrors, err)
			}
			c.Set(ownerKey, owner)
			return next(c)
		}
	}
}

// OwnerFrom returns the owner set by BearerAuth.
func OwnerFrom(c echo.Context) (models.OwnerRef, bool) {
	owner, ok := c.Get(ownerKey).(models.OwnerRef)
	return owner, ok && !owner.IsZero()
}

func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				logger.Warn(c.Request().Context(), "request", append(args, "error", v.Error)...)
				return nil
			}
			logger.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}
