package httpapi

import (
	"fmt"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/labstack/echo/v4"
)

// resolvePrincipal attaches the caller to every request. Missing or bad
// tokens yield an anonymous caller; handlers decide whether that is enough.
func (s *HTTPServer) resolvePrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		p, err := s.resolver.Resolve(req.Context(), req.Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return fmt.Errorf("resolve principal: %w", err)
		}
		c.SetRequest(req.WithContext(auth.WithPrincipal(req.Context(), p)))
		return next(c)
	}
}

func (s *HTTPServer) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		s.logger.Info(c.Request().Context(), "http request",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", c.Response().Status,
			"duration", time.Since(start),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
		return nil
	}
}
