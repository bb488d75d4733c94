package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/server/transport"
	"github.com/labstack/echo/v4"
)

var errBadBody = fmt.Errorf("%w: invalid request body", common.ErrorValidation)

// handleError writes every failure as an api.ErrorResponse.
func (s *HTTPServer) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var body api.ErrorResponse
	var status int

	var he *echo.HTTPError
	if errors.As(err, &he) {
		// routing and media-type errors raised by echo itself
		status = he.Code
		body = api.ErrorResponse{
			Error: strings.ToLower(http.StatusText(he.Code)),
			Code:  strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_")),
		}
	} else {
		f := transport.FailureOf(err)
		status = f.HTTP
		body = api.ErrorResponse{Error: f.Message, Code: f.Code}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
	}

	if err := c.JSON(status, body); err != nil {
		s.logger.Error(c.Request().Context(), "write error response", "error", err)
	}
}
