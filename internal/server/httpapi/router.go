package httpapi

import (
	"fmt"
	"net/http"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *HTTPServer) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.logRequests)
	e.Use(s.resolvePrincipal)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := e.Group("/api")

	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)
	api.GET("/me", s.me)

	api.POST("/notes", s.createNote)
	api.GET("/notes", s.listNotes)
	api.GET("/notes/:id", s.getNote)
	api.DELETE("/notes/:id", s.deleteNote)

	api.POST("/files", s.createFile)
	api.GET("/files", s.listFiles)
	api.GET("/files/:id", s.getFile)
	api.DELETE("/files/:id", s.deleteFile)
	api.POST("/files/:id/uploaded", s.markUploaded)
	api.POST("/files/:id/download", s.downloadFile)

	api.POST("/mailboxes", s.createMailbox)
	api.GET("/mailboxes", s.listMailboxes)
	api.DELETE("/mailboxes/:id", s.deactivateMailbox)
	api.GET("/mailboxes/:id/messages", s.mailboxMessages)

	return e
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator. Failures read as common.ErrorValidation.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}
