package httpapi

import (
	"net/http"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/server/services"
	"github.com/cocoinbox/cocoinbox/internal/server/transport"
	"github.com/labstack/echo/v4"
)

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errBadBody
	}
	return c.Validate(req)
}

func (s *HTTPServer) register(c echo.Context) error {
	var req api.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := s.svc.Users.Register(c.Request().Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.UserResponse{User: transport.User(u)})
}

func (s *HTTPServer) login(c echo.Context) error {
	var req api.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	token, err := s.svc.Users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.LoginResponse{Token: token})
}

func (s *HTTPServer) me(c echo.Context) error {
	u, err := s.svc.Users.Me(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.UserResponse{User: transport.User(u)})
}

func (s *HTTPServer) createNote(c echo.Context) error {
	var req api.CreateNoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	n, err := s.svc.Notes.Create(c.Request().Context(), services.NoteInput{
		Title:               req.Title,
		EncryptedContent:    req.EncryptedContent,
		AutoDeleteAfterRead: req.AutoDeleteAfterRead,
		ExpiresAt:           req.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.NoteResponse{Note: transport.Note(n)})
}

func (s *HTTPServer) listNotes(c echo.Context) error {
	list, err := s.svc.Notes.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.ListNotesResponse{Notes: transport.Notes(list)})
}

func (s *HTTPServer) getNote(c echo.Context) error {
	n, err := s.svc.Notes.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NoteResponse{Note: transport.Note(n)})
}

func (s *HTTPServer) deleteNote(c echo.Context) error {
	if err := s.svc.Notes.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) createFile(c echo.Context) error {
	var req api.CreateFileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	f, url, err := s.svc.Files.Create(c.Request().Context(), services.FileInput{
		Filename:         req.Filename,
		FileSize:         req.FileSize,
		Password:         req.Password,
		ExpiresAt:        req.ExpiresAt,
		MaxDownloads:     req.MaxDownloads,
		WatermarkEnabled: req.WatermarkEnabled,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.CreateFileResponse{File: transport.File(f), UploadURL: url})
}

func (s *HTTPServer) listFiles(c echo.Context) error {
	list, err := s.svc.Files.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.ListFilesResponse{Files: transport.Files(list)})
}

func (s *HTTPServer) getFile(c echo.Context) error {
	f, err := s.svc.Files.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.FileResponse{File: transport.File(f)})
}

func (s *HTTPServer) markUploaded(c echo.Context) error {
	if err := s.svc.Files.MarkUploaded(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) downloadFile(c echo.Context) error {
	var req api.DownloadFileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.ID = c.Param("id")
	f, url, err := s.svc.Files.Download(c.Request().Context(), req.ID, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.DownloadFileResponse{File: transport.File(f), DownloadURL: url})
}

func (s *HTTPServer) deleteFile(c echo.Context) error {
	if err := s.svc.Files.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) createMailbox(c echo.Context) error {
	var req api.CreateMailboxRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	mb, err := s.svc.Mailboxes.Create(c.Request().Context(), services.MailboxInput{AliasName: req.AliasName})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.MailboxResponse{Mailbox: transport.Mailbox(mb)})
}

func (s *HTTPServer) listMailboxes(c echo.Context) error {
	list, err := s.svc.Mailboxes.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.ListMailboxesResponse{Mailboxes: transport.Mailboxes(list)})
}

func (s *HTTPServer) deactivateMailbox(c echo.Context) error {
	if err := s.svc.Mailboxes.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) mailboxMessages(c echo.Context) error {
	msgs, err := s.svc.Mailboxes.Messages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.MessagesResponse{Messages: transport.Messages(msgs)})
}
