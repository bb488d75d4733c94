// Package transport holds what the gRPC and REST layers share: model to
// wire conversion and the error taxonomy mapping.
package transport

import (
	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

func User(u *models.User) api.User {
	p := u.Public()
	return api.User{ID: p.ID, Email: p.Email, Name: p.Name}
}

func Note(n *models.Note) api.Note {
	return api.Note{
		ID:                  n.ID,
		Title:               n.Title,
		EncryptedContent:    n.EncryptedContent,
		AutoDeleteAfterRead: n.AutoDeleteAfterRead,
		HasBeenRead:         n.HasBeenRead,
		ExpiresAt:           n.ExpiresAt,
		CreatedAt:           n.CreatedAt,
	}
}

func Notes(list []*models.Note) []api.Note {
	out := make([]api.Note, 0, len(list))
	for _, n := range list {
		summary := Note(n)
		summary.EncryptedContent = ""
		out = append(out, summary)
	}
	return out
}

func File(f *models.File) api.File {
	return api.File{
		ID:                f.ID,
		Filename:          f.Filename,
		FileSize:          f.FileSize,
		PasswordProtected: f.PasswordProtected,
		ExpiresAt:         f.ExpiresAt,
		MaxDownloads:      f.MaxDownloads,
		DownloadCount:     f.DownloadCount,
		WatermarkEnabled:  f.WatermarkEnabled,
		UploadStatus:      f.UploadStatus,
		CreatedAt:         f.CreatedAt,
	}
}

func Files(list []*models.File) []api.File {
	out := make([]api.File, 0, len(list))
	for _, f := range list {
		out = append(out, File(f))
	}
	return out
}

func Mailbox(mb *models.Mailbox) api.Mailbox {
	return api.Mailbox{
		ID:        mb.ID,
		Address:   mb.Address,
		AliasName: mb.AliasName,
		ExpiresAt: mb.ExpiresAt,
		IsActive:  mb.IsActive,
		CreatedAt: mb.CreatedAt,
	}
}

func Mailboxes(list []*models.Mailbox) []api.Mailbox {
	out := make([]api.Mailbox, 0, len(list))
	for _, mb := range list {
		out = append(out, Mailbox(mb))
	}
	return out
}

func Messages(list []models.MailMessage) []api.Message {
	out := make([]api.Message, 0, len(list))
	for _, m := range list {
		out = append(out, api.Message{
			ID:        m.ID,
			From:      m.From,
			Subject:   m.Subject,
			Intro:     m.Intro,
			Seen:      m.Seen,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}
