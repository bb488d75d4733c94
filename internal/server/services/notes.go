package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repomanager"
)

type NoteInput struct {
	Title               string `validate:"required,max=200"`
	EncryptedContent    string `validate:"required"`
	AutoDeleteAfterRead bool
	ExpiresAt           *time.Time
}

type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *NoteService {
	return &NoteService{db: db, repomanager: m, logger: logger, now: time.Now}
}

func (s *NoteService) Create(ctx context.Context, in NoteInput) (*models.Note, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: expires_at must be in the future", common.ErrorValidation)
	}

	note, err := s.repomanager.Notes(s.db).Create(ctx, &models.Note{
		UserID:              user.ID,
		Title:               in.Title,
		EncryptedContent:    in.EncryptedContent,
		AutoDeleteAfterRead: in.AutoDeleteAfterRead,
		ExpiresAt:           in.ExpiresAt,
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "create note", err)
	}
	return note, nil
}

// List returns note summaries without content.
func (s *NoteService) List(ctx context.Context) ([]*models.Note, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Notes(s.db).ListByUser(ctx, user.ID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "list notes", err)
	}
	return list, nil
}

// Get returns the note with its content. A read-once note is burned by
// this call and is NotFound afterwards.
func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	note, err := s.repomanager.Notes(s.db).Read(ctx, id, user.ID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "read note", err)
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	if err := s.repomanager.Notes(s.db).Delete(ctx, id, user.ID); err != nil {
		return storeError(ctx, s.logger, "delete note", err)
	}
	return nil
}

func (s *NoteService) Sweep(ctx context.Context) (int64, error) {
	return s.repomanager.Notes(s.db).Purge(ctx)
}
