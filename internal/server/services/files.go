package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/cryptox"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repomanager"
	"github.com/cocoinbox/cocoinbox/internal/server/storage"
	"golang.org/x/crypto/bcrypt"
)

type FileInput struct {
	Filename         string `validate:"required,max=255"`
	FileSize         int64  `validate:"gte=0"`
	Password         string `validate:"max=72"`
	ExpiresAt        *time.Time
	MaxDownloads     *int64 `validate:"omitempty,gte=1"`
	WatermarkEnabled bool
}

type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	logger      logging.Logger
	now         func() time.Time
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, logger logging.Logger) *FileService {
	return &FileService{db: db, repomanager: m, store: store, logger: logger, now: time.Now}
}

// Create records file metadata and returns a presigned URL the client PUTs
// the encrypted blob to. The record stays pending until MarkUploaded.
func (s *FileService) Create(ctx context.Context, in FileInput) (*models.File, string, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, "", err
	}

	in.Filename = strings.TrimSpace(in.Filename)
	if err := validateInput(in); err != nil {
		return nil, "", err
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, "", fmt.Errorf("%w: expires_at must be in the future", common.ErrorValidation)
	}

	f := &models.File{
		UserID:           user.ID,
		Filename:         in.Filename,
		StorageKey:       storage.NewStorageKey(user.ID, s.now()),
		FileSize:         in.FileSize,
		ExpiresAt:        in.ExpiresAt,
		MaxDownloads:     in.MaxDownloads,
		WatermarkEnabled: in.WatermarkEnabled,
		UploadStatus:     models.UploadStatusPending,
	}
	if in.Password != "" {
		hash, err := cryptox.HashPassword(in.Password)
		if err != nil {
			if errors.Is(err, bcrypt.ErrPasswordTooLong) {
				return nil, "", fmt.Errorf("%w: password is too long", common.ErrorValidation)
			}
			return nil, "", storeError(ctx, s.logger, "hash file password", err)
		}
		f.PasswordProtected = true
		f.PasswordHash = hash
	}

	url, err := s.store.PresignPut(ctx, f.StorageKey)
	if err != nil {
		return nil, "", storeError(ctx, s.logger, "presign put", err)
	}

	f, err = s.repomanager.Files(s.db).Create(ctx, f)
	if err != nil {
		return nil, "", storeError(ctx, s.logger, "create file", err)
	}
	return f, url, nil
}

func (s *FileService) MarkUploaded(ctx context.Context, id string) error {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	if err := s.repomanager.Files(s.db).MarkUploaded(ctx, id, user.ID); err != nil {
		return storeError(ctx, s.logger, "mark uploaded", err)
	}
	return nil
}

func (s *FileService) List(ctx context.Context) ([]*models.File, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Files(s.db).ListByUser(ctx, user.ID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "list files", err)
	}
	return list, nil
}

func (s *FileService) Get(ctx context.Context, id string) (*models.File, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	f, err := s.repomanager.Files(s.db).GetForOwner(ctx, id, user.ID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "get file", err)
	}
	return f, nil
}

// Download checks the file password and the download limit, counts the
// download and returns a presigned GET URL.
func (s *FileService) Download(ctx context.Context, id, password string) (*models.File, string, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, "", err
	}
	if err := checkID(id); err != nil {
		return nil, "", err
	}

	repo := s.repomanager.Files(s.db)

	f, err := repo.GetForOwner(ctx, id, user.ID)
	if err != nil {
		return nil, "", storeError(ctx, s.logger, "get file", err)
	}
	if f.UploadStatus != models.UploadStatusCompleted {
		return nil, "", common.ErrorNotFound
	}
	if f.PasswordProtected && (password == "" || !cryptox.ComparePassword(f.PasswordHash, password)) {
		return nil, "", common.ErrorInvalidCredentials
	}
	if f.MaxDownloads != nil && f.DownloadCount >= *f.MaxDownloads {
		return nil, "", common.ErrorDownloadLimitReached
	}

	key, err := repo.ConsumeDownload(ctx, id, user.ID)
	if err != nil {
		// The row was visible a moment ago; a concurrent download took the
		// last slot.
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorDownloadLimitReached
		}
		return nil, "", storeError(ctx, s.logger, "consume download", err)
	}
	f.DownloadCount++

	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return nil, "", storeError(ctx, s.logger, "presign get", err)
	}
	return f, url, nil
}

// Delete removes the record and then the object. A failed object delete is
// logged; the record is already gone.
func (s *FileService) Delete(ctx context.Context, id string) error {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	key, err := s.repomanager.Files(s.db).Delete(ctx, id, user.ID)
	if err != nil {
		return storeError(ctx, s.logger, "delete file", err)
	}
	s.deleteObject(ctx, key)
	return nil
}

func (s *FileService) Sweep(ctx context.Context) (int64, error) {
	keys, err := s.repomanager.Files(s.db).PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		s.deleteObject(ctx, k)
	}
	return int64(len(keys)), nil
}

func (s *FileService) deleteObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "object delete failed", "key", key, "error", err)
	}
}
