package files

import (
	"context"

	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	ListByUser(ctx context.Context, userID string) ([]*models.File, error)
	GetForOwner(ctx context.Context, id, userID string) (*models.File, error)
	MarkUploaded(ctx context.Context, id, userID string) error
	// ConsumeDownload increments the download counter if the file is still
	// downloadable and returns its storage key. It reports
	// common.ErrorNotFound when no row qualified.
	ConsumeDownload(ctx context.Context, id, userID string) (string, error)
	// Delete removes the record and returns the storage key it pointed at.
	Delete(ctx context.Context, id, userID string) (string, error)
	// PurgeExpired removes expired records and returns their storage keys.
	PurgeExpired(ctx context.Context) ([]string, error)
}
