package notes

import (
	"context"

	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

// Repository stores secure notes. Every lookup is scoped by owner; a note
// that belongs to someone else is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Note, error)
	// Read returns the note and marks it read in one statement. Expired
	// notes and burned read-once notes are reported as common.ErrorNotFound.
	Read(ctx context.Context, id, userID string) (*models.Note, error)
	Delete(ctx context.Context, id, userID string) error
	// Purge removes expired notes and read-once notes that were already read.
	Purge(ctx context.Context) (int64, error)
}
