package mailboxes

import (
	"context"

	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, mb *models.Mailbox) (*models.Mailbox, error)
	ListActive(ctx context.Context, userID string) ([]*models.Mailbox, error)
	GetActive(ctx context.Context, id, userID string) (*models.Mailbox, error)
	Deactivate(ctx context.Context, id, userID string) error
	DeactivateExpired(ctx context.Context) (int64, error)
}
