// Package users is the credential store: persistent user records keyed by
// a unique, case-normalized email.
package users

import (
	"context"

	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in ID and CreatedAt. A duplicate email
	// yields common.ErrorUserExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
