package auth

import (
	"context"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

// Principal is either Anonymous or Authenticated.
type Principal interface {
	principal()
}

type Anonymous struct{}

type Authenticated struct {
	User *models.User
}

func (Anonymous) principal()     {}
func (Authenticated) principal() {}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns Anonymous when nothing was attached.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p != nil {
		return p
	}
	return Anonymous{}
}

// RequireUser returns the authenticated user or common.ErrorUnauthenticated.
func RequireUser(ctx context.Context) (*models.User, error) {
	switch p := PrincipalFromContext(ctx).(type) {
	case Authenticated:
		if p.User != nil {
			return p.User, nil
		}
	case Anonymous:
	}
	return nil, common.ErrorUnauthenticated
}
