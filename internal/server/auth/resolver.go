package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Resolver struct {
	tokens *TokenService
	users  UserLookup
}

func NewResolver(tokens *TokenService, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve turns a raw Authorization value into a Principal. A missing,
// garbled or expired token, or one whose user no longer exists, yields
// Anonymous. Only a failing user lookup is returned as an error.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (Principal, error) {
	token := strings.TrimSpace(strings.TrimPrefix(authorization, common.BearerPrefix))
	if token == "" {
		return Anonymous{}, nil
	}

	id, err := r.tokens.Verify(token)
	if err != nil {
		return Anonymous{}, nil
	}

	user, err := r.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Anonymous{}, nil
		}
		return Anonymous{}, fmt.Errorf("resolve principal: %w", err)
	}

	return Authenticated{User: user}, nil
}
