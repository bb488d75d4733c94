package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/cryptox"
	"github.com/cocoinbox/cocoinbox/internal/dbx"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
	Name     string `validate:"max=100"`
}

// UserService handles registration, login and the current-user lookup.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService, logger logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, tokens: tokens, logger: logger}
}

// dummyHash keeps login timing flat for unknown emails.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("cocoinbox-not-a-password")
	return h
})

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrorValidation)
		}
		return nil, storeError(ctx, s.logger, "hash password", err)
	}

	user, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			return nil, common.ErrorUserExists
		case !errors.Is(err, common.ErrorNotFound):
			return nil, err
		}

		return repo.Create(ctx, &models.User{
			Email:        in.Email,
			PasswordHash: hash,
			Name:         in.Name,
			Roles:        models.Roles{common.DefaultRole},
		})
	})
	if err != nil {
		if errors.Is(err, common.ErrorUserExists) {
			return nil, common.ErrorUserExists
		}
		return nil, storeError(ctx, s.logger, "register", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login returns a session token. Unknown email and wrong password are
// both reported as common.ErrorInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.ComparePassword(dummyHash(), password)
			return "", common.ErrorInvalidCredentials
		}
		return "", storeError(ctx, s.logger, "login", err)
	}

	if !cryptox.ComparePassword(user.PasswordHash, password) {
		return "", common.ErrorInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Roles)
	if err != nil {
		return "", storeError(ctx, s.logger, "issue token", err)
	}
	return token, nil
}

func (s *UserService) Me(ctx context.Context) (*models.User, error) {
	return auth.RequireUser(ctx)
}
