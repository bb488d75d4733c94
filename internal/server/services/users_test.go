package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserSvc(t *testing.T) (*UserService, *repotest.Store, sqlmock.Sqlmock, *auth.TokenService) {
	t.Helper()
	db, mock := newTxDB(t)
	store := repotest.NewStore()
	tokens, err := auth.NewTokenService([]byte("test-secret"))
	require.NoError(t, err)
	return NewUserService(db, store.Manager(), tokens, logging.Nop{}), store, mock, tokens
}

func TestRegisterLoginResolve_Alice(t *testing.T) {
	svc, store, mock, tokens := newUserSvc(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	user, err := svc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Password: "pw12345", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "pw12345", user.PasswordHash)
	assert.True(t, user.Roles.Has(common.DefaultRole))

	token, err := svc.Login(context.Background(), "alice@example.com", "pw12345")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolver := auth.NewResolver(tokens, store.Manager().Users(nil))
	p, err := resolver.Resolve(context.Background(), "Bearer "+token)
	require.NoError(t, err)

	a, ok := p.(auth.Authenticated)
	require.True(t, ok, "want Authenticated, got %T", p)
	assert.Equal(t, user.ID, a.User.ID)
	assert.Equal(t, "alice@example.com", a.User.Email)

	me, err := svc.Me(auth.WithPrincipal(context.Background(), p))
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Public().Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc, _, mock, _ := newUserSvc(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	user, err := svc.Register(context.Background(), RegisterInput{Email: "  Bob@Example.COM ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)

	_, err = svc.Login(context.Background(), "BOB@example.com", "secret1")
	assert.NoError(t, err)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, store, mock, _ := newUserSvc(t)
	store.SeedUser("alice@example.com")
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "ALICE@example.com", Password: "pw12345"})
	assert.ErrorIs(t, err, common.ErrorUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := newUserSvc(t)

	cases := map[string]RegisterInput{
		"bad email":      {Email: "not-an-email", Password: "pw12345"},
		"empty email":    {Email: "", Password: "pw12345"},
		"short password": {Email: "a@example.com", Password: "123"},
		"long name":      {Email: "a@example.com", Password: "pw12345", Name: strings.Repeat("n", 101)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	svc, store, mock, _ := newUserSvc(t)
	store.Fail(errors.New("connection refused"))
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "pw12345"})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	svc, _, mock, _ := newUserSvc(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Password: "pw12345"})
	require.NoError(t, err)

	_, errWrong := svc.Login(context.Background(), "alice@example.com", "wrong-pw")
	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "pw12345")

	assert.ErrorIs(t, errWrong, common.ErrorInvalidCredentials)
	assert.ErrorIs(t, errUnknown, common.ErrorInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLogin_StoreFailure(t *testing.T) {
	svc, store, _, _ := newUserSvc(t)
	store.Fail(errors.New("db down"))

	_, err := svc.Login(context.Background(), "alice@example.com", "pw12345")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestMe_Anonymous(t *testing.T) {
	svc, _, _, _ := newUserSvc(t)

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)
}
