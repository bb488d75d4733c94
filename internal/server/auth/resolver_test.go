package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[string]*models.User
	err   error
	calls int
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

const aliceID = "6f1c2b8e-8c1d-4d7e-9a4b-0c3b2a1d0e9f"

func newTestResolver(t *testing.T) (*Resolver, *TokenService, *fakeUsers) {
	t.Helper()
	now := time.Now()
	tokens := newTestTokenService(t, "secret", &now)
	users := &fakeUsers{users: map[string]*models.User{
		aliceID: {ID: aliceID, Email: "alice@example.com", Roles: models.Roles{"user"}},
	}}
	return NewResolver(tokens, users), tokens, users
}

func TestResolve_NoHeader(t *testing.T) {
	r, _, users := newTestResolver(t)

	p, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Anonymous{}, p)
	assert.Zero(t, users.calls)
}

func TestResolve_EmptyBearer(t *testing.T) {
	r, _, _ := newTestResolver(t)

	p, err := r.Resolve(context.Background(), "Bearer ")
	require.NoError(t, err)
	assert.Equal(t, Anonymous{}, p)
}

func TestResolve_GarbledToken(t *testing.T) {
	r, _, users := newTestResolver(t)

	p, err := r.Resolve(context.Background(), "Bearer not-a-token")
	require.NoError(t, err)
	assert.Equal(t, Anonymous{}, p)
	assert.Zero(t, users.calls)
}

func TestResolve_Authenticated(t *testing.T) {
	r, tokens, _ := newTestResolver(t)

	tok, err := tokens.Issue(aliceID, []string{"user"})
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + tok, tok} {
		p, err := r.Resolve(context.Background(), header)
		require.NoError(t, err)
		a, ok := p.(Authenticated)
		require.True(t, ok, "want Authenticated, got %T", p)
		assert.Equal(t, "alice@example.com", a.User.Email)
	}
}

func TestResolve_UnknownUser(t *testing.T) {
	r, tokens, _ := newTestResolver(t)

	tok, err := tokens.Issue("7a7a7a7a-0000-4000-8000-000000000000", []string{"user"})
	require.NoError(t, err)

	p, err := r.Resolve(context.Background(), "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, Anonymous{}, p)
}

func TestResolve_StoreFailure(t *testing.T) {
	r, tokens, users := newTestResolver(t)
	users.err = errors.New("db down")

	tok, err := tokens.Issue(aliceID, []string{"user"})
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "Bearer "+tok)
	assert.ErrorContains(t, err, "db down")
}

func TestRequireUser(t *testing.T) {
	_, err := RequireUser(context.Background())
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)

	_, err = RequireUser(WithPrincipal(context.Background(), Anonymous{}))
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)

	_, err = RequireUser(WithPrincipal(context.Background(), Authenticated{}))
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)

	u := &models.User{ID: aliceID}
	got, err := RequireUser(WithPrincipal(context.Background(), Authenticated{User: u}))
	require.NoError(t, err)
	assert.Same(t, u, got)
}
