package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/cryptox"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repotest"
	"github.com/cocoinbox/cocoinbox/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopObjects struct{}

func (nopObjects) PresignPut(_ context.Context, key string) (string, error) { return "put:" + key, nil }
func (nopObjects) PresignGet(_ context.Context, key string) (string, error) { return "get:" + key, nil }
func (nopObjects) Delete(context.Context, string) error                     { return nil }

type nopProvider struct{}

func (nopProvider) Domain(context.Context) (string, error)              { return "mail.test", nil }
func (nopProvider) CreateAccount(context.Context, string, string) error { return nil }
func (nopProvider) Messages(context.Context, string, string) ([]models.MailMessage, error) {
	return []models.MailMessage{{ID: "m1", Subject: "hello"}}, nil
}

type testEnv struct {
	handler http.Handler
	store   *repotest.Store
	mock    sqlmock.Sqlmock
	tokens  *auth.TokenService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := repotest.NewStore()
	rm := store.Manager()
	tokens, err := auth.NewTokenService([]byte("http-secret"))
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer([]byte("http-secret"), "mailbox")
	require.NoError(t, err)

	svc := services.Set{
		Users:     services.NewUserService(db, rm, tokens, logging.Nop{}),
		Notes:     services.NewNoteService(db, rm, logging.Nop{}),
		Files:     services.NewFileService(db, rm, nopObjects{}, logging.Nop{}),
		Mailboxes: services.NewMailboxService(db, rm, nopProvider{}, sealer, logging.Nop{}),
	}
	srv := NewHTTPServer("127.0.0.1:0", logging.Nop{}, auth.NewResolver(tokens, rm.Users(nil)), svc)

	return &testEnv{handler: srv.Handler(), store: store, mock: mock, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := e.tokens.Issue(u.ID, u.Roles)
	require.NoError(t, err)
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterLoginMe(t *testing.T) {
	env := newEnv(t)
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()

	rec := env.do(t, http.MethodPost, "/api/auth/register", "",
		api.RegisterRequest{Email: "alice@example.com", Password: "pw12345", Name: "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[api.UserResponse](t, rec)
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "alice@example.com", Password: "pw12345"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[api.LoginResponse](t, rec).Token
	require.NotEmpty(t, token)

	rec = env.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, registered.User.ID, decode[api.UserResponse](t, rec).User.ID)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestRegister_Duplicate(t *testing.T) {
	env := newEnv(t)
	env.store.SeedUser("alice@example.com")
	env.mock.ExpectBegin()
	env.mock.ExpectRollback()

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Email: "alice@example.com", Password: "pw12345"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USER_EXISTS", decode[api.ErrorResponse](t, rec).Code)
}

func TestRegister_MissingFields(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", decode[api.ErrorResponse](t, rec).Code)
}

func TestRegister_MalformedBody(t *testing.T) {
	env := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", decode[api.ErrorResponse](t, rec).Code)
}

func TestLogin_UnknownAndWrongPasswordLookTheSame(t *testing.T) {
	env := newEnv(t)
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	require.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Email: "alice@example.com", Password: "pw12345"}).Code)

	unknown := env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "nobody@example.com", Password: "pw12345"})
	wrong := env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "alice@example.com", Password: "nope123"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestMe_Anonymous(t *testing.T) {
	env := newEnv(t)

	for name, token := range map[string]string{"missing": "", "garbled": "garbage"} {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/me", token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "UNAUTHENTICATED", decode[api.ErrorResponse](t, rec).Code)
		})
	}
}

func TestNotes_BurnAfterReadAndOwnership(t *testing.T) {
	env := newEnv(t)
	alice := env.tokenFor(t, env.store.SeedUser("alice@example.com"))
	bob := env.tokenFor(t, env.store.SeedUser("bob@example.com"))

	rec := env.do(t, http.MethodPost, "/api/notes", alice,
		api.CreateNoteRequest{Title: "t", EncryptedContent: "ct", AutoDeleteAfterRead: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[api.NoteResponse](t, rec).Note.ID

	rec = env.do(t, http.MethodGet, "/api/notes", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[api.ListNotesResponse](t, rec)
	require.Len(t, list.Notes, 1)
	assert.Empty(t, list.Notes[0].EncryptedContent)

	rec = env.do(t, http.MethodGet, "/api/notes", bob, nil)
	assert.Empty(t, decode[api.ListNotesResponse](t, rec).Notes)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/notes/"+id, bob, nil).Code)

	rec = env.do(t, http.MethodGet, "/api/notes/"+id, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ct", decode[api.NoteResponse](t, rec).Note.EncryptedContent)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/notes/"+id, alice, nil).Code)
}

func TestNotes_Delete(t *testing.T) {
	env := newEnv(t)
	alice := env.tokenFor(t, env.store.SeedUser("alice@example.com"))

	rec := env.do(t, http.MethodPost, "/api/notes", alice, api.CreateNoteRequest{Title: "t", EncryptedContent: "ct"})
	id := decode[api.NoteResponse](t, rec).Note.ID

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/notes/"+id, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/notes/"+id, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/notes/not-a-uuid", alice, nil).Code)
}

func TestNotes_RequireAuthentication(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/notes", "", api.CreateNoteRequest{Title: "t", EncryptedContent: "ct"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFiles_UploadDownloadLimit(t *testing.T) {
	env := newEnv(t)
	alice := env.tokenFor(t, env.store.SeedUser("alice@example.com"))
	limit := int64(1)

	rec := env.do(t, http.MethodPost, "/api/files", alice,
		api.CreateFileRequest{Filename: "report.pdf", FileSize: 10, Password: "open-sesame", MaxDownloads: &limit})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[api.CreateFileResponse](t, rec)
	assert.Contains(t, created.UploadURL, "put:users/")
	assert.True(t, created.File.PasswordProtected)
	assert.Equal(t, "pending", created.File.UploadStatus)

	path := "/api/files/" + created.File.ID
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, path+"/download", alice, api.DownloadFileRequest{Password: "open-sesame"}).Code)

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, path+"/uploaded", alice, nil).Code)

	rec = env.do(t, http.MethodPost, path+"/download", alice, api.DownloadFileRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[api.ErrorResponse](t, rec).Code)

	rec = env.do(t, http.MethodPost, path+"/download", alice, api.DownloadFileRequest{Password: "open-sesame"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode[api.DownloadFileResponse](t, rec).DownloadURL, "get:users/")

	rec = env.do(t, http.MethodPost, path+"/download", alice, api.DownloadFileRequest{Password: "open-sesame"})
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "DOWNLOAD_LIMIT_REACHED", decode[api.ErrorResponse](t, rec).Code)

	rec = env.do(t, http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[api.FileResponse](t, rec).File.DownloadCount)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, alice, nil).Code)
	rec = env.do(t, http.MethodGet, "/api/files", alice, nil)
	assert.Empty(t, decode[api.ListFilesResponse](t, rec).Files)
}

func TestMailboxes_Lifecycle(t *testing.T) {
	env := newEnv(t)
	alice := env.tokenFor(t, env.store.SeedUser("alice@example.com"))

	rec := env.do(t, http.MethodPost, "/api/mailboxes", alice, api.CreateMailboxRequest{AliasName: "shopping"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	mb := decode[api.MailboxResponse](t, rec).Mailbox
	assert.Contains(t, mb.Address, "@mail.test")

	rec = env.do(t, http.MethodGet, "/api/mailboxes/"+mb.ID+"/messages", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[api.MessagesResponse](t, rec).Messages, 1)

	rec = env.do(t, http.MethodGet, "/api/mailboxes", alice, nil)
	assert.Len(t, decode[api.ListMailboxesResponse](t, rec).Mailboxes, 1)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/mailboxes/"+mb.ID, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/mailboxes/"+mb.ID+"/messages", alice, nil).Code)
}

func TestStoreFailureDuringResolveIs500(t *testing.T) {
	env := newEnv(t)
	token := env.tokenFor(t, env.store.SeedUser("alice@example.com"))
	env.store.Fail(assert.AnError)

	rec := env.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.NotContains(t, body.Error, assert.AnError.Error())
}

func TestUnknownRoute(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[api.ErrorResponse](t, rec).Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewHTTPServer("127.0.0.1:0", logging.Nop{}, nil, services.Set{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewHTTPServer("127.0.0.1:99999", logging.Nop{}, nil, services.Set{})

	assert.Error(t, srv.Run(context.Background()))
}
