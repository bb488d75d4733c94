package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/cryptox"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repotest"
	"github.com/cocoinbox/cocoinbox/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type nopObjects struct{}

func (nopObjects) PresignPut(_ context.Context, key string) (string, error) { return "put:" + key, nil }
func (nopObjects) PresignGet(_ context.Context, key string) (string, error) { return "get:" + key, nil }
func (nopObjects) Delete(context.Context, string) error                     { return nil }

type nopProvider struct{}

func (nopProvider) Domain(context.Context) (string, error)              { return "mail.test", nil }
func (nopProvider) CreateAccount(context.Context, string, string) error { return nil }
func (nopProvider) Messages(context.Context, string, string) ([]models.MailMessage, error) {
	return []models.MailMessage{{ID: "m1", Subject: "hi"}}, nil
}

type testEnv struct {
	conn   *grpc.ClientConn
	store  *repotest.Store
	tokens *auth.TokenService
}

func startServer(t *testing.T) *testEnv {
	t.Helper()

	store := repotest.NewStore()
	rm := store.Manager()
	tokens, err := auth.NewTokenService([]byte("grpc-secret"))
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer([]byte("grpc-secret"), "mailbox")
	require.NoError(t, err)

	// Registration opens a transaction, so it is not exercised here; users
	// are seeded directly and logged in through the service.
	svc := services.Set{
		Users:     services.NewUserService(nil, rm, tokens, logging.Nop{}),
		Notes:     services.NewNoteService(nil, rm, logging.Nop{}),
		Files:     services.NewFileService(nil, rm, nopObjects{}, logging.Nop{}),
		Mailboxes: services.NewMailboxService(nil, rm, nopProvider{}, sealer, logging.Nop{}),
	}
	srv := NewGRPCServer("bufnet", logging.Nop{}, auth.NewResolver(tokens, rm.Users(nil)), svc)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return &testEnv{conn: conn, store: store, tokens: tokens}
}

func (e *testEnv) invoke(ctx context.Context, method string, in, out any) error {
	return e.conn.Invoke(ctx, api.FullMethod(method), in, out, grpc.CallContentSubtype(api.CodecName))
}

func (e *testEnv) tokenFor(t *testing.T, u *models.User) context.Context {
	t.Helper()
	tok, err := e.tokens.Issue(u.ID, u.Roles)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AuthorizationHeaderName, common.BearerPrefix+tok)
}

func TestMe_AnonymousIsUnauthenticated(t *testing.T) {
	env := startServer(t)

	var out api.UserResponse
	err := env.invoke(context.Background(), api.MethodMe, &api.Empty{}, &out)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestMe_GarbledTokenIsUnauthenticated(t *testing.T) {
	env := startServer(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer garbage")

	var out api.UserResponse
	err := env.invoke(ctx, api.MethodMe, &api.Empty{}, &out)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestMe_Authenticated(t *testing.T) {
	env := startServer(t)
	alice := env.store.SeedUser("alice@example.com")

	var out api.UserResponse
	require.NoError(t, env.invoke(env.tokenFor(t, alice), api.MethodMe, &api.Empty{}, &out))
	assert.Equal(t, alice.ID, out.User.ID)
	assert.Equal(t, "alice@example.com", out.User.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := startServer(t)

	var out api.LoginResponse
	err := env.invoke(context.Background(), api.MethodLogin, &api.LoginRequest{Email: "nobody@example.com", Password: "x"}, &out)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "invalid email or password", status.Convert(err).Message())
}

func TestNotes_RoundTripAndOwnership(t *testing.T) {
	env := startServer(t)
	alice := env.tokenFor(t, env.store.SeedUser("alice@example.com"))
	bob := env.tokenFor(t, env.store.SeedUser("bob@example.com"))

	var created api.NoteResponse
	require.NoError(t, env.invoke(alice, api.MethodCreateNote,
		&api.CreateNoteRequest{Title: "t", EncryptedContent: "ct", AutoDeleteAfterRead: true}, &created))

	var list api.ListNotesResponse
	require.NoError(t, env.invoke(alice, api.MethodListNotes, &api.Empty{}, &list))
	require.Len(t, list.Notes, 1)
	assert.Empty(t, list.Notes[0].EncryptedContent)

	var got api.NoteResponse
	err := env.invoke(bob, api.MethodGetNote, &api.IDRequest{ID: created.Note.ID}, &got)
	assert.Equal(t, codes.NotFound, status.Code(err))

	require.NoError(t, env.invoke(alice, api.MethodGetNote, &api.IDRequest{ID: created.Note.ID}, &got))
	assert.Equal(t, "ct", got.Note.EncryptedContent)

	err = env.invoke(alice, api.MethodGetNote, &api.IDRequest{ID: created.Note.ID}, &got)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestNotes_ValidationIsInvalidArgument(t *testing.T) {
	env := startServer(t)
	alice := env.tokenFor(t, env.store.SeedUser("alice@example.com"))

	var out api.NoteResponse
	err := env.invoke(alice, api.MethodCreateNote, &api.CreateNoteRequest{Title: ""}, &out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestFiles_DownloadLimitIsResourceExhausted(t *testing.T) {
	env := startServer(t)
	alice := env.tokenFor(t, env.store.SeedUser("alice@example.com"))
	limit := int64(1)

	var created api.CreateFileResponse
	require.NoError(t, env.invoke(alice, api.MethodCreateFile, &api.CreateFileRequest{Filename: "a", MaxDownloads: &limit}, &created))
	assert.Contains(t, created.UploadURL, "put:users/")
	require.NoError(t, env.invoke(alice, api.MethodMarkUploaded, &api.IDRequest{ID: created.File.ID}, &api.Empty{}))

	var dl api.DownloadFileResponse
	require.NoError(t, env.invoke(alice, api.MethodDownloadFile, &api.DownloadFileRequest{ID: created.File.ID}, &dl))
	assert.Contains(t, dl.DownloadURL, "get:users/")

	err := env.invoke(alice, api.MethodDownloadFile, &api.DownloadFileRequest{ID: created.File.ID}, &dl)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestMailboxes_Messages(t *testing.T) {
	env := startServer(t)
	alice := env.tokenFor(t, env.store.SeedUser("alice@example.com"))

	var mb api.MailboxResponse
	require.NoError(t, env.invoke(alice, api.MethodCreateMailbox, &api.CreateMailboxRequest{AliasName: "x"}, &mb))

	var msgs api.MessagesResponse
	require.NoError(t, env.invoke(alice, api.MethodMailboxMessages, &api.IDRequest{ID: mb.Mailbox.ID}, &msgs))
	require.Len(t, msgs.Messages, 1)
}

func TestStoreFailureDuringResolveIsInternal(t *testing.T) {
	env := startServer(t)
	ctx := env.tokenFor(t, env.store.SeedUser("alice@example.com"))
	env.store.Fail(assert.AnError)

	err := env.invoke(ctx, api.MethodMe, &api.Empty{}, &api.UserResponse{})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealth(t *testing.T) {
	env := startServer(t)

	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: api.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, nil, services.Set{})

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
	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, nil, services.Set{})

	assert.Error(t, srv.Run(context.Background()))
}
