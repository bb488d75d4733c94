// Package client is a thin gRPC client for the Cocoinbox API. Requests and
// responses are the api package types carried with the JSON codec; server
// status codes are mapped back onto the common sentinel errors.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrUnavailable means the server could not be reached.
var ErrUnavailable = errors.New("server unavailable")

type GRPCClient struct {
	conn  *grpc.ClientConn
	token string
}

// NewGRPCClient dials lazily; extra options are appended after the
// insecure transport credentials.
func NewGRPCClient(endpoint string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn}, nil
}

// SetToken sets the session token sent with every following call.
func (c *GRPCClient) SetToken(token string) {
	c.token = token
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) invoke(ctx context.Context, method string, in, out any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}
	err := c.conn.Invoke(ctx, api.FullMethod(method), in, out, grpc.CallContentSubtype(api.CodecName))
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == common.ErrorInvalidCredentials.Error() {
			return common.ErrorInvalidCredentials
		}
		return common.ErrorUnauthenticated
	case codes.AlreadyExists:
		return common.ErrorUserExists
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.ResourceExhausted:
		return common.ErrorDownloadLimitReached
	case codes.Unavailable:
		if st.Message() == common.ErrorProviderUnavailable.Error() {
			return common.ErrorProviderUnavailable
		}
		return ErrUnavailable
	case codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %s", st.Message())
	}
}

func (c *GRPCClient) Register(ctx context.Context, email, password, name string) (*api.User, error) {
	var resp api.UserResponse
	if err := c.invoke(ctx, api.MethodRegister, &api.RegisterRequest{Email: email, Password: password, Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login stores the returned token on the client and returns it.
func (c *GRPCClient) Login(ctx context.Context, email, password string) (string, error) {
	var resp api.LoginResponse
	if err := c.invoke(ctx, api.MethodLogin, &api.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

func (c *GRPCClient) Me(ctx context.Context) (*api.User, error) {
	var resp api.UserResponse
	if err := c.invoke(ctx, api.MethodMe, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *GRPCClient) CreateNote(ctx context.Context, req *api.CreateNoteRequest) (*api.Note, error) {
	var resp api.NoteResponse
	if err := c.invoke(ctx, api.MethodCreateNote, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

func (c *GRPCClient) ListNotes(ctx context.Context) ([]api.Note, error) {
	var resp api.ListNotesResponse
	if err := c.invoke(ctx, api.MethodListNotes, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (c *GRPCClient) GetNote(ctx context.Context, id string) (*api.Note, error) {
	var resp api.NoteResponse
	if err := c.invoke(ctx, api.MethodGetNote, &api.IDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

func (c *GRPCClient) DeleteNote(ctx context.Context, id string) error {
	return c.invoke(ctx, api.MethodDeleteNote, &api.IDRequest{ID: id}, &api.Empty{})
}

// CreateFile registers file metadata and returns the presigned upload URL.
func (c *GRPCClient) CreateFile(ctx context.Context, req *api.CreateFileRequest) (*api.File, string, error) {
	var resp api.CreateFileResponse
	if err := c.invoke(ctx, api.MethodCreateFile, req, &resp); err != nil {
		return nil, "", err
	}
	return &resp.File, resp.UploadURL, nil
}

func (c *GRPCClient) MarkUploaded(ctx context.Context, id string) error {
	return c.invoke(ctx, api.MethodMarkUploaded, &api.IDRequest{ID: id}, &api.Empty{})
}

func (c *GRPCClient) ListFiles(ctx context.Context) ([]api.File, error) {
	var resp api.ListFilesResponse
	if err := c.invoke(ctx, api.MethodListFiles, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (c *GRPCClient) DownloadFile(ctx context.Context, id, password string) (*api.File, string, error) {
	var resp api.DownloadFileResponse
	if err := c.invoke(ctx, api.MethodDownloadFile, &api.DownloadFileRequest{ID: id, Password: password}, &resp); err != nil {
		return nil, "", err
	}
	return &resp.File, resp.DownloadURL, nil
}

func (c *GRPCClient) DeleteFile(ctx context.Context, id string) error {
	return c.invoke(ctx, api.MethodDeleteFile, &api.IDRequest{ID: id}, &api.Empty{})
}

func (c *GRPCClient) CreateMailbox(ctx context.Context, alias string) (*api.Mailbox, error) {
	var resp api.MailboxResponse
	if err := c.invoke(ctx, api.MethodCreateMailbox, &api.CreateMailboxRequest{AliasName: alias}, &resp); err != nil {
		return nil, err
	}
	return &resp.Mailbox, nil
}

func (c *GRPCClient) ListMailboxes(ctx context.Context) ([]api.Mailbox, error) {
	var resp api.ListMailboxesResponse
	if err := c.invoke(ctx, api.MethodListMailboxes, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Mailboxes, nil
}

func (c *GRPCClient) DeactivateMailbox(ctx context.Context, id string) error {
	return c.invoke(ctx, api.MethodDeactivateMbox, &api.IDRequest{ID: id}, &api.Empty{})
}

func (c *GRPCClient) MailboxMessages(ctx context.Context, id string) ([]api.Message, error) {
	var resp api.MessagesResponse
	if err := c.invoke(ctx, api.MethodMailboxMessages, &api.IDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
