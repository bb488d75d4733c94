// Package cli implements the cocoinbox command-line client on top of cobra.
package cli

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/client/client"
	"github.com/cocoinbox/cocoinbox/internal/client/config"
	"github.com/spf13/cobra"
)

// API is the part of client.GRPCClient the commands use.
type API interface {
	SetToken(token string)
	Close() error

	Register(ctx context.Context, email, password, name string) (*api.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*api.User, error)

	CreateNote(ctx context.Context, req *api.CreateNoteRequest) (*api.Note, error)
	ListNotes(ctx context.Context) ([]api.Note, error)
	GetNote(ctx context.Context, id string) (*api.Note, error)
	DeleteNote(ctx context.Context, id string) error

	CreateFile(ctx context.Context, req *api.CreateFileRequest) (*api.File, string, error)
	MarkUploaded(ctx context.Context, id string) error
	ListFiles(ctx context.Context) ([]api.File, error)
	DownloadFile(ctx context.Context, id, password string) (*api.File, string, error)
	DeleteFile(ctx context.Context, id string) error

	CreateMailbox(ctx context.Context, alias string) (*api.Mailbox, error)
	ListMailboxes(ctx context.Context) ([]api.Mailbox, error)
	DeactivateMailbox(ctx context.Context, id string) error
	MailboxMessages(ctx context.Context, id string) ([]api.Message, error)
}

// newAPI is replaced in tests.
var newAPI = func(endpoint string) (API, error) {
	return client.NewGRPCClient(endpoint)
}

type App struct {
	config *config.Config
	api    API
	tokens tokenStore
	reader *bufio.Reader
	out    io.Writer
}

type globalFlags struct {
	configPath string
	server     string
	home       string
}

// init runs before every command: config, then flags, then the client
// with any saved session token.
func (a *App) init(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerEndpointAddr = flags.server
	}
	if cmd.Flags().Changed("home") {
		cfg.HomeDir = flags.home
	}

	a.config = cfg
	a.out = cmd.OutOrStdout()
	a.reader = bufio.NewReader(cmd.InOrStdin())
	a.tokens = tokenStore{dir: cfg.HomeDir}

	a.api, err = newAPI(cfg.ServerEndpointAddr)
	if err != nil {
		return err
	}

	token, err := a.tokens.Load()
	if err != nil {
		return err
	}
	if token != "" {
		a.api.SetToken(token)
	}
	return nil
}

func (a *App) close() error {
	if a.api == nil {
		return nil
	}
	return a.api.Close()
}

// ctx bounds one command's server round trips.
func (a *App) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := a.config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
