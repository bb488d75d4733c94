// Package server wires configuration, storage and transports together and
// runs the Cocoinbox server until it is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/cache"
	"github.com/cocoinbox/cocoinbox/internal/cryptox"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/config"
	"github.com/cocoinbox/cocoinbox/internal/server/httpapi"
	"github.com/cocoinbox/cocoinbox/internal/server/mailtm"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repomanager"
	"github.com/cocoinbox/cocoinbox/internal/server/services"
	"github.com/cocoinbox/cocoinbox/internal/server/storage"
	"github.com/cocoinbox/cocoinbox/internal/server/telemetry"

	gs "github.com/cocoinbox/cocoinbox/internal/server/grpc"
)

const serviceName = "cocoinbox"

type runner interface {
	Run(ctx context.Context) error
}

type sweeper interface {
	Sweep(ctx context.Context) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	cache    *cache.Client
	servers  map[string]runner
	sweeper  sweeper
	shutdown telemetry.ShutdownFunc
}

var setupTelemetry = telemetry.Setup

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	shutdown, err := setupTelemetry(ctx, c.OTLPEndpoint, serviceName)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	var db *sql.DB
	started := false
	defer func() {
		if started {
			return
		}
		if db != nil {
			_ = db.Close()
		}
		_ = shutdown(ctx)
	}()

	db, err = sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey))
	if err != nil {
		return nil, err
	}

	sealer, err := cryptox.NewSealer([]byte(c.SecretKey), "mailbox")
	if err != nil {
		return nil, err
	}

	objects, err := storage.NewS3Store(ctx, storage.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, shutdown: shutdown}

	var tokenCache mailtm.TokenCache
	if c.RedisAddr != "" {
		app.cache = cache.New(c.RedisAddr, "", 0)
		tokenCache = app.cache
	}
	mail := mailtm.NewClient(c.MailProviderURL, nil, tokenCache)

	notes := services.NewNoteService(db, rm, logger)
	files := services.NewFileService(db, rm, objects, logger)
	mailboxes := services.NewMailboxService(db, rm, mail, sealer, logger)
	svc := services.Set{
		Users:     services.NewUserService(db, rm, tokens, logger),
		Notes:     notes,
		Files:     files,
		Mailboxes: mailboxes,
	}

	resolver := auth.NewResolver(tokens, rm.Users(db))
	app.servers = map[string]runner{
		"grpc": gs.NewGRPCServer(c.EndpointAddrGRPC, logger, resolver, svc),
		"http": httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, resolver, svc),
	}
	app.sweeper = services.NewSweeper(notes, files, mailboxes, logger.With("module", "sweeper"))

	started = true
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runServer cancels the whole app when one server fails.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, s runner) {
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "server", name, "error", err)
		cancelFunc()
	}
}

// runSweeps sweeps once per interval until ctx is done. A failed sweep is
// logged and retried on the next tick.
func (app *App) runSweeps(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := app.sweeper.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				app.logger.Error(ctx, "sweep failed", "error", err)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for name, s := range app.servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runServer(ctx, cancelFunc, name, s)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSweeps(ctx, app.config.SweepInterval)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "Stopping app...")
	return app.close()
}

func (app *App) close() error {
	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if app.shutdown != nil {
		if err := app.shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}
