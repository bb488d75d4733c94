// Package httpapi exposes the Cocoinbox services as a JSON REST API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address  string
	logger   logging.Logger
	resolver *auth.Resolver
	svc      services.Set
}

func NewHTTPServer(address string, l logging.Logger, resolver *auth.Resolver, svc services.Set) *HTTPServer {
	return &HTTPServer{
		address:  address,
		logger:   l.With("module", "http_server"),
		resolver: resolver,
		svc:      svc,
	}
}

// Handler returns the traced REST handler.
func (s *HTTPServer) Handler() http.Handler {
	return otelhttp.NewHandler(s.newEcho(), "cocoinbox.http")
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve blocks until ctx is done, then drains in-flight requests.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
