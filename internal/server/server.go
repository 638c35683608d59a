// Package server implements the lens HTTP API.
//
// The API serves catalog metadata, lineage traces and rendered layouts, and
// hosts live layout sessions that browsers drive tick by tick. See
// [NewRouter] for the route table.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lens/pkg/catalog"
	"github.com/matzehuels/lens/pkg/pipeline"
	"github.com/matzehuels/lens/pkg/session"
)

// Config wires the server's collaborators.
type Config struct {
	Catalog  catalog.Catalog
	Runner   *pipeline.Runner
	Sessions *session.Store
	Logger   *log.Logger

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// CleanupInterval is how often expired sessions are swept. Zero means one minute.
	CleanupInterval time.Duration
}

// Server is the lens HTTP server.
type Server struct {
	cfg     Config
	handler http.Handler
}

// New creates a server. Missing collaborators get in-memory defaults.
func New(cfg Config) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Mock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(cfg.Catalog, nil, nil, cfg.Logger)
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewStore(session.DefaultTTL)
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	s := &Server{cfg: cfg}
	s.handler = NewRouter(s)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.cfg.Sessions.Run(ctx, s.cfg.CleanupInterval)

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
