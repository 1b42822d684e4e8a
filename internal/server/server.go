// Package server exposes the run trigger, catalog, and run-history
// surfaces over HTTP for UI consumers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/pagecheck-labs/pagecheck/internal/runner"
	"github.com/pagecheck-labs/pagecheck/internal/sitemap"
	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// SessionFactory builds a fresh browser session for each sweep trigger.
type SessionFactory func() runner.PageChecker

// Config holds server dependencies.
type Config struct {
	Store        core.Store
	Runner       *runner.Runner
	Sweeper      *runner.Sweeper
	Synchronizer *sitemap.Synchronizer
	SitemapPath  string
	NewSession   SessionFactory
	Port         int
	Logger       *slog.Logger
}

// Server is the pagecheck API server.
type Server struct {
	store        core.Store
	runner       *runner.Runner
	sweeper      *runner.Sweeper
	synchronizer *sitemap.Synchronizer
	sitemapPath  string
	newSession   SessionFactory
	port         int
	logger       *slog.Logger
}

// NewServer creates an API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:        cfg.Store,
		runner:       cfg.Runner,
		sweeper:      cfg.Sweeper,
		synchronizer: cfg.Synchronizer,
		sitemapPath:  cfg.SitemapPath,
		newSession:   cfg.NewSession,
		port:         cfg.Port,
		logger:       logger,
	}
}

// Routes builds the router. Exposed separately for handler tests.
func (s *Server) Routes() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleGetCatalog)
		r.Post("/sync", s.handleSync)
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Post("/sweeps", s.handleCreateSweep)
		r.Get("/devlog", s.handleDevLog)
	})

	return r
}

// Serve starts the API server and blocks until the context is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", slog.String("addr", fmt.Sprintf("http://localhost:%d", s.port)))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
