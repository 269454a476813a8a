// Package server exposes the grid engine over HTTP.
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
	"github.com/gridline-labs/gridline/internal/engine"
	"golang.org/x/sync/errgroup"
)

// Server is the HTTP API server.
type Server struct {
	engine *engine.Engine
	auth   Authorizer
	port   int
	logger *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Engine     *engine.Engine
	Authorizer Authorizer
	Port       int
	Logger     *slog.Logger
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	auth := cfg.Authorizer
	if auth == nil {
		auth = AllowAll{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine: cfg.Engine,
		auth:   auth,
		port:   cfg.Port,
		logger: logger,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tables", func(r chi.Router) {
			r.Post("/", s.handleCreateTable)
			r.Get("/", s.handleListTables)
			r.Route("/{tableID}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteTable)
				r.Post("/fields", s.handleCreateField)
				r.Get("/fields", s.handleListFields)
				r.Post("/records", s.handleCreateRecord)
				r.Post("/records/bulk", s.handleBulkCreateRecords)
				r.Get("/rows", s.handleListRows)
				r.Post("/query", s.handleQuery)
				r.Post("/views", s.handleCreateView)
				r.Get("/views", s.handleListViews)
			})
		})
		r.Delete("/fields/{fieldID}", s.handleDeleteField)
		r.Route("/records/{recordID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteRecord)
			r.Put("/cells/{fieldID}", s.handleUpsertCell)
		})
		r.Route("/views/{viewID}", func(r chi.Router) {
			r.Get("/", s.handleGetView)
			r.Patch("/", s.handleUpdateView)
			r.Delete("/", s.handleDeleteView)
			r.Post("/default", s.handleSetDefaultView)
		})
	})

	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
