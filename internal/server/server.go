// Package server exposes the assessment workflow over HTTP for
// deployments that split the scoring or assessment surface into its
// own service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kestrelworks/riskflow/internal/scoring"
	"github.com/kestrelworks/riskflow/internal/storage"
	"github.com/kestrelworks/riskflow/internal/workflow"
)

// Config holds server configuration.
type Config struct {
	Port    int
	Runner  *workflow.Runner
	Scoring *scoring.Pipeline
	Storage storage.Storage // optional; completed records are saved when set
	Logger  *slog.Logger
}

// Server is the HTTP front for the assessment workflow.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	runner  *workflow.Runner
	scoring *scoring.Pipeline
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		runner:  cfg.Runner,
		scoring: cfg.Scoring,
		storage: cfg.Storage,
		logger:  cfg.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
		// Batch assessments hold the connection through multiple
		// reasoning calls, so the write timeout is generous.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/score", s.handleScore)
		r.Post("/assess", s.handleAssess)
		r.Post("/assess/batch", s.handleAssessBatch)
	})
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.logger.Info("shutting down HTTP server")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
