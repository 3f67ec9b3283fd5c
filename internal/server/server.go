// Package server provides the HTTP API for the transcript service.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ytfetch/transcript-service/internal/config"
	"github.com/ytfetch/transcript-service/pkg/logging"
	"github.com/ytfetch/transcript-service/pkg/service"
)

// Server wraps the chi router and the underlying http.Server.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	svc     *service.Service
	cfg     config.ServerConfig
	workers int
	logger  zerolog.Logger
}

// New creates the HTTP server for a transcript service instance.
func New(cfg *config.Config, svc *service.Service) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)

	s := &Server{
		router:  r,
		svc:     svc,
		cfg:     cfg.Server,
		workers: cfg.Pool.MaxWorkers,
		logger:  logging.NewLogger("http-server"),
	}

	s.registerRoutes()

	return s
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Post("/transcript", s.handleTranscript)
	s.router.Get("/transcript", s.handleTranscriptQuery)
	s.router.Get("/transcript/text", s.handleTranscriptText)
	s.router.Post("/transcripts/batch", s.handleBatch)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/metrics", metricsHandler())
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.logger.Info().
		Str("addr", s.cfg.Addr()).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}
