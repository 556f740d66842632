// Package server provides the local HTTP API for Konomi.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/konomi/internal/config"
	"github.com/hyperjump/konomi/internal/store"
	"github.com/hyperjump/konomi/internal/telemetry"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Konomi API.
type Server struct {
	store   *store.Store
	config  *config.Config
	logger  *zap.Logger
	metrics *telemetry.Metrics
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	st *store.Store,
	cfg *config.Config,
	logger *zap.Logger,
	metrics *telemetry.Metrics,
) *Server {
	return &Server{
		store:   st,
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ingest", s.handleIngest)
	r.Get("/api/v1/vector", s.handleVector)
	r.Get("/api/v1/metrics", s.handleMetrics)
	r.Get("/api/v1/references", s.handleReferences)
	r.Post("/api/v1/interrupt", s.handleInterrupt)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
