// Package server provides the HTTP API for doctxt.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/doctxt/internal/config"
	"github.com/hyperjump/doctxt/internal/extract"
	"github.com/hyperjump/doctxt/internal/keyword"
	"github.com/hyperjump/doctxt/internal/storage"
)

// Server is the HTTP server for the doctxt API.
type Server struct {
	extractor *extract.Extractor
	manifest  storage.Manifest
	index     keyword.KeywordIndex
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server. manifest and index may be nil; the endpoints that need
// them then answer 501.
func NewServer(
	extractor *extract.Extractor,
	manifest storage.Manifest,
	index keyword.KeywordIndex,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = extract.NewExtractor(extract.WithLogger(logger))
	}
	return &Server{
		extractor: extractor,
		manifest:  manifest,
		index:     index,
		config:    cfg,
		logger:    logger,
	}
}

// Routes returns the API handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Get("/search", s.handleSearch)
		r.Get("/runs/latest", s.handleLatestRun)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
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
