package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"videoforge/internal/artifact"
	"videoforge/internal/config"
	"videoforge/internal/creator"
	"videoforge/internal/ports"
)

// Server exposes the video pipeline over HTTP: request intake, status
// polling, a websocket progress feed and artifact download.
type Server struct {
	cfg      *config.Config
	creator  *creator.Creator
	statuses ports.StatusStore
	videos   *artifact.Store
	logger   ports.Logger
	metrics  ports.Metrics
	server   *http.Server
}

func New(cfg *config.Config, c *creator.Creator, statuses ports.StatusStore, videos *artifact.Store, logger ports.Logger, metrics ports.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		creator:  c,
		statuses: statuses,
		videos:   videos,
		logger:   logger.WithFields(map[string]interface{}{"component": "server"}),
		metrics:  metrics.WithTags(map[string]string{"component": "server"}),
	}
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.server = s.newHTTPServer()

	s.logger.Info("Starting HTTP server", "address", s.cfg.HTTP.Addr)
	s.metrics.IncrementCounter("http.starts", nil)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

func (s *Server) newHTTPServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/create_video", s.handleCreateVideo)
	mux.HandleFunc("GET /api/status/{request_id}", s.handleStatus)
	mux.HandleFunc("GET /api/video/{request_id}", s.handleGetVideo)
	mux.HandleFunc("GET /api/videos", s.handleListVideos)
	mux.HandleFunc("DELETE /api/video/{request_id}", s.handleDeleteVideo)
	mux.HandleFunc("POST /api/cleanup", s.handleCleanup)
	mux.HandleFunc("GET /api/progress/{request_id}", s.handleProgress)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Video downloads clear the write deadline in their handler, so the
	// write timeout only bounds the JSON endpoints.
	return &http.Server{
		Addr:         s.cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
