package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/joshdurbin/shortlinks/internal/ratelimit"
	"github.com/joshdurbin/shortlinks/internal/service"
)

// Server represents the HTTP server
type Server struct {
	handler *Handler
	server  *http.Server
	logger  *zap.Logger
	port    string
}

// NewServer creates a new HTTP server
func NewServer(links service.LinkService, limiter *ratelimit.Limiter, port, baseURL string, logger *zap.Logger) *Server {
	handler := NewHandler(links, limiter, baseURL, logger)

	mux := http.NewServeMux()

	// API endpoints
	mux.Handle("/api/urls", observe("/api/urls", logger, http.HandlerFunc(handler.CreateLink)))
	mux.Handle("/api/urls/", observe("/api/urls/{code}", logger, http.HandlerFunc(handler.LinksDetailHandler)))

	// Redirect endpoint
	mux.Handle("/r/", observe("/r/{code}", logger, http.HandlerFunc(handler.Redirect)))

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  server,
		logger:  logger,
		port:    port,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("port", s.port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}
