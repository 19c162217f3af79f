package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/marketplay/internal/app"
	"github.com/bobmcallan/marketplay/internal/common"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app     *app.App
	server  *http.Server
	logger  *common.Logger
	metrics *metrics
}

// NewServer creates a new HTTP REST API server.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:     a,
		logger:  a.Logger,
		metrics: newMetrics(),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, a.Logger, a.Config, s.metrics)

	s.server = &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      handler,
		ReadTimeout:  a.Config.Server.GetReadTimeout(),
		WriteTimeout: a.Config.Server.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
