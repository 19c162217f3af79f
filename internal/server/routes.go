package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/marketplay/internal/common"
)

const serviceName = "MarketPlay AI Backend"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/{$}", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/version", s.handleVersion)
	mux.Handle("/metrics", s.metrics.handler())

	// Auth
	mux.HandleFunc("/auth/verify", s.handleAuthVerify)

	// Portfolio
	mux.HandleFunc("/portfolio/connect", s.handlePortfolioConnect)
	mux.HandleFunc("/portfolio", s.routePortfolio)
	mux.HandleFunc("/portfolio/risk", s.handlePortfolioRisk)

	// Simulation
	mux.HandleFunc("/simulation/monte-carlo", s.handleMonteCarlo)
	mux.HandleFunc("/simulation/scenario", s.handleScenario)

	mux.HandleFunc("/", s.handleNotFound)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

// handleHealth reports liveness plus storage reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	backend := s.app.Storage.Backend()
	if err := s.app.Storage.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Str("storage", backend).Msg("Health check: storage unreachable")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "degraded",
			"storage": backend,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":            "ok",
		"storage":           backend,
		"identity_provider": s.app.Verifier.ProviderName(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, string(common.KindNotFound), "Not found")
}
