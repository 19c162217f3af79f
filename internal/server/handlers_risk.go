package server

import (
	"net/http"

	"github.com/bobmcallan/marketplay/internal/models"
)

// handlePortfolioRisk handles GET /portfolio/risk.
func (s *Server) handlePortfolioRisk(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report, err := s.app.RiskService.Analyze(r.Context(), r.Header.Get("Authorization"))
	s.metrics.observeOperation("risk", err)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleMonteCarlo handles POST /simulation/monte-carlo.
func (s *Server) handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.MonteCarloRequest
	if r.ContentLength != 0 && !DecodeJSON(w, r, &req) {
		return
	}

	result, err := s.app.RiskService.MonteCarlo(r.Context(), r.Header.Get("Authorization"), req)
	s.metrics.observeOperation("monte_carlo", err)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleScenario handles POST /simulation/scenario.
func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ScenarioRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := s.app.RiskService.Scenario(r.Context(), r.Header.Get("Authorization"), req)
	s.metrics.observeOperation("scenario", err)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
