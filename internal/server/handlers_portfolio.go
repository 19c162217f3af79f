package server

import (
	"net/http"

	"github.com/bobmcallan/marketplay/internal/models"
)

type connectResponse struct {
	Message string                `json:"message"`
	Assets  []models.HoldingInput `json:"assets"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// routePortfolio dispatches /portfolio by method.
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handlePortfolioGet(w, r)
	case http.MethodDelete:
		s.handlePortfolioDelete(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handlePortfolioConnect handles POST /portfolio/connect.
func (s *Server) handlePortfolioConnect(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	assets, err := s.app.PortfolioService.Connect(r.Context(), r.Header.Get("Authorization"))
	s.metrics.observeOperation("connect", err)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, connectResponse{
		Message: "Portfolio connected via Plaid Sandbox",
		Assets:  assets,
	})
}

// handlePortfolioGet handles GET /portfolio.
func (s *Server) handlePortfolioGet(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.app.PortfolioService.GetPortfolio(r.Context(), r.Header.Get("Authorization"))
	s.metrics.observeOperation("get", err)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, holdings)
}

// handlePortfolioDelete handles DELETE /portfolio.
func (s *Server) handlePortfolioDelete(w http.ResponseWriter, r *http.Request) {
	err := s.app.PortfolioService.ClearPortfolio(r.Context(), r.Header.Get("Authorization"))
	s.metrics.observeOperation("clear", err)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: "Portfolio disconnected successfully"})
}
