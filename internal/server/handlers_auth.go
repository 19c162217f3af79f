package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/models"
)

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Status string          `json:"status"`
	User   models.Identity `json:"user"`
}

// handleAuthVerify handles POST /auth/verify.
func (s *Server) handleAuthVerify(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req verifyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		WriteError(w, http.StatusBadRequest, string(common.KindInvalidRequest), "token is required")
		return
	}

	identity, err := s.app.Verifier.VerifyToken(r.Context(), token)
	s.metrics.observeOperation("verify", err)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, verifyResponse{Status: "success", User: *identity})
}
