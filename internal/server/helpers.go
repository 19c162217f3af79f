package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bobmcallan/marketplay/internal/common"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, code, detail string) {
	WriteJSON(w, statusCode, ErrorResponse{Code: code, Detail: detail})
}

// WriteErrorFrom maps err to its status code and caller-safe message.
// Unauthenticated responses carry a Bearer challenge.
func WriteErrorFrom(w http.ResponseWriter, err error) {
	kind := common.KindOf(err)
	if kind == common.KindUnauthenticated {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteError(w, common.HTTPStatus(err), string(kind), common.MessageOf(err))
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteError(w, http.StatusBadRequest, string(common.KindInvalidRequest), "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, string(common.KindInvalidRequest), "Invalid JSON: "+err.Error())
		return false
	}
	return true
}
