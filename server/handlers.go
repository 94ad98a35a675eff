package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"doccast/cache"
	"doccast/config"
	"doccast/core/upstream"
	"doccast/logger"
)

// APIHandler carries the shared dependencies of every relay handler: the
// backend client, the session document store and the gateway config.
type APIHandler struct {
	backend *upstream.Client
	docs    cache.DocumentStore
	cfg     *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(backend *upstream.Client, docs cache.DocumentStore, cfg *config.Config) *APIHandler {
	return &APIHandler{
		backend: backend,
		docs:    docs,
		cfg:     cfg,
	}
}

// generateContext bounds one call to the backend's slow generation
// endpoints (PDF extraction, quiz, script, speech). Plain JSON relays run
// under the backend client's shorter default budget instead.
func (h *APIHandler) generateContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.cfg.GenerateTimeout > 0 {
		return context.WithTimeout(r.Context(), h.cfg.GenerateTimeout)
	}
	return context.WithCancel(r.Context())
}

// bearerFromRequest extracts the caller's credential. Browsers carry it in
// the auth cookie; API clients send a bearer header. Returns "" when the
// request is anonymous.
func bearerFromRequest(r *http.Request) string {
	if c, err := r.Cookie(authCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
		return parts[1]
	}
	return ""
}

// respondJSON writes payload as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("[Respond] failed to encode response", logger.ErrorField(err))
	}
}

// respondError writes the uniform error envelope every handler uses.
// Presentation components show the message verbatim.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondRaw re-emits an upstream JSON body unchanged.
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Error("[Respond] failed to write response", logger.ErrorField(err))
	}
}
