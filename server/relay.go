package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"doccast/logger"
)

// relaySpec declares one backend capability relayed by the gateway. Every
// plain passthrough endpoint is a thin declaration over relay(), which
// owns the auth gate, error mapping and response forwarding.
type relaySpec struct {
	name        string                            // tag used in logs
	method      string                            // upstream method
	path        func(r *http.Request) string      // upstream path for this request
	requireAuth bool                              // gate before any upstream call
	errFallback string                            // message when the upstream error has no detail
	after       func(w http.ResponseWriter, r *http.Request) // optional hook on success
}

// staticPath builds a path func for capabilities without URL parameters.
func staticPath(p string) func(*http.Request) string {
	return func(*http.Request) string { return p }
}

// relay returns the handler implementing spec. Responses are JSON and are
// re-emitted verbatim on success; upstream failures are translated into
// the local {error} envelope with the upstream's status code.
func (h *APIHandler) relay(spec relaySpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bearer := bearerFromRequest(r)
		if spec.requireAuth && bearer == "" {
			respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var body io.Reader
		contentType := ""
		if spec.method != http.MethodGet && spec.method != http.MethodDelete {
			body = r.Body
			contentType = r.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/json"
			}
		}

		resp, err := h.backend.Do(r.Context(), spec.method, spec.path(r), body, contentType, bearer)
		if err != nil {
			logger.Error(fmt.Sprintf("[Relay:%s] backend unreachable", spec.name), logger.ErrorField(err))
			respondError(w, http.StatusBadGateway, "Failed to reach backend")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := upstreamErrorMessage(resp, spec.errFallback)
			logger.Warn(fmt.Sprintf("[Relay:%s] upstream error", spec.name),
				logger.Int("status", resp.StatusCode),
				logger.String("message", msg))
			respondError(w, resp.StatusCode, msg)
			return
		}

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			logger.Error(fmt.Sprintf("[Relay:%s] reading upstream body", spec.name), logger.ErrorField(err))
			respondError(w, http.StatusBadGateway, "Failed to read backend response")
			return
		}
		if !json.Valid(payload) {
			logger.Error(fmt.Sprintf("[Relay:%s] upstream body is not JSON", spec.name))
			respondError(w, http.StatusBadGateway, "Invalid backend response")
			return
		}

		respondRaw(w, resp.StatusCode, payload)

		if spec.after != nil {
			spec.after(w, r)
		}
	}
}

// upstreamErrorMessage extracts the backend's structured "detail" field,
// falling back to the status line when the body is not JSON.
func upstreamErrorMessage(resp *http.Response, fallback string) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
			return payload.Detail
		}
	}
	if fallback != "" {
		return fallback
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("Upstream error (status %d)", resp.StatusCode)
}
