package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"doccast/logger"
	"doccast/model"
)

// GenerateQuizHandler relays quiz generation from extracted text.
func (h *APIHandler) GenerateQuizHandler(w http.ResponseWriter, r *http.Request) {
	var req model.QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "Text is required")
		return
	}

	ctx, cancel := h.generateContext(r)
	defer cancel()
	resp, err := h.backend.PostJSON(ctx, "/generate-quiz", req, "")
	if err != nil {
		logger.Error("[Quiz] backend unreachable", logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Failed to generate quiz")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamErrorMessage(resp, "Failed to generate quiz")
		respondError(w, resp.StatusCode, msg)
		return
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil || !json.Valid(payload) {
		respondError(w, http.StatusBadGateway, "Invalid backend response")
		return
	}
	respondRaw(w, http.StatusOK, payload)
}

// GenerateAudioHandler relays speech synthesis. The response is binary
// audio and is streamed through without JSON handling.
func (h *APIHandler) GenerateAudioHandler(w http.ResponseWriter, r *http.Request) {
	var req model.TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "No text provided")
		return
	}
	if req.Voice == "" {
		req.Voice = "Puck"
	}
	if req.Speed == 0 {
		req.Speed = 1.0
	}

	ctx, cancel := h.generateContext(r)
	defer cancel()
	resp, err := h.backend.PostJSON(ctx, "/audio/generate", req, "")
	if err != nil {
		logger.Error("[Audio] backend unreachable", logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Failed to generate audio. Please try again.")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies are JSON even on the audio endpoint.
		msg := upstreamErrorMessage(resp, "Failed to generate audio. Please try again.")
		respondError(w, resp.StatusCode, msg)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Warn("[Audio] client went away mid-stream", logger.ErrorField(err))
	}
}

// ListFilesHandler relays the uploaded-files listing.
func (h *APIHandler) ListFilesHandler() http.HandlerFunc {
	return h.relay(relaySpec{
		name:        "files",
		method:      http.MethodGet,
		path:        staticPath("/files"),
		requireAuth: true,
		errFallback: "Failed to get files",
	})
}

// VoicesHandler serves the static voice-actor metadata and speed options
// the podcast page renders.
func (h *APIHandler) VoicesHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"voices": model.VoiceActors,
		"speeds": model.SpeedOptions,
	})
}

// HealthHandler reports gateway liveness and backend reachability.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	backendStatus := "ok"
	if err := h.backend.Ping(r.Context()); err != nil {
		backendStatus = "unreachable"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": backendStatus,
	})
}
