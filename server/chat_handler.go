package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"doccast/logger"
	"doccast/model"
)

// defaultChatReply covers a backend that answers without a response field.
const defaultChatReply = "I'm here to help! Upload a PDF to get started."

// ChatHandler relays a single assistant message. No auth: anonymous
// visitors get the assistant too.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "No message provided")
		return
	}

	reply, err := h.askAssistant(r, req.Message)
	if err != nil {
		logger.Error("[Chat] assistant call failed", logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Failed to get chatbot response")
		return
	}

	respondJSON(w, http.StatusOK, model.ChatResponse{
		Success:  true,
		Response: reply,
	})
}

// askAssistant forwards one message to the backend /chat endpoint and
// returns the assistant's reply.
func (h *APIHandler) askAssistant(r *http.Request, message string) (string, error) {
	resp, err := h.backend.PostJSON(r.Context(), "/chat", model.ChatRequest{Message: message}, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat returned status %d", resp.StatusCode)
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if result.Response == "" {
		return defaultChatReply, nil
	}
	return result.Response, nil
}

// ListChatsHandler relays the chat session listing.
func (h *APIHandler) ListChatsHandler() http.HandlerFunc {
	return h.relay(relaySpec{
		name:        "chats.list",
		method:      http.MethodGet,
		path:        staticPath("/chats"),
		requireAuth: true,
		errFallback: "Failed to get chats",
	})
}

// CreateChatHandler relays chat creation. A new chat invalidates the
// session's document scratch state, matching the web client clearing its
// stored text when a conversation starts over.
func (h *APIHandler) CreateChatHandler() http.HandlerFunc {
	return h.relay(relaySpec{
		name:        "chats.create",
		method:      http.MethodPost,
		path:        staticPath("/chats"),
		requireAuth: true,
		errFallback: "Failed to create chat",
		after: func(w http.ResponseWriter, r *http.Request) {
			h.clearSessionDocument(r)
		},
	})
}

// GetChatHandler relays the message listing of one chat.
func (h *APIHandler) GetChatHandler() http.HandlerFunc {
	return h.relay(relaySpec{
		name:   "chats.get",
		method: http.MethodGet,
		path: func(r *http.Request) string {
			return "/chats/" + mux.Vars(r)["id"]
		},
		requireAuth: true,
		errFallback: "Failed to get chat",
	})
}

// DeleteChatHandler relays chat deletion.
func (h *APIHandler) DeleteChatHandler() http.HandlerFunc {
	return h.relay(relaySpec{
		name:   "chats.delete",
		method: http.MethodDelete,
		path: func(r *http.Request) string {
			return "/chats/" + mux.Vars(r)["id"]
		},
		requireAuth: true,
		errFallback: "Failed to delete chat",
	})
}
