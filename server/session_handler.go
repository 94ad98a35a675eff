package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"doccast/cache"
	"doccast/logger"
)

// The doc_session cookie keys the per-browser-session document scratch
// state (extracted text + generated script) that the quiz and podcast
// pages read. It is the server-side stand-in for the web client's
// sessionStorage.
const sessionCookieName = "doc_session"

// sessionID returns the caller's document session ID, or "" when the
// browser has none yet.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ensureSession returns the caller's session ID, minting one (and setting
// the cookie) when absent.
func (h *APIHandler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id := sessionID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure(),
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// storeSessionDocument saves the upload artifacts for the caller's session.
// Failures are logged and swallowed: session scratch state is a
// convenience, not part of the upload contract.
func (h *APIHandler) storeSessionDocument(w http.ResponseWriter, r *http.Request, doc cache.SessionDocument) {
	id := h.ensureSession(w, r)
	if err := h.docs.Put(r.Context(), id, doc); err != nil {
		logger.Warn("[Session] failed to store document", logger.ErrorField(err))
	}
}

// GetSessionDocumentHandler returns the session's stored document state.
func (h *APIHandler) GetSessionDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if id == "" {
		respondError(w, http.StatusNotFound, "No document in session")
		return
	}

	doc, err := h.docs.Get(r.Context(), id)
	if err != nil {
		logger.Error("[Session] failed to load document", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if doc == nil {
		respondError(w, http.StatusNotFound, "No document in session")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// PutSessionDocumentHandler merges new artifact values into the session
// document. The podcast page uses it to keep a regenerated script.
func (h *APIHandler) PutSessionDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExtractedText *string `json:"extracted_text"`
		PodcastScript *string `json:"podcast_script"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := h.ensureSession(w, r)
	doc, err := h.docs.Get(r.Context(), id)
	if err != nil {
		logger.Error("[Session] failed to load document", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if doc == nil {
		doc = &cache.SessionDocument{}
	}

	if req.ExtractedText != nil {
		doc.ExtractedText = *req.ExtractedText
	}
	if req.PodcastScript != nil {
		doc.PodcastScript = *req.PodcastScript
	}

	if err := h.docs.Put(r.Context(), id, *doc); err != nil {
		logger.Error("[Session] failed to store document", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// DeleteSessionDocumentHandler clears the session's document state.
// Starting a new chat routes here.
func (h *APIHandler) DeleteSessionDocumentHandler(w http.ResponseWriter, r *http.Request) {
	h.clearSessionDocument(r)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Session cleared"})
}

// clearSessionDocument drops the stored document, if any. Best effort.
func (h *APIHandler) clearSessionDocument(r *http.Request) {
	id := sessionID(r)
	if id == "" {
		return
	}
	if err := h.docs.Delete(r.Context(), id); err != nil {
		logger.Warn("[Session] failed to clear document", logger.ErrorField(err))
	}
}
