package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"doccast/logger"
	"doccast/model"
)

const (
	authCookieName   = "auth_token"
	authCookieMaxAge = 7 * 24 * time.Hour
)

// setAuthCookie stores the backend-issued access token as an HTTP-only
// cookie. The cookie never outlives the token: when the token carries an
// exp claim sooner than seven days, that wins.
func (h *APIHandler) setAuthCookie(w http.ResponseWriter, token string) {
	maxAge := authCookieMaxAge
	if exp, err := tokenExpiry(token); err == nil {
		if until := time.Until(exp); until > 0 && until < maxAge {
			maxAge = until
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure(),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookie expires the auth cookie immediately.
func (h *APIHandler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure(),
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenExpiry reads the exp claim without verifying the signature. The
// backend signed the token; the gateway only needs the lifetime to size
// the cookie.
func tokenExpiry(tok string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// LoginHandler relays credentials to the backend and, on success, stores
// the returned access token in the auth cookie alongside re-emitting the
// backend's token payload.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	h.authRelay(w, r, "/login", req, "Login failed")
}

// SignupHandler mirrors LoginHandler for account creation.
func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	h.authRelay(w, r, "/signup", req, "Signup failed")
}

// authRelay forwards a credential payload and turns a successful response
// into an authenticated browser session.
func (h *APIHandler) authRelay(w http.ResponseWriter, r *http.Request, path string, payload interface{}, errFallback string) {
	resp, err := h.backend.PostJSON(r.Context(), path, payload, "")
	if err != nil {
		logger.Error("[Auth] backend unreachable", logger.String("path", path), logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Failed to reach backend")
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to read backend response")
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errFallback
		var errPayload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &errPayload) == nil && errPayload.Detail != "" {
			msg = errPayload.Detail
		}
		respondError(w, resp.StatusCode, msg)
		return
	}

	var tokenPayload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenPayload); err != nil || tokenPayload.AccessToken == "" {
		logger.Error("[Auth] token payload missing access_token", logger.String("path", path))
		respondError(w, http.StatusBadGateway, "Invalid backend response")
		return
	}

	h.setAuthCookie(w, tokenPayload.AccessToken)
	respondRaw(w, resp.StatusCode, body)
}

// LogoutHandler ends the browser session. Purely local: the backend keeps
// no session state beyond the token itself.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// MeHandler relays the current-user lookup.
func (h *APIHandler) MeHandler() http.HandlerFunc {
	return h.relay(relaySpec{
		name:        "me",
		method:      http.MethodGet,
		path:        staticPath("/me"),
		requireAuth: true,
		errFallback: "Failed to get user info",
	})
}
