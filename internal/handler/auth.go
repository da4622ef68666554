package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/auth"
	"github.com/mkamau/blogapi/internal/service"
)

// AuthHandler serves registration, login, logout and the session-backed
// identity endpoints. The session cookie is the sole source of identity:
// register and login set it, logout clears it, and everything else reads
// the user ID the middleware put in the request context.
type AuthHandler struct {
	auth       *service.AuthService
	cookieName string
	logger     *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, cookieName string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, cookieName: cookieName, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account and logs it straight in.
//
// POST /register
// Body: {"username": "...", "email": "...", "password": "..."}
// 201: {"user": {...}, "token": "..."} plus the session cookie.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Session.ID, result.Session.ExpiresAt)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  result.User,
		"token": result.Token,
	})
}

// HandleLogin verifies credentials and starts a session.
//
// POST /login
// Body: {"email": "...", "password": "..."}
// 200: the user record, plus the session cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID, session.ExpiresAt)
	writeJSON(w, http.StatusOK, user)
}

// HandleLogout revokes the current session and clears the cookie.
//
// DELETE /logout → 204. Runs behind the session middleware, so the cookie
// is known to be present and valid here.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			writeError(w, err)
			return
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCheckSession returns the logged-in user.
//
// GET /check-session → 200 with the user record. The middleware already
// validated the session; a lookup failure here means the account vanished
// mid-session, which reads as unauthorized, not as a server fault.
func (h *AuthHandler) HandleCheckSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("you need to log in first"))
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, apperror.Unauthorized("you need to log in first"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleProfile returns the logged-in user's profile.
//
// GET /profile → 200 with the user record, 404 if the row is gone.
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("you need to log in first"))
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
