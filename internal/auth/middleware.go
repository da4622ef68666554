package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the userID value.
type contextKey string

const userIDKey contextKey = "userID"

// SessionValidator resolves a session cookie value to a user ID. Implemented
// by the service layer on top of the sessions table; the middleware only
// needs this one method.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (string, error)
}

// RequireSession enforces authentication on protected routes.
//
// It reads the session cookie, resolves it to a user through the validator,
// and stores the userID in the request context. Requests with a missing,
// expired, or revoked session get 401 and never reach the handler.
func RequireSession(cookieName string, sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			userID, err := sessions.ValidateSession(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"you need to log in first"}`))
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) on routes not behind RequireSession.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// ContextWithUserID returns a context carrying the given user ID. Used by
// tests to call handlers without running the middleware.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
