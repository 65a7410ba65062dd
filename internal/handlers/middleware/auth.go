package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/avolkov/taskmanager/internal/handlers/render"
	"github.com/avolkov/taskmanager/internal/models"
)

type logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type accessAuthenticator interface {
	AuthenticateAccess(r *http.Request) (uuid.UUID, error)
}

type sessionAuthenticator interface {
	AuthenticateSession(ctx context.Context, r *http.Request) (models.User, models.Session, error)
}

// AccessAuth gates a handler behind a valid access token.
// Any failure collapses to one generic 401: which check failed is for
// the logs only, never for the caller.
func AccessAuth(a accessAuthenticator, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.AuthenticateAccess(r)
			if err != nil {
				l.Debug("access token rejected", "error", err.Error())
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := NewContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionAuth gates a handler behind a valid refresh token session
func SessionAuth(a sessionAuthenticator, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, session, err := a.AuthenticateSession(r.Context(), r)
			if err != nil {
				l.Debug("session rejected", "error", err.Error())
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := NewContextWithSession(r.Context(), user, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
