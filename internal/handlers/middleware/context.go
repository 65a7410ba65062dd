package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/taskmanager/internal/models"
)

type ctxKey string

const (
	userIDKey  ctxKey = "userID"
	userKey    ctxKey = "user"
	sessionKey ctxKey = "session"
)

// Access gate puts only the token subject in the context:
// verification is stateless and loads no user record.
func NewContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// Session gate exposes the full user record and the session, so the
// handler can mint a fresh access token without another store lookup.
func NewContextWithSession(ctx context.Context, u models.User, s models.Session) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, sessionKey, s)
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

func SessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok
}
