package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/models"
	"github.com/avolkov/taskmanager/internal/repository"
	"github.com/avolkov/taskmanager/internal/service/auth/tokenmanager"
)

const defaultRefreshTokenTTL = 30 * 24 * time.Hour

// SessionManager owns the per-user set of active sessions
type SessionManager struct {
	// Refresh token (and so session) lifetime
	refreshTTL time.Duration

	// Stateless generator of opaque refresh token strings
	tokens *tokenmanager.TokenManager

	// Repository to persist sessions and load users
	storage repository.Storage

	// Clock, replaceable in tests
	now func() time.Time
}

func NewSessionManager(refreshTTL time.Duration, tokens *tokenmanager.TokenManager, storage repository.Storage) (*SessionManager, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	if refreshTTL == 0 {
		refreshTTL = defaultRefreshTokenTTL
	}

	return &SessionManager{
		refreshTTL: refreshTTL,
		tokens:     tokens,
		storage:    storage,
		now:        time.Now,
	}, nil
}

// Create mints a refresh token and appends a new session to the user.
// Appending never touches other sessions, so concurrent logins for the
// same user are safe. Expired sessions of the owner are pruned on the
// way, purely as hygiene.
func (m *SessionManager) Create(ctx context.Context, user models.User) (models.Session, error) {
	now := m.now().Truncate(time.Second)

	if _, err := m.storage.Session().DeleteExpired(ctx, user.ID, now); err != nil {
		return models.Session{}, fmt.Errorf("error while pruning expired sessions. Err: %w", err)
	}

	token, err := m.tokens.NewRefresh()
	if err != nil {
		return models.Session{}, err
	}

	session, err := m.storage.Session().Create(ctx, models.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.refreshTTL),
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("error while saving session. Err: %w", err)
	}

	return session, nil
}

// Validate checks that the refresh token names a live session of the user.
// Expiry is inclusive: now >= expiresAt means expired.
// Validation never extends expiry and never rotates the token.
func (m *SessionManager) Validate(ctx context.Context, userID uuid.UUID, refreshToken string) (models.User, models.Session, error) {
	user, err := m.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, models.Session{}, err
	}

	session, err := m.storage.Session().Get(ctx, userID, refreshToken)
	if err != nil {
		return models.User{}, models.Session{}, err
	}

	if !m.now().Before(session.ExpiresAt) {
		return models.User{}, models.Session{}, fmt.Errorf("session validation: %w", apperrors.ErrSessionExpired)
	}

	return user, session, nil
}
