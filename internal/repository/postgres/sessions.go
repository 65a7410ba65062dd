package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/models"
)

type SessionRepo struct {
	DB DBTX
}

const createSession = `-- name: CreateSession
INSERT INTO sessions (token, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4)
RETURNING token, user_id, created_at, expires_at
`

func (r *SessionRepo) Create(ctx context.Context, session models.Session) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, createSession, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt)
	created, err := pgx.CollectOneRow(rows, rowToSession)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			// Token values are globally unique. A duplicate means the
			// generator collided, which must not be accepted silently.
			return created, fmt.Errorf("session token collision: %w", err)
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getSession = `-- name: GetSession
SELECT token, user_id, created_at, expires_at FROM sessions
WHERE user_id = $1 AND token = $2
`

// Get session by owner and token value
// Returns the session even if it expired: expiry is the caller's check
func (r *SessionRepo) Get(ctx context.Context, userID uuid.UUID, token string) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, getSession, userID, token)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrSessionNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const listSessionsForUser = `-- name: ListSessionsForUser
SELECT token, user_id, created_at, expires_at FROM sessions
WHERE user_id = $1
ORDER BY created_at
`

func (r *SessionRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	rows, _ := r.DB.Query(ctx, listSessionsForUser, userID)
	sessions, err := pgx.CollectRows(rows, rowToSession)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sessions, nil
}

const deleteExpiredSessions = `-- name: DeleteExpiredSessions
DELETE FROM sessions
WHERE user_id = $1 AND expires_at <= $2
`

func (r *SessionRepo) DeleteExpired(ctx context.Context, userID uuid.UUID, before time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpiredSessions, userID, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToSession(row pgx.CollectableRow) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}
