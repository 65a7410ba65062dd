package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/taskmanager/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the same email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, hashedPassword string) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Session repository interface
//
// A session is appended with a single targeted insert, so concurrent
// logins for the same user never clobber each other: the store
// serializes writes, the application never does read-modify-write.
type SessionRepo interface {
	// Create session
	// Token value is unique across all sessions in the system.
	// A collision is a generation failure and must surface as an error.
	Create(ctx context.Context, session models.Session) (models.Session, error)

	// Get session of the user by its token value
	// If no such session must return apperrors.ErrSessionNotFound
	Get(ctx context.Context, userID uuid.UUID, token string) (models.Session, error)

	// List all sessions of the user, expired included
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error)

	// Delete user sessions that expired before the given time
	// Hygiene only: validation never depends on pruning
	DeleteExpired(ctx context.Context, userID uuid.UUID, before time.Time) (int64, error)
}

// List repository interface
// Every operation is filtered by the owning user
type ListRepo interface {
	Create(ctx context.Context, userID uuid.UUID, title string) (models.List, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.List, error)

	// Get, UpdateTitle and Delete must return apperrors.ErrListNotFound
	// when no list matches both id and owner
	Get(ctx context.Context, userID uuid.UUID, listID uuid.UUID) (models.List, error)
	UpdateTitle(ctx context.Context, userID uuid.UUID, listID uuid.UUID, title string) (models.List, error)
	Delete(ctx context.Context, userID uuid.UUID, listID uuid.UUID) (models.List, error)
}

// Fields to change on a task. Nil fields are left untouched.
type UpdateTaskParams struct {
	Title     *string
	Completed *bool
}

// Task repository interface
// Ownership is checked one level up against the task's list
type TaskRepo interface {
	Create(ctx context.Context, listID uuid.UUID, title string) (models.Task, error)
	ListForList(ctx context.Context, listID uuid.UUID) ([]models.Task, error)

	// Get, Update and Delete must return apperrors.ErrTaskNotFound
	// when no task matches both id and list
	Get(ctx context.Context, listID uuid.UUID, taskID uuid.UUID) (models.Task, error)
	Update(ctx context.Context, listID uuid.UUID, taskID uuid.UUID, params UpdateTaskParams) (models.Task, error)
	Delete(ctx context.Context, listID uuid.UUID, taskID uuid.UUID) (models.Task, error)

	// Delete every task of the list, return the number of deleted rows
	DeleteForList(ctx context.Context, listID uuid.UUID) (int64, error)
}

// Storage aggregates all repositories over one connection source
type Storage interface {
	User() UserRepo
	Session() SessionRepo
	List() ListRepo
	Task() TaskRepo

	// InTx runs fn with a Storage bound to a single transaction.
	// Rolls back if fn returns an error, commits otherwise.
	InTx(ctx context.Context, fn func(Storage) error) error
}
