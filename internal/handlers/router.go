package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avolkov/taskmanager/internal/handlers/middleware"
	"github.com/avolkov/taskmanager/internal/logger"
	"github.com/avolkov/taskmanager/internal/models"
	"github.com/avolkov/taskmanager/internal/repository"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	taskListService taskListService,
	l logger.Logger,
) http.Handler {
	withAccess := middleware.AccessAuth(authService, l)
	withSession := middleware.SessionAuth(authService, l)

	mux := http.NewServeMux()

	mux.Handle("POST /users", handleSignup(authService, l))
	mux.Handle("POST /users/login", handleLogin(authService, l))
	mux.Handle("GET /users/me/access-token", withSession(handleAccessToken(authService, l)))
	mux.Handle("GET /users/me", withAccess(handleUserMe(authService)))

	mux.Handle("GET /lists", withAccess(handleListLists(taskListService, l)))
	mux.Handle("POST /lists", withAccess(handleCreateList(taskListService, l)))
	mux.Handle("PATCH /lists/{listID}", withAccess(handleRenameList(taskListService, l)))
	mux.Handle("DELETE /lists/{listID}", withAccess(handleDeleteList(taskListService, l)))

	mux.Handle("GET /lists/{listID}/tasks", withAccess(handleListTasks(taskListService, l)))
	mux.Handle("POST /lists/{listID}/tasks", withAccess(handleCreateTask(taskListService, l)))
	mux.Handle("GET /lists/{listID}/tasks/{taskID}", withAccess(handleGetTask(taskListService, l)))
	mux.Handle("PATCH /lists/{listID}/tasks/{taskID}", withAccess(handleUpdateTask(taskListService, l)))
	mux.Handle("DELETE /lists/{listID}/tasks/{taskID}", withAccess(handleDeleteTask(taskListService, l)))

	mux.Handle("GET /metrics", promhttp.Handler())

	return chain(mux,
		middleware.LoggerMiddleware(l),
		middleware.MetricsMiddleware(),
	)
}

type authService interface {
	// Register user with email and password
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrInvalidCredentials on any credential failure
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Mint a fresh access token for an already validated user
	MintAccess(userID uuid.UUID) (models.IssuedToken, error)

	// Load the user record by id
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)

	// Gate checks consumed by the auth middleware
	AuthenticateAccess(r *http.Request) (uuid.UUID, error)
	AuthenticateSession(ctx context.Context, r *http.Request) (models.User, models.Session, error)

	// Set auth tokens to response headers
	SetTokenPair(w http.ResponseWriter, pair models.TokenPair)
	SetAccessToken(w http.ResponseWriter, access models.IssuedToken)
}

type taskListService interface {
	CreateList(ctx context.Context, userID uuid.UUID, title string) (models.List, error)
	Lists(ctx context.Context, userID uuid.UUID) ([]models.List, error)
	RenameList(ctx context.Context, userID uuid.UUID, listID uuid.UUID, title string) (models.List, error)
	DeleteList(ctx context.Context, userID uuid.UUID, listID uuid.UUID) (models.List, error)

	CreateTask(ctx context.Context, userID uuid.UUID, listID uuid.UUID, title string) (models.Task, error)
	Tasks(ctx context.Context, userID uuid.UUID, listID uuid.UUID) ([]models.Task, error)
	Task(ctx context.Context, userID uuid.UUID, listID uuid.UUID, taskID uuid.UUID) (models.Task, error)
	UpdateTask(ctx context.Context, userID uuid.UUID, listID uuid.UUID, taskID uuid.UUID, params repository.UpdateTaskParams) (models.Task, error)
	DeleteTask(ctx context.Context, userID uuid.UUID, listID uuid.UUID, taskID uuid.UUID) (models.Task, error)
}
