package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/handlers/middleware"
	"github.com/avolkov/taskmanager/internal/handlers/render"
	"github.com/avolkov/taskmanager/internal/logger"
	"github.com/avolkov/taskmanager/internal/models"
	"github.com/avolkov/taskmanager/internal/repository"
)

type taskResponse struct {
	ID        uuid.UUID `json:"id"`
	ListID    uuid.UUID `json:"list_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

func toTaskResponse(t models.Task) taskResponse {
	return taskResponse{ID: t.ID, ListID: t.ListID, Title: t.Title, Completed: t.Completed, CreatedAt: t.CreatedAt}
}

// taskIDs pulls list and (optionally) task ids out of the path.
// An unparseable id reads as not found: caller got the id from us, a
// mangled one cannot name anything.
func taskIDs(w http.ResponseWriter, r *http.Request, withTask bool) (listID uuid.UUID, taskID uuid.UUID, ok bool) {
	listID, err := uuid.Parse(r.PathValue("listID"))
	if err != nil {
		render.ServiceError(w, "List not found", http.StatusNotFound)
		return listID, taskID, false
	}

	if withTask {
		taskID, err = uuid.Parse(r.PathValue("taskID"))
		if err != nil {
			render.ServiceError(w, "Task not found", http.StatusNotFound)
			return listID, taskID, false
		}
	}

	return listID, taskID, true
}

func handleListTasks(tasks taskListService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		listID, _, ok := taskIDs(w, r, false)
		if !ok {
			return
		}

		items, err := tasks.Tasks(r.Context(), userID, listID)
		if err != nil {
			renderTaskError(w, l, err)
			return
		}

		response := make([]taskResponse, 0, len(items))
		for _, task := range items {
			response = append(response, toTaskResponse(task))
		}
		render.JSON(w, response)
	})
}

func handleCreateTask(tasks taskListService, l logger.Logger) http.Handler {
	type request struct {
		Title string `json:"title" validate:"required,max=200"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		listID, _, ok := taskIDs(w, r, false)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		task, err := tasks.CreateTask(r.Context(), userID, listID, data.Title)
		if err != nil {
			renderTaskError(w, l, err)
			return
		}

		render.JSON(w, toTaskResponse(task))
	})
}

func handleGetTask(tasks taskListService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		listID, taskID, ok := taskIDs(w, r, true)
		if !ok {
			return
		}

		task, err := tasks.Task(r.Context(), userID, listID, taskID)
		if err != nil {
			renderTaskError(w, l, err)
			return
		}

		render.JSON(w, toTaskResponse(task))
	})
}

func handleUpdateTask(tasks taskListService, l logger.Logger) http.Handler {
	type request struct {
		Title     *string `json:"title" validate:"omitempty,min=1,max=200"`
		Completed *bool   `json:"completed"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		listID, taskID, ok := taskIDs(w, r, true)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		task, err := tasks.UpdateTask(r.Context(), userID, listID, taskID, repository.UpdateTaskParams{
			Title:     data.Title,
			Completed: data.Completed,
		})
		if err != nil {
			renderTaskError(w, l, err)
			return
		}

		render.JSON(w, toTaskResponse(task))
	})
}

func handleDeleteTask(tasks taskListService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		listID, taskID, ok := taskIDs(w, r, true)
		if !ok {
			return
		}

		task, err := tasks.DeleteTask(r.Context(), userID, listID, taskID)
		if err != nil {
			renderTaskError(w, l, err)
			return
		}

		render.JSON(w, toTaskResponse(task))
	})
}

func renderTaskError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrListNotFound):
		render.ServiceError(w, "List not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrTaskNotFound):
		render.ServiceError(w, "Task not found", http.StatusNotFound)
	default:
		l.Error("task operation failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
