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
)

type listResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func toListResponse(l models.List) listResponse {
	return listResponse{ID: l.ID, Title: l.Title, CreatedAt: l.CreatedAt}
}

func handleListLists(tasks taskListService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		lists, err := tasks.Lists(r.Context(), userID)
		if err != nil {
			l.Error("can't list lists", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]listResponse, 0, len(lists))
		for _, list := range lists {
			response = append(response, toListResponse(list))
		}
		render.JSON(w, response)
	})
}

func handleCreateList(tasks taskListService, l logger.Logger) http.Handler {
	type request struct {
		Title string `json:"title" validate:"required,max=200"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		list, err := tasks.CreateList(r.Context(), userID, data.Title)
		if err != nil {
			l.Error("can't create list", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, toListResponse(list))
	})
}

func handleRenameList(tasks taskListService, l logger.Logger) http.Handler {
	type request struct {
		Title string `json:"title" validate:"required,max=200"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		listID, err := uuid.Parse(r.PathValue("listID"))
		if err != nil {
			render.ServiceError(w, "List not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		list, err := tasks.RenameList(r.Context(), userID, listID, data.Title)
		if err != nil {
			renderListError(w, l, err)
			return
		}

		render.JSON(w, toListResponse(list))
	})
}

func handleDeleteList(tasks taskListService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		listID, err := uuid.Parse(r.PathValue("listID"))
		if err != nil {
			render.ServiceError(w, "List not found", http.StatusNotFound)
			return
		}

		list, err := tasks.DeleteList(r.Context(), userID, listID)
		if err != nil {
			renderListError(w, l, err)
			return
		}

		render.JSON(w, toListResponse(list))
	})
}

// renderListError maps service errors of list operations to responses.
// A list owned by someone else reads as not found, never as forbidden.
func renderListError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrListNotFound):
		render.ServiceError(w, "List not found", http.StatusNotFound)
	default:
		l.Error("list operation failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
