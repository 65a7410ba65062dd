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
)

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func handleSignup(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := auth.Register(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				l.Error("signup failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		auth.SetTokenPair(w, pair)
		render.JSON(w, userResponse{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
	})
}

func handleLogin(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := auth.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				// Unknown email and wrong password read exactly the same
				render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
			default:
				l.Error("login failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		auth.SetTokenPair(w, pair)
		render.JSON(w, userResponse{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
	})
}

// handleAccessToken mints a fresh access token for a session validated
// by the session middleware. The refresh token stays as it is: no
// rotation, no expiry extension.
func handleAccessToken(auth authService, l logger.Logger) http.Handler {
	type response struct {
		AccessToken string    `json:"access_token"`
		ExpiresAt   time.Time `json:"expires_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must always be ok: the session middleware either set the user
		// or already answered 401
		user, _ := middleware.UserFromContext(r.Context())

		access, err := auth.MintAccess(user.ID)
		if err != nil {
			l.Error("can't mint access token", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		auth.SetAccessToken(w, access)
		render.JSON(w, response{AccessToken: access.Value, ExpiresAt: access.ExpiresAt})
	})
}

func handleUserMe(auth authService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		user, err := auth.GetUser(r.Context(), userID)
		if err != nil {
			// The id came from a valid token, so the user should exist.
			// It may have been deleted after the token was minted.
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		render.JSON(w, userResponse{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
	})
}
