package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrAccessTokenInvalid = errors.New("access token is invalid")
	ErrAccessTokenExpired = errors.New("access token is expired")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session is expired")

	ErrListNotFound = errors.New("list not found")
	ErrTaskNotFound = errors.New("task not found")
)
