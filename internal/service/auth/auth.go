package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/models"
	"github.com/avolkov/taskmanager/internal/repository"
	"github.com/avolkov/taskmanager/internal/service/auth/tokenmanager"
)

// Header names are a compatibility contract with existing clients.
// The refresh token is not self-describing, so session requests carry
// the subject user id in its own header.
const (
	AccessTokenHeader  = "x-access-token"
	RefreshTokenHeader = "x-refresh-token"
	UserIDHeader       = "_id"
)

// Well-formed bcrypt hash that matches no password. Login burns a
// compare against it when the user is unknown, so unknown email and
// wrong password cost the same.
const fakePasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Secret key to sign access token payloads
	SecretKey string

	// Hasher to use during registration or login
	// BcryptHasher is used when not set
	Hasher PasswordHasher

	// Access and refresh token lifetimes
	// Zero values fall back to the defaults (15m and 30 days)
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Auth service: orchestrates registration, login and token refresh
type AuthService struct {
	// Stateless access token mint and verify
	tokens *tokenmanager.TokenManager

	// Store backed refresh sessions
	sessions *SessionManager

	// Hasher to hash or compare user passwords
	hasher PasswordHasher

	// Repository to access long term data
	storage repository.Storage
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	tokens, err := tokenmanager.New(tokenmanager.Config{
		SecretKey: cfg.SecretKey,
		AccessTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		return nil, err
	}

	sessions, err := NewSessionManager(cfg.RefreshTokenTTL, tokens, storage)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		tokens:   tokens,
		sessions: sessions,
		hasher:   hasher,
		storage:  storage,
	}, nil
}

// Register creates a user and logs it in
// Has to return apperrors.ErrUserAlreadyExists if the email is taken
func (s *AuthService) Register(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	email = normalizeEmail(email)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, email, hash)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// Login authenticates by email and password
// Unknown email and wrong password are both apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	email = normalizeEmail(email)

	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			_ = s.hasher.Compare(fakePasswordHash, password)
			return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
		}
		return models.User{}, models.TokenPair{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// MintAccess issues a fresh access token for an already validated user
func (s *AuthService) MintAccess(userID uuid.UUID) (models.IssuedToken, error) {
	return s.tokens.MintAccess(userID)
}

// GetUser loads the user record by id
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

// AuthenticateAccess verifies the access token of the request
// Pure check, no store access
func (s *AuthService) AuthenticateAccess(r *http.Request) (uuid.UUID, error) {
	access := r.Header.Get(AccessTokenHeader)
	if access == "" {
		return uuid.Nil, fmt.Errorf("missing %s header: %w", AccessTokenHeader, apperrors.ErrAccessTokenInvalid)
	}

	return s.tokens.ParseAccess(access)
}

// AuthenticateSession validates the refresh token session of the request
// Returns the full user record so handlers can mint a fresh access
// token without a second store round trip
func (s *AuthService) AuthenticateSession(ctx context.Context, r *http.Request) (models.User, models.Session, error) {
	refresh := r.Header.Get(RefreshTokenHeader)
	if refresh == "" {
		return models.User{}, models.Session{}, fmt.Errorf("missing %s header: %w", RefreshTokenHeader, apperrors.ErrSessionNotFound)
	}

	userID, err := uuid.Parse(r.Header.Get(UserIDHeader))
	if err != nil {
		return models.User{}, models.Session{}, fmt.Errorf("bad %s header: %w", UserIDHeader, apperrors.ErrUserNotFound)
	}

	return s.sessions.Validate(ctx, userID, refresh)
}

// SetTokenPair writes both tokens to the response headers
func (s *AuthService) SetTokenPair(w http.ResponseWriter, pair models.TokenPair) {
	w.Header().Set(AccessTokenHeader, pair.Access.Value)
	w.Header().Set(RefreshTokenHeader, pair.Refresh.Value)
}

// SetAccessToken writes a fresh access token to the response headers
func (s *AuthService) SetAccessToken(w http.ResponseWriter, access models.IssuedToken) {
	w.Header().Set(AccessTokenHeader, access.Value)
}

// issuePair creates a session first and mints the access token after.
// A failure at either step aborts the flow: the client never receives
// an access token without a stored session behind the refresh token.
func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	access, err := s.tokens.MintAccess(user.ID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return models.TokenPair{
		Access:  access,
		Refresh: models.IssuedToken{Value: session.Token, ExpiresAt: session.ExpiresAt},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
