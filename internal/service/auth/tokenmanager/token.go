// Package tokenmanager is the stateless half of authentication: it
// mints and verifies signed access tokens without any store access and
// generates opaque refresh token strings. Whether a refresh token is
// valid is not its business, that lives in the session manager.
package tokenmanager

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/models"
)

const (
	defaultAccessTokenTTL = 15 * time.Minute
	defaultSigningMethod  = "HS256"

	// 16 random bytes = 128 bits of entropy, enough to be unguessable
	refreshTokenBytesLen = 16
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

// Token manager config with sensible defaults
type Config struct {
	// Secret key to sign access token
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access token lifetime
	// If not set then default is used
	AccessTTL time.Duration
}

type TokenManager struct {
	// Secret key to sign access token
	key string

	// JWT MAC algorithm
	alg jwt.SigningMethod

	// Access token lifetime
	accessTTL time.Duration

	// Clock, replaceable in tests
	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}

	return &TokenManager{
		key:       cfg.SecretKey,
		alg:       jwt.GetSigningMethod(cfg.Alg),
		accessTTL: cfg.AccessTTL,
		now:       time.Now,
	}, nil
}

// MintAccess generates a signed access token for the user
// Expiry is embedded in the token, no state is kept anywhere
func (m *TokenManager) MintAccess(userID uuid.UUID) (models.IssuedToken, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
		},
	)

	access, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: access, ExpiresAt: expiresAt}, nil
}

// ParseAccess verifies signature and expiry and returns the subject user id
// Pure check: no store lookup, which is the whole point of access tokens
func (m *TokenManager) ParseAccess(access string) (uuid.UUID, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	switch {
	case err == nil:
		return claims.UserID, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return uuid.Nil, fmt.Errorf("%w: %w", apperrors.ErrAccessTokenExpired, err)
	default:
		// Bad signature, malformed and everything else collapse to invalid
		return uuid.Nil, fmt.Errorf("%w: %w", apperrors.ErrAccessTokenInvalid, err)
	}
}

// NewRefresh generates an opaque random refresh token string
// It carries no claims: validity is decided by session lookup only
func (m *TokenManager) NewRefresh() (string, error) {
	b := make([]byte, refreshTokenBytesLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("error while generating refresh token. Err: %w", err)
	}

	return hex.EncodeToString(b), nil
}
