package tokenmanager

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/taskmanager/internal/apperrors"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUserID := uuid.New()

	// newManager returns a manager with a controllable clock
	newManager := func(t *testing.T, accessTTL time.Duration, at time.Time) *TokenManager {
		m, err := New(Config{SecretKey: "test-secret-key", AccessTTL: accessTTL})
		require.NoError(t, err, "token manager should be created without errors")

		m.now = func() time.Time { return at }
		return m
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, "secret", m.key, "secret key should be set")
		require.Equal(t, defaultAccessTokenTTL, m.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
	})

	t.Run("new fails without secret", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("MintAccess", func(t *testing.T) {
		t.Run("access claims", func(t *testing.T) {
			issuedAt := mustParseTime("2024-01-01 19:00:01Z")
			m := newManager(t, 15*time.Minute, issuedAt)

			issued, err := m.MintAccess(testUserID)
			require.NoError(t, err)

			// Parse and verify the access token
			token, err := jwt.ParseWithClaims(issued.Value, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
				return []byte("test-secret-key"), nil
			}, jwt.WithTimeFunc(func() time.Time { return issuedAt }))
			require.NoError(t, err)
			require.True(t, token.Valid, "access token should be valid")

			claims, ok := token.Claims.(*AccessTokenClaims)
			require.True(t, ok, "claims should be of type AccessTokenClaims")
			assert.Equal(t, testUserID, claims.UserID, "user ID in token should match")
			assert.NotEmpty(t, claims.ID, "token has to has jti")
			assert.Equal(t, issuedAt, claims.IssuedAt.Time, "issued at should be the mint time")
			assert.Equal(t, issuedAt.Add(15*time.Minute), claims.ExpiresAt.Time, "expires at should be 15 minutes after mint")
			assert.Equal(t, issued.ExpiresAt, claims.ExpiresAt.Time, "issued token expiry should match the claims")
		})

		t.Run("generate different tokens", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, mustParseTime("2024-01-01 19:00:01Z"))

			first, err := m.MintAccess(testUserID)
			require.NoError(t, err)
			second, err := m.MintAccess(testUserID)
			require.NoError(t, err)

			assert.NotEqual(t, first.Value, second.Value, "every minted token carries a fresh jti")
		})
	})

	t.Run("ParseAccess", func(t *testing.T) {
		t.Run("valid token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, mustParseTime("2024-01-01 19:00:01Z"))

			issued, err := m.MintAccess(testUserID)
			require.NoError(t, err)

			userID, err := m.ParseAccess(issued.Value)
			require.NoError(t, err, "valid token should be parsed without errors")
			require.Equal(t, testUserID, userID)
		})

		t.Run("valid until just before expiry", func(t *testing.T) {
			issuedAt := mustParseTime("2024-01-01 19:00:01Z")
			m := newManager(t, 15*time.Minute, issuedAt)

			issued, err := m.MintAccess(testUserID)
			require.NoError(t, err)

			m.now = func() time.Time { return issuedAt.Add(15*time.Minute - time.Second) }

			userID, err := m.ParseAccess(issued.Value)
			require.NoError(t, err, "token should be valid inside its lifetime")
			require.Equal(t, testUserID, userID)
		})

		t.Run("expired token", func(t *testing.T) {
			issuedAt := mustParseTime("2024-01-01 19:00:01Z")
			m := newManager(t, 15*time.Minute, issuedAt)

			issued, err := m.MintAccess(testUserID)
			require.NoError(t, err)

			m.now = func() time.Time { return issuedAt.Add(15*time.Minute + time.Second) }

			_, err = m.ParseAccess(issued.Value)
			require.Error(t, err, "token has to become expired")
			require.ErrorIs(t, err, apperrors.ErrAccessTokenExpired)
		})

		t.Run("not a token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, mustParseTime("2024-01-01 19:00:01Z"))

			_, err := m.ParseAccess("invalid token")
			require.Error(t, err, "parsing even not a token should return an error")
			require.ErrorIs(t, err, apperrors.ErrAccessTokenInvalid)
		})

		t.Run("tampered token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, mustParseTime("2024-01-01 19:00:01Z"))

			issued, err := m.MintAccess(testUserID)
			require.NoError(t, err)

			// Flip the last byte of the signature
			tampered := []byte(issued.Value)
			last := len(tampered) - 1
			if tampered[last] == 'A' {
				tampered[last] = 'B'
			} else {
				tampered[last] = 'A'
			}

			_, err = m.ParseAccess(string(tampered))
			require.Error(t, err, "tampered token must never verify")
			require.ErrorIs(t, err, apperrors.ErrAccessTokenInvalid)
		})

		t.Run("wrong key", func(t *testing.T) {
			issuedAt := mustParseTime("2024-01-01 19:00:01Z")
			m := newManager(t, 15*time.Minute, issuedAt)

			issued, err := m.MintAccess(testUserID)
			require.NoError(t, err)

			other, err := New(Config{SecretKey: "other-secret-key"})
			require.NoError(t, err)
			other.now = func() time.Time { return issuedAt }

			_, err = other.ParseAccess(issued.Value)
			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrAccessTokenInvalid)
		})

		t.Run("not signed token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, mustParseTime("2024-01-01 19:00:01Z"))

			// Create valid but unsigned token
			token := jwt.NewWithClaims(
				jwt.SigningMethodNone,
				AccessTokenClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						ID:        uuid.NewString(),
						IssuedAt:  jwt.NewNumericDate(time.Now()),
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
					},
					UserID: testUserID,
				},
			)
			access, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)

			_, err = m.ParseAccess(access)
			require.Error(t, err, "valid token with empty alg must fail")
			require.ErrorIs(t, err, apperrors.ErrAccessTokenInvalid)
		})
	})

	t.Run("NewRefresh", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, mustParseTime("2024-01-01 19:00:01Z"))

		first, err := m.NewRefresh()
		require.NoError(t, err)
		second, err := m.NewRefresh()
		require.NoError(t, err)

		assert.Len(t, first, refreshTokenBytesLen*2, "refresh token is hex encoded")
		_, err = hex.DecodeString(first)
		assert.NoError(t, err, "refresh token should be valid hex")
		assert.NotEqual(t, first, second, "refresh tokens should be different")
	})
}
