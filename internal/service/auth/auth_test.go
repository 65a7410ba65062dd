package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/models"
	"github.com/avolkov/taskmanager/internal/repository/postgres"
	"github.com/avolkov/taskmanager/internal/testutil"
)

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Begin new db transaction and create new AuthService
	// Rollback transaction when test stops
	withService := func(t *testing.T, fn func(s *AuthService)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s, err := NewService(Config{
				SecretKey:       "test-secret-key",
				AccessTokenTTL:  15 * time.Minute,
				RefreshTokenTTL: 24 * time.Hour,
			}, postgres.NewStorage(tx))
			require.NoError(t, err, "auth service couldn't be started")

			fn(s)
		})
	}

	t.Run("new service defaults", func(t *testing.T) {
		s, err := NewService(Config{SecretKey: "secret"}, postgres.NewStorage(pg.Pool))
		require.NoError(t, err, "auth service should be created without errors")
		require.Equal(t, BcryptHasher{}, s.hasher, "default hasher should be set to BcryptHasher")
	})

	t.Run("new service requires storage", func(t *testing.T) {
		_, err := NewService(Config{SecretKey: "secret"}, nil)
		require.Error(t, err)
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("new user ok", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				user, pair, err := s.Register(t.Context(), "a@x.com", "password")

				require.NoError(t, err, "registering new user should be ok")
				assert.Equal(t, "a@x.com", user.Email)
				assert.NotEmpty(t, pair.Access.Value, "access token should not be empty")
				assert.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")
				assert.NotEqual(t, "password", user.HashedPassword, "password must never be stored in plaintext")
			})
		})

		t.Run("email is normalized", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				user, _, err := s.Register(t.Context(), "  A@X.Com ", "password")

				require.NoError(t, err)
				assert.Equal(t, "a@x.com", user.Email, "email should be lowercased and trimmed")
			})
		})

		t.Run("fail if email taken", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, _, err := s.Register(t.Context(), "a@x.com", "password")
				require.NoError(t, err)

				_, _, err = s.Register(t.Context(), "A@x.com", "other-password")

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})

		t.Run("session exists before access token is usable", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				user, pair, err := s.Register(t.Context(), "a@x.com", "password")
				require.NoError(t, err)

				// The refresh token of the pair must already be a stored session
				_, session, err := s.sessions.Validate(t.Context(), user.ID, pair.Refresh.Value)
				require.NoError(t, err, "refresh token must name a stored session right after registration")
				assert.WithinDuration(t, pair.Refresh.ExpiresAt, session.ExpiresAt, time.Second)
			})
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("existing user ok", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, _, err := s.Register(t.Context(), "a@x.com", "password")
				require.NoError(t, err)

				user, pair, err := s.Login(t.Context(), "a@x.com", "password")

				require.NoError(t, err)
				assert.Equal(t, "a@x.com", user.Email)
				assert.NotEmpty(t, pair.Access.Value, "access token should not be empty")
				assert.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")
			})
		})

		t.Run("two logins two live sessions", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				user, _, err := s.Register(t.Context(), "a@x.com", "password")
				require.NoError(t, err)

				_, pair1, err := s.Login(t.Context(), "a@x.com", "password")
				require.NoError(t, err)
				_, pair2, err := s.Login(t.Context(), "a@x.com", "password")
				require.NoError(t, err)

				require.NotEqual(t, pair1.Refresh.Value, pair2.Refresh.Value)

				_, _, err = s.sessions.Validate(t.Context(), user.ID, pair1.Refresh.Value)
				assert.NoError(t, err, "first login session should stay valid")
				_, _, err = s.sessions.Validate(t.Context(), user.ID, pair2.Refresh.Value)
				assert.NoError(t, err, "second login session should stay valid")
			})
		})

		tests := []struct {
			name     string
			email    string
			password string
		}{
			{
				name:     "fail if wrong password",
				email:    "a@x.com",
				password: "wrong",
			},
			{
				name:     "fail if user not exists",
				email:    "nobody@x.com",
				password: "password",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				withService(t, func(s *AuthService) {
					_, _, err := s.Register(t.Context(), "a@x.com", "password")
					require.NoError(t, err)

					_, _, err = s.Login(t.Context(), tt.email, tt.password)

					// Both failures are deliberately the same error
					require.Error(t, err)
					require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
				})
			})
		}
	})

	t.Run("AuthenticateAccess", func(t *testing.T) {
		t.Run("round trip through headers", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				user, pair, err := s.Register(t.Context(), "a@x.com", "password")
				require.NoError(t, err)

				r := httptest.NewRequest(http.MethodGet, "/lists", nil)
				r.Header.Set(AccessTokenHeader, pair.Access.Value)

				userID, err := s.AuthenticateAccess(r)
				require.NoError(t, err)
				assert.Equal(t, user.ID, userID)
			})
		})

		t.Run("missing header", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				r := httptest.NewRequest(http.MethodGet, "/lists", nil)

				_, err := s.AuthenticateAccess(r)
				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrAccessTokenInvalid)
			})
		})
	})

	t.Run("AuthenticateSession", func(t *testing.T) {
		t.Run("round trip through headers", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				user, pair, err := s.Register(t.Context(), "a@x.com", "password")
				require.NoError(t, err)

				r := httptest.NewRequest(http.MethodGet, "/users/me/access-token", nil)
				r.Header.Set(RefreshTokenHeader, pair.Refresh.Value)
				r.Header.Set(UserIDHeader, user.ID.String())

				gotUser, gotSession, err := s.AuthenticateSession(t.Context(), r)
				require.NoError(t, err)
				assert.Equal(t, user.ID, gotUser.ID)
				assert.Equal(t, pair.Refresh.Value, gotSession.Token)
			})
		})

		t.Run("bad user id header", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, pair, err := s.Register(t.Context(), "a@x.com", "password")
				require.NoError(t, err)

				r := httptest.NewRequest(http.MethodGet, "/users/me/access-token", nil)
				r.Header.Set(RefreshTokenHeader, pair.Refresh.Value)
				r.Header.Set(UserIDHeader, "not-an-id")

				_, _, err = s.AuthenticateSession(t.Context(), r)
				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})

		t.Run("foreign refresh token", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, alicePair, err := s.Register(t.Context(), "alice@x.com", "password")
				require.NoError(t, err)
				bob, _, err := s.Register(t.Context(), "bob@x.com", "password")
				require.NoError(t, err)

				// Bob presenting Alice's refresh token must not pass
				r := httptest.NewRequest(http.MethodGet, "/users/me/access-token", nil)
				r.Header.Set(RefreshTokenHeader, alicePair.Refresh.Value)
				r.Header.Set(UserIDHeader, bob.ID.String())

				_, _, err = s.AuthenticateSession(t.Context(), r)
				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
			})
		})
	})

	t.Run("MintAccess", func(t *testing.T) {
		withService(t, func(s *AuthService) {
			userID := uuid.New()

			access, err := s.MintAccess(userID)
			require.NoError(t, err)

			r := httptest.NewRequest(http.MethodGet, "/lists", nil)
			r.Header.Set(AccessTokenHeader, access.Value)

			got, err := s.AuthenticateAccess(r)
			require.NoError(t, err)
			assert.Equal(t, userID, got)
		})
	})

	t.Run("SetTokenPair", func(t *testing.T) {
		withService(t, func(s *AuthService) {
			w := httptest.NewRecorder()

			s.SetTokenPair(w, models.TokenPair{
				Access:  models.IssuedToken{Value: "access-value"},
				Refresh: models.IssuedToken{Value: "refresh-value"},
			})

			assert.Equal(t, "access-value", w.Header().Get(AccessTokenHeader))
			assert.Equal(t, "refresh-value", w.Header().Get(RefreshTokenHeader))
		})
	})
}
