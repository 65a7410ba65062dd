package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/models"
	"github.com/avolkov/taskmanager/internal/testutil"
)

func Test_ListRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run test with ListRepo and a fresh owner in transaction
	withRepo := func(t *testing.T, testFunc func(r *ListRepo, user models.User)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			users := &UserRepo{DB: tx}
			user, err := users.CreateUser(t.Context(), "owner@example.com", "hashed")
			require.NoError(t, err)

			testFunc(&ListRepo{DB: tx}, user)
		})
	}

	t.Run("create list ok", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			list, err := r.Create(t.Context(), user.ID, "Groceries")

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, list.ID)
			assert.Equal(t, user.ID, list.UserID)
			assert.Equal(t, "Groceries", list.Title)
		})
	})

	t.Run("list for user ordered by creation", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			_, err := r.Create(t.Context(), user.ID, "First")
			require.NoError(t, err)
			_, err = r.Create(t.Context(), user.ID, "Second")
			require.NoError(t, err)

			lists, err := r.ListForUser(t.Context(), user.ID)

			require.NoError(t, err)
			require.Len(t, lists, 2)
			assert.Equal(t, "First", lists[0].Title)
			assert.Equal(t, "Second", lists[1].Title)
		})
	})

	t.Run("list for user empty", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			lists, err := r.ListForUser(t.Context(), user.ID)

			require.NoError(t, err)
			assert.Empty(t, lists)
		})
	})

	t.Run("get list", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			created, err := r.Create(t.Context(), user.ID, "Groceries")
			require.NoError(t, err)

			got, err := r.Get(t.Context(), user.ID, created.ID)

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Title, got.Title)
		})
	})

	t.Run("get list of another user not found", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			created, err := r.Create(t.Context(), user.ID, "Groceries")
			require.NoError(t, err)

			_, err = r.Get(t.Context(), uuid.New(), created.ID)

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrListNotFound)
		})
	})

	t.Run("update title", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			created, err := r.Create(t.Context(), user.ID, "Groceries")
			require.NoError(t, err)

			updated, err := r.UpdateTitle(t.Context(), user.ID, created.ID, "Errands")

			require.NoError(t, err)
			assert.Equal(t, created.ID, updated.ID)
			assert.Equal(t, "Errands", updated.Title)
		})
	})

	t.Run("update title not found", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			_, err := r.UpdateTitle(t.Context(), user.ID, uuid.New(), "Errands")

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrListNotFound)
		})
	})

	t.Run("delete list", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			created, err := r.Create(t.Context(), user.ID, "Groceries")
			require.NoError(t, err)

			deleted, err := r.Delete(t.Context(), user.ID, created.ID)

			require.NoError(t, err)
			assert.Equal(t, created.ID, deleted.ID)

			_, err = r.Get(t.Context(), user.ID, created.ID)
			require.ErrorIs(t, err, apperrors.ErrListNotFound)
		})
	})

	t.Run("delete list not found", func(t *testing.T) {
		withRepo(t, func(r *ListRepo, user models.User) {
			_, err := r.Delete(t.Context(), user.ID, uuid.New())

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrListNotFound)
		})
	})
}
