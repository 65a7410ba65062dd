package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/models"
)

type ListRepo struct {
	DB DBTX
}

const createList = `-- name: CreateList
INSERT INTO lists (user_id, title)
VALUES ($1, $2)
RETURNING id, user_id, created_at, title
`

func (r *ListRepo) Create(ctx context.Context, userID uuid.UUID, title string) (models.List, error) {
	rows, _ := r.DB.Query(ctx, createList, userID, title)
	list, err := pgx.CollectOneRow(rows, rowToList)
	if err != nil {
		return list, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

const listListsForUser = `-- name: ListListsForUser
SELECT id, user_id, created_at, title FROM lists
WHERE user_id = $1
ORDER BY created_at
`

func (r *ListRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.List, error) {
	rows, _ := r.DB.Query(ctx, listListsForUser, userID)
	lists, err := pgx.CollectRows(rows, rowToList)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return lists, nil
}

const getList = `-- name: GetList
SELECT id, user_id, created_at, title FROM lists
WHERE user_id = $1 AND id = $2
`

func (r *ListRepo) Get(ctx context.Context, userID uuid.UUID, listID uuid.UUID) (models.List, error) {
	rows, _ := r.DB.Query(ctx, getList, userID, listID)
	list, err := pgx.CollectOneRow(rows, rowToList)

	switch {
	case err == nil:
		return list, nil
	case errors.Is(err, pgx.ErrNoRows):
		return list, fmt.Errorf("repo error: %w", apperrors.ErrListNotFound)
	default:
		return list, fmt.Errorf("db error: %w", err)
	}
}

const updateListTitle = `-- name: UpdateListTitle
UPDATE lists
SET title = $3
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, created_at, title
`

func (r *ListRepo) UpdateTitle(ctx context.Context, userID uuid.UUID, listID uuid.UUID, title string) (models.List, error) {
	rows, _ := r.DB.Query(ctx, updateListTitle, userID, listID, title)
	list, err := pgx.CollectOneRow(rows, rowToList)

	switch {
	case err == nil:
		return list, nil
	case errors.Is(err, pgx.ErrNoRows):
		return list, fmt.Errorf("repo error: %w", apperrors.ErrListNotFound)
	default:
		return list, fmt.Errorf("db error: %w", err)
	}
}

const deleteList = `-- name: DeleteList
DELETE FROM lists
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, created_at, title
`

func (r *ListRepo) Delete(ctx context.Context, userID uuid.UUID, listID uuid.UUID) (models.List, error) {
	rows, _ := r.DB.Query(ctx, deleteList, userID, listID)
	list, err := pgx.CollectOneRow(rows, rowToList)

	switch {
	case err == nil:
		return list, nil
	case errors.Is(err, pgx.ErrNoRows):
		return list, fmt.Errorf("repo error: %w", apperrors.ErrListNotFound)
	default:
		return list, fmt.Errorf("db error: %w", err)
	}
}

func rowToList(row pgx.CollectableRow) (models.List, error) {
	var l models.List
	err := row.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Title)
	return l, err
}
