package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avolkov/taskmanager/internal/apperrors"
	"github.com/avolkov/taskmanager/internal/models"
	"github.com/avolkov/taskmanager/internal/repository"
)

type TaskRepo struct {
	DB DBTX
}

const createTask = `-- name: CreateTask
INSERT INTO tasks (list_id, title)
VALUES ($1, $2)
RETURNING id, list_id, created_at, title, completed
`

func (r *TaskRepo) Create(ctx context.Context, listID uuid.UUID, title string) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, createTask, listID, title)
	task, err := pgx.CollectOneRow(rows, rowToTask)
	if err != nil {
		return task, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

const listTasksForList = `-- name: ListTasksForList
SELECT id, list_id, created_at, title, completed FROM tasks
WHERE list_id = $1
ORDER BY created_at
`

func (r *TaskRepo) ListForList(ctx context.Context, listID uuid.UUID) ([]models.Task, error) {
	rows, _ := r.DB.Query(ctx, listTasksForList, listID)
	tasks, err := pgx.CollectRows(rows, rowToTask)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tasks, nil
}

const getTask = `-- name: GetTask
SELECT id, list_id, created_at, title, completed FROM tasks
WHERE list_id = $1 AND id = $2
`

func (r *TaskRepo) Get(ctx context.Context, listID uuid.UUID, taskID uuid.UUID) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, getTask, listID, taskID)
	task, err := pgx.CollectOneRow(rows, rowToTask)

	switch {
	case err == nil:
		return task, nil
	case errors.Is(err, pgx.ErrNoRows):
		return task, fmt.Errorf("repo error: %w", apperrors.ErrTaskNotFound)
	default:
		return task, fmt.Errorf("db error: %w", err)
	}
}

const updateTask = `-- name: UpdateTask
UPDATE tasks
SET title     = COALESCE($3, title),
    completed = COALESCE($4, completed)
WHERE list_id = $1 AND id = $2
RETURNING id, list_id, created_at, title, completed
`

func (r *TaskRepo) Update(ctx context.Context, listID uuid.UUID, taskID uuid.UUID, params repository.UpdateTaskParams) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, updateTask, listID, taskID, params.Title, params.Completed)
	task, err := pgx.CollectOneRow(rows, rowToTask)

	switch {
	case err == nil:
		return task, nil
	case errors.Is(err, pgx.ErrNoRows):
		return task, fmt.Errorf("repo error: %w", apperrors.ErrTaskNotFound)
	default:
		return task, fmt.Errorf("db error: %w", err)
	}
}

const deleteTask = `-- name: DeleteTask
DELETE FROM tasks
WHERE list_id = $1 AND id = $2
RETURNING id, list_id, created_at, title, completed
`

func (r *TaskRepo) Delete(ctx context.Context, listID uuid.UUID, taskID uuid.UUID) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, deleteTask, listID, taskID)
	task, err := pgx.CollectOneRow(rows, rowToTask)

	switch {
	case err == nil:
		return task, nil
	case errors.Is(err, pgx.ErrNoRows):
		return task, fmt.Errorf("repo error: %w", apperrors.ErrTaskNotFound)
	default:
		return task, fmt.Errorf("db error: %w", err)
	}
}

const deleteTasksForList = `-- name: DeleteTasksForList
DELETE FROM tasks
WHERE list_id = $1
`

func (r *TaskRepo) DeleteForList(ctx context.Context, listID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteTasksForList, listID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToTask(row pgx.CollectableRow) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.ListID, &t.CreatedAt, &t.Title, &t.Completed)
	return t, err
}
