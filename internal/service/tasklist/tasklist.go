// Package tasklist implements lists and tasks owned by users.
// Every operation is filtered by the authenticated user: a list that
// belongs to someone else reads as not found, never as forbidden.
package tasklist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/taskmanager/internal/models"
	"github.com/avolkov/taskmanager/internal/repository"
)

type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*Service, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	return &Service{storage: storage}, nil
}

func (s *Service) CreateList(ctx context.Context, userID uuid.UUID, title string) (models.List, error) {
	list, err := s.storage.List().Create(ctx, userID, title)
	if err != nil {
		return list, fmt.Errorf("can't create list. Err: %w", err)
	}
	return list, nil
}

func (s *Service) Lists(ctx context.Context, userID uuid.UUID) ([]models.List, error) {
	return s.storage.List().ListForUser(ctx, userID)
}

func (s *Service) RenameList(ctx context.Context, userID uuid.UUID, listID uuid.UUID, title string) (models.List, error) {
	return s.storage.List().UpdateTitle(ctx, userID, listID, title)
}

// DeleteList removes the list and every task in it atomically
func (s *Service) DeleteList(ctx context.Context, userID uuid.UUID, listID uuid.UUID) (models.List, error) {
	var removed models.List

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		list, err := tx.List().Delete(ctx, userID, listID)
		if err != nil {
			return err
		}

		if _, err := tx.Task().DeleteForList(ctx, listID); err != nil {
			return err
		}

		removed = list
		return nil
	})

	return removed, err
}

// CreateTask adds a task to the list if the list belongs to the user
func (s *Service) CreateTask(ctx context.Context, userID uuid.UUID, listID uuid.UUID, title string) (models.Task, error) {
	if _, err := s.storage.List().Get(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}

	task, err := s.storage.Task().Create(ctx, listID, title)
	if err != nil {
		return task, fmt.Errorf("can't create task. Err: %w", err)
	}
	return task, nil
}

func (s *Service) Tasks(ctx context.Context, userID uuid.UUID, listID uuid.UUID) ([]models.Task, error) {
	if _, err := s.storage.List().Get(ctx, userID, listID); err != nil {
		return nil, err
	}

	return s.storage.Task().ListForList(ctx, listID)
}

func (s *Service) Task(ctx context.Context, userID uuid.UUID, listID uuid.UUID, taskID uuid.UUID) (models.Task, error) {
	if _, err := s.storage.List().Get(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}

	return s.storage.Task().Get(ctx, listID, taskID)
}

func (s *Service) UpdateTask(ctx context.Context, userID uuid.UUID, listID uuid.UUID, taskID uuid.UUID, params repository.UpdateTaskParams) (models.Task, error) {
	if _, err := s.storage.List().Get(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}

	return s.storage.Task().Update(ctx, listID, taskID, params)
}

func (s *Service) DeleteTask(ctx context.Context, userID uuid.UUID, listID uuid.UUID, taskID uuid.UUID) (models.Task, error) {
	if _, err := s.storage.List().Get(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}

	return s.storage.Task().Delete(ctx, listID, taskID)
}
