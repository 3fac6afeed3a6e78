package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/todo-api/internal/domain/entity"
	repo "github.com/oksasatya/todo-api/internal/domain/repository"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

type TaskSearcher interface {
	SearchTasks(ctx context.Context, userID, query string, size int) ([]entity.Task, error)
}

// SearchTasks runs a full-text query over the caller's tasks in the search mirror
// and returns the store's current rows for the hits. Hits that are gone from the
// store or no longer owned by the caller are dropped, so a lagging mirror never
// resurrects a deleted task. It returns an empty result when no mirror is configured.
func (s *TaskService) SearchTasks(ctx context.Context, userID, query string, size int) ([]entity.Task, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if s.Search == nil {
		return []entity.Task{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	hits, err := s.Search.SearchTasks(ctx, userID, query, size)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}

	tasks := make([]entity.Task, 0, len(hits))
	for _, h := range hits {
		t, err := s.Repo.GetByID(ctx, h.ID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError(err)
		}
		if t.OwnedBy(userID) {
			tasks = append(tasks, *t)
		}
	}
	return tasks, nil
}
