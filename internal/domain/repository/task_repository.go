package repository

import (
	"context"

	"github.com/oksasatya/todo-api/internal/domain/entity"
)

// TaskFilter narrows a task listing. Nil pointers mean "no filter".
type TaskFilter struct {
	UserID      string
	Take        int
	PrevEndID   *int64
	Content     *string
	IsCompleted *bool
}

// TaskPatch carries the optional fields of a task update.
type TaskPatch struct {
	Content     *string
	IsCompleted *bool
}

// TaskRepository persists tasks. Every read excludes soft-deleted rows.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, id int64) (*entity.Task, error)
	// List returns at most f.Take tasks ordered by id descending, together with
	// the number of rows matching the same conditions without the limit.
	List(ctx context.Context, f TaskFilter) ([]entity.Task, int64, error)
	Update(ctx context.Context, id int64, p TaskPatch) (*entity.Task, error)
	SoftDelete(ctx context.Context, id int64) (int64, error)
}
