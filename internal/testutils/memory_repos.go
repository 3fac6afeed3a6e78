// Package testutils holds in-memory doubles shared by service, handler and router tests.
package testutils

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/todo-api/internal/domain/entity"
	"github.com/oksasatya/todo-api/internal/domain/repository"
)

// UserRepo is an in-memory repository.UserRepository enforcing unique usernames
// the way the users table does.
type UserRepo struct {
	mu    sync.Mutex
	byID  map[string]entity.User
	Fail  error
	Calls int
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: map[string]entity.User{}}
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Fail != nil {
		return r.Fail
	}
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return &pgconn.PgError{
				Code:   "23505",
				Detail: "Key (username)=(" + u.Username + ") already exists.",
			}
		}
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	r.byID[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Fail != nil {
		return nil, r.Fail
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Fail != nil {
		return nil, r.Fail
	}
	for _, u := range r.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// TaskRepo is an in-memory repository.TaskRepository. Soft-deleted rows stay
// in Rows so tests can assert they were never removed.
type TaskRepo struct {
	mu     sync.Mutex
	nextID int64
	Rows   map[int64]*entity.Task
	Fail   error
	// Reads counts GetByID and List calls; tests use it to prove cache hits.
	Reads int
}

func NewTaskRepo() *TaskRepo {
	return &TaskRepo{Rows: map[int64]*entity.Task{}}
}

func (r *TaskRepo) Create(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.nextID++
	now := time.Now().UTC()
	t.ID = r.nextID
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	r.Rows[t.ID] = &cp
	return nil
}

func (r *TaskRepo) GetByID(_ context.Context, id int64) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	if r.Fail != nil {
		return nil, r.Fail
	}
	t, ok := r.Rows[id]
	if !ok || t.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *TaskRepo) List(_ context.Context, f repository.TaskFilter) ([]entity.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	if r.Fail != nil {
		return nil, 0, r.Fail
	}
	var matched []entity.Task
	for _, t := range r.Rows {
		if t.UserID != f.UserID || t.DeletedAt != nil {
			continue
		}
		if f.Content != nil && *f.Content != "" &&
			!strings.Contains(strings.ToLower(t.Content), strings.ToLower(*f.Content)) {
			continue
		}
		if f.IsCompleted != nil && t.IsCompleted != *f.IsCompleted {
			continue
		}
		if f.PrevEndID != nil && t.ID >= *f.PrevEndID {
			continue
		}
		matched = append(matched, *t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	if len(matched) > f.Take {
		matched = matched[:f.Take]
	}
	return matched, total, nil
}

func (r *TaskRepo) Update(_ context.Context, id int64, p repository.TaskPatch) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	t, ok := r.Rows[id]
	if !ok || t.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func (r *TaskRepo) SoftDelete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return 0, r.Fail
	}
	t, ok := r.Rows[id]
	if !ok || t.DeletedAt != nil {
		return 0, nil
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	return 1, nil
}

// Row returns a copy of the stored row, soft-deleted or not.
func (r *TaskRepo) Row(id int64) (entity.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Rows[id]
	if !ok {
		return entity.Task{}, false
	}
	return *t, true
}

var (
	_ repository.UserRepository = (*UserRepo)(nil)
	_ repository.TaskRepository = (*TaskRepo)(nil)
)

// ErrBoom is a generic store failure for error-path tests.
var ErrBoom = errors.New("boom")
