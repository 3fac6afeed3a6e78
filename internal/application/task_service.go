package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-api/internal/domain/entity"
	repo "github.com/oksasatya/todo-api/internal/domain/repository"
	"github.com/oksasatya/todo-api/pkg/helpers"
)

const (
	MinPageSize = 1
	MaxPageSize = 20
)

// TaskService owns task reads and writes, the read-through cache in front of
// them and the per-user cache sweep that precedes every mutation.
type TaskService struct {
	Repo     repo.TaskRepository
	Redis    *redis.Client
	CacheTTL time.Duration
	Logger   *logrus.Logger
	Events   EventPublisher
	Search   TaskSearcher

	now func() time.Time
}

func NewTaskService(repo repo.TaskRepository, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *TaskService {
	if logger == nil {
		logger = helpers.DiscardLogger()
	}
	return &TaskService{
		Repo:     repo,
		Redis:    rdb,
		CacheTTL: cacheTTL,
		Logger:   logger,
		now:      time.Now,
	}
}

type ListTasksQuery struct {
	Take        int
	PrevEndID   *int64
	Content     *string
	IsCompleted *bool
}

// TaskPage is one page of a user's tasks. CurrEndID is the cursor for the
// next page, or EndCursor when the page is empty.
type TaskPage struct {
	Tasks     []entity.Task
	Total     int64
	CurrEndID string
}

type CreateTaskInput struct {
	Content     string
	IsCompleted *bool
}

type UpdateTaskInput struct {
	Content     *string
	IsCompleted *bool
}

// cachedPage is what lands in Redis for a list key.
type cachedPage struct {
	Tasks []entity.Task `json:"tasks"`
	Total int64         `json:"total"`
}

func (s *TaskService) ListTasks(ctx context.Context, userID string, q ListTasksQuery) (*TaskPage, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if q.Take < MinPageSize || q.Take > MaxPageSize {
		return nil, ErrInvalidPageSize
	}
	if q.PrevEndID != nil && *q.PrevEndID <= 0 {
		return nil, ErrInvalidCursor
	}

	key := taskListKey(userID, q)
	var page cachedPage
	if !cacheGet(ctx, s, key, &page) {
		tasks, total, err := s.Repo.List(ctx, repo.TaskFilter{
			UserID:      userID,
			Take:        q.Take,
			PrevEndID:   q.PrevEndID,
			Content:     q.Content,
			IsCompleted: q.IsCompleted,
		})
		if err != nil {
			return nil, storeError(err)
		}
		page = cachedPage{Tasks: tasks, Total: total}
		s.cacheSet(ctx, key, page)
	}

	if page.Tasks == nil {
		page.Tasks = []entity.Task{}
	}
	return &TaskPage{Tasks: page.Tasks, Total: page.Total, CurrEndID: endCursor(page.Tasks)}, nil
}

// GetTask returns the task when it exists, is not soft-deleted and is owned by userID.
// Only owned rows are cached: the owner's sweep never reaches another user's keys.
func (s *TaskService) GetTask(ctx context.Context, userID string, id int64) (*entity.Task, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	key := taskOneKey(userID, id)
	var t entity.Task
	if cacheGet(ctx, s, key, &t) && t.OwnedBy(userID) {
		return &t, nil
	}
	found, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, *found)
	return found, nil
}

func (s *TaskService) CreateTask(ctx context.Context, userID string, in CreateTaskInput) (*entity.Task, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrContentRequired
	}
	t := &entity.Task{UserID: userID, Content: in.Content}
	if in.IsCompleted != nil {
		t.IsCompleted = *in.IsCompleted
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, storeError(err)
	}
	// Cached pages predate the new row; drop them so the next list sees it.
	if err := s.invalidate(ctx, userID); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("task cache sweep after create failed")
	}
	s.publish(ctx, TaskCreated, *t)
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, userID string, id int64, in UpdateTaskInput) (*entity.Task, error) {
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, ErrContentRequired
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, userID); err != nil {
		return nil, &RequestError{Detail: err.Error(), Err: err}
	}

	t, err := s.Repo.Update(ctx, id, repo.TaskPatch{Content: in.Content, IsCompleted: in.IsCompleted})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}
	s.publish(ctx, TaskUpdated, *t)
	return t, nil
}

// DeleteTask soft-deletes the task and reports how many rows were affected.
func (s *TaskService) DeleteTask(ctx context.Context, userID string, id int64) (int64, error) {
	t, err := s.owned(ctx, userID, id)
	if err != nil {
		return 0, err
	}
	if err := s.invalidate(ctx, userID); err != nil {
		return 0, &RequestError{Detail: err.Error(), Err: err}
	}

	affected, err := s.Repo.SoftDelete(ctx, id)
	if err != nil {
		return 0, storeError(err)
	}
	if affected > 0 {
		deletedAt := s.now().UTC()
		t.DeletedAt = &deletedAt
		s.publish(ctx, TaskDeleted, *t)
	}
	return affected, nil
}

// owned loads a task straight from the store and checks ownership.
func (s *TaskService) owned(ctx context.Context, userID string, id int64) (*entity.Task, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.OwnedBy(userID) {
		return nil, ErrTaskForbidden
	}
	return t, nil
}

func (s *TaskService) load(ctx context.Context, id int64) (*entity.Task, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}
	return t, nil
}

// invalidate sweeps every cached list page and single read of the user.
func (s *TaskService) invalidate(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return nil
	}
	n, err := helpers.RedisDelByPattern(ctx, s.Redis, taskCachePattern(userID))
	if err != nil {
		return err
	}
	cacheInvalidations.Add(1)
	s.Logger.WithFields(logrus.Fields{"user_id": userID, "keys": n}).Debug("task cache swept")
	return nil
}

// cacheGet reports a hit. Redis failures and undecodable entries count as misses.
func cacheGet[T any](ctx context.Context, s *TaskService, key string, dest *T) bool {
	if s.Redis == nil {
		return false
	}
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, dest)
	if err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("task cache read failed")
		ok = false
	}
	if ok {
		cacheHits.Add(1)
	} else {
		cacheMisses.Add(1)
	}
	return ok
}

func (s *TaskService) cacheSet(ctx context.Context, key string, value any) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, key, value, s.CacheTTL); err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("task cache write failed")
	}
}

func endCursor(tasks []entity.Task) string {
	if len(tasks) == 0 {
		return EndCursor
	}
	return strconv.FormatInt(tasks[len(tasks)-1].ID, 10)
}

func storeError(err error) error {
	return &RequestError{Detail: helpers.PGErrorDetail(err), Err: err}
}
