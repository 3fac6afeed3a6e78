package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/todo-api/internal/domain/entity"
	"github.com/oksasatya/todo-api/internal/domain/repository"
)

const taskColumns = "id, user_id, content, is_completed, created_at, updated_at"

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (user_id, content, is_completed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.Content, t.IsCompleted)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return scanTask(row)
}

func (r *TaskRepository) List(ctx context.Context, f repository.TaskFilter) ([]entity.Task, int64, error) {
	where, args := taskWhere(f)

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM tasks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Take)
	query := "SELECT " + taskColumns + " FROM tasks WHERE " + where +
		" ORDER BY id DESC LIMIT $" + strconv.Itoa(len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0, f.Take)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskRepository) Update(ctx context.Context, id int64, p repository.TaskPatch) (*entity.Task, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	if p.Content != nil {
		args = append(args, *p.Content)
		sets = append(sets, "content = $"+strconv.Itoa(len(args)))
	}
	if p.IsCompleted != nil {
		args = append(args, *p.IsCompleted)
		sets = append(sets, "is_completed = $"+strconv.Itoa(len(args)))
	}
	args = append(args, id)

	row := r.db.QueryRow(ctx, "UPDATE tasks SET "+strings.Join(sets, ", ")+
		" WHERE id = $"+strconv.Itoa(len(args))+" AND deleted_at IS NULL"+
		" RETURNING "+taskColumns, args...)
	return scanTask(row)
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks
		SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// taskWhere builds the shared WHERE clause of the page and count queries.
func taskWhere(f repository.TaskFilter) (string, []any) {
	conds := []string{"user_id = $1", "deleted_at IS NULL"}
	args := []any{f.UserID}
	if f.Content != nil && *f.Content != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(*f.Content))+"%")
		conds = append(conds, "content ILIKE $"+strconv.Itoa(len(args)))
	}
	if f.IsCompleted != nil {
		args = append(args, *f.IsCompleted)
		conds = append(conds, "is_completed = $"+strconv.Itoa(len(args)))
	}
	if f.PrevEndID != nil {
		args = append(args, *f.PrevEndID)
		conds = append(conds, "id < $"+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	if err := row.Scan(&t.ID, &t.UserID, &t.Content, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
