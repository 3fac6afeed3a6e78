package handlers

import (
	"strconv"
	"time"

	app "github.com/oksasatya/todo-api/internal/application"
	"github.com/oksasatya/todo-api/internal/domain/entity"
)

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

// taskResponse serializes the id as a decimal string so clients never lose
// precision on the bigserial cursor.
type taskResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Content     string     `json:"content"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

func toTaskResponse(t *entity.Task) taskResponse {
	return taskResponse{
		ID:          strconv.FormatInt(t.ID, 10),
		UserID:      t.UserID,
		Content:     t.Content,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DeletedAt:   t.DeletedAt,
	}
}

func toTaskResponses(tasks []entity.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return out
}

type taskPageResponse struct {
	Tasks     []taskResponse `json:"tasks"`
	Total     int64          `json:"total"`
	CurrEndID string         `json:"currEndId"`
}

func toTaskPageResponse(p *app.TaskPage) taskPageResponse {
	return taskPageResponse{Tasks: toTaskResponses(p.Tasks), Total: p.Total, CurrEndID: p.CurrEndID}
}
