package entity

import "time"

// Task is a single to-do item owned by one user.
// ID is monotonically increasing and doubles as the pagination cursor.
// A non-nil DeletedAt marks the task as soft-deleted.
type Task struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"userId"`
	Content     string     `json:"content"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// OwnedBy reports whether the task belongs to userID.
func (t *Task) OwnedBy(userID string) bool {
	return t != nil && t.UserID == userID
}
