package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-api/internal/domain/entity"
)

const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

var ErrUnknownEvent = errors.New("unknown task event type")

// TaskEvent is published after every successful task mutation.
type TaskEvent struct {
	Type       string      `json:"type"`
	Task       entity.Task `json:"task"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// EventPublisher is satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// TaskIndexer mirrors tasks into a search backend.
type TaskIndexer interface {
	IndexTask(ctx context.Context, t entity.Task) error
	DeleteTask(ctx context.Context, t entity.Task) error
}

// publish is best effort; a broker outage must not fail the mutation.
func (s *TaskService) publish(ctx context.Context, typ string, t entity.Task) {
	if s.Events == nil {
		return
	}
	ev := TaskEvent{Type: typ, Task: t, OccurredAt: s.now().UTC()}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Events.PublishJSON(c, typ, ev); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"task_id": t.ID, "type": typ}).Warn("publish task event failed")
	}
}

// ApplyTaskEvent applies one event to the search mirror.
func ApplyTaskEvent(ctx context.Context, idx TaskIndexer, ev TaskEvent) error {
	switch ev.Type {
	case TaskCreated, TaskUpdated:
		return idx.IndexTask(ctx, ev.Task)
	case TaskDeleted:
		return idx.DeleteTask(ctx, ev.Task)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}
