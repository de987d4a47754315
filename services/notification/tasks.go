package notification

import (
	"context"
	"fmt"

	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/tasks"

	"github.com/hibiken/asynq"
)

// taskEnqueuer is the part of *asynq.Client used by TaskSender.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskSender hands notices to asynq so delivery survives restarts and is
// retried by the worker. Put it behind a Queue to keep Dispatch non-blocking.
type TaskSender struct {
	client taskEnqueuer
	queue  string
}

func NewTaskSender(client taskEnqueuer, queue string) *TaskSender {
	return &TaskSender{client: client, queue: queue}
}

func (s *TaskSender) Send(ctx context.Context, notice models.ConfirmationNotice) error {
	task, opts, err := tasks.NewConfirmationTask(notice, s.queue)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue confirmation for booking %s: %w", notice.Booking.ID, err)
	}
	return nil
}
