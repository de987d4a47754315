package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/KowsickReddy/TravelGo/models"

	"github.com/hibiken/asynq"
)

const TypeBookingConfirmation = "booking:confirmation"

const confirmationMaxRetry = 5

// NewConfirmationTask wraps a confirmation notice in a durable task.
func NewConfirmationTask(notice models.ConfirmationNotice, queue string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(notice)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingConfirmation, b)
	opts := []asynq.Option{asynq.MaxRetry(confirmationMaxRetry)}
	if queue != "" {
		opts = append(opts, asynq.Queue(queue))
	}
	return task, opts, nil
}

// ParseConfirmationTask decodes the notice carried by a confirmation task.
func ParseConfirmationTask(task *asynq.Task) (models.ConfirmationNotice, error) {
	var notice models.ConfirmationNotice
	if err := json.Unmarshal(task.Payload(), &notice); err != nil {
		return notice, fmt.Errorf("invalid %s payload: %w", TypeBookingConfirmation, err)
	}
	return notice, nil
}
