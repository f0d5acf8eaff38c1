package queue

import (
	"context"
	"time"
)

// Task types
const (
	TaskTypeDeleteObject = "delete_object"
)

// Task is a unit of deferred work, carried through Redis as JSON.
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

// FailedTask is a task that exhausted its retries, kept in the DLQ for
// operator inspection.
type FailedTask struct {
	Task     *Task     `json:"task"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
	Attempts int       `json:"attempts"`
}

// Queue is the task queue interface consumed by services and workers.
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	Subscribe(ctx context.Context, handler func(*Task) error) error
}
