package port

import (
	"context"
	"errors"
	"time"
)

// ErrSkipRetry tells the server not to retry a failed task. Wrap it when the
// payload itself is unusable.
var ErrSkipRetry = errors.New("queue: skip retry")

// Task is a background job: a stable type name plus opaque payload bytes.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. A non-nil error is retried per adapter policy
// unless it wraps ErrSkipRetry. Handlers must be idempotent.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption controls enqueue behavior. Zero values mean unspecified.
type EnqueueOption struct {
	Queue     string        // logical queue name
	ProcessIn time.Duration // delay before processing
	ProcessAt time.Time     // absolute schedule time (takes precedence over ProcessIn if set)
	MaxRetry  int           // max retries for the task
	Timeout   time.Duration // per-attempt processing timeout
	Retention time.Duration // keep completed task metadata this long
}

// Client enqueues tasks for background processing.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs workers. Run blocks until ctx is canceled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}
