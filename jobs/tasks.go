// Package jobs defines the background task types and the Asynq worker
// that processes them.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/campusgate/campusgate/internal/auth"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuthEvent is the task type for security audit events.
	TaskTypeAuthEvent = "auth:event"
)

// NewAuthEventTask constructs an Asynq task from an audit event.
func NewAuthEventTask(event auth.Event) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuthEvent, data), nil
}

// AuthEventHandler writes audit events to the structured audit log.
type AuthEventHandler struct {
	Logger *slog.Logger
}

// Handle processes TaskTypeAuthEvent tasks.
func (h AuthEventHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var event auth.Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return asynq.SkipRetry
	}
	h.Logger.LogAttrs(ctx, slog.LevelInfo, "auth event",
		slog.String("username", event.Username),
		slog.String("scheme", event.Scheme),
		slog.String("outcome", event.Outcome),
		slog.String("reason", event.Reason),
		slog.String("remote_addr", event.RemoteAddr),
		slog.Time("at", event.At),
	)
	return nil
}
