package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/campusgate/campusgate/internal/auth"
)

// Recorder enqueues audit events for the worker. It implements
// auth.AuditSink.
type Recorder struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewRecorder constructs a Recorder over an Asynq client.
func NewRecorder(client *asynq.Client, logger *slog.Logger) *Recorder {
	return &Recorder{client: client, logger: logger}
}

// RecordAuthEvent enqueues one audit event. Enqueue failures are
// returned so the caller can log them; the request is never failed over
// a missing audit record.
func (r *Recorder) RecordAuthEvent(ctx context.Context, event auth.Event) error {
	task, err := NewAuthEventTask(event)
	if err != nil {
		return err
	}
	_, err = r.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// LogSink records audit events inline through the logger. Used when no
// queue is configured.
type LogSink struct {
	Logger *slog.Logger
}

// RecordAuthEvent writes the event to the structured log.
func (s LogSink) RecordAuthEvent(ctx context.Context, event auth.Event) error {
	s.Logger.LogAttrs(ctx, slog.LevelInfo, "auth event",
		slog.String("username", event.Username),
		slog.String("scheme", event.Scheme),
		slog.String("outcome", event.Outcome),
		slog.String("reason", event.Reason),
		slog.String("remote_addr", event.RemoteAddr),
	)
	return nil
}

var (
	_ auth.AuditSink = (*Recorder)(nil)
	_ auth.AuditSink = LogSink{}
)
