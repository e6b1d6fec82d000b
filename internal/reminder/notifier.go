package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/todo-core/internal/platform/logger"
)

// Notifier delivers a due reminder.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r Reminder) error

// Notify calls f(ctx, r).
func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error {
	return f(ctx, r)
}

// LogNotifier writes reminders to the log. It is the default when no other
// delivery channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(l *slog.Logger) *LogNotifier {
	if l == nil {
		l = slog.Default()
	}
	return &LogNotifier{logger: l.With("component", "reminder_notifier")}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, r Reminder) error {
	logger.FromContextOrDefault(ctx, n.logger).Info("reminder due",
		slog.Int64("task_id", r.TaskID),
		slog.Int64("list_id", r.ListID),
		slog.String("title", r.Title),
		slog.String("at", r.At.Format(time.RFC3339)))
	return nil
}
