package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskhive/taskhive/internal/domain"
)

// LogTaskDue is the reminder consumer's only side effect: a structured log
// entry per delivered reminder. Redelivered messages just log again, which
// keeps at-least-once delivery harmless.
func LogTaskDue(_ context.Context, msg domain.TaskDueV1, messageID string) error {
	slog.Info(fmt.Sprintf("Hi your Task is due %s", msg.Title),
		"task_id", msg.TaskID,
		"message_id", messageID,
		"due_date", msg.DueDateUTC,
	)
	return nil
}
