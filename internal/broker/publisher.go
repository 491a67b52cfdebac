package broker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/taskhive/taskhive/internal/domain"
)

// PublishTaskDue publishes one persistent TaskDueV1 message. The channel is
// held under the broker mutex for the duration of the frame write. A dead
// connection gets one redial before the publish is attempted.
//
// Delivery is best effort: a failure here means the reminder is lost while
// the task stays claimed. Callers log and move on.
func (b *Broker) PublishTaskDue(ctx context.Context, msg domain.TaskDueV1) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal task due message: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil || b.conn.IsClosed() {
		if err := b.dialLocked(); err != nil {
			return fmt.Errorf("publish with dead connection: %w", err)
		}
	}

	err = b.ch.PublishWithContext(ctx, ExchangeTasks, RoutingKeyTaskDue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    msg.TaskID,
		Timestamp:    msg.TimestampUTC,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish task due for task %s: %w", msg.TaskID, err)
	}
	return nil
}
