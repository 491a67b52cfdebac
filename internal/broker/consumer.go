package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/taskhive/taskhive/internal/domain"
)

// TaskDueHandler processes one delivery. A non-nil error sends the message
// to the DLQ; it is never requeued.
type TaskDueHandler func(ctx context.Context, msg domain.TaskDueV1, messageID string) error

// ConsumeTaskDue runs the reminder consumer until ctx is cancelled. It uses
// a prefetch count of one and manual acknowledgements. A lost channel
// triggers a reconnect and a fresh consume; deliveries in flight at that
// point stay unacked and are redelivered.
func (b *Broker) ConsumeTaskDue(ctx context.Context, handler TaskDueHandler) error {
	for {
		deliveries, closeCh, err := b.openConsume()
		if err != nil {
			slog.Error("open consumer failed, reconnecting", "error", err)
			if err := b.reconnect(ctx); err != nil {
				return err
			}
			continue
		}

	deliveryLoop:
		for {
			select {
			case <-ctx.Done():
				closeCh()
				return nil
			case d, ok := <-deliveries:
				if !ok {
					break deliveryLoop
				}
				processDelivery(ctx, d, handler)
			}
		}

		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("consumer channel closed, reconnecting")
		if err := b.reconnect(ctx); err != nil {
			return err
		}
	}
}

// processDelivery settles exactly one delivery: processed messages are
// acked, undecodable or failed ones are nacked without requeue so they
// dead-letter exactly once instead of storming the queue.
func processDelivery(ctx context.Context, d amqp.Delivery, handler TaskDueHandler) {
	msg, err := decodeTaskDue(d.Body)
	if err != nil {
		slog.Error("discarding malformed task due message",
			"message_id", d.MessageId,
			"error", err,
		)
		if err := d.Nack(false, false); err != nil {
			slog.Error("nack failed", "message_id", d.MessageId, "error", err)
		}
		return
	}

	if err := handler(ctx, msg, d.MessageId); err != nil {
		slog.Error("task due handler failed",
			"task_id", msg.TaskID,
			"message_id", d.MessageId,
			"error", err,
		)
		if err := d.Nack(false, false); err != nil {
			slog.Error("nack failed", "message_id", d.MessageId, "error", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		slog.Error("ack failed", "message_id", d.MessageId, "error", err)
	}
}

// openConsume opens a dedicated channel with prefetch 1 and starts the
// consume. The returned func closes the channel.
func (b *Broker) openConsume() (<-chan amqp.Delivery, func(), error) {
	conn := b.connection()
	if conn == nil || conn.IsClosed() {
		return nil, nil, fmt.Errorf("connection is closed")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open consumer channel: %w", err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("set prefetch: %w", err)
	}

	deliveries, err := ch.Consume(QueueDue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("consume %s: %w", QueueDue, err)
	}

	return deliveries, func() { ch.Close() }, nil
}

func decodeTaskDue(body []byte) (domain.TaskDueV1, error) {
	var msg domain.TaskDueV1
	if err := json.Unmarshal(body, &msg); err != nil {
		return domain.TaskDueV1{}, fmt.Errorf("decode task due message: %w", err)
	}
	if msg.TaskID == "" {
		return domain.TaskDueV1{}, fmt.Errorf("task due message missing taskId")
	}
	return msg, nil
}
