// Package broker owns the RabbitMQ connection, the durable topology for due
// reminders, and the publish/consume paths over it.
package broker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/taskhive/taskhive/internal/config"
)

// Topology names. Declared idempotently on every connect.
const (
	ExchangeTasks     = "tasks.events"
	QueueDue          = "tasks.reminders.due"
	QueueDLQ          = "tasks.reminders.dlq"
	RoutingKeyTaskDue = "task.due"
)

// startupAttempts bounds the initial connect; the process should fail fast
// when the broker never comes up.
const startupAttempts = 5

// Broker holds a process-wide connection and the channel used for
// publishing. AMQP channels are not safe for concurrent use, so every
// publish serializes on mu; the consumer opens its own channel.
type Broker struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials the broker with exponential backoff (2 s initial, doubling,
// five attempts) and declares the topology. Exhausting the attempts returns
// an error; the caller is expected to exit non-zero.
func Connect(ctx context.Context, cfg config.RabbitMQConfig) (*Broker, error) {
	b := &Broker{url: cfg.URL()}

	bo := backoff.WithContext(newStartupBackoff(), ctx)
	err := backoff.Retry(func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		if err := b.dialLocked(); err != nil {
			slog.Warn("broker connect failed, will retry", "host", cfg.Host, "error", err)
			return err
		}
		return nil
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("connect to broker at %s: %w", cfg.Host, err)
	}

	slog.Info("broker connected", "host", cfg.Host)
	return b, nil
}

func newStartupBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = 32 * time.Second
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, startupAttempts-1)
}

// dialLocked opens a fresh connection plus publish channel and declares the
// topology. Caller holds mu.
func (b *Broker) dialLocked() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	b.conn = conn
	b.ch = ch
	return nil
}

// declareTopology declares the durable exchange, the reminder queue and its
// dead-letter queue. All declarations are idempotent; redeclaring an
// existing object with the same properties is a no-op.
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeTasks, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeTasks, err)
	}

	if _, err := ch.QueueDeclare(QueueDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDLQ, err)
	}

	// Nacked messages dead-letter through the default exchange straight
	// into the DLQ.
	if _, err := ch.QueueDeclare(QueueDue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": QueueDLQ,
	}); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDue, err)
	}

	if err := ch.QueueBind(QueueDue, RoutingKeyTaskDue, ExchangeTasks, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueDue, err)
	}

	return nil
}

// reconnect redials until the connection is healthy or ctx is cancelled.
// Post-startup outages retry without an attempt cap.
func (b *Broker) reconnect(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.Multiplier = 2
	bo.MaxInterval = 32 * time.Second
	bo.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.conn != nil && !b.conn.IsClosed() {
			return nil
		}
		if err := b.dialLocked(); err != nil {
			slog.Warn("broker reconnect failed, will retry", "error", err)
			return err
		}
		slog.Info("broker reconnected")
		return nil
	}, backoff.WithContext(bo, ctx))
}

// connection returns the live connection, if any.
func (b *Broker) connection() *amqp.Connection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn
}

// Close tears down the channel and connection.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ch != nil {
		b.ch.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
	slog.Info("broker connection closed")
}
