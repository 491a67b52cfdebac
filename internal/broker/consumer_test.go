package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/domain"
)

// fakeAcknowledger records how a delivery was settled.
type fakeAcknowledger struct {
	acks  int
	nacks int

	nackMultiple bool
	nackRequeue  bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, multiple, requeue bool) error {
	f.nacks++
	f.nackMultiple = multiple
	f.nackRequeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return f.Nack(0, false, requeue)
}

func newDelivery(ack *fakeAcknowledger, messageID string, body []byte) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		MessageId:    messageID,
		Body:         body,
	}
}

const validDueBody = `{
	"taskId": "11111111-2222-3333-4444-555555555555",
	"title": "quarterly report",
	"dueDateUtc": "2026-08-25T10:00:00Z",
	"timestampUtc": "2026-08-25T12:00:00Z"
}`

func TestProcessDelivery_SuccessAcks(t *testing.T) {
	ack := &fakeAcknowledger{}
	var handled []domain.TaskDueV1

	processDelivery(context.Background(),
		newDelivery(ack, "msg-1", []byte(validDueBody)),
		func(_ context.Context, msg domain.TaskDueV1, messageID string) error {
			handled = append(handled, msg)
			assert.Equal(t, "msg-1", messageID)
			return nil
		})

	require.Len(t, handled, 1)
	assert.Equal(t, "quarterly report", handled[0].Title)
	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
}

func TestProcessDelivery_MalformedBodyNacksWithoutRequeue(t *testing.T) {
	ack := &fakeAcknowledger{}
	handlerCalled := false

	processDelivery(context.Background(),
		newDelivery(ack, "msg-2", []byte(`{"taskId": `)),
		func(context.Context, domain.TaskDueV1, string) error {
			handlerCalled = true
			return nil
		})

	assert.False(t, handlerCalled, "undecodable messages never reach the handler")
	assert.Zero(t, ack.acks)
	require.Equal(t, 1, ack.nacks, "poison message dead-letters exactly once")
	assert.False(t, ack.nackMultiple)
	assert.False(t, ack.nackRequeue, "requeue would storm the queue with the same poison message")
}

func TestProcessDelivery_MissingTaskIDNacksWithoutRequeue(t *testing.T) {
	ack := &fakeAcknowledger{}

	processDelivery(context.Background(),
		newDelivery(ack, "msg-3", []byte(`{"title": "orphan"}`)),
		func(context.Context, domain.TaskDueV1, string) error {
			t.Fatal("handler must not run for a message without taskId")
			return nil
		})

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.nackRequeue)
}

func TestProcessDelivery_HandlerErrorNacksWithoutRequeue(t *testing.T) {
	ack := &fakeAcknowledger{}

	processDelivery(context.Background(),
		newDelivery(ack, "msg-4", []byte(validDueBody)),
		func(context.Context, domain.TaskDueV1, string) error {
			return errors.New("sink unavailable")
		})

	assert.Zero(t, ack.acks)
	require.Equal(t, 1, ack.nacks)
	assert.False(t, ack.nackRequeue)
}

func TestDecodeTaskDue(t *testing.T) {
	msg, err := decodeTaskDue([]byte(validDueBody))
	require.NoError(t, err)

	assert.Equal(t, "11111111-2222-3333-4444-555555555555", msg.TaskID)
	assert.Equal(t, "quarterly report", msg.Title)
	assert.Equal(t, time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC), msg.DueDateUTC)
	assert.Equal(t, time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC), msg.TimestampUTC)
}

func TestDecodeTaskDue_InvalidJSON(t *testing.T) {
	_, err := decodeTaskDue([]byte(`{"taskId": `))
	assert.Error(t, err)
}

func TestDecodeTaskDue_MissingTaskID(t *testing.T) {
	_, err := decodeTaskDue([]byte(`{"title": "orphan"}`))
	assert.Error(t, err)
}
