package messagequeue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ackCall struct {
	tag     uint64
	ack     bool
	requeue bool
}

type recordingAcknowledger struct {
	calls []ackCall
}

func (r *recordingAcknowledger) Ack(tag uint64, _ bool) error {
	r.calls = append(r.calls, ackCall{tag: tag, ack: true})
	return nil
}

func (r *recordingAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	r.calls = append(r.calls, ackCall{tag: tag, requeue: requeue})
	return nil
}

func (r *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func TestDrainAcknowledgementPolicy(t *testing.T) {
	acks := &recordingAcknowledger{}
	msgs := make(chan amqp.Delivery, 3)
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 1, Body: []byte("ok")}
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 2, Body: []byte("fail")}
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 3, Body: []byte("fail"), Redelivered: true}
	close(msgs)

	svc := &RabbitMQService{logger: zap.NewNop()}
	err := svc.drain(context.Background(), "events", msgs, func(body []byte) error {
		if string(body) == "fail" {
			return errors.New("smtp down")
		}
		return nil
	})
	require.Error(t, err, "a closed delivery channel ends the loop")

	assert.Equal(t, []ackCall{
		{tag: 1, ack: true},
		{tag: 2, requeue: true},
		{tag: 3, requeue: false},
	}, acks.calls)
}

func TestDrainStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan amqp.Delivery)
	done := make(chan error, 1)

	svc := &RabbitMQService{logger: zap.NewNop()}
	go func() {
		done <- svc.drain(ctx, "events", msgs, func([]byte) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("drain did not return after cancel")
	}
}
