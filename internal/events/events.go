// Package events publishes domain events to the message queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/models"
	"thumblytic-backend-go/pkg/messagequeue"
)

// Publisher sends domain events.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// New builds an event stamped with a fresh ID and the current time.
func New(eventType, userID, userEmail string, data map[string]string) models.Event {
	return models.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		UserID:     userID,
		UserEmail:  userEmail,
		Data:       data,
	}
}

// QueuePublisher writes JSON-encoded events to a single queue.
type QueuePublisher struct {
	mq    messagequeue.MessageQueue
	queue string
}

// NewQueuePublisher creates a Publisher backed by mq.
func NewQueuePublisher(mq messagequeue.MessageQueue, queue string) *QueuePublisher {
	return &QueuePublisher{mq: mq, queue: queue}
}

func (p *QueuePublisher) Publish(ctx context.Context, event models.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}
	if err := p.mq.Publish(ctx, p.queue, body); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}
	return nil
}

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event models.Event) error {
	p.logger.Debug("event (no broker configured)",
		zap.String("type", event.Type),
		zap.String("id", event.ID),
		zap.String("userID", event.UserID))
	return nil
}

// Decode parses an event body read from the queue.
func Decode(body []byte) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return models.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if event.Type == "" {
		return models.Event{}, fmt.Errorf("decode event: missing type")
	}
	return event, nil
}
