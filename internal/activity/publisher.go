package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Publisher writes activity events to Kafka. A nil Publisher is valid and
// drops everything, so callers never have to branch on whether analytics is
// configured. Publishing is best-effort: failures are logged, never
// returned.
type Publisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// NewPublisher connects a writer for the given brokers and topic.
func NewPublisher(brokers []string, topic string, log *slog.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:      brokers,
			Topic:        topic,
			MaxAttempts:  3,
			BatchTimeout: 100 * time.Millisecond,
		}),
		log: log,
	}
}

// Publish emits one event for a user action. Subject is the topic, query,
// or content the action touched; it may be empty.
func (p *Publisher) Publish(ctx context.Context, eventType, user, subject string) {
	if p == nil {
		return
	}

	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		User:      user,
		Subject:   subject,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("encode activity event", slog.Any("err", err))
		return
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event.Type), Value: payload}); err != nil {
		p.log.Warn("publish activity event",
			slog.String("type", event.Type),
			slog.Any("err", err),
		)
	}
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
