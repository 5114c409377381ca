// internal/events/events.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	SubmissionCreated = "submission.created"
	CampaignSent      = "campaign.sent"
	CampaignFailed    = "campaign.failed"
	SubscriberJoined  = "subscriber.joined"
	SubscriberLeft    = "subscriber.left"
)

// Event is the JSON envelope written to the topic.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher emits domain events. Publishing is best effort for callers:
// they log a failure and carry on.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, data any) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	log    zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, data any) error {
	body, err := json.Marshal(Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", eventType, err)
	}

	p.log.Debug().Str("type", eventType).Str("key", key).Msg("📤 Event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs; used when KAFKA_BROKERS is unset.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, eventType, key string, _ any) error {
	p.Log.Debug().Str("type", eventType).Str("key", key).Msg("event (kafka disabled)")
	return nil
}

func (LogPublisher) Close() error { return nil }

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = LogPublisher{}
)
