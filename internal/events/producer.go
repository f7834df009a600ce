package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Envelope struct {
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Source     string          `json:"source"`
	Payload    json.RawMessage `json:"payload"`
}

type Producer struct {
	writer      MessageWriter
	topicPrefix string
	source      string
}

// NewProducer returns nil when no broker is configured.
func NewProducer(brokers []string, topicPrefix, source string) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}
	return NewWithWriter(w, topicPrefix, source)
}

func NewWithWriter(w MessageWriter, topicPrefix, source string) *Producer {
	return &Producer{writer: w, topicPrefix: topicPrefix, source: source}
}

func (p *Producer) Topic(name string) string {
	return p.topicPrefix + name
}

func (p *Producer) Publish(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	data, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Source:     p.source,
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Topic: p.Topic(topic),
		Key:   []byte(key),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
