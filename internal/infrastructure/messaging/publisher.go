// internal/infrastructure/messaging/publisher.go
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
)

// EventOrderPlaced is the event_type header of order placed messages
const EventOrderPlaced = "order.placed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events to Kafka
type Publisher struct {
	writer messageWriter
	logger *logrus.Logger
}

// NewPublisher creates a publisher for the configured brokers and topic
func NewPublisher(cfg *config.Config, logger *logrus.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
		Topic:                  cfg.Kafka.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.Kafka.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishOrderPlaced writes an order placed event keyed by order number
func (p *Publisher) PublishOrderPlaced(ctx context.Context, event checkout.OrderPlaced) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
		Time: event.PlacedAt,
	}
	if msg.Time.IsZero() {
		msg.Time = time.Now().UTC()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.WithField("order_number", event.OrderNumber).Debug("Order event published")
	return nil
}

// Close flushes pending messages and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events, used when Kafka is disabled
type NopPublisher struct{}

// PublishOrderPlaced implements checkout.EventPublisher
func (NopPublisher) PublishOrderPlaced(context.Context, checkout.OrderPlaced) error {
	return nil
}

// Close implements io.Closer
func (NopPublisher) Close() error {
	return nil
}
