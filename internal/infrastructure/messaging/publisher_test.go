package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func orderPlaced() checkout.OrderPlaced {
	return checkout.OrderPlaced{
		OrderNumber: "FM20260301120000A1B2C3",
		UserID:      7,
		Items: []checkout.OrderLine{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("39.90"), Name: "鲜牛奶"},
		},
		MemberTier:  "gold",
		GoodsAmount: decimal.RequireFromString("79.80"),
		Total:       decimal.RequireFromString("79.82"),
		PlacedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishOrderPlaced(t *testing.T) {
	logger, _ := test.NewNullLogger()
	writer := &recordingWriter{}
	publisher := &Publisher{writer: writer, logger: logger}

	require.NoError(t, publisher.PublishOrderPlaced(context.Background(), orderPlaced()))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "FM20260301120000A1B2C3", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventOrderPlaced, string(msg.Headers[0].Value))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "79.82", payload["total"])
	assert.Equal(t, float64(7), payload["user_id"])

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestPublishOrderPlaced_WriteError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	publisher := &Publisher{writer: &recordingWriter{err: errors.New("no brokers")}, logger: logger}

	err := publisher.PublishOrderPlaced(context.Background(), orderPlaced())
	assert.ErrorContains(t, err, "no brokers")
}

func TestPublishOrderPlaced_Kafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}

	ctx := context.Background()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	cfg := &config.Config{Kafka: config.KafkaConfig{
		Enabled:      true,
		Brokers:      brokers,
		Topic:        "storefront.orders.test",
		WriteTimeout: 10 * time.Second,
	}}
	publisher := NewPublisher(cfg, logger)
	defer publisher.Close()

	writeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// the first write can race topic auto creation
	for attempt := 0; attempt < 5; attempt++ {
		if err = publisher.PublishOrderPlaced(writeCtx, orderPlaced()); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    cfg.Kafka.Topic,
		GroupID:  "receipt-test",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(writeCtx)
	require.NoError(t, err)
	assert.Equal(t, "FM20260301120000A1B2C3", string(msg.Key))
}
