package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-logr/logr"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	logger logr.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger logr.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeEvents decodes each message as a FlightEvent. Undecodable messages
// are logged and skipped.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, FlightEvent) error) error {
	return c.Consume(ctx, DecodeHandler(c.logger, handler))
}

func DecodeHandler(logger logr.Logger, handler func(context.Context, FlightEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event FlightEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error(err, "Skipping undecodable flight event", "offset", msg.Offset, "partition", msg.Partition)
			return nil
		}
		return handler(ctx, event)
	}
}
