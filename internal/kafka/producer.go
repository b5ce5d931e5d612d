package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/logging"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventFlightAdded   = "flight_added"
	EventFlightRemoved = "flight_removed"
	EventFlightsLoaded = "flights_loaded"
	EventFlightsSaved  = "flights_saved"
)

type FlightEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	FlightNumber string    `json:"flight_number,omitempty"`
	Airline      string    `json:"airline,omitempty"`
	Destination  string    `json:"destination,omitempty"`
	Status       string    `json:"status,omitempty"`
	Count        int       `json:"count,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewFlightEvent describes a single-flight mutation.
func NewFlightEvent(eventType string, f domain.Flight) FlightEvent {
	return FlightEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		FlightNumber: f.Number(),
		Airline:      f.AirlineName(),
		Destination:  f.DestinationName(),
		Status:       f.Status.String(),
		OccurredAt:   time.Now().UTC(),
	}
}

// NewBatchEvent describes a load or save of count flights.
func NewBatchEvent(eventType string, count int) FlightEvent {
	return FlightEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Count:      count,
		OccurredAt: time.Now().UTC(),
	}
}

// Key partitions events of one flight together; batch events share a key.
func (e FlightEvent) Key() string {
	if e.FlightNumber != "" {
		return e.FlightNumber
	}
	return e.Type
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	logger  logr.Logger
}

func NewProducer(brokers []string, logger logr.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		logger:  logger,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.V(logging.VERBOSE).Info("Published to Kafka", "topic", topic, "key", key)
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		p.logger.Info("Publish attempt failed", "attempt", i+1, "error", err.Error())

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no Kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.logger.Info("Connected to Kafka", "partitions", len(partitions))
	return nil
}
