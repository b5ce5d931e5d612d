package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightinfo/internal/kafka"
	"github.com/go-logr/logr"
	lru "github.com/hashicorp/golang-lru/v2"
)

const seenEvents = 4096

// Notifier writes one audit line per flight event.
type Notifier struct {
	logger logr.Logger
	seen   *lru.Cache[string, struct{}]
}

func NewNotifier(logger logr.Logger) (*Notifier, error) {
	seen, err := lru.New[string, struct{}](seenEvents)
	if err != nil {
		return nil, fmt.Errorf("create seen-event cache: %w", err)
	}
	return &Notifier{logger: logger, seen: seen}, nil
}

// Send ignores events it has recently audited; Kafka delivers at least once.
func (n *Notifier) Send(ctx context.Context, event kafka.FlightEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.seen.Contains(event.ID) {
		return nil
	}
	n.seen.Add(event.ID, struct{}{})

	kv := []any{"id", event.ID, "type", event.Type, "occurredAt", event.OccurredAt}
	switch event.Type {
	case kafka.EventFlightsLoaded, kafka.EventFlightsSaved:
		kv = append(kv, "count", event.Count)
	default:
		kv = append(kv, "flightNumber", event.FlightNumber, "airline", event.Airline, "destination", event.Destination, "status", event.Status)
	}
	n.logger.Info("Flight registry event", kv...)
	return nil
}

func (n *Notifier) Seen() int {
	return n.seen.Len()
}
