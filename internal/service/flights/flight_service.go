package flights

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/kafka"
	"github.com/Domenick1991/flightinfo/internal/logging"
	"github.com/Domenick1991/flightinfo/internal/metrics"
	"github.com/Domenick1991/flightinfo/internal/registry"
	"github.com/Domenick1991/flightinfo/internal/repository"
	"github.com/go-logr/logr"
)

var (
	ErrFlightNotFound = errors.New("flight not found")
	ErrNoRepository   = errors.New("no flight repository configured")
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Get(ctx context.Context, flightNumber string) (*domain.Flight, error)
	Add(ctx context.Context, flight domain.Flight) error
	Remove(ctx context.Context, flightNumber string) error
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context) (int, error)

	ByAirline(ctx context.Context, airline string) []domain.Flight
	Delayed(ctx context.Context) []domain.Flight
	ByDepartureDate(ctx context.Context, date string) []domain.Flight
	ByTimeRangeAndDestination(ctx context.Context, start, end, destination string) ([]domain.Flight, error)
	ArrivedInWindow(ctx context.Context, end string, windowHours float64) ([]domain.Flight, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	registry *registry.Registry
	repo     repository.FlightRepository
	producer Producer
	topic    string
	autoSave bool
	logger   logr.Logger
}

type FlightServiceOption func(*FlightService)

// WithEvents publishes registry mutations to topic.
func WithEvents(producer Producer, topic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.topic = topic
	}
}

// WithAutoSave persists a snapshot after every successful mutation.
func WithAutoSave(enabled bool) FlightServiceOption {
	return func(s *FlightService) {
		s.autoSave = enabled
	}
}

func WithLogger(logger logr.Logger) FlightServiceOption {
	return func(s *FlightService) {
		s.logger = logger
	}
}

func NewFlightService(reg *registry.Registry, repo repository.FlightRepository, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		registry: reg,
		repo:     repo,
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.registry.All(), nil
}

func (s *FlightService) Get(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, ok := s.registry.Find(flightNumber)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlightNotFound, flightNumber)
	}
	return &f, nil
}

func (s *FlightService) Add(ctx context.Context, flight domain.Flight) error {
	s.registry.Add(flight)
	s.publish(ctx, kafka.NewFlightEvent(kafka.EventFlightAdded, flight))
	return s.autoSaveSnapshot(ctx)
}

// Remove of an unknown flight number is a no-op: no event, no error.
func (s *FlightService) Remove(ctx context.Context, flightNumber string) error {
	removed, ok := s.registry.Remove(flightNumber)
	if !ok {
		return nil
	}
	s.publish(ctx, kafka.NewFlightEvent(kafka.EventFlightRemoved, removed))
	return s.autoSaveSnapshot(ctx)
}

// Load appends the stored snapshot to the registry and returns how many
// flights it contained.
func (s *FlightService) Load(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, ErrNoRepository
	}
	flights, err := s.repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load flights: %w", err)
	}
	s.registry.BulkLoad(flights)
	s.logger.Info("Loaded flights", "count", len(flights), "total", s.registry.Len())
	s.publish(ctx, kafka.NewBatchEvent(kafka.EventFlightsLoaded, len(flights)))
	return len(flights), nil
}

func (s *FlightService) Save(ctx context.Context) (int, error) {
	n, err := s.save(ctx)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, kafka.NewBatchEvent(kafka.EventFlightsSaved, n))
	return n, nil
}

func (s *FlightService) ByAirline(_ context.Context, airline string) []domain.Flight {
	return s.registry.ByAirline(airline)
}

func (s *FlightService) Delayed(_ context.Context) []domain.Flight {
	return s.registry.Delayed()
}

func (s *FlightService) ByDepartureDate(_ context.Context, date string) []domain.Flight {
	return s.registry.ByDepartureDate(date)
}

func (s *FlightService) ByTimeRangeAndDestination(_ context.Context, start, end, destination string) ([]domain.Flight, error) {
	return s.registry.ByTimeRangeAndDestination(start, end, destination)
}

func (s *FlightService) ArrivedInWindow(_ context.Context, end string, windowHours float64) ([]domain.Flight, error) {
	return s.registry.ArrivedInWindow(end, windowHours)
}

func (s *FlightService) save(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, ErrNoRepository
	}
	snapshot := s.registry.All()
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return 0, fmt.Errorf("save flights: %w", err)
	}
	return len(snapshot), nil
}

func (s *FlightService) autoSaveSnapshot(ctx context.Context) error {
	if !s.autoSave {
		return nil
	}
	_, err := s.save(ctx)
	return err
}

// publish never fails the caller; events are best effort.
func (s *FlightService) publish(ctx context.Context, event kafka.FlightEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.Key(), event); err != nil {
		metrics.RecordPublishFailure(event.Type)
		logging.FromContext(ctx, s.logger).Error(err, "Failed to publish flight event", "type", event.Type, "id", event.ID)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
