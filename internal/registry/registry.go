// Package registry holds flights in memory and answers filtered queries
// over them. Every query result is sorted by departure time with ties kept
// in insertion order.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/flightinfo/internal/datetime"
	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/logging"
	"github.com/Domenick1991/flightinfo/internal/metrics"
	"github.com/go-logr/logr"
)

var ErrInvalidDateFormat = datetime.ErrInvalidDateFormat

type Registry struct {
	mu      sync.RWMutex
	flights []domain.Flight
	parser  *datetime.Parser
	logger  logr.Logger
}

type Option func(*Registry)

func WithParser(p *datetime.Parser) Option {
	return func(r *Registry) {
		r.parser = p
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		parser: datetime.NewParser(time.Local),
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends f. Duplicates are allowed.
func (r *Registry) Add(f domain.Flight) {
	r.mu.Lock()
	r.flights = append(r.flights, f)
	n := len(r.flights)
	r.mu.Unlock()

	metrics.RecordOperation("add")
	metrics.SetFlights(n)
}

// Remove deletes the first flight whose number equals flightNumber and
// returns it. An unknown number leaves the registry untouched and is not an
// error; ok only reports whether a flight was removed.
func (r *Registry) Remove(flightNumber string) (removed domain.Flight, ok bool) {
	metrics.RecordOperation("remove")

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.flights {
		if f.FlightNumber != nil && *f.FlightNumber == flightNumber {
			r.flights = append(r.flights[:i:i], r.flights[i+1:]...)
			metrics.SetFlights(len(r.flights))
			return f, true
		}
	}
	r.logger.V(logging.VERBOSE).Info("Flight to remove not found", "flightNumber", flightNumber)
	return domain.Flight{}, false
}

// BulkLoad appends flights after the existing ones.
func (r *Registry) BulkLoad(flights []domain.Flight) {
	r.mu.Lock()
	r.flights = append(r.flights, flights...)
	n := len(r.flights)
	r.mu.Unlock()

	metrics.RecordOperation("bulk_load")
	metrics.SetFlights(n)
}

// All returns a copy of the flights in insertion order.
func (r *Registry) All() []domain.Flight {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Flight, len(r.flights))
	copy(out, r.flights)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flights)
}

func (r *Registry) Find(flightNumber string) (domain.Flight, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.flights {
		if f.FlightNumber != nil && *f.FlightNumber == flightNumber {
			return f, true
		}
	}
	return domain.Flight{}, false
}

func (r *Registry) ByAirline(airline string) []domain.Flight {
	metrics.RecordOperation("by_airline")
	return r.selectSorted(func(f domain.Flight) bool {
		return f.Airline != nil && *f.Airline == airline
	})
}

func (r *Registry) Delayed() []domain.Flight {
	metrics.RecordOperation("delayed")
	return r.selectSorted(func(f domain.Flight) bool {
		return f.Status == domain.FlightStatusDelayed
	})
}

// ByDepartureDate compares date against the departure's calendar date
// formatted as YYYY-MM-DD. The argument is not parsed.
func (r *Registry) ByDepartureDate(date string) []domain.Flight {
	metrics.RecordOperation("by_departure_date")
	return r.selectSorted(func(f domain.Flight) bool {
		return datetime.FormatDate(f.DepartureTime) == date
	})
}

// ByTimeRangeAndDestination returns flights to destination that depart at
// or after start and arrive at or before end. The bounds apply to different
// fields on purpose. An unparseable time yields an empty result together
// with an error wrapping ErrInvalidDateFormat.
func (r *Registry) ByTimeRangeAndDestination(start, end, destination string) ([]domain.Flight, error) {
	const op = "by_time_range_and_destination"
	metrics.RecordOperation(op)

	startTime, err := r.parser.Parse(start)
	if err != nil {
		return r.invalidDate(op, err)
	}
	endTime, err := r.parser.Parse(end)
	if err != nil {
		return r.invalidDate(op, err)
	}

	return r.selectSorted(func(f domain.Flight) bool {
		return !f.DepartureTime.Before(startTime) &&
			!f.ArrivalTime.After(endTime) &&
			f.Destination != nil && *f.Destination == destination
	}), nil
}

// ArrivedInWindow returns flights arriving within [end-windowHours, end],
// ordered by departure time.
func (r *Registry) ArrivedInWindow(end string, windowHours float64) ([]domain.Flight, error) {
	const op = "arrived_in_window"
	metrics.RecordOperation(op)

	endTime, err := r.parser.Parse(end)
	if err != nil {
		return r.invalidDate(op, err)
	}
	startWindow := endTime.Add(-time.Duration(windowHours * float64(time.Hour)))

	return r.selectSorted(func(f domain.Flight) bool {
		return !f.ArrivalTime.Before(startWindow) && !f.ArrivalTime.After(endTime)
	}), nil
}

func (r *Registry) invalidDate(op string, err error) ([]domain.Flight, error) {
	metrics.RecordInvalidDate(op)
	r.logger.Info("Invalid date format", "operation", op, "error", err.Error())
	return []domain.Flight{}, fmt.Errorf("%s: %w", op, err)
}

func (r *Registry) selectSorted(match func(domain.Flight) bool) []domain.Flight {
	r.mu.RLock()
	out := make([]domain.Flight, 0)
	for _, f := range r.flights {
		if match(f) {
			out = append(out, f)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DepartureTime.Before(out[j].DepartureTime)
	})
	return out
}
