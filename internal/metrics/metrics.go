package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "flight_registry"

var (
	operationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Count of registry operations by name.",
		},
		[]string{"operation"},
	)
	invalidDateCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "invalid_date_total",
			Help:      "Count of queries rejected because a time argument could not be parsed.",
		},
		[]string{"operation"},
	)
	flightsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: subsystem,
			Name:      "flights",
			Help:      "Number of flights currently held in the registry.",
		},
	)
	eventPublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "event_publish_failures_total",
			Help:      "Count of flight events that could not be published.",
		},
		[]string{"type"},
	)
)

var registerMetrics sync.Once

// Register all metrics with the default registerer.
func Register() {
	registerMetrics.Do(func() {
		prometheus.MustRegister(operationsCounter)
		prometheus.MustRegister(invalidDateCounter)
		prometheus.MustRegister(flightsGauge)
		prometheus.MustRegister(eventPublishFailures)
	})
}

func RecordOperation(operation string) {
	operationsCounter.WithLabelValues(operation).Inc()
}

func RecordInvalidDate(operation string) {
	invalidDateCounter.WithLabelValues(operation).Inc()
}

func SetFlights(n int) {
	flightsGauge.Set(float64(n))
}

func RecordPublishFailure(eventType string) {
	eventPublishFailures.WithLabelValues(eventType).Inc()
}
