package domain

import "time"

// Flight is one scheduled flight. Optional text fields are pointers so that
// an absent value stays distinct from an empty string.
type Flight struct {
	FlightNumber  *string
	Airline       *string
	Destination   *string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Status        FlightStatus
	Duration      time.Duration
	AircraftType  *string
	Terminal      *string
}

// Number returns the flight number or "" when it is unset.
func (f Flight) Number() string {
	return deref(f.FlightNumber)
}

func (f Flight) AirlineName() string {
	return deref(f.Airline)
}

func (f Flight) DestinationName() string {
	return deref(f.Destination)
}

func StringPtr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
