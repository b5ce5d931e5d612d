package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type FlightStatus int

const (
	FlightStatusOnTime FlightStatus = iota
	FlightStatusDelayed
	FlightStatusCancelled
	FlightStatusBoarding
	FlightStatusInFlight
)

var ErrUnknownStatus = errors.New("unknown flight status")

var statusNames = [...]string{
	FlightStatusOnTime:    "OnTime",
	FlightStatusDelayed:   "Delayed",
	FlightStatusCancelled: "Cancelled",
	FlightStatusBoarding:  "Boarding",
	FlightStatusInFlight:  "InFlight",
}

func (s FlightStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("FlightStatus(%d)", int(s))
	}
	return statusNames[s]
}

func (s FlightStatus) Valid() bool {
	return s >= FlightStatusOnTime && s <= FlightStatusInFlight
}

// ParseFlightStatus matches an enumeration name case-insensitively.
func ParseFlightStatus(name string) (FlightStatus, error) {
	name = strings.TrimSpace(name)
	for i, n := range statusNames {
		if strings.EqualFold(n, name) {
			return FlightStatus(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

func (s FlightStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *FlightStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseFlightStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalJSON accepts both the enumeration name and its ordinal; older
// snapshots were written with ordinals.
func (s *FlightStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		return s.UnmarshalText([]byte(name))
	}

	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownStatus, data)
	}
	status := FlightStatus(n)
	if !status.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownStatus, n)
	}
	*s = status
	return nil
}
