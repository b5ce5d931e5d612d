// Package flightjson encodes flights in the {"Flights": [...]} document
// shape shared by snapshots and the HTTP API.
package flightjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Domenick1991/flightinfo/internal/datetime"
	"github.com/Domenick1991/flightinfo/internal/domain"
)

type Document struct {
	Flights []Record `json:"Flights"`
}

type Record struct {
	FlightNumber  *string             `json:"FlightNumber"`
	Airline       *string             `json:"Airline"`
	Destination   *string             `json:"Destination"`
	DepartureTime Timestamp           `json:"DepartureTime"`
	ArrivalTime   Timestamp           `json:"ArrivalTime"`
	Status        domain.FlightStatus `json:"Status"`
	Duration      TimeSpan            `json:"Duration"`
	AircraftType  *string             `json:"AircraftType"`
	Terminal      *string             `json:"Terminal"`
}

// Timestamp is written as RFC 3339. On input the text is kept as is and
// resolved by a Codec, so zone-less values land in the codec's location.
type Timestamp struct {
	time time.Time
	text string
	set  bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.time.Format(time.RFC3339Nano))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = Timestamp{text: s, set: true}
	return nil
}

func (t Timestamp) resolve(p *datetime.Parser) (time.Time, error) {
	if !t.set {
		return t.time, nil
	}
	return p.Parse(t.text)
}

// TimeSpan is written as [d.]hh:mm:ss; integer nanoseconds are also read.
type TimeSpan time.Duration

func (d TimeSpan) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(datetime.FormatTimeSpan(time.Duration(d)))), nil
}

func (d *TimeSpan) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] != '"' {
		n, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s", datetime.ErrInvalidTimeSpan, data)
		}
		*d = TimeSpan(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := datetime.ParseTimeSpan(s)
	if err != nil {
		return err
	}
	*d = TimeSpan(parsed)
	return nil
}

func FromDomain(f domain.Flight) Record {
	return Record{
		FlightNumber:  f.FlightNumber,
		Airline:       f.Airline,
		Destination:   f.Destination,
		DepartureTime: NewTimestamp(f.DepartureTime),
		ArrivalTime:   NewTimestamp(f.ArrivalTime),
		Status:        f.Status,
		Duration:      TimeSpan(f.Duration),
		AircraftType:  f.AircraftType,
		Terminal:      f.Terminal,
	}
}

func FromDomainList(flights []domain.Flight) []Record {
	records := make([]Record, 0, len(flights))
	for _, f := range flights {
		records = append(records, FromDomain(f))
	}
	return records
}

// Codec reads records, interpreting zone-less timestamps in its location.
// A nil Codec reads in the local zone.
type Codec struct {
	parser *datetime.Parser
}

func NewCodec(loc *time.Location) *Codec {
	return &Codec{parser: datetime.NewParser(loc)}
}

func (c *Codec) timestampParser() *datetime.Parser {
	if c == nil {
		return nil
	}
	return c.parser
}

func (c *Codec) ToDomain(r Record) (domain.Flight, error) {
	departure, err := r.DepartureTime.resolve(c.timestampParser())
	if err != nil {
		return domain.Flight{}, fmt.Errorf("DepartureTime: %w", err)
	}
	arrival, err := r.ArrivalTime.resolve(c.timestampParser())
	if err != nil {
		return domain.Flight{}, fmt.Errorf("ArrivalTime: %w", err)
	}
	return domain.Flight{
		FlightNumber:  r.FlightNumber,
		Airline:       r.Airline,
		Destination:   r.Destination,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Status:        r.Status,
		Duration:      time.Duration(r.Duration),
		AircraftType:  r.AircraftType,
		Terminal:      r.Terminal,
	}, nil
}

func (c *Codec) ToDomainList(records []Record) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0, len(records))
	for i, r := range records {
		f, err := c.ToDomain(r)
		if err != nil {
			return nil, fmt.Errorf("flight %d: %w", i, err)
		}
		flights = append(flights, f)
	}
	return flights, nil
}

func (c *Codec) Decode(r io.Reader) ([]domain.Flight, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode flights document: %w", err)
	}
	flights, err := c.ToDomainList(doc.Flights)
	if err != nil {
		return nil, fmt.Errorf("decode flights document: %w", err)
	}
	return flights, nil
}

func (c *Codec) Unmarshal(data []byte) ([]domain.Flight, error) {
	return c.Decode(bytes.NewReader(data))
}

func Encode(w io.Writer, flights []domain.Flight) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Flights: FromDomainList(flights)}); err != nil {
		return fmt.Errorf("encode flights document: %w", err)
	}
	return nil
}

func Marshal(flights []domain.Flight) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, flights); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
