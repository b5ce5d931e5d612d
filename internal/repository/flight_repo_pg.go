package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createFlightsTable = `CREATE TABLE IF NOT EXISTS flights (
	position           INTEGER PRIMARY KEY,
	flight_number      TEXT,
	airline            TEXT,
	destination        TEXT,
	departure_time     TIMESTAMPTZ NOT NULL,
	departure_offset_s INTEGER NOT NULL DEFAULT 0,
	arrival_time       TIMESTAMPTZ NOT NULL,
	arrival_offset_s   INTEGER NOT NULL DEFAULT 0,
	status             TEXT NOT NULL,
	duration_ns        BIGINT NOT NULL,
	aircraft_type      TEXT,
	terminal           TEXT
)`

// Tables created before the offset columns existed get them on startup.
const addOffsetColumns = `ALTER TABLE flights
	ADD COLUMN IF NOT EXISTS departure_offset_s INTEGER NOT NULL DEFAULT 0,
	ADD COLUMN IF NOT EXISTS arrival_offset_s INTEGER NOT NULL DEFAULT 0`

var flightColumns = []string{
	"position", "flight_number", "airline", "destination",
	"departure_time", "departure_offset_s", "arrival_time", "arrival_offset_s",
	"status", "duration_ns", "aircraft_type", "terminal",
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createFlightsTable); err != nil {
		return fmt.Errorf("create flights table: %w", err)
	}
	if _, err := r.db.Exec(ctx, addOffsetColumns); err != nil {
		return fmt.Errorf("add flight offset columns: %w", err)
	}
	return nil
}

func (r *PGFlightRepository) Load(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT flight_number, airline, destination, departure_time, departure_offset_s, arrival_time, arrival_offset_s, status, duration_ns, aircraft_type, terminal FROM flights ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var (
			f               domain.Flight
			departureOffset int32
			arrivalOffset   int32
			status          string
			duration        int64
		)
		if err := rows.Scan(&f.FlightNumber, &f.Airline, &f.Destination, &f.DepartureTime, &departureOffset, &f.ArrivalTime, &arrivalOffset, &status, &duration, &f.AircraftType, &f.Terminal); err != nil {
			return nil, err
		}
		f.DepartureTime = withOffset(f.DepartureTime, departureOffset)
		f.ArrivalTime = withOffset(f.ArrivalTime, arrivalOffset)
		if f.Status, err = domain.ParseFlightStatus(status); err != nil {
			return nil, err
		}
		f.Duration = time.Duration(duration)
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// Save replaces the table contents inside one transaction.
func (r *PGFlightRepository) Save(ctx context.Context, flights []domain.Flight) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE flights`); err != nil {
		return fmt.Errorf("truncate flights: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flights"}, flightColumns, pgx.CopyFromRows(flightRows(flights))); err != nil {
		return fmt.Errorf("copy flights: %w", err)
	}

	return tx.Commit(ctx)
}

func flightRows(flights []domain.Flight) [][]any {
	rows := make([][]any, 0, len(flights))
	for i, f := range flights {
		rows = append(rows, []any{
			int32(i),
			f.FlightNumber,
			f.Airline,
			f.Destination,
			f.DepartureTime,
			zoneOffset(f.DepartureTime),
			f.ArrivalTime,
			zoneOffset(f.ArrivalTime),
			f.Status.String(),
			int64(f.Duration),
			f.AircraftType,
			f.Terminal,
		})
	}
	return rows
}

// TIMESTAMPTZ keeps the instant only, so each flight time is stored with its
// UTC offset and restored into a fixed zone on load.
func zoneOffset(t time.Time) int32 {
	_, offset := t.Zone()
	return int32(offset)
}

func withOffset(t time.Time, offset int32) time.Time {
	if offset == 0 {
		return t.UTC()
	}
	return t.In(time.FixedZone("", int(offset)))
}

var _ FlightRepository = (*PGFlightRepository)(nil)
