package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightinfo/internal/domain"
)

var ErrSnapshotNotFound = errors.New("flight snapshot not found")

// FlightRepository persists a whole snapshot of the registry. Save replaces
// whatever was stored before.
type FlightRepository interface {
	Load(ctx context.Context) ([]domain.Flight, error)
	Save(ctx context.Context, flights []domain.Flight) error
}
