package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/flightjson"
)

type FileFlightRepository struct {
	path  string
	codec *flightjson.Codec
}

func NewFileFlightRepository(path string, codec *flightjson.Codec) FlightRepository {
	return &FileFlightRepository{path: path, codec: codec}
}

func (r *FileFlightRepository) Load(ctx context.Context) ([]domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, r.path)
		}
		return nil, fmt.Errorf("open flights file: %w", err)
	}
	defer file.Close()

	flights, err := r.codec.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return flights, nil
}

// Save writes to a temporary file next to the target and renames it over
// the target, so readers never see a partial document.
func (r *FileFlightRepository) Save(ctx context.Context, flights []domain.Flight) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := flightjson.Encode(tmp, flights); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

var _ FlightRepository = (*FileFlightRepository)(nil)
