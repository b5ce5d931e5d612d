package cache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Domenick1991/flightinfo/config"
	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/flightjson"
	"github.com/Domenick1991/flightinfo/internal/repository"
	"github.com/redis/go-redis/v9"
)

const defaultSnapshotKey = "snapshot:flights"

// RedisSnapshotStore keeps the flights document under a single key.
type RedisSnapshotStore struct {
	client redis.Cmdable
	closer io.Closer
	key    string
	codec  *flightjson.Codec
}

func NewRedisSnapshotStore(cfg config.RedisConfig, key string, codec *flightjson.Codec) *RedisSnapshotStore {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	s := NewRedisSnapshotStoreWithClient(client, key, codec)
	s.closer = client
	return s
}

func NewRedisSnapshotStoreWithClient(client redis.Cmdable, key string, codec *flightjson.Codec) *RedisSnapshotStore {
	if key == "" {
		key = defaultSnapshotKey
	}
	return &RedisSnapshotStore{client: client, key: key, codec: codec}
}

func (s *RedisSnapshotStore) Load(ctx context.Context) ([]domain.Flight, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %s", repository.ErrSnapshotNotFound, s.key)
		}
		return nil, err
	}
	return s.codec.Unmarshal(data)
}

func (s *RedisSnapshotStore) Save(ctx context.Context, flights []domain.Flight) error {
	payload, err := flightjson.Marshal(flights)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, payload, 0).Err()
}

func (s *RedisSnapshotStore) Key() string {
	return s.key
}

func (s *RedisSnapshotStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

var _ repository.FlightRepository = (*RedisSnapshotStore)(nil)
