package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightinfo/config"
	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/flightjson"
	"github.com/Domenick1991/flightinfo/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedis overrides only the commands the snapshot store issues.
type MockRedis struct {
	redis.Cmdable
	mock.Mock
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewStatusResult(args.String(0), args.Error(1))
}

func TestNewRedisSnapshotStore(t *testing.T) {
	store := NewRedisSnapshotStore(config.RedisConfig{Addr: "localhost:6379"}, "", flightjson.NewCodec(time.UTC))
	assert.NotNil(t, store)
	assert.Equal(t, defaultSnapshotKey, store.Key())
	assert.NoError(t, store.Close())
}

func TestRedisSnapshotStore_Save(t *testing.T) {
	client := &MockRedis{}
	store := NewRedisSnapshotStoreWithClient(client, "flights", flightjson.NewCodec(time.UTC))
	ctx := context.Background()

	flights := []domain.Flight{{FlightNumber: domain.StringPtr("FL1"), Status: domain.FlightStatusBoarding}}
	payload, err := flightjson.Marshal(flights)
	require.NoError(t, err)

	client.On("Set", ctx, "flights", payload, time.Duration(0)).Return("OK", nil).Once()

	require.NoError(t, store.Save(ctx, flights))
	client.AssertExpectations(t)
}

func TestRedisSnapshotStore_Load(t *testing.T) {
	client := &MockRedis{}
	store := NewRedisSnapshotStoreWithClient(client, "flights", flightjson.NewCodec(time.UTC))
	ctx := context.Background()

	payload, err := flightjson.Marshal([]domain.Flight{{FlightNumber: domain.StringPtr("FL1")}, {FlightNumber: domain.StringPtr("FL2")}})
	require.NoError(t, err)
	client.On("Get", ctx, "flights").Return(string(payload), nil).Once()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "FL2", got[1].Number())
	client.AssertExpectations(t)
}

func TestRedisSnapshotStore_LoadMissingKey(t *testing.T) {
	client := &MockRedis{}
	store := NewRedisSnapshotStoreWithClient(client, "flights", flightjson.NewCodec(time.UTC))
	ctx := context.Background()

	client.On("Get", ctx, "flights").Return("", redis.Nil).Once()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}

func TestRedisSnapshotStore_LoadError(t *testing.T) {
	client := &MockRedis{}
	store := NewRedisSnapshotStoreWithClient(client, "flights", flightjson.NewCodec(time.UTC))
	ctx := context.Background()

	expectedErr := errors.New("connection refused")
	client.On("Get", ctx, "flights").Return("", expectedErr).Once()

	_, err := store.Load(ctx)
	assert.Equal(t, expectedErr, err)
}

func TestRedisSnapshotStore_LoadUsesCodecLocation(t *testing.T) {
	client := &MockRedis{}
	eastern := time.FixedZone("EST", -5*60*60)
	store := NewRedisSnapshotStoreWithClient(client, "flights", flightjson.NewCodec(eastern))
	ctx := context.Background()

	client.On("Get", ctx, "flights").Return(`{"Flights": [{"FlightNumber": "FL1", "DepartureTime": "2023-06-15T23:30:00"}]}`, nil).Once()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].DepartureTime.Equal(time.Date(2023, 6, 16, 4, 30, 0, 0, time.UTC)))
}
