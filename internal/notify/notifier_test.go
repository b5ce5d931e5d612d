package notify

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/kafka"
	"github.com/Domenick1991/flightinfo/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SendDeduplicates(t *testing.T) {
	n, err := NewNotifier(logging.NewTestLogger())
	require.NoError(t, err)
	ctx := context.Background()

	event := kafka.NewFlightEvent(kafka.EventFlightAdded, domain.Flight{FlightNumber: domain.StringPtr("FL1")})

	assert.NoError(t, n.Send(ctx, event))
	assert.NoError(t, n.Send(ctx, event))
	assert.NoError(t, n.Send(ctx, kafka.NewBatchEvent(kafka.EventFlightsSaved, 3)))

	assert.Equal(t, 2, n.Seen())
}

func TestNotifier_SendCanceled(t *testing.T) {
	n, err := NewNotifier(logging.NewTestLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.Send(ctx, kafka.NewBatchEvent(kafka.EventFlightsLoaded, 1)), context.Canceled)
	assert.Zero(t, n.Seen())
}
