package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledTelemetryIsNoop(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), Options{ServiceName: "battlescape"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestEnabledTelemetryShutsDown(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), Options{
		Enabled:     true,
		ServiceName: "battlescape-test",
		Endpoint:    "127.0.0.1:1",
		SampleRatio: 0.5,
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
