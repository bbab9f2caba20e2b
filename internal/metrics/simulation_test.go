package metrics

import (
	"testing"
	"time"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAddsIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := NewSimulationExporter(reg)
	require.NoError(t, err)

	e.Observe(entity.Stats{Ticks: 3, Traces: 10, EntitiesInUse: 4, EntitiesCap: 1024, LastTick: time.Millisecond})
	e.Observe(entity.Stats{Ticks: 5, Traces: 12, FatalErrors: 1, EntitiesInUse: 2, EntitiesCap: 1024})
	e.Observe(entity.Stats{Ticks: 5, Traces: 12, FatalErrors: 1, EntitiesInUse: 2, EntitiesCap: 1024})

	assert.Equal(t, 5.0, testutil.ToFloat64(e.ticks))
	assert.Equal(t, 12.0, testutil.ToFloat64(e.traces))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.fatal))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.inUse))
	assert.Equal(t, 1024.0, testutil.ToFloat64(e.capacity))
	assert.Equal(t, 1, testutil.CollectAndCount(e.tickSeconds, "battlescape_le_tick_duration_seconds"))

	e.AddDeltas(3)
	e.AddDeltas(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(e.deltas))
}

func TestDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewSimulationExporter(reg)
	require.NoError(t, err)
	_, err = NewSimulationExporter(reg)
	assert.Error(t, err)
}
