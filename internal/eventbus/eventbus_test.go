package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Seq int `json:"seq"`
}

func TestEnvelopeRoundTrip(t *testing.T) {
	ev, err := NewEnvelope("client", TypeDelta, "session-1", payload{Seq: 7})
	require.NoError(t, err)
	assert.Len(t, ev.ID, 36)
	assert.Equal(t, TypeDelta, ev.EventType)
	assert.Equal(t, "session-1", ev.CorrelationID)

	var p payload
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, 7, p.Seq)

	ev.Payload = []byte("{")
	assert.Error(t, ev.Decode(&p))

	_, err = NewEnvelope("client", TypeDelta, "", make(chan int))
	assert.Error(t, err)
}

func TestMemoryBusOrderAndFilter(t *testing.T) {
	bus := NewMemoryBus(64)
	defer bus.Close()
	ctx := context.Background()

	var mu sync.Mutex
	var seqs []int
	done := make(chan struct{})
	_, err := bus.Subscribe(ctx, Filter{Types: []string{TypeDelta}}, func(_ context.Context, ev *Envelope) {
		var p payload
		assert.NoError(t, ev.Decode(&p))
		mu.Lock()
		seqs = append(seqs, p.Seq)
		if len(seqs) == 20 {
			close(done)
		}
		mu.Unlock()
	})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		ev, err := NewEnvelope("server", TypeDelta, "", payload{Seq: i})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, ev))
		other, err := NewEnvelope("server", TypeSound, "", payload{Seq: -1})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, other))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("события не доставлены")
	}
	mu.Lock()
	defer mu.Unlock()
	for i, s := range seqs {
		assert.Equal(t, i, s)
	}
	assert.Equal(t, uint64(40), bus.Metrics().Published)
}

func TestMemoryBusDropsLowPriority(t *testing.T) {
	bus := NewMemoryBus(1)
	defer bus.Close()
	ctx := context.Background()

	block := make(chan struct{})
	_, err := bus.Subscribe(ctx, Filter{}, func(context.Context, *Envelope) { <-block })
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(ctx, &Envelope{EventType: TypeParticle}))
	}
	close(block)
	assert.Greater(t, bus.Metrics().Dropped, uint64(0))
}

func TestMemoryBusClosed(t *testing.T) {
	bus := NewMemoryBus(4)
	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Publish(context.Background(), &Envelope{}), ErrClosed)
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, bus.Close())
}

func TestUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()
	ctx := context.Background()

	got := make(chan struct{}, 4)
	sub, err := bus.Subscribe(ctx, Filter{}, func(context.Context, *Envelope) { got <- struct{}{} })
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, &Envelope{EventType: TypeDelta}))
	select {
	case <-got:
		t.Fatal("отписанный обработчик вызван")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMetricsExporterCollect(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()
	reg := prometheus.NewRegistry()
	me, err := NewMetricsExporter(bus, reg, time.Hour)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: TypeDelta}))
	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: TypeDelta}))
	me.Collect()
	me.Collect()
	assert.Equal(t, 2.0, testutil.ToFloat64(me.published))

	_, err = NewMetricsExporter(bus, reg, time.Hour)
	assert.Error(t, err, "повторная регистрация")
}
