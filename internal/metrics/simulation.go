// Package metrics выставляет счётчики симуляции в Prometheus.
package metrics

import (
	"sync"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/prometheus/client_golang/prometheus"
)

// SimulationExporter переносит entity.Stats в метрики Prometheus.
// Observe вызывается циклом кадров; scrape читает метрики из своей горутины.
type SimulationExporter struct {
	mu   sync.Mutex
	prev entity.Stats

	ticks       prometheus.Counter
	thinks      prometheus.Counter
	traces      prometheus.Counter
	entityScans prometheus.Counter
	allocations prometheus.Counter
	fatal       prometheus.Counter
	tickSeconds prometheus.Histogram
	inUse       prometheus.Gauge
	live        prometheus.Gauge
	capacity    prometheus.Gauge
	models      prometheus.Gauge
	deltas      prometheus.Counter
}

// NewSimulationExporter создаёт коллекторы и регистрирует их в reg
func NewSimulationExporter(reg prometheus.Registerer) (*SimulationExporter, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: "battlescape", Subsystem: "le", Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "battlescape", Subsystem: "le", Name: name, Help: help})
	}

	e := &SimulationExporter{
		ticks:       counter("ticks_total", "Кадров симуляции."),
		thinks:      counter("thinks_total", "Вызовов обработчиков состояний."),
		traces:      counter("traces_total", "Трассировок."),
		entityScans: counter("entity_scans_total", "Трассировок, дошедших до перебора сущностей."),
		allocations: counter("allocations_total", "Выделений слотов пула."),
		fatal:       counter("fatal_errors_total", "Кадров, прерванных фатальной ошибкой."),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "battlescape",
			Subsystem: "le",
			Name:      "tick_duration_seconds",
			Help:      "Длительность кадра симуляции.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),
		inUse:    gauge("entities_in_use", "Занятых слотов пула."),
		live:     gauge("entities_live", "Живой диапазон пула."),
		capacity: gauge("entities_capacity", "Ёмкость пула."),
		models:   gauge("local_models", "Декоративных моделей."),
		deltas:   counter("deltas_applied_total", "Применённых дельт сервера."),
	}

	for _, c := range []prometheus.Collector{
		e.ticks, e.thinks, e.traces, e.entityScans, e.allocations, e.fatal,
		e.tickSeconds, e.inUse, e.live, e.capacity, e.models, e.deltas,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Observe переносит приращения счётчиков с прошлого вызова
func (e *SimulationExporter) Observe(st entity.Stats) {
	e.mu.Lock()
	defer e.mu.Unlock()

	add := func(c prometheus.Counter, cur, prev uint64) {
		if cur > prev {
			c.Add(float64(cur - prev))
		}
	}
	add(e.ticks, st.Ticks, e.prev.Ticks)
	add(e.thinks, st.Thinks, e.prev.Thinks)
	add(e.traces, st.Traces, e.prev.Traces)
	add(e.entityScans, st.EntityScans, e.prev.EntityScans)
	add(e.allocations, st.Allocations, e.prev.Allocations)
	add(e.fatal, st.FatalErrors, e.prev.FatalErrors)
	if st.Ticks > e.prev.Ticks {
		e.tickSeconds.Observe(st.LastTick.Seconds())
	}

	e.inUse.Set(float64(st.EntitiesInUse))
	e.live.Set(float64(st.EntitiesLive))
	e.capacity.Set(float64(st.EntitiesCap))
	e.models.Set(float64(st.ModelsInUse))
	e.prev = st
}

// AddDeltas учитывает применённые дельты
func (e *SimulationExporter) AddDeltas(n int) {
	if n > 0 {
		e.deltas.Add(float64(n))
	}
}
