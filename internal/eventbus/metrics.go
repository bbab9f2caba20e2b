package eventbus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter переносит счётчики шины в Prometheus с периодом опроса.
type MetricsExporter struct {
	bus    EventBus
	period time.Duration
	quit   chan struct{}
	done   chan struct{}
	prev   Stats

	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg.
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer, period time.Duration) (*MetricsExporter, error) {
	if period <= 0 {
		period = time.Second
	}
	me := &MetricsExporter{
		bus:    bus,
		period: period,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battlescape",
			Subsystem: "eventbus",
			Name:      "messages_published_total",
			Help:      "Опубликовано событий.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battlescape",
			Subsystem: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Доставлено событий подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battlescape",
			Subsystem: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Отброшено событий (ошибки, back-pressure).",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "battlescape",
			Subsystem: "eventbus",
			Name:      "messages_inflight",
			Help:      "Событий в очередях подписчиков.",
		}),
	}
	for _, c := range []prometheus.Collector{me.published, me.consumed, me.dropped, me.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return me, nil
}

// Start запускает опрос шины в отдельной горутине
func (m *MetricsExporter) Start() {
	go m.loop()
}

// Stop останавливает опрос.
func (m *MetricsExporter) Stop() {
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop() {
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()
	defer close(m.done)

	for {
		select {
		case <-ticker.C:
			m.Collect()
		case <-m.quit:
			return
		}
	}
}

// Collect переносит приращения счётчиков шины с прошлого опроса
func (m *MetricsExporter) Collect() {
	stats := m.bus.Metrics()
	if d := stats.Published - m.prev.Published; d > 0 {
		m.published.Add(float64(d))
	}
	if d := stats.Consumed - m.prev.Consumed; d > 0 {
		m.consumed.Add(float64(d))
	}
	if d := stats.Dropped - m.prev.Dropped; d > 0 {
		m.dropped.Add(float64(d))
	}
	m.inflight.Set(float64(stats.InFlight))
	m.prev = stats
}
