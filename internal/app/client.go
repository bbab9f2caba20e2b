// Package app собирает клиент боя: очередь дельт, симуляцию локальных
// сущностей, эффекты и метрики в один цикл кадров.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annel0/battlescape/internal/config"
	"github.com/annel0/battlescape/internal/delta"
	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/entity"
	"github.com/annel0/battlescape/internal/eventbus"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/annel0/battlescape/internal/metrics"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/annel0/battlescape/internal/terrain"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
)

// SnapshotSaver сохраняет снимок пулов при рассинхронизации
type SnapshotSaver interface {
	Save(snap entity.Snapshot) (string, error)
}

// DesyncEvent - полезная нагрузка eventbus.TypeDesync
type DesyncEvent struct {
	Session  string `json:"session"`
	Frame    uint64 `json:"frame"`
	Snapshot string `json:"snapshot,omitempty"`
	Error    string `json:"error"`
}

// Options - зависимости клиента. Пустые поля заменяются заглушками.
type Options struct {
	Config     *config.Config
	Bus        eventbus.EventBus
	Store      SnapshotSaver
	Sounds     effects.Sounds
	Terrain    *terrain.Table
	Catalog    *delta.Catalog
	Scenario   *delta.Scenario
	World      physics.WorldTracer
	Registerer prometheus.Registerer
	Logger     *logging.Logger
	Clock      func() time.Time
}

// Client - цикл кадров клиента боя
type Client struct {
	cfg       *config.Config
	session   string
	sim       *entity.Simulation
	applier   *delta.Applier
	queue     *delta.Queue
	scenario  *delta.Scenario
	particles *effects.ParticleSystem
	exporter  *metrics.SimulationExporter
	bus       eventbus.EventBus
	store     SnapshotSaver
	sub       eventbus.Subscription
	log       *logging.Logger
	clock     func() time.Time

	started time.Time
	frame   uint64
	pending []delta.Delta
	current atomic.Pointer[entity.Snapshot]
}

// New собирает клиента
func New(opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.GetSimulationLogger()
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	exporter, err := metrics.NewSimulationExporter(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	table := opts.Terrain
	if table == nil {
		table = terrain.NewTable()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = delta.NewCatalog()
	}
	simCfg := cfg.Simulation.Entity()
	world := opts.World
	if world == nil {
		world = groundWorld(simCfg)
	}

	sounds := opts.Sounds
	if sounds == nil {
		sounds = silence{}
	}
	particles := effects.NewParticleSystem(simCfg.MaxEntities)
	fx := &effects.Publisher{
		Particles: particles,
		Sounds:    sounds,
		Bus:       opts.Bus,
		Source:    "battlescape",
		Session:   cfg.EventBus.Session,
	}

	hulls := physics.NewHullRegistry()
	sim := entity.NewSimulation(simCfg, entity.Deps{
		World:     world,
		Hulls:     hulls,
		Particles: fx,
		Sounds:    fx,
		Terrain:   table,
		Models:    NewModelTable(),
		Logger:    log,
	})
	sim.SetWorldLevel(cfg.Simulation.WorldLevel)

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	applier := delta.NewApplier(sim, catalog, log)
	applier.SetHulls(hulls)
	return &Client{
		cfg:       cfg,
		session:   cfg.EventBus.Session,
		sim:       sim,
		applier:   applier,
		queue:     delta.NewQueue(cfg.EventBus.GetBuffer()),
		scenario:  opts.Scenario,
		particles: particles,
		exporter:  exporter,
		bus:       opts.Bus,
		store:     opts.Store,
		log:       log,
		clock:     clock,
	}, nil
}

// groundWorld - плоский пол на всю карту
func groundWorld(cfg entity.Config) *physics.BoxWorld {
	return physics.NewBoxWorld(physics.Brush{Hull: physics.Hull{
		Mins:     mgl64.Vec3{cfg.MapMin.X(), cfg.MapMin.Y(), -16},
		Maxs:     mgl64.Vec3{cfg.MapMax.X(), cfg.MapMax.Y(), 0},
		Surface:  "tex_terrain/ground",
		Contents: physics.ContentsSolid,
	}})
}

// Simulation возвращает симуляцию клиента
func (c *Client) Simulation() *entity.Simulation { return c.sim }

// Queue возвращает очередь входящих дельт
func (c *Client) Queue() *delta.Queue { return c.queue }

// Current реализует api.SnapshotSource
func (c *Client) Current() (entity.Snapshot, bool) {
	snap := c.current.Load()
	if snap == nil {
		return entity.Snapshot{}, false
	}
	return *snap, true
}

// Subscribe подключает очередь к шине событий сессии
func (c *Client) Subscribe(ctx context.Context) error {
	if c.bus == nil {
		return nil
	}
	sub, err := delta.Subscribe(ctx, c.bus, c.session, c.queue)
	if err != nil {
		return fmt.Errorf("subscribe deltas: %w", err)
	}
	c.sub = sub
	return nil
}

// Step выполняет один кадр на момент now (мс от начала боя): применяет
// накопленные дельты, прогоняет обработчики и публикует снимок.
// Фатальная ошибка сохраняет снимок пулов и возвращается вызывающему.
func (c *Client) Step(ctx context.Context, now int64) error {
	c.frame++
	c.sim.SetNow(now)

	c.pending = c.queue.Drain(c.pending[:0])
	if c.scenario != nil {
		c.pending = append(c.pending, c.scenario.Due(now)...)
	}
	before := c.applier.Applied()
	err := c.applier.ApplyAll(c.pending)
	c.exporter.AddDeltas(int(c.applier.Applied() - before))

	if err == nil {
		c.particles.Run(now)
		err = c.sim.Tick(ctx, now)
	}

	c.exporter.Observe(c.sim.Stats())
	snap := c.sim.Snapshot(c.session, c.frame, nil)
	c.current.Store(&snap)

	if err != nil {
		if entity.IsFatal(err) {
			c.desync(ctx, err)
		}
		return err
	}
	return nil
}

func (c *Client) desync(ctx context.Context, cause error) {
	ev := DesyncEvent{Session: c.session, Frame: c.frame, Error: cause.Error()}
	if c.store != nil {
		key, err := c.store.Save(c.sim.Snapshot(c.session, c.frame, cause))
		if err != nil {
			c.log.Error("снимок рассинхронизации не сохранён: %v", err)
		} else {
			ev.Snapshot = key
			c.log.Warn("снимок рассинхронизации сохранён: %s", key)
		}
	}
	if c.bus == nil {
		return
	}
	env, err := eventbus.NewEnvelope("battlescape", eventbus.TypeDesync, c.session, ev)
	if err != nil {
		c.log.Error("событие рассинхронизации: %v", err)
		return
	}
	env.Priority = 9
	if err := c.bus.Publish(ctx, env); err != nil {
		c.log.Error("публикация рассинхронизации: %v", err)
	}
}

// Run крутит кадры с частотой simulation.frame_rate до отмены ctx
// или фатальной ошибки. Сценарий, выданный целиком, не останавливает цикл.
func (c *Client) Run(ctx context.Context) error {
	c.started = c.clock()
	ticker := time.NewTicker(c.cfg.Simulation.FrameInterval())
	defer ticker.Stop()

	c.log.Info("цикл кадров запущен, сессия %q", c.session)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := c.clock().Sub(c.started).Milliseconds()
			if err := c.Step(ctx, now); err != nil {
				return fmt.Errorf("frame %d: %w", c.frame, err)
			}
		}
	}
}

// Close отписывается от шины и освобождает пулы
func (c *Client) Close() error {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	c.queue.Close()
	c.sim.Cleanup()
	return nil
}

// IsDesync сообщает, что цикл остановлен рассинхронизацией
func IsDesync(err error) bool {
	return errors.Is(err, entity.ErrDesync)
}

// silence - звуковая подсистема без вывода
type silence struct{}

func (silence) Load(name string) (effects.Sample, bool) {
	if name == "" {
		return nil, false
	}
	return effects.NamedSample(name), true
}

func (silence) Play(mgl64.Vec3, effects.Sample, float64, float64) {}
