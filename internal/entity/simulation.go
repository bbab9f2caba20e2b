package entity

import (
	"context"
	"math/rand"
	"time"

	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/annel0/battlescape/internal/terrain"
	"github.com/annel0/battlescape/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TerrainLookup - таблица поверхностей
type TerrainLookup interface {
	Lookup(texture string) (terrain.Type, bool)
}

// Router пересчитывает маршрутизацию после движения брашевых моделей
type Router interface {
	RecalcRouting(inlineModel string, inlineList []string)
}

// MoveCalculator пересчитывает доступные ходы после остановки актёра
type MoveCalculator interface {
	ConditionalMoveCalc(le *LocalEntity)
}

// ModelRegistry - загруженные модели клиента
type ModelRegistry interface {
	Model(name string) (index int, ok bool)
	HasAnim(index int, anim string) bool
}

// Config - параметры симуляции
type Config struct {
	MaxEntities       int
	MaxLocalModels    int
	FallMillisPerUnit float64
	MapMin            mgl64.Vec3
	MapMax            mgl64.Vec3
	ShowInvisible     bool
	Seed              int64
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		MaxEntities:       1024,
		MaxLocalModels:    512,
		FallMillisPerUnit: 1,
		MapMin:            mgl64.Vec3{-4096, -4096, -256},
		MapMax:            mgl64.Vec3{4096, 4096, 256},
	}
}

// Deps - внешние соучастники симуляции. Любое поле может быть nil.
type Deps struct {
	World     physics.WorldTracer
	Hulls     physics.HullProvider
	Projector grid.Projector
	Particles effects.Particles
	Sounds    effects.Sounds
	Terrain   TerrainLookup
	Router    Router
	Moves     MoveCalculator
	Models    ModelRegistry
	Logger    *logging.Logger
}

// Stats - счётчики для метрик и отладки
type Stats struct {
	Ticks         uint64        `json:"ticks"`
	Thinks        uint64        `json:"thinks"`
	Traces        uint64        `json:"traces"`
	EntityScans   uint64        `json:"entity_scans"`
	Allocations   uint64        `json:"allocations"`
	FatalErrors   uint64        `json:"fatal_errors"`
	LastTick      time.Duration `json:"last_tick"`
	EntitiesInUse int           `json:"entities_in_use"`
	EntitiesLive  int           `json:"entities_live"`
	EntitiesCap   int           `json:"entities_cap"`
	ModelsInUse   int           `json:"models_in_use"`
}

// Simulation владеет пулами и временем кадра. Не потокобезопасна:
// все вызовы идут из одного цикла клиента.
type Simulation struct {
	cfg      Config
	deps     Deps
	pool     *Pool
	models   *LocalModels
	log      *logging.Logger
	rng      *rand.Rand
	now      int64
	level    int
	selected Handle
	stats    Stats
}

// NewSimulation создаёт симуляцию с пустыми пулами
func NewSimulation(cfg Config, deps Deps) *Simulation {
	def := DefaultConfig()
	if cfg.MaxEntities <= 0 {
		cfg.MaxEntities = def.MaxEntities
	}
	if cfg.MaxLocalModels <= 0 {
		cfg.MaxLocalModels = def.MaxLocalModels
	}
	if cfg.FallMillisPerUnit <= 0 {
		cfg.FallMillisPerUnit = def.FallMillisPerUnit
	}
	if cfg.MapMin == cfg.MapMax {
		cfg.MapMin, cfg.MapMax = def.MapMin, def.MapMax
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log := deps.Logger
	if log == nil {
		log = logging.GetSimulationLogger()
	}
	return &Simulation{
		cfg:    cfg,
		deps:   deps,
		pool:   NewPool(cfg.MaxEntities),
		models: NewLocalModels(cfg.MaxLocalModels),
		log:    log,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Pool возвращает пул сущностей
func (s *Simulation) Pool() *Pool { return s.pool }

// Models возвращает пул локальных моделей
func (s *Simulation) Models() *LocalModels { return s.models }

// Projector возвращает проекцию клеток в мировые координаты
func (s *Simulation) Projector() grid.Projector { return s.deps.Projector }

// ModelIndex ищет модель в реестре
func (s *Simulation) ModelIndex(name string) (int, bool) {
	if s.deps.Models == nil {
		return 0, false
	}
	return s.deps.Models.Model(name)
}

// Now возвращает время последнего кадра (мс)
func (s *Simulation) Now() int64 { return s.now }

// SetNow задаёт время без прогона обработчиков
func (s *Simulation) SetNow(now int64) { s.now = now }

// WorldLevel возвращает отображаемый уровень
func (s *Simulation) WorldLevel() int { return s.level }

// SetWorldLevel задаёт отображаемый уровень
func (s *Simulation) SetWorldLevel(level int) {
	if level < 0 {
		level = 0
	} else if level >= grid.MaxLevels {
		level = grid.MaxLevels - 1
	}
	s.level = level
}

// Select отмечает выбранного актёра
func (s *Simulation) Select(le *LocalEntity) {
	if le == nil {
		s.selected = Handle{}
		return
	}
	s.selected = le.Handle()
}

// Selected возвращает выбранного актёра
func (s *Simulation) Selected() (*LocalEntity, bool) {
	return s.pool.Resolve(s.selected)
}

// Reset очищает пулы при загрузке нового уровня
func (s *Simulation) Reset() {
	s.pool.Reset()
	s.models.Reset()
	s.selected = Handle{}
	s.now = 0
}

// Add выделяет сущность и учитывает это в статистике
func (s *Simulation) Add(num int) (*LocalEntity, error) {
	le, err := s.pool.Allocate(num)
	if err != nil {
		s.log.Error("не удалось добавить сущность %d: %v", num, err)
		return nil, err
	}
	s.stats.Allocations++
	return le, nil
}

// Get ищет сущность по номеру
func (s *Simulation) Get(num int) (*LocalEntity, bool) {
	return s.pool.Lookup(num)
}

// Find ищет сущность вида t в клетке pos
func (s *Simulation) Find(t Type, pos vec.Vec3) (*LocalEntity, bool) {
	return s.pool.Find(t, pos)
}

// Tick прогоняет обработчики всех живых сущностей на момент now (мс).
// Первая фатальная ошибка прерывает кадр.
func (s *Simulation) Tick(ctx context.Context, now int64) error {
	_, span := otel.Tracer("battlescape/entity").Start(ctx, "le.tick")
	defer span.End()

	started := time.Now()
	s.now = now
	s.stats.Ticks++

	for i := 0; i < s.pool.Len(); i++ {
		le := s.pool.At(i)
		if !le.InUse || le.think == ThinkNone {
			continue
		}
		s.stats.Thinks++
		if err := s.runThink(le); err != nil {
			s.stats.FatalErrors++
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.log.WithFields(logging.Fields{"entnum": le.Num, "type": le.Type.String()}).Error("кадр прерван: %v", err)
			return err
		}
	}

	s.stats.LastTick = time.Since(started)
	span.SetAttributes(
		attribute.Int64("le.time", now),
		attribute.Int("le.live", s.pool.Len()),
	)
	return nil
}

// Stats возвращает снимок счётчиков
func (s *Simulation) Stats() Stats {
	st := s.stats
	st.EntitiesInUse = s.pool.InUse()
	st.EntitiesLive = s.pool.Len()
	st.EntitiesCap = s.pool.Cap()
	st.ModelsInUse = s.models.Len()
	return st
}

// Cleanup освобождает инвентари сущностей
func (s *Simulation) Cleanup() {
	s.log.Debug("очистка инвентарей до %d сущностей", s.pool.Len())
	s.pool.Cleanup()
}

func (s *Simulation) crand() float64 {
	return 2*s.rng.Float64() - 1
}
