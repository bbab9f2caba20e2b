package entity

import (
	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/annel0/battlescape/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxPathLength - предел шагов одного пути
const MaxPathLength = 32

// SkipLocalEntity - номер, означающий «нет сущности»
const SkipLocalEntity = -1

const defaultFieldSize = grid.ActorSizeNormal

// LocalEntity - динамический объект, известный клиенту
type LocalEntity struct {
	InUse     bool
	Invisible bool
	Num       int
	Type      Type
	slot      int
	seq       uint64

	Pos       vec.Vec3 // текущая клетка
	OldPos    vec.Vec3
	NewPos    vec.Vec3 // цель пути, задаётся сервером
	Dir       grid.Direction
	FieldSize grid.FieldSize

	Origin mgl64.Vec3
	Angles mgl64.Vec3
	Scale  mgl64.Vec3
	Mins   mgl64.Vec3
	Maxs   mgl64.Vec3

	Contents         physics.Contents
	PositionContents physics.Contents
	LevelFlags       uint32

	path         [MaxPathLength]grid.DV
	pathContents [MaxPathLength]physics.Contents
	speed        [MaxPathLength]float64
	PathLength   int
	PathPos      int
	StartTime    int64
	EndTime      int64

	think Think

	// брашевые сущности
	ThinkDelay    int64 // время последнего обновления
	BrushDelay    int64 // минимальный интервал между обновлениями
	RotationSpeed float64
	RotationAxis  int
	InlineModel   string // имя вида "*N"

	// баллистика
	Particle     effects.ParticleID
	ImpactNormal mgl64.Vec3
	Ref1         string // частица удара
	Ref2         string // звук удара
	Fire         *FireDef

	State     StateFlags
	Team      int
	PlayerNum int
	HP        int

	Right *ObjDef
	Left  *ObjDef
	Floor *Container

	ModelName  string
	ModelIndex int
	Skin       int
	Anim       string
	Alpha      float64

	Sample effects.Sample
	Volume float64

	RenderFlags   RenderFlags
	LightingDirty bool
}

// Handle - стабильная ссылка на слот пула
type Handle struct {
	slot int32 // слот + 1, ноль - пустая ссылка
	num  int32
}

// Valid сообщает, что ссылка не пустая
func (h Handle) Valid() bool { return h.slot != 0 }

// Num возвращает номер сущности ссылки
func (h Handle) Num() int { return int(h.num) }

// Handle возвращает ссылку на сущность
func (le *LocalEntity) Handle() Handle {
	return Handle{slot: int32(le.slot + 1), num: int32(le.Num)}
}

// Slot возвращает индекс слота в пуле
func (le *LocalEntity) Slot() int { return le.slot }

// Think возвращает текущий обработчик
func (le *LocalEntity) Think() Think { return le.think }

// SetThink заменяет обработчик
func (le *LocalEntity) SetThink(t Think) { le.think = t }

// IsActor сообщает, что сущность - актёр любого вида
func (le *LocalEntity) IsActor() bool {
	return le.Type == TypeActor || le.Type == TypeActor2x2 || le.Type == TypeActorHidden
}

// IsLivingActor - актёр, который не мёртв (оглушённые тоже считаются)
func (le *LocalEntity) IsLivingActor() bool {
	return le.IsActor() && (le.State.IsStunned() || !le.State.IsDead())
}

// IsLivingAndVisibleActor - живой актёр, видимый игроку
func (le *LocalEntity) IsLivingAndVisibleActor() bool {
	return !le.Invisible && le.Type != TypeActorHidden && le.IsLivingActor()
}

// PathStep возвращает шаг пути i
func (le *LocalEntity) PathStep(i int) (grid.DV, physics.Contents, float64) {
	return le.path[i], le.pathContents[i], le.speed[i]
}
