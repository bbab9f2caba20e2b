package delta

import (
	"errors"
	"fmt"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Applier применяет дельты к симуляции. Вызывается только между кадрами.
type Applier struct {
	sim     *entity.Simulation
	catalog *Catalog
	hulls   HullRegistrar
	log     *logging.Logger
	applied uint64
}

// HullRegistrar принимает коллизионные модели брашей
type HullRegistrar interface {
	Register(modelIndex int, h physics.Hull)
}

// NewApplier создаёт применитель; catalog может быть nil
func NewApplier(sim *entity.Simulation, catalog *Catalog, log *logging.Logger) *Applier {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if log == nil {
		log = logging.GetComponentLogger("delta")
	}
	return &Applier{sim: sim, catalog: catalog, log: log}
}

// SetHulls подключает реестр, в который попадают хуллы появившихся брашей.
// Это должен быть тот же реестр, что отдан симуляции в Deps.Hulls.
func (a *Applier) SetHulls(r HullRegistrar) { a.hulls = r }

// Applied возвращает число применённых дельт
func (a *Applier) Applied() uint64 { return a.applied }

// ApplyAll применяет дельты по порядку до первой фатальной ошибки
func (a *Applier) ApplyAll(ds []Delta) error {
	for _, d := range ds {
		if err := a.Apply(d); err != nil {
			return err
		}
	}
	return nil
}

// Apply применяет одну дельту. Нефатальные ошибки журналируются и
// не возвращаются.
func (a *Applier) Apply(d Delta) error {
	err := a.apply(d)
	if err == nil {
		a.applied++
		return nil
	}
	if entity.IsFatal(err) {
		return fmt.Errorf("%s: %w", d, err)
	}
	a.log.Warn("дельта %s пропущена: %v", d, err)
	return nil
}

func (a *Applier) apply(d Delta) error {
	switch d.Kind {
	case EntityAppear:
		return a.entityAppear(d)
	case ActorAppear:
		return a.actorAppear(d)
	case ActorMove:
		le, err := a.lookup(d)
		if err != nil {
			return err
		}
		return a.sim.StartPathMove(le, d.PathSteps(), d.Target, a.sim.Now())
	case ActorStateChange:
		return a.actorState(d)
	case EntityPerish:
		return a.perish(d)
	case EntityDestroy:
		return a.destroy(d)
	case Shoot:
		return a.shoot(d)
	case ThrowGrenade:
		fd, err := a.catalog.FireDef(d.Fire)
		if err != nil {
			return err
		}
		flags, err := d.ShotFlags()
		if err != nil {
			return err
		}
		_, err = a.sim.AddGrenade(fd, flags, d.From, d.Velocity, d.Duration)
		return err
	case DoorOpen:
		le, err := a.lookup(d)
		if err != nil {
			return err
		}
		a.sim.OpenDoor(le, d.Origin, d.Angles)
		return nil
	case ItemFloor:
		return a.itemFloor(d)
	case AmbientSound:
		_, err := a.sim.AddAmbientSound(d.Sound, d.Origin, d.LevelFlags, d.Volume)
		var rerr *entity.ResourceError
		if errors.As(err, &rerr) {
			// уровень без звука остаётся играбельным
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown delta kind %q: %w", d.Kind, entity.ErrInvalidParameter)
	}
}

func (a *Applier) lookup(d Delta) (*entity.LocalEntity, error) {
	le, ok := a.sim.Get(d.Num)
	if !ok {
		return nil, &entity.DesyncError{Num: d.Num, Reason: fmt.Sprintf("%s for unknown entity", d.Kind)}
	}
	return le, nil
}

func (a *Applier) entityAppear(d Delta) error {
	t, ok := entity.ParseType(d.Type)
	if !ok {
		return fmt.Errorf("entity type %q: %w", d.Type, entity.ErrInvalidParameter)
	}
	if _, dup := a.sim.Get(d.Num); dup {
		return &entity.DesyncError{Num: d.Num, Reason: "entity appeared twice"}
	}

	switch t {
	case entity.TypeDoor, entity.TypeDoorSliding, entity.TypeRotating, entity.TypeBreakable:
		_, err := a.sim.AddBrush(entity.BrushSpec{
			Num:           d.Num,
			Type:          t,
			InlineModel:   d.InlineModel,
			ModelIndex:    a.brushHull(d),
			Origin:        d.Origin,
			Angles:        d.Angles,
			Mins:          d.Mins,
			Maxs:          d.Maxs,
			LevelFlags:    d.LevelFlags,
			Delay:         d.Delay,
			RotationSpeed: d.RotationSpeed,
			RotationAxis:  physics.Yaw,
		})
		return err
	case entity.TypeItem:
		floor, err := a.container(d.Items)
		if err != nil {
			return err
		}
		le, err := a.sim.Add(d.Num)
		if err != nil {
			return err
		}
		le.Type = t
		le.Pos = d.Pos
		le.Floor = floor
		return a.sim.PlaceItem(le)
	}

	le, err := a.sim.Add(d.Num)
	if err != nil {
		return err
	}
	le.Type = t
	le.Pos = d.Pos
	le.LevelFlags = d.LevelFlags
	le.Origin = a.sim.Projector().GridPosToVec(le.FieldSize, d.Pos)
	le.Angles = d.Angles
	return a.setModel(le, d.Model)
}

// brushHull регистрирует хулл браша по его габаритам и возвращает индекс
// модели; 0 - у браша нет модели или габаритов
func (a *Applier) brushHull(d Delta) int {
	name := d.Model
	if name == "" {
		name = d.InlineModel
	}
	idx, ok := a.sim.ModelIndex(name)
	if !ok {
		return 0
	}
	if a.hulls != nil && d.Mins != d.Maxs {
		a.hulls.Register(idx, physics.Hull{Mins: d.Mins, Maxs: d.Maxs})
	}
	return idx
}

func (a *Applier) actorAppear(d Delta) error {
	right, err := a.catalog.Item(d.Right)
	if err != nil {
		return err
	}
	left, err := a.catalog.Item(d.Left)
	if err != nil {
		return err
	}

	le, ok := a.sim.Get(d.Num)
	if !ok {
		if le, err = a.sim.Add(d.Num); err != nil {
			return err
		}
	}
	le.Invisible = false
	le.Type = entity.TypeActor
	le.FieldSize = grid.ActorSizeNormal
	if d.Size == int(grid.ActorSize2x2) {
		le.Type = entity.TypeActor2x2
		le.FieldSize = grid.ActorSize2x2
	}
	if d.Type != "" {
		if t, ok := entity.ParseType(d.Type); ok && isActorType(t) {
			le.Type = t
		}
	}

	le.Pos = d.Pos
	le.OldPos = d.Pos
	le.NewPos = d.Pos
	le.Dir = grid.Direction(d.Dir)
	le.Team = d.Team
	le.PlayerNum = d.PlayerNum
	le.HP = d.HP
	le.State = entity.StateFlags(d.State)
	le.Right = right
	le.Left = left
	le.Contents = physics.ContentsActor
	if le.State.IsDead() && !le.State.IsStunned() {
		le.Contents = physics.ContentsDeadActor
	}
	le.Mins, le.Maxs = actorBox(le.FieldSize)
	le.Origin = a.sim.Projector().GridPosToVec(le.FieldSize, d.Pos)
	if le.Dir < grid.CoreDirections {
		le.Angles[physics.Yaw] = grid.DirectionAngles[le.Dir]
	}
	if items, ok := a.sim.Find(entity.TypeItem, le.Pos); ok {
		le.Floor = items.Floor
	}
	if err := a.setModel(le, d.Model); err != nil {
		return err
	}
	a.sim.StartIdle(le)
	return nil
}

func isActorType(t entity.Type) bool {
	return t == entity.TypeActor || t == entity.TypeActor2x2 || t == entity.TypeActorHidden
}

// actorBox - коробка актёра для трассировки
func actorBox(size grid.FieldSize) (mins, maxs mgl64.Vec3) {
	half := float64(size) * grid.UnitSize / 2
	const pad = 4
	return mgl64.Vec3{-half + pad, -half + pad, 0}, mgl64.Vec3{half - pad, half - pad, grid.UnitHeight - 8}
}

func (a *Applier) actorState(d Delta) error {
	le, err := a.lookup(d)
	if err != nil {
		return err
	}
	if !le.IsActor() {
		return &entity.DesyncError{Num: d.Num, Reason: "state change of non-actor " + le.Type.String()}
	}
	le.State = entity.StateFlags(d.State)
	le.HP = d.HP
	if le.State.IsDead() && !le.State.IsStunned() {
		le.Contents = physics.ContentsDeadActor
	} else {
		le.Contents = physics.ContentsActor
	}
	a.sim.StartIdle(le)
	return nil
}

func (a *Applier) perish(d Delta) error {
	le, err := a.lookup(d)
	if err != nil {
		return err
	}
	le.Invisible = true
	if le.Type == entity.TypeItem {
		pool := a.sim.Pool()
		for i := 0; i < pool.Len(); i++ {
			actor := pool.At(i)
			if actor.InUse && actor.IsActor() && actor.Floor == le.Floor {
				actor.Floor = nil
			}
		}
		le.Floor.Empty()
	}
	return nil
}

func (a *Applier) destroy(d Delta) error {
	le, err := a.lookup(d)
	if err != nil {
		return err
	}
	a.sim.Destroy(le)
	return nil
}

func (a *Applier) shoot(d Delta) error {
	fd, err := a.catalog.FireDef(d.Fire)
	if err != nil {
		return err
	}
	flags, err := d.ShotFlags()
	if err != nil {
		return err
	}
	_, err = a.sim.AddProjectile(fd, flags, d.From, d.To, d.Normal)
	return err
}

func (a *Applier) itemFloor(d Delta) error {
	floor, err := a.container(d.Items)
	if err != nil {
		return err
	}
	le, ok := a.sim.Get(d.Num)
	if !ok {
		if le, err = a.sim.Add(d.Num); err != nil {
			return err
		}
		le.Type = entity.TypeItem
		le.Pos = d.Pos
	}
	le.Invisible = false
	le.Floor = floor
	return a.sim.PlaceItem(le)
}

func (a *Applier) container(ids []string) (*entity.Container, error) {
	c := &entity.Container{}
	for _, id := range ids {
		od, err := a.catalog.Item(id)
		if err != nil {
			return nil, err
		}
		if od != nil {
			c.Items = append(c.Items, entity.Item{Def: od})
		}
	}
	return c, nil
}

func (a *Applier) setModel(le *entity.LocalEntity, model string) error {
	if model == "" {
		return nil
	}
	idx, ok := a.sim.ModelIndex(model)
	if !ok {
		return &entity.ResourceError{Kind: "model", Name: model}
	}
	le.ModelName = model
	le.ModelIndex = idx
	return nil
}
