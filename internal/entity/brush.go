package entity

import (
	"strings"

	"github.com/annel0/battlescape/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// BrushSpec - параметры брашевой сущности (дверь, вращатель, разрушаемое)
type BrushSpec struct {
	Num           int
	Type          Type
	InlineModel   string
	ModelIndex    int
	Origin        mgl64.Vec3
	Angles        mgl64.Vec3
	Mins          mgl64.Vec3
	Maxs          mgl64.Vec3
	LevelFlags    uint32
	Delay         int64
	RotationSpeed float64
	RotationAxis  int
}

// AddBrush добавляет брашевую сущность; двери и вращатели получают обработчик
func (s *Simulation) AddBrush(spec BrushSpec) (*LocalEntity, error) {
	le, err := s.Add(spec.Num)
	if err != nil {
		return nil, err
	}
	le.Type = spec.Type
	le.Contents = physics.ContentsSolid
	le.InlineModel = spec.InlineModel
	le.ModelName = spec.InlineModel
	le.ModelIndex = spec.ModelIndex
	le.Origin = spec.Origin
	le.Angles = spec.Angles
	le.Mins = spec.Mins
	le.Maxs = spec.Maxs
	le.LevelFlags = spec.LevelFlags
	le.BrushDelay = spec.Delay
	le.RotationSpeed = spec.RotationSpeed
	le.RotationAxis = spec.RotationAxis
	le.ThinkDelay = s.now
	if spec.Type == TypeRotating || spec.Type == TypeDoor || spec.Type == TypeDoorSliding {
		le.think = ThinkBrush
	}
	return le, nil
}

// brushThink не чаще раза в BrushDelay мс поворачивает вращатель
func (s *Simulation) brushThink(le *LocalEntity) {
	if s.now-le.ThinkDelay < le.BrushDelay {
		return
	}
	le.ThinkDelay = s.now

	if le.Type == TypeRotating && le.RotationSpeed > 0 {
		axis := le.RotationAxis
		if axis < 0 || axis > 2 {
			axis = physics.Yaw
		}
		angle := le.Angles[axis] + 1/le.RotationSpeed
		if angle >= 360 {
			angle -= 360
		}
		le.Angles[axis] = angle
	}
}

// InlineModelList возвращает имена встроенных моделей живых брашей
func (s *Simulation) InlineModelList() []string {
	var list []string
	for i := 0; i < s.pool.Len(); i++ {
		le := s.pool.At(i)
		if le.InUse && strings.HasPrefix(le.InlineModel, "*") {
			list = append(list, le.InlineModel)
		}
	}
	return list
}

// RecalcRouting пересчитывает маршрутизацию вокруг браша le
func (s *Simulation) RecalcRouting(le *LocalEntity) {
	if s.deps.Router != nil && strings.HasPrefix(le.InlineModel, "*") {
		s.deps.Router.RecalcRouting(le.InlineModel, s.InlineModelList())
	}
	if sel, ok := s.Selected(); ok && s.deps.Moves != nil {
		s.deps.Moves.ConditionalMoveCalc(sel)
	}
}

// CompleteRecalcRouting пересчитывает маршрутизацию для всех брашей,
// включая освобождённые слоты
func (s *Simulation) CompleteRecalcRouting() {
	if s.deps.Router == nil {
		return
	}
	list := s.InlineModelList()
	for i := 0; i < s.pool.Len(); i++ {
		le := s.pool.At(i)
		if strings.HasPrefix(le.InlineModel, "*") {
			s.deps.Router.RecalcRouting(le.InlineModel, list)
		}
	}
}

// Destroy освобождает слот сущности. Исчезнувший браш открывает проходы,
// поэтому маршрутизация вокруг него и всех оставшихся брашей пересчитывается.
func (s *Simulation) Destroy(le *LocalEntity) {
	inline := le.InlineModel
	s.pool.Free(le)
	if !strings.HasPrefix(inline, "*") || s.deps.Router == nil {
		return
	}
	s.deps.Router.RecalcRouting(inline, s.InlineModelList())
	s.CompleteRecalcRouting()
}

// OpenDoor применяет новое положение двери и пересчитывает маршрутизацию
func (s *Simulation) OpenDoor(le *LocalEntity, origin, angles mgl64.Vec3) {
	le.Origin = origin
	le.Angles = angles
	s.RecalcRouting(le)
}
