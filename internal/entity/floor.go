package entity

import (
	"math/bits"

	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/physics"
)

// PlaceItem размещает сущность лежащих предметов: связывает пол клетки с
// актёрами на ней и выбирает модель самого крупного предмета
func (s *Simulation) PlaceItem(le *LocalEntity) error {
	if le.Type != TypeItem {
		return ErrInvalidParameter
	}

	for i := 0; i < s.pool.Len(); i++ {
		actor := s.pool.At(i)
		if actor.InUse && (actor.Type == TypeActor || actor.Type == TypeActor2x2) && actor.Pos == le.Pos && le.Floor != nil {
			actor.Floor = le.Floor
		}
	}

	if le.Floor == nil || len(le.Floor.Items) == 0 {
		return &DesyncError{Num: le.Num, Reason: "empty container as floor entity"}
	}

	biggest := biggestItem(le.Floor)
	if biggest == nil {
		return &DesyncError{Num: le.Num, Reason: "floor container without item definitions"}
	}
	if biggest.Model == "" || s.deps.Models == nil {
		return &ResourceError{Kind: "item model", Name: biggest.ID}
	}
	idx, ok := s.deps.Models.Model(biggest.Model)
	if !ok {
		return &ResourceError{Kind: "item model", Name: biggest.ID}
	}
	le.ModelName = biggest.Model
	le.ModelIndex = idx

	le.Origin = s.deps.Projector.GridPosToVec(le.FieldSize, le.Pos).Sub(biggest.Center)
	le.Angles[physics.Roll] = 90
	le.Origin[2] -= grid.GroundDelta
	return nil
}

// biggestItem - предмет, занимающий больше всего клеток формы
func biggestItem(c *Container) *ObjDef {
	max := c.Items[0].Def
	maxSize := 0
	for _, it := range c.Items {
		if it.Def == nil {
			continue
		}
		if size := bits.OnesCount32(it.Def.Shape); size > maxSize {
			max = it.Def
			maxSize = size
		}
	}
	return max
}
