package entity

import (
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// RenderEntity - то, что рендер получает о сущности на кадр
type RenderEntity struct {
	Num           int
	Type          Type
	Model         string
	ModelIndex    int
	Origin        mgl64.Vec3
	OldOrigin     mgl64.Vec3
	Angles        mgl64.Vec3
	Mins          mgl64.Vec3
	Maxs          mgl64.Vec3
	Skin          int
	Anim          string
	Alpha         float64
	State         StateFlags
	RenderFlags   RenderFlags
	LevelFlags    uint32
	LightingDirty bool
}

// SceneEntities дописывает в dst видимые на текущем уровне сущности
func (s *Simulation) SceneEntities(dst []RenderEntity) []RenderEntity {
	for i := 0; i < s.pool.Len(); i++ {
		le := s.pool.At(i)
		if !le.InUse || le.Invisible {
			continue
		}
		switch {
		case le.Contents.Has(physics.ContentsSolid):
			if (1<<uint(s.level))&le.LevelFlags == 0 {
				continue
			}
		case le.Contents.Has(physics.ContentsDetail):
			// видны всегда
		case le.Pos.Z > s.level:
			continue
		}

		ent := RenderEntity{
			Num:           le.Num,
			Type:          le.Type,
			Model:         le.ModelName,
			ModelIndex:    le.ModelIndex,
			Angles:        le.Angles,
			Skin:          le.Skin,
			Anim:          le.Anim,
			Alpha:         le.Alpha,
			State:         le.State,
			RenderFlags:   le.RenderFlags,
			LevelFlags:    le.LevelFlags,
			LightingDirty: le.LightingDirty,
		}

		// браши рисуются по mins/maxs, двери и вращатели ещё и по origin
		switch le.Contents {
		case physics.ContentsSolid, physics.ContentsDetail:
			ent.Mins, ent.Maxs = le.Mins, le.Maxs
		default:
			ent.Origin = le.Origin
			ent.OldOrigin = le.Origin
		}
		if le.Type == TypeDoor || le.Type == TypeDoorSliding || le.Type == TypeRotating {
			ent.Origin = le.Origin
			ent.OldOrigin = le.Origin
		}

		offset := grid.ModelOffset(le.FieldSize)
		ent.Origin = ent.Origin.Add(offset)
		ent.OldOrigin = ent.OldOrigin.Add(offset)

		dst = append(dst, ent)
	}
	return dst
}

// SceneModels дописывает в dst декоративные модели текущего уровня
func (s *Simulation) SceneModels(dst []LocalModel) []LocalModel {
	for i := 0; i < s.models.Len(); i++ {
		lm := s.models.At(i)
		if !lm.InUse || (1<<uint(s.level))&lm.LevelFlags == 0 {
			continue
		}
		dst = append(dst, *lm)
	}
	return dst
}

// ClosestActor ищет ближайшего к origin живого актёра игрока playerNum
func (s *Simulation) ClosestActor(origin mgl64.Vec3, playerNum int) (*LocalEntity, bool) {
	var best *LocalEntity
	bestDist := 0.0
	for i := 0; i < s.pool.Len(); i++ {
		le := s.pool.At(i)
		if !le.InUse || le.PlayerNum != playerNum || !le.IsLivingActor() {
			continue
		}
		d := origin.Sub(le.Origin).Len()
		if best == nil || d < bestDist {
			best, bestDist = le, d
		}
	}
	return best, best != nil
}
