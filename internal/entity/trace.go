package entity

import (
	"github.com/annel0/battlescape/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// TraceResult - результат трассировки с сущностью, в которую попали
type TraceResult struct {
	physics.Trace
	Entity Handle // пустая, если попали в мир или никуда
}

// moveClip - параметры и промежуточный результат одной трассировки
type moveClip struct {
	boxMins, boxMaxs mgl64.Vec3 // охватывают всё движение
	mins, maxs       mgl64.Vec3
	start, end       mgl64.Vec3
	trace            TraceResult
	pass, pass2      *LocalEntity
	mask             physics.Contents
}

// LevelMask - маска уровней мира, участвующих в трассировке
func (s *Simulation) LevelMask() uint32 {
	return (1 << uint(s.level+1)) - 1
}

// Trace проводит коробку mins/maxs от start к end сквозь мир и сущности,
// пропуская pass и pass2
func (s *Simulation) Trace(start, end, mins, maxs mgl64.Vec3, pass, pass2 *LocalEntity, mask physics.Contents) TraceResult {
	s.stats.Traces++

	clip := moveClip{
		start: start,
		end:   end,
		mins:  mins,
		maxs:  maxs,
		pass:  pass,
		pass2: pass2,
		mask:  mask,
	}
	if s.deps.World != nil {
		clip.trace.Trace = s.deps.World.BoxTrace(start, end, mins, maxs, s.LevelMask(), mask)
	} else {
		clip.trace.Trace = physics.EmptyTrace(end)
	}
	if clip.trace.Fraction == 0 {
		return clip.trace
	}

	clip.boxMins, clip.boxMaxs = physics.TraceBounds(start, mins, maxs, end)
	s.clipMoveToEntities(&clip)
	return clip.trace
}

func (s *Simulation) clipMoveToEntities(clip *moveClip) {
	if clip.trace.AllSolid {
		return
	}
	s.stats.EntityScans++

	for i := 0; i < s.pool.Len(); i++ {
		le := s.pool.At(i)
		if !le.InUse || !le.Contents.Has(clip.mask) {
			continue
		}
		if le == clip.pass || le == clip.pass2 {
			continue
		}

		var hull physics.Hull
		var angles mgl64.Vec3
		if le.Contents.Has(physics.ContentsSolid) {
			h, ok := s.hullFor(le)
			if !ok {
				s.log.Warn("сущность %d (%s) без коллизионной модели %d", le.Num, le.Type, le.ModelIndex)
				continue
			}
			hull = h
			angles = le.Angles
		} else {
			hull = physics.Hull{Mins: le.Mins, Maxs: le.Maxs, Contents: le.Contents}
		}

		absMins, absMaxs := hull.Bounds(le.Origin, angles)
		if !physics.BoxesOverlap(clip.boxMins, clip.boxMaxs, absMins, absMaxs) {
			continue
		}

		tr := physics.TransformedClip(clip.start, clip.end, clip.mins, clip.maxs, hull, le.Origin, angles)
		if tr.Contents == 0 {
			tr.Contents = le.Contents
		}
		if physics.Merge(&clip.trace.Trace, tr) == physics.MergeReplaced {
			clip.trace.Entity = le.Handle()
		}
	}
}

func (s *Simulation) hullFor(le *LocalEntity) (physics.Hull, bool) {
	if s.deps.Hulls == nil {
		return physics.Hull{}, false
	}
	h, ok := s.deps.Hulls.Hull(le.ModelIndex)
	if ok && h.Contents == 0 {
		h.Contents = le.Contents
	}
	return h, ok
}
