package entity

import (
	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Gravity - ускорение свободного падения гранат, единиц/с²
	Gravity = 500.0
	// outsideMapDelta - запас по горизонтали, после которого снаряд считается улетевшим
	outsideMapDelta = grid.UnitSize * 10
	// mapBorderZ - допуск под нулевым уровнем для неходимой детали карты
	mapBorderZ = grid.UnitHeight * 5
)

// OutsideMap сообщает, что точка лежит за границами карты с запасом delta
func (s *Simulation) OutsideMap(p mgl64.Vec3, delta float64) bool {
	if p.X() < s.cfg.MapMin.X()-delta || p.X() > s.cfg.MapMax.X()+delta {
		return true
	}
	if p.Y() < s.cfg.MapMin.Y()-delta || p.Y() > s.cfg.MapMax.Y()+delta {
		return true
	}
	return p.Z() < -mapBorderZ
}

// AddProjectile запускает снаряд из muzzle в impact. Мгновенный выстрел
// (скорость 0) сразу порождает эффект попадания и оставляет сущность неактивной.
func (s *Simulation) AddProjectile(fd *FireDef, flags ShotFlags, muzzle, impact, normal mgl64.Vec3) (*LocalEntity, error) {
	if fd == nil {
		return nil, ErrInvalidParameter
	}
	le, err := s.Add(0)
	if err != nil {
		return nil, err
	}
	le.Type = TypeParticle
	le.Invisible = !s.cfg.ShowInvisible
	le.Fire = fd
	le.ImpactNormal = normal

	delta := impact.Sub(muzzle)
	dist := delta.Len()
	spec := effects.ParticleSpec{
		Name:   fd.Projectile,
		Origin: muzzle,
		Angles: physics.VecToAngles(delta),
	}

	if fd.Speed == 0 {
		le.InUse = false
		spec.Size = dist
		spec.Origin = muzzle.Add(delta.Mul(0.5))
		if _, ok := s.spawnParticle(spec); !ok {
			return le, nil
		}
		if flags&(ShotImpact|ShotBody) != 0 || (fd.SplashRadius != 0 && !fd.Bounce) {
			if flags&ShotBody != 0 {
				s.playSample(impact, fd.HitBodySound, fd.ImpactAttenuation, effects.VolumeWeapons)
				s.spawnImpact(fd.HitBody, impact, normal)
			} else {
				s.playSample(impact, fd.ImpactSound, fd.ImpactAttenuation, effects.VolumeWeapons)
				s.spawnImpact(fd.Impact, impact, normal)
			}
		}
		return le, nil
	}

	if dist > 0 {
		spec.Velocity = delta.Mul(fd.Speed / dist)
	}
	id, ok := s.spawnParticle(spec)
	if !ok {
		le.InUse = false
		return le, nil
	}
	le.Particle = id
	le.EndTime = s.now + int64(1000*dist/fd.Speed)
	s.setImpactRefs(le, fd, flags)

	le.think = ThinkProjectile
	s.projectileThink(le)
	return le, nil
}

// AddGrenade бросает гранату со скоростью v0; полёт длится dt мс
func (s *Simulation) AddGrenade(fd *FireDef, flags ShotFlags, muzzle, v0 mgl64.Vec3, dt int64) (*LocalEntity, error) {
	if fd == nil {
		return nil, ErrInvalidParameter
	}
	le, err := s.Add(0)
	if err != nil {
		return nil, err
	}
	le.Type = TypeParticle
	le.Invisible = !s.cfg.ShowInvisible

	id, ok := s.spawnParticle(effects.ParticleSpec{
		Name:     fd.Projectile,
		Origin:   muzzle,
		Velocity: v0,
		Accel:    mgl64.Vec3{0, 0, -Gravity},
		Angles:   mgl64.Vec3{360 * s.crand(), 360 * s.crand(), 360 * s.crand()},
		Omega:    mgl64.Vec3{500 * s.crand(), 500 * s.crand(), 500 * s.crand()},
	})
	if !ok {
		le.InUse = false
		return le, nil
	}
	le.Particle = id
	s.setImpactRefs(le, fd, flags)

	le.EndTime = s.now + dt
	le.ImpactNormal = mgl64.Vec3{0, 0, 1}
	le.Fire = fd
	le.think = ThinkProjectile
	s.projectileThink(le)
	return le, nil
}

func (s *Simulation) setImpactRefs(le *LocalEntity, fd *FireDef, flags ShotFlags) {
	switch {
	case flags&ShotBody != 0:
		le.Ref1, le.Ref2 = fd.HitBody, fd.HitBodySound
	case flags&ShotImpact != 0 || (fd.SplashRadius != 0 && !fd.Bounce):
		le.Ref1, le.Ref2 = fd.Impact, fd.ImpactSound
	default:
		le.Ref1 = ""
		if flags&ShotBouncing != 0 {
			le.Ref2 = fd.BounceSound
		}
	}
}

func (s *Simulation) projectileThink(le *LocalEntity) {
	if s.now >= le.EndTime {
		impact := le.Origin
		if pos, ok := s.particleOrigin(le.Particle); ok {
			impact = pos
		}
		s.freeParticle(le)
		le.InUse = false

		if le.Ref1 != "" {
			s.spawnImpact(le.Ref1, impact, le.ImpactNormal)
		}
		if le.Ref2 != "" {
			attn := effects.AttnNorm
			if le.Fire != nil {
				attn = le.Fire.ImpactAttenuation
			}
			s.playSample(impact, le.Ref2, attn, effects.VolumeWeapons)
		}
		return
	}

	if pos, ok := s.particleOrigin(le.Particle); ok && s.OutsideMap(pos, outsideMapDelta) {
		le.EndTime = s.now
		s.freeParticle(le)
		le.InUse = false
	}
}

func (s *Simulation) spawnImpact(name string, at, normal mgl64.Vec3) {
	if name == "" {
		return
	}
	s.spawnParticle(effects.ParticleSpec{
		Name:     name,
		Origin:   at,
		Velocity: normal,
		Angles:   physics.VecToAngles(normal),
	})
}

func (s *Simulation) spawnParticle(spec effects.ParticleSpec) (effects.ParticleID, bool) {
	if s.deps.Particles == nil || spec.Name == "" {
		return 0, false
	}
	id, ok := s.deps.Particles.Spawn(spec)
	if !ok {
		s.log.Debug("частица %s не создана", spec.Name)
	}
	return id, ok
}

func (s *Simulation) particleOrigin(id effects.ParticleID) (mgl64.Vec3, bool) {
	if id == 0 || s.deps.Particles == nil {
		return mgl64.Vec3{}, false
	}
	return s.deps.Particles.Origin(id)
}

func (s *Simulation) freeParticle(le *LocalEntity) {
	if le.Particle != 0 && s.deps.Particles != nil {
		s.deps.Particles.Free(le.Particle)
	}
	le.Particle = 0
}
