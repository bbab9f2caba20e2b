package effects

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

type particle struct {
	spec    ParticleSpec
	spawned int64 // мс
	origin  mgl64.Vec3
	angles  mgl64.Vec3
}

// ParticleSystem двигает частицы по баллистической траектории.
// Время задаётся вызовом Run перед кадром симуляции.
type ParticleSystem struct {
	mu    sync.RWMutex
	known map[string]struct{} // пусто - принимаются любые имена
	live  map[ParticleID]*particle
	next  ParticleID
	now   int64
	max   int
}

// NewParticleSystem создаёт систему на max частиц
func NewParticleSystem(max int, known ...string) *ParticleSystem {
	ps := &ParticleSystem{
		live: make(map[ParticleID]*particle),
		max:  max,
	}
	if len(known) > 0 {
		ps.known = make(map[string]struct{}, len(known))
		for _, n := range known {
			ps.known[n] = struct{}{}
		}
	}
	return ps
}

// Spawn реализует Particles
func (ps *ParticleSystem) Spawn(spec ParticleSpec) (ParticleID, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if spec.Name == "" {
		return 0, false
	}
	if ps.known != nil {
		if _, ok := ps.known[spec.Name]; !ok {
			return 0, false
		}
	}
	if ps.max > 0 && len(ps.live) >= ps.max {
		return 0, false
	}

	ps.next++
	ps.live[ps.next] = &particle{spec: spec, spawned: ps.now, origin: spec.Origin, angles: spec.Angles}
	return ps.next, true
}

// Origin реализует Particles
func (ps *ParticleSystem) Origin(id ParticleID) (mgl64.Vec3, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.live[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return p.origin, true
}

// Free реализует Particles
func (ps *ParticleSystem) Free(id ParticleID) {
	ps.mu.Lock()
	delete(ps.live, id)
	ps.mu.Unlock()
}

// Run продвигает все частицы к моменту now (мс)
func (ps *ParticleSystem) Run(now int64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.now = now
	for _, p := range ps.live {
		dt := float64(now-p.spawned) / 1000
		if dt < 0 {
			continue
		}
		p.origin = p.spec.Origin.Add(p.spec.Velocity.Mul(dt)).Add(p.spec.Accel.Mul(0.5 * dt * dt))
		p.angles = p.spec.Angles.Add(p.spec.Omega.Mul(dt))
	}
}

// Len возвращает число живых частиц
func (ps *ParticleSystem) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.live)
}
