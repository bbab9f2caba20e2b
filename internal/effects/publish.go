package effects

import (
	"context"

	"github.com/annel0/battlescape/internal/eventbus"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/go-gl/mathgl/mgl64"
)

// Типы событий эффектов на шине
const (
	EventParticle = eventbus.TypeParticle
	EventSound    = eventbus.TypeSound
)

// SoundEvent - полезная нагрузка EventSound
type SoundEvent struct {
	Name        string     `json:"name"`
	Origin      mgl64.Vec3 `json:"origin"`
	Attenuation float64    `json:"attenuation"`
	Volume      float64    `json:"volume"`
}

// Publisher дублирует порождённые эффекты в шину событий
type Publisher struct {
	Particles Particles
	Sounds    Sounds
	Bus       eventbus.EventBus
	Source    string
	Session   string
}

func (p *Publisher) publish(eventType string, payload interface{}) {
	if p.Bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(p.Source, eventType, p.Session, payload)
	if err != nil {
		logging.GetEffectsLogger().Warn("не удалось сериализовать %s: %v", eventType, err)
		return
	}
	if err := p.Bus.Publish(context.Background(), ev); err != nil {
		logging.GetEffectsLogger().Warn("публикация %s: %v", eventType, err)
	}
}

// Spawn реализует Particles
func (p *Publisher) Spawn(spec ParticleSpec) (ParticleID, bool) {
	id, ok := p.Particles.Spawn(spec)
	if ok {
		p.publish(EventParticle, spec)
	}
	return id, ok
}

// Origin реализует Particles
func (p *Publisher) Origin(id ParticleID) (mgl64.Vec3, bool) { return p.Particles.Origin(id) }

// Free реализует Particles
func (p *Publisher) Free(id ParticleID) { p.Particles.Free(id) }

// Load реализует Sounds
func (p *Publisher) Load(name string) (Sample, bool) { return p.Sounds.Load(name) }

// Play реализует Sounds
func (p *Publisher) Play(origin mgl64.Vec3, s Sample, attenuation, volume float64) {
	p.Sounds.Play(origin, s, attenuation, volume)
	p.publish(EventSound, SoundEvent{Name: s.Name(), Origin: origin, Attenuation: attenuation, Volume: volume})
}
