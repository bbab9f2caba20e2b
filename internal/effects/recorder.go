package effects

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// PlayedSound - запись о проигранном звуке
type PlayedSound struct {
	Name        string
	Origin      mgl64.Vec3
	Attenuation float64
	Volume      float64
}

// Recorder запоминает все запросы частиц и звуков.
// Частицы остаются на месте порождения, если их не сдвинуть через Move.
type Recorder struct {
	mu        sync.Mutex
	Spawned   []ParticleSpec
	Freed     []ParticleID
	Played    []PlayedSound
	Missing   map[string]bool // имена звуков, которые Load не находит
	Unknown   map[string]bool // имена частиц, которые Spawn отвергает
	positions map[ParticleID]mgl64.Vec3
	next      ParticleID
}

// NewRecorder создаёт пустой регистратор
func NewRecorder() *Recorder {
	return &Recorder{
		Missing:   make(map[string]bool),
		Unknown:   make(map[string]bool),
		positions: make(map[ParticleID]mgl64.Vec3),
	}
}

// Spawn реализует Particles
func (r *Recorder) Spawn(spec ParticleSpec) (ParticleID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if spec.Name == "" || r.Unknown[spec.Name] {
		return 0, false
	}
	r.next++
	r.Spawned = append(r.Spawned, spec)
	r.positions[r.next] = spec.Origin
	return r.next, true
}

// Origin реализует Particles
func (r *Recorder) Origin(id ParticleID) (mgl64.Vec3, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.positions[id]
	return p, ok
}

// Move переносит частицу
func (r *Recorder) Move(id ParticleID, to mgl64.Vec3) {
	r.mu.Lock()
	if _, ok := r.positions[id]; ok {
		r.positions[id] = to
	}
	r.mu.Unlock()
}

// Free реализует Particles
func (r *Recorder) Free(id ParticleID) {
	r.mu.Lock()
	delete(r.positions, id)
	r.Freed = append(r.Freed, id)
	r.mu.Unlock()
}

// Live сообщает, жива ли частица
func (r *Recorder) Live(id ParticleID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.positions[id]
	return ok
}

// Load реализует Sounds
func (r *Recorder) Load(name string) (Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" || r.Missing[name] {
		return nil, false
	}
	return NamedSample(name), true
}

// Play реализует Sounds
func (r *Recorder) Play(origin mgl64.Vec3, s Sample, attenuation, volume float64) {
	r.mu.Lock()
	r.Played = append(r.Played, PlayedSound{Name: s.Name(), Origin: origin, Attenuation: attenuation, Volume: volume})
	r.mu.Unlock()
}

// SpawnedNames возвращает имена порождённых частиц по порядку
func (r *Recorder) SpawnedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Spawned))
	for i, s := range r.Spawned {
		out[i] = s.Name
	}
	return out
}

// PlayedNames возвращает имена проигранных звуков по порядку
func (r *Recorder) PlayedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Played))
	for i, s := range r.Played {
		out[i] = s.Name
	}
	return out
}
