// Package effects содержит контракты частиц и звуков, которыми пользуется
// симуляция локальных сущностей, и их реализации.
package effects

import "github.com/go-gl/mathgl/mgl64"

// ParticleID - ссылка на живую частицу; 0 - нет частицы
type ParticleID uint32

// ParticleSpec описывает порождаемую частицу
type ParticleSpec struct {
	Name     string     `json:"name"`
	Origin   mgl64.Vec3 `json:"origin"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Accel    mgl64.Vec3 `json:"accel"`
	Angles   mgl64.Vec3 `json:"angles"`
	Omega    mgl64.Vec3 `json:"omega"`
	Size     float64    `json:"size,omitempty"` // длина следа мгновенного выстрела
}

// Particles - система частиц
type Particles interface {
	// Spawn порождает частицу; false - частица неизвестна
	Spawn(spec ParticleSpec) (ParticleID, bool)
	// Origin возвращает текущее положение частицы
	Origin(id ParticleID) (mgl64.Vec3, bool)
	Free(id ParticleID)
}

// Sample - загруженный звук
type Sample interface {
	Name() string
}

// Затухание звука с расстоянием
const (
	AttnNone   = 0.0
	AttnNorm   = 1.0
	AttnIdle   = 2.0
	AttnStatic = 3.0
)

// Громкости по умолчанию
const (
	VolumeDefault   = 1.0
	VolumeWeapons   = 1.0
	VolumeFootsteps = 0.5
)

// Sounds - звуковая подсистема
type Sounds interface {
	// Load загружает сэмпл по имени без расширения; false - нет файла
	Load(name string) (Sample, bool)
	Play(origin mgl64.Vec3, s Sample, attenuation, volume float64)
}

// NamedSample - сэмпл, известный только по имени
type NamedSample string

// Name реализует Sample
func (s NamedSample) Name() string { return string(s) }
