package entity

import (
	"strings"

	"github.com/annel0/battlescape/internal/effects"
	"github.com/go-gl/mathgl/mgl64"
)

// AddAmbientSound добавляет фоновый звук уровня. Незагружаемый звук не
// создаёт сущность; громкость вне [0,1] заменяется значением по умолчанию.
func (s *Simulation) AddAmbientSound(sound string, origin mgl64.Vec3, levelFlags uint32, volume float64) (*LocalEntity, error) {
	sound = strings.TrimPrefix(sound, "sound/")

	if s.deps.Sounds == nil {
		return nil, &ResourceError{Kind: "sound", Name: sound}
	}
	sample, ok := s.deps.Sounds.Load(sound)
	if !ok {
		err := &ResourceError{Kind: "sound", Name: sound}
		s.log.Warn("фоновый звук не добавлен: %v", err)
		return nil, err
	}

	le, err := s.Add(0)
	if err != nil {
		return nil, err
	}
	le.Type = TypeSound
	le.Sample = sample
	le.Origin = origin
	le.Invisible = !s.cfg.ShowInvisible
	le.LevelFlags = levelFlags

	if volume < 0 || volume > 1 {
		le.Volume = effects.VolumeDefault
		s.log.Warn("громкость %.2f вне диапазона 0..1 для %s, используется %.2f", volume, sound, effects.VolumeDefault)
	} else {
		le.Volume = volume
	}
	s.log.Debug("фоновый звук %s громкость %.2f", sound, le.Volume)
	return le, nil
}
