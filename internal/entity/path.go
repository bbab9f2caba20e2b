package entity

import (
	"math"

	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/annel0/battlescape/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Звуки воды
const (
	SoundWaterIn   = "footsteps/water_in"
	SoundWaterMove = "footsteps/water_move"
)

// PathStep - шаг пути от сервера
type PathStep struct {
	DV       grid.DV          `json:"dv" yaml:"dv"`
	Contents physics.Contents `json:"contents" yaml:"contents"`
	Speed    float64          `json:"speed" yaml:"speed"` // единиц модели в секунду
}

// StartPathMove назначает путь и переводит сущность в движение.
// Первый шаг начнётся на кадре после now.
func (s *Simulation) StartPathMove(le *LocalEntity, steps []PathStep, target vec.Vec3, now int64) error {
	if len(steps) > MaxPathLength {
		return &CapacityError{Pool: "path step", Limit: MaxPathLength}
	}
	for i, st := range steps {
		if !(st.Speed > 0) {
			s.log.Warn("шаг %d пути сущности %d без скорости", i, le.Num)
			return ErrInvalidParameter
		}
	}

	for i, st := range steps {
		le.path[i] = st.DV
		le.pathContents[i] = st.Contents
		le.speed[i] = st.Speed
	}
	le.PathLength = len(steps)
	le.PathPos = 0
	le.NewPos = target
	le.StartTime = now
	le.EndTime = now

	le.Anim = GetAnim("walk", le.Right, le.Left, le.State)
	le.think = ThinkPathMove
	return nil
}

func (s *Simulation) pathMove(le *LocalEntity) error {
	if s.now <= le.StartTime {
		return nil
	}

	// конец пути засчитывается уже в момент окончания последнего шага
	for s.now > le.EndTime || (le.PathPos == le.PathLength && s.now >= le.EndTime) {
		// снимаем накопленную погрешность интерполяции
		le.Origin = s.deps.Projector.GridPosToVec(le.FieldSize, le.Pos)
		le.OldPos = le.Pos

		if le.PathPos < le.PathLength {
			s.pathStep(le)
			continue
		}
		return s.endPathMove(le)
	}

	start := s.deps.Projector.GridPosToVec(le.FieldSize, le.OldPos)
	dest := s.deps.Projector.GridPosToVec(le.FieldSize, le.Pos)
	frac := 1.0
	if le.EndTime > le.StartTime {
		frac = float64(s.now-le.StartTime) / float64(le.EndTime-le.StartTime)
	}
	le.LightingDirty = true
	le.Origin = start.Add(dest.Sub(start).Mul(frac))
	return nil
}

func (s *Simulation) pathStep(le *LocalEntity) {
	dv := le.path[le.PathPos]
	contents := le.pathContents[le.PathPos]
	dir := dv.Dir()

	crouch := 0
	if le.State.IsCrouched() {
		crouch = 1
	}
	pos, newCrouch := grid.PosAddDV(le.Pos, crouch, dv)
	le.Pos = pos
	if newCrouch > 0 {
		le.State |= StateCrouched
	} else {
		le.State &^= StateCrouched
	}

	// по воде шаги не слышны, поверхность не ищется
	if contents.Has(physics.ContentsWater) {
		s.playContentsSound(le)
	} else {
		s.footstepSound(le)
	}

	if dir.IsHorizontal() {
		le.Dir = dir & (grid.CoreDirections - 1)
	}
	le.Angles[physics.Yaw] = grid.DirectionAngles[le.Dir&(grid.CoreDirections-1)]

	le.StartTime = le.EndTime
	if dir != grid.DirFall {
		dist := float64(grid.UnitSize)
		if dir.IsDiagonal() {
			dist *= math.Sqrt2
		}
		le.EndTime += int64(dist * 1000 / le.speed[le.PathPos])
	} else {
		start := s.deps.Projector.GridPosToVec(le.FieldSize, le.OldPos)
		dest := s.deps.Projector.GridPosToVec(le.FieldSize, le.Pos)
		if drop := start.Z() - dest.Z(); drop > 0 {
			le.EndTime += int64(drop * s.cfg.FallMillisPerUnit)
		}
	}

	le.PositionContents = contents
	le.PathPos++
}

func (s *Simulation) endPathMove(le *LocalEntity) error {
	if le.Pos != le.NewPos {
		err := &DesyncError{
			Num:      le.Num,
			Team:     le.Team,
			Pos:      le.Pos,
			Expected: le.NewPos,
			Step:     le.PathPos,
			Length:   le.PathLength,
		}
		s.log.WithFields(logging.Fields{
			"entnum": le.Num,
			"team":   le.Team,
			"pos":    le.Pos.String(),
			"target": le.NewPos.String(),
		}).Error("движение рассинхронизировано: %v", err)
		return err
	}

	if s.deps.Moves != nil {
		s.deps.Moves.ConditionalMoveCalc(le)
	}

	if floor, ok := s.pool.Find(TypeItem, le.Pos); ok {
		le.Floor = floor.Floor
	}

	le.LightingDirty = true
	le.think = ThinkIdle
	return nil
}

// playContentsSound выбирает звук шага по воде: вход или движение, смотря
// где актёр стоял. Присевший актёр идёт по воде бесшумно.
func (s *Simulation) playContentsSound(le *LocalEntity) {
	if le.State.IsCrouched() {
		return
	}
	name := SoundWaterIn
	if le.PositionContents.Has(physics.ContentsWater) {
		name = SoundWaterMove
	}
	s.playSample(le.Origin, name, effects.AttnIdle, effects.VolumeFootsteps)
}

// footstepSound ищет поверхность под клеткой и проигрывает шаг
func (s *Simulation) footstepSound(le *LocalEntity) {
	from := s.deps.Projector.PosToVec(le.Pos)
	to := from.Sub(mgl64.Vec3{0, 0, grid.UnitHeight})
	tr := s.Trace(from, to, mgl64.Vec3{}, mgl64.Vec3{}, nil, nil, physics.MaskSolid)
	if tr.Surface != "" {
		s.playSurface(le, tr.Surface)
	}
}

func (s *Simulation) playSurface(le *LocalEntity, texture string) {
	if s.deps.Terrain == nil {
		return
	}
	t, ok := s.deps.Terrain.Lookup(texture)
	if !ok {
		return
	}
	origin := s.deps.Projector.PosToVec(le.Pos)
	if t.Particle != "" && le.IsLivingAndVisibleActor() && s.deps.Particles != nil {
		s.deps.Particles.Spawn(effects.ParticleSpec{Name: t.Particle, Origin: origin})
	}
	if t.FootstepSound != "" {
		s.playSample(origin, t.FootstepSound, effects.AttnStatic, t.FootstepVolume)
	}
}

func (s *Simulation) playSample(origin mgl64.Vec3, name string, attenuation, volume float64) {
	if name == "" || s.deps.Sounds == nil {
		return
	}
	sample, ok := s.deps.Sounds.Load(name)
	if !ok {
		s.log.Debug("звук %s не найден", name)
		return
	}
	s.deps.Sounds.Play(origin, sample, attenuation, volume)
}
