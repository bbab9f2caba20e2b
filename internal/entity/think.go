package entity

import "fmt"

// Think - обработчик состояния сущности
type Think uint8

const (
	ThinkNone Think = iota
	ThinkIdle
	ThinkPathMove
	ThinkProjectile
	ThinkBrush
)

var thinkNames = [...]string{"none", "idle", "path_move", "projectile", "brush"}

func (t Think) String() string {
	if int(t) < len(thinkNames) {
		return thinkNames[t]
	}
	return fmt.Sprintf("think(%d)", t)
}

func (s *Simulation) runThink(le *LocalEntity) error {
	switch le.think {
	case ThinkIdle:
		s.startIdle(le)
	case ThinkPathMove:
		return s.pathMove(le)
	case ThinkProjectile:
		s.projectileThink(le)
	case ThinkBrush:
		s.brushThink(le)
	}
	return nil
}

// startIdle выставляет анимацию покоя и сбрасывает путь
func (s *Simulation) startIdle(le *LocalEntity) {
	if le.Type != TypeActorHidden {
		switch {
		case le.State.IsDead():
			le.Anim = fmt.Sprintf("dead%d", deathAnimIndex(le.State))
		case le.State&StatePanic != 0:
			le.Anim = "panic0"
		default:
			le.Anim = GetAnim("stand", le.Right, le.Left, le.State)
		}
	}

	le.PathPos, le.PathLength = 0, 0
	le.think = ThinkNone
}

// StartIdle переводит сущность в покой на следующем кадре
func (s *Simulation) StartIdle(le *LocalEntity) {
	le.think = ThinkIdle
}
