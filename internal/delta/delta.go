// Package delta описывает изменения состояния сущностей, приходящие с
// сервера, и применяет их к симуляции между кадрами.
package delta

import (
	"fmt"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/annel0/battlescape/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind - вид дельты
type Kind string

const (
	EntityAppear     Kind = "entity_appear"
	ActorAppear      Kind = "actor_appear"
	ActorMove        Kind = "actor_move"
	ActorStateChange Kind = "actor_state"
	EntityPerish     Kind = "entity_perish"
	EntityDestroy    Kind = "entity_destroy"
	Shoot            Kind = "shoot"
	ThrowGrenade     Kind = "throw_grenade"
	DoorOpen         Kind = "door_open"
	ItemFloor        Kind = "item_floor"
	AmbientSound     Kind = "ambient_sound"
)

// Step - шаг пути в дельте движения
type Step struct {
	Dir   int     `json:"dir" yaml:"dir"`
	Z     int     `json:"z,omitempty" yaml:"z,omitempty"`
	Water bool    `json:"water,omitempty" yaml:"water,omitempty"`
	Speed float64 `json:"speed" yaml:"speed"`
}

// Delta - одно изменение состояния. Значимые поля зависят от Kind.
type Delta struct {
	Kind Kind `json:"kind" yaml:"kind"`
	Num  int  `json:"num" yaml:"num"`

	Type      string   `json:"type,omitempty" yaml:"type,omitempty"`
	Pos       vec.Vec3 `json:"pos" yaml:"pos"`
	Dir       int      `json:"dir,omitempty" yaml:"dir,omitempty"`
	Size      int      `json:"size,omitempty" yaml:"size,omitempty"`
	Team      int      `json:"team,omitempty" yaml:"team,omitempty"`
	PlayerNum int      `json:"pnum,omitempty" yaml:"pnum,omitempty"`
	HP        int      `json:"hp,omitempty" yaml:"hp,omitempty"`
	State     uint32   `json:"state,omitempty" yaml:"state,omitempty"`
	Model     string   `json:"model,omitempty" yaml:"model,omitempty"`
	Right     string   `json:"right,omitempty" yaml:"right,omitempty"`
	Left      string   `json:"left,omitempty" yaml:"left,omitempty"`

	Steps  []Step   `json:"steps,omitempty" yaml:"steps,omitempty"`
	Target vec.Vec3 `json:"target" yaml:"target"`

	Fire     string     `json:"fire,omitempty" yaml:"fire,omitempty"`
	Flags    []string   `json:"flags,omitempty" yaml:"flags,omitempty"`
	From     mgl64.Vec3 `json:"from" yaml:"from"`
	To       mgl64.Vec3 `json:"to" yaml:"to"`
	Normal   mgl64.Vec3 `json:"normal" yaml:"normal"`
	Velocity mgl64.Vec3 `json:"velocity" yaml:"velocity"`
	Duration int64      `json:"duration,omitempty" yaml:"duration,omitempty"`

	Origin        mgl64.Vec3 `json:"origin" yaml:"origin"`
	Angles        mgl64.Vec3 `json:"angles" yaml:"angles"`
	Mins          mgl64.Vec3 `json:"mins" yaml:"mins"`
	Maxs          mgl64.Vec3 `json:"maxs" yaml:"maxs"`
	InlineModel   string     `json:"inline,omitempty" yaml:"inline,omitempty"`
	Delay         int64      `json:"delay,omitempty" yaml:"delay,omitempty"`
	RotationSpeed float64    `json:"rotation_speed,omitempty" yaml:"rotation_speed,omitempty"`

	Items []string `json:"items,omitempty" yaml:"items,omitempty"`

	Sound      string  `json:"sound,omitempty" yaml:"sound,omitempty"`
	Volume     float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
	LevelFlags uint32  `json:"level_flags,omitempty" yaml:"level_flags,omitempty"`
}

func (d Delta) String() string {
	return fmt.Sprintf("%s #%d", d.Kind, d.Num)
}

// PathSteps переводит шаги дельты в шаги пути симуляции
func (d Delta) PathSteps() []entity.PathStep {
	steps := make([]entity.PathStep, len(d.Steps))
	for i, st := range d.Steps {
		steps[i] = entity.PathStep{
			DV:    grid.MakeDV(grid.Direction(st.Dir), st.Z),
			Speed: st.Speed,
		}
		if st.Water {
			steps[i].Contents = physics.ContentsWater
		}
	}
	return steps
}

var shotFlagNames = map[string]entity.ShotFlags{
	"impact":   entity.ShotImpact,
	"body":     entity.ShotBody,
	"bouncing": entity.ShotBouncing,
	"bounced":  entity.ShotBounced,
}

// ShotFlags собирает флаги попадания по именам
func (d Delta) ShotFlags() (entity.ShotFlags, error) {
	var flags entity.ShotFlags
	for _, name := range d.Flags {
		f, ok := shotFlagNames[name]
		if !ok {
			return 0, fmt.Errorf("shot flag %q: %w", name, entity.ErrInvalidParameter)
		}
		flags |= f
	}
	return flags, nil
}
