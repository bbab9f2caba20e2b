// Package entity - клиентская симуляция локальных сущностей боя: пул,
// обработчики состояний, движение по пути, снаряды и трассировка.
package entity

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Type - вид локальной сущности
type Type uint8

const (
	TypeNull Type = iota
	TypeActor
	TypeActor2x2
	TypeActorHidden
	TypeItem
	TypeDoor
	TypeDoorSliding
	TypeBreakable
	TypeRotating
	TypeParticle
	TypeSound
	TypeTrigger
)

var typeNames = [...]string{
	TypeNull:        "null",
	TypeActor:       "actor",
	TypeActor2x2:    "actor2x2",
	TypeActorHidden: "actor_hidden",
	TypeItem:        "item",
	TypeDoor:        "door",
	TypeDoorSliding: "door_sliding",
	TypeBreakable:   "breakable",
	TypeRotating:    "rotating",
	TypeParticle:    "particle",
	TypeSound:       "sound",
	TypeTrigger:     "trigger",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// ParseType разбирает имя вида; false - неизвестный
func ParseType(s string) (Type, bool) {
	for i, n := range typeNames {
		if n == s {
			return Type(i), true
		}
	}
	return TypeNull, false
}

// StateFlags - состояние актёра
type StateFlags uint32

const (
	StateDead         StateFlags = 0x0003 // индекс анимации смерти 1..3
	StateCrouched     StateFlags = 0x0004
	StatePanic        StateFlags = 0x0008
	StateRage         StateFlags = 0x0010
	StateInsane       StateFlags = 0x0020
	StateStun         StateFlags = 0x0040
	StateReactionOnce StateFlags = 0x0100
	StateReactionMany StateFlags = 0x0200
	StateShaken       StateFlags = 0x0400
)

// IsDead сообщает, мёртв ли актёр
func (s StateFlags) IsDead() bool { return s&StateDead != 0 }

// IsStunned сообщает, оглушён ли актёр
func (s StateFlags) IsStunned() bool { return s&StateStun != 0 }

// IsCrouched сообщает, присел ли актёр
func (s StateFlags) IsCrouched() bool { return s&StateCrouched != 0 }

// RenderFlags - подсказки рендеру
type RenderFlags uint32

const (
	RenderSelected RenderFlags = 1 << iota
	RenderAllied
	RenderMember
	RenderBox
	RenderShadow
)

// ObjDef - описание предмета
type ObjDef struct {
	ID             string     `json:"id" yaml:"id"`
	Type           string     `json:"type" yaml:"type"` // rifle, pistol, grenade...
	AnimationIndex int        `json:"anim_index" yaml:"anim_index"`
	Shape          uint32     `json:"shape" yaml:"shape"`
	Center         mgl64.Vec3 `json:"center" yaml:"center"`
	Model          string     `json:"model" yaml:"model"`
}

// IsGrenade сообщает, что предмет - граната
func (o *ObjDef) IsGrenade() bool { return o != nil && o.Type == "grenade" }

// IsPistol сообщает, что предмет - пистолет
func (o *ObjDef) IsPistol() bool { return o != nil && o.Type == "pistol" }

// Item - экземпляр предмета
type Item struct {
	Def  *ObjDef `json:"def"`
	Ammo int     `json:"ammo"`
}

// Container - контейнер предметов (пол клетки)
type Container struct {
	Items []Item
}

// Empty очищает контейнер
func (c *Container) Empty() {
	if c != nil {
		c.Items = nil
	}
}

// ShotFlags - параметры попадания
type ShotFlags uint8

const (
	ShotImpact ShotFlags = 1 << iota
	ShotBody
	ShotBouncing
	ShotBounced
)

// FireDef - режим огня оружия
type FireDef struct {
	Name              string  `json:"name" yaml:"name"`
	Projectile        string  `json:"projectile" yaml:"projectile"`
	Impact            string  `json:"impact" yaml:"impact"`
	HitBody           string  `json:"hit_body" yaml:"hit_body"`
	ImpactSound       string  `json:"impact_sound" yaml:"impact_sound"`
	HitBodySound      string  `json:"hit_body_sound" yaml:"hit_body_sound"`
	BounceSound       string  `json:"bounce_sound" yaml:"bounce_sound"`
	Speed             float64 `json:"speed" yaml:"speed"` // 0 - мгновенный выстрел
	SplashRadius      float64 `json:"splash_radius" yaml:"splash_radius"`
	Bounce            bool    `json:"bounce" yaml:"bounce"`
	ImpactAttenuation float64 `json:"impact_attenuation" yaml:"impact_attenuation"`
}
