package entity

import (
	"strconv"
	"strings"
)

// GetAnim строит имя анимации актёра по оружию в руках и состоянию
func GetAnim(anim string, right, left *ObjDef, state StateFlags) string {
	if anim == "" {
		return ""
	}

	var b strings.Builder
	if state.IsCrouched() {
		b.WriteByte('c')
	}

	akimbo := false
	var index string
	var kind string
	if right == nil {
		index = "0"
		if left == nil {
			kind = "item"
		} else {
			// гранату в левой руке держат стандартно
			akimbo = !left.IsGrenade()
			kind = left.Type
		}
	} else {
		index = strconv.Itoa(right.AnimationIndex)
		kind = right.Type
		akimbo = left != nil && right.IsPistol() && left.IsPistol()
	}

	if strings.HasPrefix(anim, "stand") || strings.HasPrefix(anim, "walk") {
		b.WriteString(anim)
		b.WriteString(index)
		return b.String()
	}

	b.WriteString(anim)
	b.WriteByte('_')
	if akimbo {
		b.WriteString("pistol_d")
	} else {
		b.WriteString(kind)
	}
	return b.String()
}

func deathAnimIndex(state StateFlags) int {
	return int(state & StateDead)
}
