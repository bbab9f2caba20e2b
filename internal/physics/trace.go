package physics

import "github.com/go-gl/mathgl/mgl64"

// Plane - плоскость столкновения
type Plane struct {
	Normal mgl64.Vec3
	Dist   float64
}

// Trace - результат прохода коробки от start к end
type Trace struct {
	Fraction   float64 // 1 - путь свободен
	EndPos     mgl64.Vec3
	Plane      Plane
	Surface    string // имя текстуры поверхности удара
	Contents   Contents
	StartSolid bool // старт внутри твёрдого объёма
	AllSolid   bool // весь путь внутри твёрдого объёма
}

// EmptyTrace возвращает свободный проход до end
func EmptyTrace(end mgl64.Vec3) Trace {
	return Trace{Fraction: 1, EndPos: end}
}

// MergeOutcome описывает, как кандидат повлиял на общий результат
type MergeOutcome int

const (
	MergeKept MergeOutcome = iota
	MergeReplaced
	MergeStartSolid
)

// Merge вливает результат одного препятствия в общий.
// Меньшая доля пути заменяет текущий результат с сохранением флага
// startsolid; полностью твёрдый результат заменяет его всегда; иначе
// переносится только startsolid.
func Merge(running *Trace, candidate Trace) MergeOutcome {
	switch {
	case candidate.Fraction < running.Fraction:
		startSolid := running.StartSolid
		*running = candidate
		running.StartSolid = running.StartSolid || startSolid
		return MergeReplaced
	case candidate.AllSolid:
		*running = candidate
		return MergeReplaced
	case candidate.StartSolid:
		running.StartSolid = true
		return MergeStartSolid
	}
	return MergeKept
}

// TraceBounds возвращает габариты всего движения с запасом в одну единицу
func TraceBounds(start, mins, maxs, end mgl64.Vec3) (boxMins, boxMaxs mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		if end[i] > start[i] {
			boxMins[i] = start[i] + mins[i] - 1
			boxMaxs[i] = end[i] + maxs[i] + 1
		} else {
			boxMins[i] = end[i] + mins[i] - 1
			boxMaxs[i] = start[i] + maxs[i] + 1
		}
	}
	return boxMins, boxMaxs
}

// BoxesOverlap проверяет пересечение двух коробок
func BoxesOverlap(aMins, aMaxs, bMins, bMaxs mgl64.Vec3) bool {
	return aMins[0] < bMaxs[0] && aMaxs[0] > bMins[0] &&
		aMins[1] < bMaxs[1] && aMaxs[1] > bMins[1] &&
		aMins[2] < bMaxs[2] && aMaxs[2] > bMins[2]
}
