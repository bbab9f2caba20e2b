// Package grid описывает дискретную тактическую сетку: коды направлений
// пути, их упаковку в DV и проекцию клеток в мировые координаты.
package grid

import "github.com/annel0/battlescape/internal/vec"

// Direction - индекс в таблице dvecs
type Direction uint8

const (
	DirEast Direction = iota
	DirWest
	DirNorth
	DirSouth
	DirNorthEast
	DirSouthWest
	DirNorthWest
	DirSouthEast
	DirClimbUp
	DirClimbDown
	DirStandUp
	DirCrouchDown
	dirUndefined // противоположность падению, не используется
	DirFall

	PathfindingDirections
)

const (
	// BaseDirections - прямые направления (E, W, N, S)
	BaseDirections = 4
	// CoreDirections - все горизонтальные направления, включая диагонали
	CoreDirections = 8
	// FlyingDirections - начало диапазона летающих направлений
	FlyingDirections = 16
)

// dvecs: смещение по X, Y, Z и изменение приседания
var dvecs = [PathfindingDirections][4]int{
	{1, 0, 0, 0},   // E
	{-1, 0, 0, 0},  // W
	{0, 1, 0, 0},   // N
	{0, -1, 0, 0},  // S
	{1, 1, 0, 0},   // NE
	{-1, -1, 0, 0}, // SW
	{-1, 1, 0, 0},  // NW
	{1, -1, 0, 0},  // SE
	{0, 0, 1, 0},   // подъём
	{0, 0, -1, 0},  // спуск
	{0, 0, 0, -1},  // встать
	{0, 0, 0, 1},   // присесть
	{0, 0, 0, 0},
	{0, 0, -1, 0}, // падение
}

// DirectionAngles - угол рыскания (градусы) для горизонтальных направлений
var DirectionAngles = [CoreDirections]float64{0, 180, 90, 270, 45, 225, 135, 315}

// IsDiagonal сообщает, что шаг идёт по диагонали клетки
func (d Direction) IsDiagonal() bool {
	return d >= BaseDirections && d < CoreDirections
}

// IsHorizontal сообщает, что направление меняет взгляд актёра
func (d Direction) IsHorizontal() bool {
	return d < CoreDirections || d >= FlyingDirections
}

// Delta возвращает смещение клетки для направления
func (d Direction) Delta() vec.Vec3 {
	if int(d) >= len(dvecs) {
		return vec.Vec3{}
	}
	v := dvecs[d]
	return vec.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// DV - упакованный шаг пути: направление и итоговый уровень
type DV uint16

const (
	dvZMask    = 0x0007
	dvDirShift = 3
	MaxLevels  = dvZMask + 1
)

// MakeDV упаковывает направление и уровень после шага
func MakeDV(dir Direction, z int) DV {
	return DV(uint16(dir)<<dvDirShift | uint16(z)&dvZMask)
}

// Dir извлекает направление
func (dv DV) Dir() Direction {
	return Direction(dv >> dvDirShift)
}

// Z извлекает уровень после шага
func (dv DV) Z() int {
	return int(dv & dvZMask)
}

// PosAddDV применяет шаг к клетке и к состоянию приседания.
// Уровень берётся из самого DV, а не из dvecs.
func PosAddDV(pos vec.Vec3, crouch int, dv DV) (vec.Vec3, int) {
	dir := dv.Dir()
	if int(dir) >= len(dvecs) {
		return pos, crouch
	}
	next := pos.Add(dir.Delta())
	next.Z = dv.Z()
	return next, crouch + dvecs[dir][3]
}
