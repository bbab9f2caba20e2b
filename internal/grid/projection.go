package grid

import (
	"github.com/annel0/battlescape/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// UnitSize - ширина клетки в единицах модели
	UnitSize = 32
	// UnitHeight - высота уровня в единицах модели
	UnitHeight = 64
	// GroundDelta - насколько опускается предмет на полу
	GroundDelta = 28

	boxDeltaWidth  = 4
	boxDeltaLength = 4
)

// FieldSize - занимаемый актёром размер в клетках
type FieldSize int

const (
	ActorSizeInvalid FieldSize = 0
	ActorSizeNormal  FieldSize = 1
	ActorSize2x2     FieldSize = 2
)

// FloorProvider возвращает высоту пола клетки над базой уровня (карта маршрутизации)
type FloorProvider interface {
	Floor(size FieldSize, pos vec.Vec3) float64
}

// Projector переводит клетки сетки в мировые координаты
type Projector struct {
	GridWidth int           // смещение сетки относительно начала мира в клетках
	Floors    FloorProvider // может быть nil - тогда пол на базе уровня
}

// PosToVec - центр клетки без учёта размера и пола
func (p Projector) PosToVec(pos vec.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		float64((pos.X-p.GridWidth)*UnitSize + UnitSize/2),
		float64((pos.Y-p.GridWidth)*UnitSize + UnitSize/2),
		float64(pos.Z*UnitHeight + UnitHeight/2),
	}
}

// SizedPosToVec - центр площади, занимаемой актёром указанного размера
func (p Projector) SizedPosToVec(size FieldSize, pos vec.Vec3) mgl64.Vec3 {
	v := p.PosToVec(pos)
	if size > ActorSizeNormal {
		delta := float64(int(size-1) * UnitSize / 2)
		v[0] += delta
		v[1] += delta
	}
	return v
}

// GridPosToVec - как SizedPosToVec, но с поднятием на высоту пола (0..UnitHeight)
func (p Projector) GridPosToVec(size FieldSize, pos vec.Vec3) mgl64.Vec3 {
	v := p.SizedPosToVec(size, pos)
	if p.Floors != nil {
		floor := p.Floors.Floor(size, pos)
		if floor < 0 {
			floor = 0
		} else if floor > UnitHeight {
			floor = UnitHeight
		}
		v[2] += floor
	}
	return v
}

// ModelOffset смещает модель актёра внутрь рамки курсора
func ModelOffset(size FieldSize) mgl64.Vec3 {
	switch size {
	case ActorSizeNormal, ActorSize2x2:
		i := float64(size - 1)
		return mgl64.Vec3{i * (UnitSize + boxDeltaWidth) / 2, i * (UnitSize + boxDeltaLength) / 2, 0}
	default:
		return mgl64.Vec3{}
	}
}
