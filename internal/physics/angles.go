package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// индексы углов
const (
	Pitch = 0
	Yaw   = 1
	Roll  = 2
)

// RotationMatrix строит поворот из углов в градусах
func RotationMatrix(angles mgl64.Vec3) mgl64.Mat3 {
	yaw := mgl64.Rotate3DZ(mgl64.DegToRad(angles[Yaw]))
	pitch := mgl64.Rotate3DY(mgl64.DegToRad(angles[Pitch]))
	roll := mgl64.Rotate3DX(mgl64.DegToRad(angles[Roll]))
	return yaw.Mul3(pitch).Mul3(roll)
}

// VecToAngles переводит направление в углы (pitch, yaw, 0)
func VecToAngles(v mgl64.Vec3) mgl64.Vec3 {
	var yaw, pitch float64
	if v[0] == 0 && v[1] == 0 {
		if v[2] > 0 {
			pitch = 90
		} else {
			pitch = 270
		}
	} else {
		yaw = mgl64.RadToDeg(math.Atan2(v[1], v[0]))
		if yaw < 0 {
			yaw += 360
		}
		forward := math.Hypot(v[0], v[1])
		pitch = mgl64.RadToDeg(math.Atan2(v[2], forward))
		if pitch < 0 {
			pitch += 360
		}
	}
	return mgl64.Vec3{-pitch, yaw, 0}
}
