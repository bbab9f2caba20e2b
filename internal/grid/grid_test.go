package grid

import (
	"testing"

	"github.com/annel0/battlescape/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestDVPacking(t *testing.T) {
	dv := MakeDV(DirNorthWest, 3)
	assert.Equal(t, DirNorthWest, dv.Dir())
	assert.Equal(t, 3, dv.Z())

	fall := MakeDV(DirFall, 0)
	assert.Equal(t, DirFall, fall.Dir())
	assert.Equal(t, 0, fall.Z())
}

func TestPosAddDV(t *testing.T) {
	t.Run("горизонтальный шаг", func(t *testing.T) {
		pos, crouch := PosAddDV(vec.Vec3{X: 1, Y: 1, Z: 0}, 0, MakeDV(DirNorthEast, 0))
		assert.Equal(t, vec.Vec3{X: 2, Y: 2, Z: 0}, pos)
		assert.Equal(t, 0, crouch)
	})

	t.Run("уровень берётся из DV", func(t *testing.T) {
		pos, _ := PosAddDV(vec.Vec3{X: 1, Y: 1, Z: 2}, 0, MakeDV(DirFall, 0))
		assert.Equal(t, vec.Vec3{X: 1, Y: 1, Z: 0}, pos)
	})

	t.Run("приседание", func(t *testing.T) {
		pos, crouch := PosAddDV(vec.Vec3{X: 1, Y: 1}, 0, MakeDV(DirCrouchDown, 0))
		assert.Equal(t, vec.Vec3{X: 1, Y: 1}, pos)
		assert.Equal(t, 1, crouch)

		_, crouch = PosAddDV(pos, crouch, MakeDV(DirStandUp, 0))
		assert.Equal(t, 0, crouch)
	})
}

func TestDirectionClasses(t *testing.T) {
	assert.False(t, DirNorth.IsDiagonal())
	assert.True(t, DirSouthEast.IsDiagonal())
	assert.False(t, DirFall.IsDiagonal())
	assert.True(t, DirWest.IsHorizontal())
	assert.False(t, DirClimbUp.IsHorizontal())
	assert.Equal(t, vec.Vec3{Y: 1}, DirNorth.Delta())
}

type flatFloor float64

func (f flatFloor) Floor(FieldSize, vec.Vec3) float64 { return float64(f) }

func TestProjector(t *testing.T) {
	p := Projector{}
	assert.Equal(t, mgl64.Vec3{16, 48, 32}, p.PosToVec(vec.Vec3{X: 0, Y: 1, Z: 0}))
	assert.Equal(t, mgl64.Vec3{32, 32, 96}, p.SizedPosToVec(ActorSize2x2, vec.Vec3{Z: 1}))

	p.Floors = flatFloor(100)
	assert.Equal(t, float64(32+UnitHeight), p.GridPosToVec(ActorSizeNormal, vec.Vec3{}).Z())

	p.Floors = flatFloor(-5)
	assert.Equal(t, 32.0, p.GridPosToVec(ActorSizeNormal, vec.Vec3{}).Z())

	p.GridWidth = 1
	assert.Equal(t, -16.0, p.PosToVec(vec.Vec3{}).X())
}

func TestModelOffset(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{}, ModelOffset(ActorSizeNormal))
	assert.Equal(t, mgl64.Vec3{18, 18, 0}, ModelOffset(ActorSize2x2))
}
